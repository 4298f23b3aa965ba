// Package errs defines the explanation pipeline's error taxonomy. Kinds,
// not types: every error the pipeline can produce wraps one of these
// sentinels so the HTTP layer can map kind → status in one place instead
// of scattering status codes through handler code.
package errs

import "errors"

// Sentinel kinds. Wrap with fmt.Errorf("...: %w", Kind) at the call site
// and recover with errors.Is.
var (
	// BadRequest: malformed/empty body, missing question, bad JSON. 400,
	// return immediately.
	BadRequest = errors.New("bad request")

	// BadTenant: the resolved tenant identifier fails the tenant regex.
	// 400. Must fire before any SQL is composed.
	BadTenant = errors.New("bad tenant")

	// SchemaIncomplete: a required field id is missing from the schema
	// cache. 500. Short-circuits the pipeline; no trace is produced.
	SchemaIncomplete = errors.New("schema incomplete")

	// DatabaseFailure: a query call returned an error. 500. Abort and
	// ensure the connection is closed.
	DatabaseFailure = errors.New("database failure")

	// PageNotFound is not a 400/500 surface: the orchestrator treats it as
	// a degrade-gracefully case and still calls the generator.
	PageNotFound = errors.New("page not found")

	// CodeRetrievalFailure is swallowed by the retriever; it never
	// propagates past internal/retrieval.
	CodeRetrievalFailure = errors.New("code retrieval failure")

	// GenerationFailure triggers the deterministic fallback in C9; it
	// never propagates to the HTTP layer as an error response.
	GenerationFailure = errors.New("generation failure")

	// StreamError: the SSE writer's underlying connection closed after
	// the client disconnected. Swallowed silently.
	StreamError = errors.New("stream error")
)

// Kind reports which sentinel, if any, wraps err. Ok is false for errors
// outside the taxonomy (typically programmer errors that should 500).
func Kind(err error) (kind error, ok bool) {
	for _, k := range []error{
		BadRequest, BadTenant, SchemaIncomplete, DatabaseFailure,
		PageNotFound, CodeRetrievalFailure, GenerationFailure, StreamError,
	} {
		if errors.Is(err, k) {
			return k, true
		}
	}
	return nil, false
}
