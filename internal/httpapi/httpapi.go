// Package httpapi exposes the explanation pipeline over HTTP: the
// buffered and streaming explain endpoints, tenant resolution, schema
// invalidation, health, and metrics. It is a thin translation layer —
// all pipeline logic lives in internal/orchestrator.
package httpapi

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/roamdigital/explainer/internal/kv"
	appmiddleware "github.com/roamdigital/explainer/internal/middleware"
	"github.com/roamdigital/explainer/internal/orchestrator"
)

// Explainer is the subset of *orchestrator.Orchestrator the handlers
// depend on.
type Explainer interface {
	Explain(ctx context.Context, req orchestrator.Request) (*orchestrator.Response, error)
	Stream(ctx context.Context, req orchestrator.Request, onMetadata func(orchestrator.MetadataEvent) error, onChunk func([]byte) error) error
}

// SchemaInvalidator is the subset of *schema.Resolver the refresh-schema
// handler depends on.
type SchemaInvalidator interface {
	Invalidate(ctx context.Context, tenant string) error
}

// Deps bundles the collaborators Router wires together.
type Deps struct {
	Orchestrator  Explainer
	Schema        SchemaInvalidator
	TraceStore    kv.Store
	DefaultTenant string
}

type server struct {
	orch          Explainer
	schema        SchemaInvalidator
	store         kv.Store
	defaultTenant string
}

// Router builds the full chi router: security headers, CORS, then every
// route in the external-interface surface.
func Router(d Deps) http.Handler {
	s := &server{
		orch:          d.Orchestrator,
		schema:        d.Schema,
		store:         d.TraceStore,
		defaultTenant: d.DefaultTenant,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(appmiddleware.Security)
	r.Use(cors)
	r.Use(observeRoute)

	r.Post("/api/explain", s.handleExplain)
	r.Post("/api/explain/stream", s.handleExplainStream)
	r.Post("/api/resolve-tenant", s.handleResolveTenant)
	r.Post("/api/refresh-schema", s.handleRefreshSchema)
	r.Get("/health", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())
	r.NotFound(notFound)

	return r
}
