// Package orchestrator implements the Orchestrator (C10): it validates an
// inbound question, resolves the tenant, parses intent, and fans out to
// context retrieval and the appropriate domain resolver (filter chain,
// block inspector, or import collector) before handing everything to the
// explanation generator. Both the buffered and streaming HTTP handlers
// share this package; it knows nothing about HTTP itself.
package orchestrator

import (
	"context"
	"encoding/json"

	"github.com/jmoiron/sqlx"

	"github.com/roamdigital/explainer/internal/explain"
	"github.com/roamdigital/explainer/internal/model"
	"github.com/roamdigital/explainer/internal/tenant"
)

// Request is the orchestrator's transport-agnostic view of an inbound
// explain request.
type Request struct {
	Question       string
	Tenant         string
	Hostname       string
	PageURI        string
	ComponentIndex int
	History        []model.ChatMessage
}

// DebugInfo is the diagnostic payload every response carries under
// debug.
type DebugInfo struct {
	Intent         model.ParsedIntent `json:"intent"`
	Timing         map[string]float64 `json:"timing"` // seconds, per stage
	UsedFallback   bool               `json:"usedFallback"`
	FallbackReason string             `json:"fallbackReason,omitempty"`
	TraceCacheHit  bool               `json:"traceCacheHit"`
}

// Response is the buffered /api/explain result.
type Response struct {
	Explanation string            `json:"explanation"`
	Trace       []model.TraceStep `json:"trace"`
	Config      any               `json:"config"`
	Debug       DebugInfo         `json:"debug"`
}

// MetadataEvent is the first frame a streaming caller sends, before any
// content chunk.
type MetadataEvent struct {
	Trace  []model.TraceStep `json:"trace"`
	Config any               `json:"config"`
	Debug  DebugInfo         `json:"debug"`
}

// TenantGetter is the subset of tenant.Cache the orchestrator depends on.
type TenantGetter interface {
	Get(ctx context.Context, tenantID string) (*tenant.Pool, error)
}

// SchemaGetter is the subset of schema.Resolver the domain resolver
// depends on.
type SchemaGetter interface {
	Get(ctx context.Context, tenant string, db *sqlx.DB) (*model.SchemaCache, error)
}

// GeneratorModel is the subset of explain.Generator the orchestrator
// depends on; *explain.Generator satisfies it without an explicit
// assertion.
type GeneratorModel interface {
	Generate(ctx context.Context, in explain.PromptInput) (text string, usedFallback bool, reason string)
	Stream(ctx context.Context, in explain.PromptInput, onChunk func([]byte) error) error
}

// cachedTrace is the JSON shape stored under a trace cache key, exactly
// the "{config, trace}" pair named in the external-interface contract.
type cachedTrace struct {
	Config json.RawMessage   `json:"config"`
	Trace  []model.TraceStep `json:"trace"`
}
