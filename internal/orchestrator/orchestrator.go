package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tmc/langchaingo/llms"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/roamdigital/explainer/internal/errs"
	"github.com/roamdigital/explainer/internal/explain"
	"github.com/roamdigital/explainer/internal/intent"
	"github.com/roamdigital/explainer/internal/kv"
	"github.com/roamdigital/explainer/internal/metrics"
	"github.com/roamdigital/explainer/internal/model"
	"github.com/roamdigital/explainer/internal/retrieval"
	"github.com/roamdigital/explainer/internal/tenant"
)

// Orchestrator is the C10 entry point: one instance is shared across all
// requests and all tenants.
type Orchestrator struct {
	tenants       TenantGetter
	schema        SchemaGetter
	traceStore    kv.Store
	traceTTL      time.Duration
	retriever     retrieval.Client
	generator     GeneratorModel
	llm           llms.Model
	defaultTenant string
	nearbyWindow  int

	// resolve is resolveWithCache by default; tests substitute a fake so
	// the fork-join can be exercised without a live database.
	resolve func(ctx context.Context, deps domainDeps, store kv.Store, ttl time.Duration, req Request, parsed model.ParsedIntent) (cfg any, trace []model.TraceStep, targets []int, fromCache bool, err error)
}

// Deps bundles the collaborators New wires together; every field is
// required except LLM, which may be nil (intent parsing degrades to the
// rule-based fallback classifier and the generator degrades to the
// deterministic paraphrase).
type Deps struct {
	Tenants       TenantGetter
	Schema        SchemaGetter
	TraceStore    kv.Store
	TraceTTL      time.Duration
	Retriever     retrieval.Client
	Generator     *explain.Generator
	LLM           llms.Model
	DefaultTenant string
	NearbyWindow  int
}

// New builds an Orchestrator from its collaborators.
func New(d Deps) *Orchestrator {
	return &Orchestrator{
		tenants:       d.Tenants,
		schema:        d.Schema,
		traceStore:    d.TraceStore,
		traceTTL:      d.TraceTTL,
		retriever:     d.Retriever,
		generator:     d.Generator,
		llm:           d.LLM,
		defaultTenant: d.DefaultTenant,
		nearbyWindow:  d.NearbyWindow,
		resolve:       resolveWithCache,
	}
}

// prepared holds everything gathered before generation, shared by
// Explain and Stream so the two entry points stay in lockstep.
type prepared struct {
	tenantID  string
	intent    model.ParsedIntent
	cfg       any
	trace     []model.TraceStep
	targets   []int
	retrieved string
	timing    map[string]float64
	cacheHit  bool
}

// validate checks the request shape the HTTP layer is not expected to
// check itself: a non-empty question. History sanitisation happens here
// too so both entry points get the same 20-turn cap.
func validate(req *Request) error {
	if req.Question == "" {
		return fmt.Errorf("question is required: %w", errs.BadRequest)
	}
	req.History = model.SanitizeHistory(req.History)
	return nil
}

// run performs everything up to (but not including) generation: tenant
// resolution, intent parsing, and the retrieve ∥ resolve-domain fork-join.
func (o *Orchestrator) run(ctx context.Context, req Request) (*prepared, error) {
	if err := validate(&req); err != nil {
		return nil, err
	}

	timing := map[string]float64{}
	start := time.Now()

	tenantID, err := tenant.ResolveTenant(ctx, tenant.Request{Tenant: req.Tenant, Hostname: req.Hostname}, o.traceStore, o.defaultTenant)
	if err != nil {
		return nil, err
	}

	pool, err := o.tenants.Get(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("tenant pool: %w", errs.DatabaseFailure)
	}

	parsed := intent.Parse(ctx, o.llm, req.Question, req.PageURI)
	timing["intent"] = time.Since(start).Seconds()
	metrics.PipelineStageDuration.WithLabelValues("intent").Observe(timing["intent"])

	deps := domainDeps{db: pool.DB, schema: o.schema, tenantID: tenantID, nearbyWindow: o.nearbyWindow}

	var cfg any
	var trace []model.TraceStep
	var targets []int
	var retrieved string
	var cacheHit bool
	var retrievalSecs, collectionSecs float64

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		t0 := time.Now()
		retrieved = o.retriever.Retrieve(gctx, parsed, tenantID)
		retrievalSecs = time.Since(t0).Seconds()
		metrics.PipelineStageDuration.WithLabelValues("retrieval").Observe(retrievalSecs)
		return nil
	})
	g.Go(func() error {
		t0 := time.Now()
		c, tr, tg, hit, err := o.resolve(gctx, deps, o.traceStore, o.traceTTL, req, parsed)
		collectionSecs = time.Since(t0).Seconds()
		metrics.PipelineStageDuration.WithLabelValues("collection").Observe(collectionSecs)
		cfg, trace, targets, cacheHit = c, tr, tg, hit
		if err != nil {
			if errors.Is(err, errs.PageNotFound) {
				zap.S().Warnw("page not found, degrading to fallback", "tenant", tenantID, "pageUri", req.PageURI)
				cfg, trace = nil, nil
				return nil
			}
			return err
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	timing["retrieval"] = retrievalSecs
	timing["collection"] = collectionSecs

	return &prepared{
		tenantID:  tenantID,
		intent:    parsed,
		cfg:       cfg,
		trace:     trace,
		targets:   targets,
		retrieved: retrieved,
		timing:    timing,
		cacheHit:  cacheHit,
	}, nil
}

func (p *prepared) promptInput(history []model.ChatMessage) explain.PromptInput {
	return explain.PromptInput{
		Intent:      p.intent,
		TargetIDs:   p.targets,
		Config:      p.cfg,
		Trace:       p.trace,
		CodeContext: p.retrieved,
		History:     history,
	}
}

// Explain runs the full buffered pipeline and returns the HTTP-ready
// response.
func (o *Orchestrator) Explain(ctx context.Context, req Request) (*Response, error) {
	p, err := o.run(ctx, req)
	if err != nil {
		return nil, err
	}

	t0 := time.Now()
	text, usedFallback, reason := o.generator.Generate(ctx, p.promptInput(req.History))
	p.timing["generation"] = time.Since(t0).Seconds()
	metrics.PipelineStageDuration.WithLabelValues("generation").Observe(p.timing["generation"])
	if usedFallback {
		metrics.GenerationFallbackTotal.WithLabelValues(reason).Inc()
	}

	return &Response{
		Explanation: text,
		Trace:       p.trace,
		Config:      p.cfg,
		Debug: DebugInfo{
			Intent:         p.intent,
			Timing:         p.timing,
			UsedFallback:   usedFallback,
			FallbackReason: reason,
			TraceCacheHit:  p.cacheHit,
		},
	}, nil
}

// Stream runs the pipeline and calls onMetadata exactly once before
// onChunk is ever invoked, matching the SSE ordering guarantee (one
// metadata event, zero or more content events, then done/error — the
// done/error framing itself is the HTTP layer's responsibility).
func (o *Orchestrator) Stream(ctx context.Context, req Request, onMetadata func(MetadataEvent) error, onChunk func([]byte) error) error {
	p, err := o.run(ctx, req)
	if err != nil {
		return err
	}

	if err := onMetadata(MetadataEvent{
		Trace:  p.trace,
		Config: p.cfg,
		Debug: DebugInfo{
			Intent:        p.intent,
			Timing:        p.timing,
			TraceCacheHit: p.cacheHit,
		},
	}); err != nil {
		return fmt.Errorf("metadata write: %w", errs.StreamError)
	}

	t0 := time.Now()
	err = o.generator.Stream(ctx, p.promptInput(req.History), onChunk)
	p.timing["generation"] = time.Since(t0).Seconds()
	metrics.PipelineStageDuration.WithLabelValues("generation").Observe(p.timing["generation"])
	return err
}
