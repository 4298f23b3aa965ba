package orchestrator

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"golang.org/x/sync/errgroup"

	"github.com/roamdigital/explainer/internal/blockinspect"
	"github.com/roamdigital/explainer/internal/errs"
	"github.com/roamdigital/explainer/internal/filterchain"
	"github.com/roamdigital/explainer/internal/importcollect"
	"github.com/roamdigital/explainer/internal/kv"
	"github.com/roamdigital/explainer/internal/metrics"
	"github.com/roamdigital/explainer/internal/model"
	"github.com/roamdigital/explainer/internal/query"
)

// domainDeps carries everything the page-component and import-collector
// branches need from the tenant's own connection.
type domainDeps struct {
	db           *sqlx.DB
	schema       SchemaGetter
	tenantID     string
	nearbyWindow int
}

// cacheSlot computes the three pieces of the trace cache key for the
// given request/intent pair: a stable ATDW slot for import questions,
// the resolved page/component/index for everything else.
func cacheSlot(req Request, intent model.ParsedIntent) (pageURI, componentType string, blockIndex int) {
	if intent.Domain == model.DomainAtdwImport {
		product := intent.AtdwProductID
		if product == "" && len(intent.ProductNames) > 0 {
			product = intent.ProductNames[0]
		}
		return "atdw", product, 0
	}
	uri := intent.PageURI
	if uri == "" {
		uri = req.PageURI
	}
	return uri, intent.ComponentType, req.ComponentIndex
}

// resolveWithCache runs the trace-cache lookup and the product-name
// resolution concurrently (the two independent reads the concurrency
// model calls out), then either serves the cached config/trace pair or
// runs the domain resolver and populates the cache for next time.
func resolveWithCache(ctx context.Context, deps domainDeps, store kv.Store, ttl time.Duration, req Request, intent model.ParsedIntent) (cfg any, trace []model.TraceStep, targets []int, fromCache bool, err error) {
	prefix := deps.tenantID + "."
	pageURI, componentType, blockIndex := cacheSlot(req, intent)
	key := traceCacheKey(deps.tenantID, pageURI, componentType, blockIndex)

	var cached cachedTrace
	var cacheHit bool

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		raw, ok, err := store.Get(gctx, key)
		if err != nil {
			return fmt.Errorf("trace cache read: %w", errs.DatabaseFailure)
		}
		if ok {
			if jerr := json.Unmarshal(raw, &cached); jerr == nil {
				cacheHit = true
			}
		}
		return nil
	})
	g.Go(func() error {
		ids, err := query.ProductIDsByName(gctx, deps.db, prefix, intent.ProductNames)
		targets = ids
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, nil, false, err
	}

	if cacheHit {
		metrics.TraceCacheHitsTotal.Inc()
		var cfgAny any
		if len(cached.Config) > 0 {
			cfgAny = cached.Config
		}
		return cfgAny, cached.Trace, targets, true, nil
	}
	metrics.TraceCacheMissesTotal.Inc()

	cfg, trace, err = resolveDomain(ctx, deps, req, intent, targets)
	if err != nil {
		return nil, nil, targets, false, err
	}

	if body, merr := json.Marshal(cachedTrace{Config: rawJSON(cfg), Trace: trace}); merr == nil {
		_ = store.Set(ctx, key, body, ttl)
	}
	return cfg, trace, targets, false, nil
}

// resolveDomain dispatches to the filter chain, the block inspector, or
// the import collector depending on the parsed intent's domain.
func resolveDomain(ctx context.Context, deps domainDeps, req Request, intent model.ParsedIntent, targets []int) (any, []model.TraceStep, error) {
	prefix := deps.tenantID + "."

	if intent.Domain == model.DomainAtdwImport {
		cfg, trace, err := importcollect.Collect(ctx, deps.db, prefix, intent, deps.nearbyWindow)
		if err != nil {
			return nil, nil, err
		}
		return cfg, trace, nil
	}

	sc, err := deps.schema.Get(ctx, deps.tenantID, deps.db)
	if err != nil {
		return nil, nil, err
	}

	pageURI := intent.PageURI
	if pageURI == "" {
		pageURI = req.PageURI
	}

	blocks, err := query.ResolveBlocks(ctx, deps.db, sc, deps.tenantID, pageURI, intent.ComponentType)
	if err != nil {
		return nil, nil, err
	}
	if len(blocks) == 0 {
		return nil, nil, nil
	}

	idx := req.ComponentIndex
	if idx < 0 || idx >= len(blocks) {
		idx = 0
	}
	block := blocks[idx]

	if block.BlockType == "products" {
		cfg, trace, err := filterchain.Run(ctx, deps.db, sc, prefix, block, targets)
		if err != nil {
			return nil, nil, err
		}
		return cfg, trace, nil
	}

	cfg, step := blockinspect.Inspect(block, targets)
	return cfg, []model.TraceStep{step}, nil
}

// rawJSON marshals v, falling back to a JSON null on failure so a cache
// write never blocks on an unmarshalable config.
func rawJSON(v any) json.RawMessage {
	if v == nil {
		return json.RawMessage("null")
	}
	b, err := json.Marshal(v)
	if err != nil {
		return json.RawMessage("null")
	}
	return b
}
