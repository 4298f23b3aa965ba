// Package schema implements the Schema Resolver (C1): discover a tenant's
// field and section identifiers plus its derived matrix-content table
// name, and cache the result behind a TTL.
//
// getSchema reads schema:{tenant} from the KV store; on a miss it rebuilds
// by querying the tenant's own database and writes the result back with
// the configured TTL. Concurrent misses for the same tenant are coalesced
// with singleflight so only one rebuild hits the database.
package schema

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"golang.org/x/sync/singleflight"

	"github.com/roamdigital/explainer/internal/errs"
	"github.com/roamdigital/explainer/internal/kv"
	"github.com/roamdigital/explainer/internal/metrics"
	"github.com/roamdigital/explainer/internal/model"
)

// Resolver is the C1 entry point. One Resolver is shared across all
// tenants; the KV store and singleflight group key everything by tenant.
type Resolver struct {
	store kv.Store
	ttl   time.Duration
	sfg   singleflight.Group
}

// New returns a Resolver that caches rebuilt schemas for ttl.
func New(store kv.Store, ttl time.Duration) *Resolver {
	return &Resolver{store: store, ttl: ttl}
}

// Get returns tenant's SchemaCache, serving it from the KV store when
// fresh and rebuilding it from db otherwise. db must already be the
// tenant's own connection pool; Get never resolves a tenant identifier
// itself.
func (r *Resolver) Get(ctx context.Context, tenant string, db *sqlx.DB) (*model.SchemaCache, error) {
	key := cacheKey(tenant)

	raw, ok, err := r.store.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("schema cache read: %w", errs.DatabaseFailure)
	}
	if ok {
		var sc model.SchemaCache
		if err := json.Unmarshal(raw, &sc); err == nil {
			metrics.SchemaCacheHitsTotal.Inc()
			return &sc, nil
		}
		// Corrupt cache entry; fall through to rebuild.
	}

	metrics.SchemaCacheMissesTotal.Inc()

	v, err, _ := r.sfg.Do(tenant, func() (interface{}, error) {
		sc, err := rebuild(ctx, db, tenant)
		if err != nil {
			return nil, err
		}

		body, err := json.Marshal(sc)
		if err == nil {
			_ = r.store.Set(ctx, key, body, r.ttl)
		}
		return sc, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*model.SchemaCache), nil
}

// Invalidate deletes the cached schema for tenant, forcing the next Get to
// rebuild. Backs the /api/refresh-schema endpoint.
func (r *Resolver) Invalidate(ctx context.Context, tenant string) error {
	return r.store.Delete(ctx, cacheKey(tenant))
}

func cacheKey(tenant string) string {
	return "schema:" + tenant
}
