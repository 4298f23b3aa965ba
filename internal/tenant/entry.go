// internal/tenant/entry.go
//
// Tenant cache entry and aggregate.
//
// A live Pool aggregates what the query layer needs for one tenant: its
// control-plane row and an open connection pool scoped to that tenant's
// content database.

package tenant

import (
	"github.com/jmoiron/sqlx"

	"github.com/roamdigital/explainer/internal/tenant/meta"
)

// entry is the cache wrapper tracked by Cache for LRU/idle eviction.
type entry struct {
	pool     *Pool
	lastSeen int64 // UnixNano
}

// Pool aggregates the per-tenant resources the orchestrator draws on: the
// control-plane row and the content database connection pool. The cache
// shares one Pool across requests until it is evicted.
type Pool struct {
	Meta meta.Record // row from the control-plane `tenant` table
	DB   *sqlx.DB    // per-tenant connection pool
}

// Close is called by the cache evictor on idle or LRU eviction.
func (p *Pool) Close() error { return p.DB.Close() }
