// Cache implements a concurrency-safe, lazy-loading map of per-tenant
// database connection pools. Each pool is opened from the control-plane
// tenant table the first time its identifier is requested, and stored in
// a sync.Map keyed by that identifier. A background evictor goroutine
// (see evictor.go) periodically removes idle pools and trims the map to
// the maxEntries limit passed to New via LRU.
//
// This file adds comprehensive logging. Every major lifecycle event
// (loading, not-found, load error, online, idle evict, LRU evict) is
// written through the *zap.SugaredLogger provided to New.
package tenant

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/roamdigital/explainer/internal/metrics"
	"github.com/roamdigital/explainer/internal/vault"
)

// --------------------------------------------------------------------
// Tunables
// --------------------------------------------------------------------

const (
	IdleTTL       = 30 * time.Minute // evict pool after this idle duration
	MaxEntries    = 100              // cap cache; 0 disables size eviction
	EvictInterval = 5 * time.Minute  // evictor scan cadence
)

// --------------------------------------------------------------------
// Errors
// --------------------------------------------------------------------

var ErrNotFound = errors.New("tenant not found")

// --------------------------------------------------------------------
// Cache definition
// --------------------------------------------------------------------

type Cache struct {
	globalDB    *sqlx.DB
	vault       *vault.Client
	log         *zap.SugaredLogger
	sfg         singleflight.Group // coalesces concurrent loads per tenant
	m           sync.Map           // tenant identifier → *entry
	evictTicker *time.Ticker
	idleTTL     time.Duration
	maxEntries  int
}

// New builds a Cache and starts its background evictor.
func New(global *sqlx.DB, vcli *vault.Client, idleTTL time.Duration, maxEntries int, lg *zap.SugaredLogger) *Cache {
	c := &Cache{
		globalDB:   global,
		vault:      vcli,
		idleTTL:    idleTTL,
		maxEntries: maxEntries,
		log:        lg,
	}
	c.evictTicker = time.NewTicker(EvictInterval)
	go c.evictLoop()
	return c
}

// Get looks up a tenant identifier in the cache, loading it on demand.
// The call is entirely thread-safe and updates the entry's last-seen
// timestamp each hit. The caller must already have validated tenantID
// via Validate.
func (c *Cache) Get(ctx context.Context, tenantID string) (*Pool, error) {
	// Fast-path: present in map.
	if v, ok := c.m.Load(tenantID); ok {
		ent := v.(*entry)
		atomic.StoreInt64(&ent.lastSeen, time.Now().UnixNano())
		return ent.pool, nil
	}

	// Slow-path: singleflight load so only one goroutine hits the DB.
	v, err, _ := c.sfg.Do(tenantID, func() (interface{}, error) {
		// Double-check after barrier to avoid duplicate load.
		if v, ok := c.m.Load(tenantID); ok {
			ent := v.(*entry)
			atomic.StoreInt64(&ent.lastSeen, time.Now().UnixNano())
			return ent.pool, nil
		}

		c.log.Debugw("tenant loading", "tenant", tenantID)

		pool, err := loadTenantDB(context.Background(), c.globalDB, tenantID, c.vault)
		if err == ErrNotFound {
			c.log.Warnw("tenant not found in tenant table", "tenant", tenantID)
			metrics.TenantPoolLoadErrorsTotal.Inc()
			return nil, err
		}
		if err != nil {
			c.log.Errorw("tenant load error", "tenant", tenantID, "err", err)
			metrics.TenantPoolLoadErrorsTotal.Inc()
			return nil, err
		}

		ent := &entry{
			pool:     pool,
			lastSeen: time.Now().UnixNano(),
		}
		c.m.Store(tenantID, ent)

		c.log.Infow("tenant online", "tenant", tenantID)
		metrics.TenantPoolLoadTotal.Inc()
		metrics.ActiveTenantPools.Inc()
		return pool, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Pool), nil
}
