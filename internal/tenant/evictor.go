// evictor.go houses the eviction loop for Cache. Every EvictInterval it
// scans the map and removes:
//
//   - pools idle longer than idleTTL
//   - least-recently-used pools when map size exceeds maxEntries
//
// Each eviction event is logged and updates Prometheus counters.
package tenant

import (
	"sort"
	"sync/atomic"
	"time"

	"github.com/roamdigital/explainer/internal/metrics"
)

func (c *Cache) evictLoop() {
	for range c.evictTicker.C {
		now := time.Now().UnixNano()
		var count int

		// ----------------------------------------------------------------
		// Idle eviction pass
		// ----------------------------------------------------------------
		c.m.Range(func(key, value any) bool {
			count++
			ent := value.(*entry)
			idle := time.Duration(now-atomic.LoadInt64(&ent.lastSeen)) * time.Nanosecond
			if idle > c.idleTTL {
				_ = ent.pool.Close()
				c.m.Delete(key)
				c.log.Infow("tenant evicted (idle)", "tenant", key, "idle", idle.Truncate(time.Second))
				metrics.TenantPoolEvictTotal.Inc()
				metrics.ActiveTenantPools.Dec()
			}
			return true
		})

		// ----------------------------------------------------------------
		// LRU eviction pass
		// ----------------------------------------------------------------
		if c.maxEntries > 0 && count > c.maxEntries {
			type kv struct {
				key string
				at  int64
			}
			var all []kv
			c.m.Range(func(key, value any) bool {
				ent := value.(*entry)
				all = append(all, kv{key: key.(string), at: ent.lastSeen})
				return true
			})
			sort.Slice(all, func(i, j int) bool { return all[i].at < all[j].at })
			for i := 0; i < len(all)-c.maxEntries; i++ {
				if v, ok := c.m.Load(all[i].key); ok {
					_ = v.(*entry).pool.Close()
					c.m.Delete(all[i].key)
					c.log.Infow("tenant evicted (LRU pressure)", "tenant", all[i].key)
					metrics.TenantPoolEvictTotal.Inc()
					metrics.ActiveTenantPools.Dec()
				}
			}
		}
	}
}
