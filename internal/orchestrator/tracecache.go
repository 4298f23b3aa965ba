package orchestrator

import "fmt"

// traceCacheKey mirrors schema's cacheKey convention: a fixed, colon-
// separated key an operator can read at a glance in Redis. ATDW-domain
// lookups have no page/component, so they key on the product identifier
// instead, under a fixed "atdw" page slot.
func traceCacheKey(tenantID, pageURI, componentType string, blockIndex int) string {
	return fmt.Sprintf("trace:%s:%s:%s:%d", tenantID, pageURI, componentType, blockIndex)
}
