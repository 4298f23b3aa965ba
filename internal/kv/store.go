// Package kv defines the bounded key/value store the explanation pipeline
// treats as an external collaborator: schema cache entries, trace cache
// entries, and the hostname→tenant lookup all go through this interface.
//
// Two implementations are provided. Memory is a TTL-aware in-process map,
// useful for single-instance deployments and tests. Redis backs the same
// interface for multi-instance deployments where the schema and trace
// caches must be shared across processes.
//
// Contract: values are immutable once written (callers overwrite with a
// new value rather than mutate in place); Set is last-write-wins; Get on a
// missing or expired key returns ok=false, not an error.
package kv

import (
	"context"
	"time"
)

// Store is the bounded key/value cache the pipeline depends on.
type Store interface {
	// Get returns the raw bytes stored under key, or ok=false if absent or
	// expired. A transport error is returned as err; a cache miss is not.
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)

	// Set stores value under key with the given TTL. ttl <= 0 means "no
	// expiry" (callers in this service always pass a positive TTL).
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
}
