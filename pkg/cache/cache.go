// Package cache stores parsed inputs between runs.
//
// # Overview
//
// A [Cache] maps string keys to byte values with an optional time to live.
// Two implementations are provided:
//
//   - [FileCache] keeps one JSON file per entry under a directory and is
//     what the command line uses, by default under the user cache directory.
//   - [NullCache] stores nothing and is used when caching is disabled.
//
// # Keys
//
// Cached values are keyed by the content they were derived from, never by
// file name or modification time, so an edited input misses the cache
// naturally. [TechKey] builds the key of a parsed LEF file from its bytes:
//
//	key := cache.TechKey(data)
//	if b, ok, _ := c.Get(ctx, key); ok {
//	    // decode b
//	}
package cache

import (
	"context"
	"time"
)

// Cache is a byte store with expiring entries. Implementations must be safe
// for use by one process at a time.
type Cache interface {
	// Get returns the value for key. A missing or expired entry is a miss,
	// not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key. A non-positive ttl never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Clear removes every entry.
	Clear(ctx context.Context) error
	// Close releases resources held by the cache.
	Close() error
}
