// Package cache stores computed resize plans.
//
// Resize plans are pure functions of the board's tiles, the grid size, the
// request and the relocation strategy. The exhaustive strategies can be
// expensive on crowded boards, so the dashboard service keys their results
// with [PlanKey] and keeps them in a Cache.
//
// Implementations:
//   - [NullCache]: never stores anything (greedy planning, tests)
//   - [FileCache]: one file per entry under the user cache dir (CLI)
//   - [RedisCache]: shared entries for API deployments
//
// Cache failures are never fatal to callers: a failed Get is a miss and a
// failed Set only costs the next lookup.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value cache with optional expiry.
type Cache interface {
	// Get returns the cached value. The boolean is false on a miss.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value. A zero ttl never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Clearer is implemented by caches that can drop every entry.
type Clearer interface {
	Clear(ctx context.Context) error
}

// DefaultPlanTTL bounds how long a plan stays cached.
const DefaultPlanTTL = 24 * time.Hour
