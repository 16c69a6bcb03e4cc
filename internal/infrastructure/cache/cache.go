// Package cache provides tag-aware response caching for listing pages.
// Two implementations exist: a Redis-backed store for production and an
// in-process store for single-node deployments and tests.
//
// Tags group cache keys by the entities whose rows appear in the cached
// value; invalidating a tag evicts every key registered under it.
package cache

import (
	"context"
	"time"
)

// Store is the tag-aware cache contract. Get reports a miss with
// (false, nil). All errors are infrastructure failures; callers are
// expected to degrade to direct computation.
type Store interface {
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration, tags ...string) error
	InvalidateTag(ctx context.Context, tag string) error
}
