// Package cache wraps a catchment lister with a TTL cache so the resolver
// and monitoring loop do not hit the store on every request.
package cache

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/couchcryptid/flood-risk-engine/internal/domain"
)

const catchmentsKey = "catchments"

// Lister is the upstream source of the catchment collection.
type Lister interface {
	ListCatchments(ctx context.Context) ([]domain.Catchment, error)
}

// CatchmentCache memoizes the full catchment collection for a TTL. The
// collection is small and changes rarely, so it is cached as one entry and
// invalidated wholesale on writes.
type CatchmentCache struct {
	source Lister
	cache  *gocache.Cache
}

// NewCatchmentCache wraps source with the given TTL.
func NewCatchmentCache(source Lister, ttl time.Duration) *CatchmentCache {
	return &CatchmentCache{
		source: source,
		cache:  gocache.New(ttl, 2*ttl),
	}
}

// ListCatchments returns the cached collection, refreshing from the source
// on a miss. Source errors are never cached.
func (c *CatchmentCache) ListCatchments(ctx context.Context) ([]domain.Catchment, error) {
	if cached, ok := c.cache.Get(catchmentsKey); ok {
		return cached.([]domain.Catchment), nil
	}
	catchments, err := c.source.ListCatchments(ctx)
	if err != nil {
		return nil, err
	}
	c.cache.SetDefault(catchmentsKey, catchments)
	return catchments, nil
}

// Invalidate drops the cached collection so the next read refreshes.
func (c *CatchmentCache) Invalidate() {
	c.cache.Delete(catchmentsKey)
}
