package resolve

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/sells-group/property-cli/internal/model"
)

// Cached memoizes successful lookups so repeated queries in one session
// return identical results. Concurrent identical queries share one call.
// Errors are not cached.
type Cached struct {
	next  Resolver
	group singleflight.Group

	mu      sync.RWMutex
	entries map[string]*model.Resolution
}

// NewCached wraps next.
func NewCached(next Resolver) *Cached {
	return &Cached{next: next, entries: make(map[string]*model.Resolution)}
}

// Resolve implements Resolver.
func (c *Cached) Resolve(ctx context.Context, q Query) (*model.Resolution, error) {
	key := q.key()
	c.mu.RLock()
	res, ok := c.entries[key]
	c.mu.RUnlock()
	if ok {
		return copyResolution(res), nil
	}

	v, err, _ := c.group.Do(key, func() (any, error) {
		res, err := c.next.Resolve(ctx, q)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.entries[key] = res
		c.mu.Unlock()
		return res, nil
	})
	if err != nil {
		return nil, err
	}
	return copyResolution(v.(*model.Resolution)), nil
}

// Len returns the number of cached entries.
func (c *Cached) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Reset drops every cached entry.
func (c *Cached) Reset() {
	c.mu.Lock()
	c.entries = make(map[string]*model.Resolution)
	c.mu.Unlock()
}

func copyResolution(r *model.Resolution) *model.Resolution {
	if r == nil {
		return nil
	}
	out := *r
	out.CommuteMinutes = clonePtr(r.CommuteMinutes)
	out.GrammarSchoolDistanceKM = clonePtr(r.GrammarSchoolDistanceKM)
	out.Latitude = clonePtr(r.Latitude)
	out.Longitude = clonePtr(r.Longitude)
	return &out
}

func clonePtr(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
