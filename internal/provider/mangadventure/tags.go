package mangadventure

import (
	"context"
	"slices"
	"sync"

	"golang.org/x/sync/singleflight"

	"mangadventure/internal/media"
)

// tagCache holds the category section for the adapter's lifetime. The
// taxonomy rarely changes, so there is no expiry. Concurrent misses share a
// single fetch; failures are not cached.
type tagCache struct {
	group singleflight.Group

	mu      sync.RWMutex
	section *media.TagSection
}

func (c *tagCache) get(ctx context.Context, fetch func(context.Context) (media.TagSection, error)) (media.TagSection, error) {
	if s, ok := c.cached(); ok {
		return s, nil
	}

	v, err, _ := c.group.Do("categories", func() (any, error) {
		if s, ok := c.cached(); ok {
			return s, nil
		}
		// The fetch is shared, so one caller giving up must not fail the rest.
		s, err := fetch(context.WithoutCancel(ctx))
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.section = &s
		c.mu.Unlock()
		return s, nil
	})
	if err != nil {
		return media.TagSection{}, err
	}
	return cloneSection(v.(media.TagSection)), nil
}

func (c *tagCache) cached() (media.TagSection, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.section == nil {
		return media.TagSection{}, false
	}
	return cloneSection(*c.section), true
}

func cloneSection(s media.TagSection) media.TagSection {
	s.Tags = slices.Clone(s.Tags)
	return s
}
