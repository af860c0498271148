package provider

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"mangadventure/internal/provider/mangadventure"
	"mangadventure/internal/site"
)

// Registry holds one provider per configured site, keyed by site.Key.
type Registry struct {
	mu        sync.Mutex
	providers map[string]Provider
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{providers: make(map[string]Provider)}
}

// NewRegistryFromSites builds a MangAdventure adapter for each site. opts
// apply to every adapter.
func NewRegistryFromSites(sites []site.Site, opts ...mangadventure.Option) (*Registry, error) {
	r := NewRegistry()
	for _, s := range sites {
		s = s.WithDefaults()
		if err := s.Validate(); err != nil {
			r.Close()
			return nil, err
		}
		if err := r.Register(mangadventure.New(s, opts...)); err != nil {
			r.Close()
			return nil, err
		}
	}
	return r, nil
}

// Register adds p. A second provider for the same site key is closed and
// rejected.
func (r *Registry) Register(p Provider) error {
	key := p.Info().Key()
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.providers[key]; exists {
		p.Close()
		return fmt.Errorf("provider for site %q already registered", p.Info().Name)
	}
	r.providers[key] = p
	return nil
}

// Get returns the provider for a site name in any spelling that
// normalizes to the same key.
func (r *Registry) Get(name string) (Provider, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.providers[site.Key(name)]
	if !ok {
		return nil, fmt.Errorf("unknown site %q (available: %s)", name, strings.Join(r.namesLocked(), ", "))
	}
	return p, nil
}

// All returns every provider, sorted by site name.
func (r *Registry) All() []Provider {
	r.mu.Lock()
	defer r.mu.Unlock()
	list := make([]Provider, 0, len(r.providers))
	for _, p := range r.providers {
		list = append(list, p)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Info().Name < list[j].Info().Name })
	return list
}

func (r *Registry) namesLocked() []string {
	names := make([]string, 0, len(r.providers))
	for _, p := range r.providers {
		names = append(names, p.Info().Name)
	}
	sort.Strings(names)
	return names
}

// Close closes every registered provider.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.providers {
		p.Close()
	}
}
