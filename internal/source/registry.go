package source

import (
	"fmt"
	"sort"
	"sync"

	"bepinstall/internal/domain"
)

// Registry holds the available resolvers by ID
type Registry struct {
	mu        sync.RWMutex
	resolvers map[string]Resolver
	fallback  string
}

// NewRegistry creates a registry. Hints without a source use the fallback resolver.
func NewRegistry(fallback string) *Registry {
	return &Registry{
		resolvers: make(map[string]Resolver),
		fallback:  fallback,
	}
}

// Register adds a resolver to the registry
func (r *Registry) Register(resolver Resolver) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.resolvers[resolver.ID()] = resolver
}

// Get retrieves a resolver by ID. An empty ID selects the fallback.
func (r *Registry) Get(id string) (Resolver, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if id == "" {
		id = r.fallback
	}
	resolver, ok := r.resolvers[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownSource, id)
	}
	return resolver, nil
}

// List returns all registered resolvers sorted by ID
func (r *Registry) List() []Resolver {
	r.mu.RLock()
	defer r.mu.RUnlock()

	resolvers := make([]Resolver, 0, len(r.resolvers))
	for _, s := range r.resolvers {
		resolvers = append(resolvers, s)
	}
	sort.Slice(resolvers, func(i, j int) bool { return resolvers[i].ID() < resolvers[j].ID() })
	return resolvers
}
