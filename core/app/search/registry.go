package search

import (
	"context"
	"sort"
	"sync"
)

// SearchFunc returns at most limit results for query
type SearchFunc func(ctx context.Context, query string, limit int) ([]SearchResult, error)

// SearchRegistry holds the searchable modules by name
type SearchRegistry struct {
	mu    sync.RWMutex
	funcs map[string]SearchFunc
}

func NewSearchRegistry() *SearchRegistry {
	return &SearchRegistry{
		funcs: make(map[string]SearchFunc),
	}
}

// Register adds or replaces the search function of a module
// Example: registry.Register("clients", clientSearch)
func (r *SearchRegistry) Register(name string, fn SearchFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.funcs[name] = fn
}

// Get retrieves the search function of a module
func (r *SearchRegistry) Get(name string) (SearchFunc, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.funcs[name]
	return fn, ok
}

// GetNames returns all registered module names in sorted order
func (r *SearchRegistry) GetNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.funcs))
	for name := range r.funcs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
