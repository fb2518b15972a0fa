package partialamm

import (
	"errors"
	"fmt"
	"sync"
)

var (
	// ErrUnnamedPool is returned when a pool without a name is registered.
	ErrUnnamedPool = errors.New("pool has no name")
	// ErrDuplicatePool is returned when a name is already registered.
	ErrDuplicatePool = errors.New("pool already registered")
)

// Registry is a concurrency-safe set of ReservePools keyed by name. It guards
// membership only; each pool serializes its own trades.
type Registry struct {
	mu    sync.RWMutex
	pools map[string]*ReservePool
	order []string // registration order
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		pools: make(map[string]*ReservePool),
	}
}

// --- Write Methods ---

// Add registers pool under its name.
func (r *Registry) Add(pool *ReservePool) error {
	name := pool.Name()
	if name == "" {
		return fmt.Errorf("%w: id %s", ErrUnnamedPool, pool.ID())
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.pools[name]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicatePool, name)
	}
	r.pools[name] = pool
	r.order = append(r.order, name)
	return nil
}

// Remove unregisters the named pool and reports whether it was present.
func (r *Registry) Remove(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.pools[name]; !exists {
		return false
	}
	delete(r.pools, name)
	for i, n := range r.order {
		if n == name {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return true
}

// --- Read Methods ---

// Get returns the named pool.
func (r *Registry) Get(name string) (*ReservePool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	pool, ok := r.pools[name]
	return pool, ok
}

// Names returns the registered names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, len(r.order))
	copy(names, r.order)
	return names
}

// Len returns the number of registered pools.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.pools)
}

// View returns a snapshot of every registered pool, sorted by name. Each pool
// is read under its own lock, so a trade running concurrently on another pool
// may or may not be reflected.
func (r *Registry) View() []Pool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	views := make([]Pool, 0, len(r.pools))
	for _, pool := range r.pools {
		views = append(views, pool.View())
	}
	sortByName(views)
	return views
}
