package cart

import (
	"container/list"
	"context"
	"fmt"
	"sync"

	"github.com/smehta-dev/storefront-backend/pkg/logger"
)

// defaultRegistryCapacity bounds how many session stores stay resident.
// Evicted carts are not lost: state persists after every mutation and the
// next access rehydrates it.
const defaultRegistryCapacity = 4096

// Registry hands out exactly one Store per session so all mutations for a
// session funnel through the same lock. Persisted state is rehydrated on the
// first access; a failed load degrades to an empty cart rather than blocking
// the shopper. Residency is LRU-bounded so anonymous traffic cannot grow the
// map without limit.
type Registry struct {
	mu        sync.Mutex
	stores    map[string]*list.Element
	order     *list.List
	capacity  int
	persister Persister
	logg      *logger.Logger
}

type registryEntry struct {
	sessionID string
	store     *Store
}

// RegistryOption adjusts registry construction.
type RegistryOption func(*Registry)

// WithCapacity overrides the resident store bound.
func WithCapacity(n int) RegistryOption {
	return func(r *Registry) {
		if n > 0 {
			r.capacity = n
		}
	}
}

// NewRegistry builds a registry over the configured persistence backend.
func NewRegistry(persister Persister, logg *logger.Logger, opts ...RegistryOption) (*Registry, error) {
	if persister == nil {
		return nil, fmt.Errorf("cart persister required")
	}
	registry := &Registry{
		stores:    make(map[string]*list.Element),
		order:     list.New(),
		capacity:  defaultRegistryCapacity,
		persister: persister,
		logg:      logg,
	}
	for _, opt := range opts {
		opt(registry)
	}
	return registry, nil
}

// Store returns the session's cart store, rehydrating it if needed.
func (r *Registry) Store(ctx context.Context, sessionID string) *Store {
	r.mu.Lock()
	defer r.mu.Unlock()

	if elem, ok := r.stores[sessionID]; ok {
		r.order.MoveToFront(elem)
		return elem.Value.(*registryEntry).store
	}

	state, found, err := r.persister.Load(ctx, sessionID)
	if err != nil && r.logg != nil {
		sctx := r.logg.WithSessionID(ctx, sessionID)
		r.logg.Error(sctx, "cart.rehydrate_failed", err)
	}
	if !found {
		state = State{Items: []LineItem{}}
	}

	store := NewStore(sessionID, state, r.persister, r.logg)
	r.stores[sessionID] = r.order.PushFront(&registryEntry{sessionID: sessionID, store: store})
	r.evictOverflowLocked()
	return store
}

// Evict drops the cached store for a session; the next access rehydrates.
func (r *Registry) Evict(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if elem, ok := r.stores[sessionID]; ok {
		r.order.Remove(elem)
		delete(r.stores, sessionID)
	}
}

// Len reports how many stores are resident.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.order.Len()
}

func (r *Registry) evictOverflowLocked() {
	for r.order.Len() > r.capacity {
		oldest := r.order.Back()
		if oldest == nil {
			return
		}
		entry := oldest.Value.(*registryEntry)
		r.order.Remove(oldest)
		delete(r.stores, entry.sessionID)
	}
}
