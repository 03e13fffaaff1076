package tracker

import (
	"context"
	"sync"

	"github.com/jonathan/job-tracker/internal/observability"
	"github.com/jonathan/job-tracker/internal/store"
)

// Registry keeps one Manager per identity. The first request for an identity
// creates its Manager and loads it; a Manager whose loads have all failed is
// loaded again on the next request. Loads through the Registry never overlap
// for the same identity.
type Registry struct {
	store   store.Client
	opts    []Option
	metrics *observability.Metrics

	mu      sync.Mutex
	entries map[string]*entry
}

type entry struct {
	manager *Manager
	loadMu  sync.Mutex
}

// NewRegistry creates a Registry whose Managers share client and opts.
func NewRegistry(client store.Client, opts ...Option) *Registry {
	return &Registry{
		store:   client,
		opts:    opts,
		metrics: buildOptions(opts).metrics,
		entries: make(map[string]*entry),
	}
}

// Get returns ownerID's Manager, loading it if it has never loaded
// successfully. A failed load returns the Manager together with a
// *LoadFailedError so callers can still report IsLoading and retry later.
func (r *Registry) Get(ctx context.Context, ownerID string) (*Manager, error) {
	e, err := r.entry(ownerID)
	if err != nil {
		return nil, err
	}

	e.loadMu.Lock()
	defer e.loadMu.Unlock()
	if e.manager.Loaded() {
		return e.manager, nil
	}
	return e.manager, e.manager.Load(ctx, ownerID)
}

// Reload loads ownerID's Manager from the store exactly once, whether or not
// it has loaded before.
func (r *Registry) Reload(ctx context.Context, ownerID string) (*Manager, error) {
	e, err := r.entry(ownerID)
	if err != nil {
		return nil, err
	}

	e.loadMu.Lock()
	defer e.loadMu.Unlock()
	return e.manager, e.manager.Load(ctx, ownerID)
}

// Forget drops ownerID's Manager on sign-out.
func (r *Registry) Forget(ownerID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, ownerID)
	r.metrics.SetActiveLists(len(r.entries))
}

// Len returns the number of Managers held.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

func (r *Registry) entry(ownerID string) (*entry, error) {
	if ownerID == "" {
		return nil, &ValidationError{Field: "owner_id", Message: "no identity"}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[ownerID]
	if !ok {
		e = &entry{manager: NewManager(r.store, r.opts...)}
		r.entries[ownerID] = e
		r.metrics.SetActiveLists(len(r.entries))
	}
	return e, nil
}
