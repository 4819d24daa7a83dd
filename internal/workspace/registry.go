package workspace

import (
	"fmt"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Listener observes every state change of every store in a Registry.
type Listener func(userID string, s State)

type Option func(*Registry)

func WithListener(l Listener) Option {
	return func(r *Registry) { r.listeners = append(r.listeners, l) }
}

// Registry holds one Store per user in a bounded LRU. An evicted user
// starts again from the seed state on their next request.
type Registry struct {
	mu        sync.Mutex
	cache     *lru.Cache[string, *Store]
	seed      func() State
	listeners []Listener
}

func NewRegistry(size int, seed func() State, opts ...Option) (*Registry, error) {
	cache, err := lru.New[string, *Store](size)
	if err != nil {
		return nil, fmt.Errorf("workspace cache: %w", err)
	}
	if seed == nil {
		seed = func() State { return NewState(nil, nil) }
	}
	r := &Registry{cache: cache, seed: seed}
	for _, o := range opts {
		o(r)
	}
	return r, nil
}

// For returns the user's store, creating it from the seed on first use.
func (r *Registry) For(userID string) *Store {
	r.mu.Lock()
	defer r.mu.Unlock()

	if st, ok := r.cache.Get(userID); ok {
		return st
	}
	st := NewStore(r.seed())
	for _, l := range r.listeners {
		st.Subscribe(func(s State) { l(userID, s) })
	}
	r.cache.Add(userID, st)
	return st
}

// Dispatch is shorthand for For(userID).Dispatch(a).
func (r *Registry) Dispatch(userID string, a Action) State {
	return r.For(userID).Dispatch(a)
}

func (r *Registry) Len() int {
	return r.cache.Len()
}

// LastSignalsSeen returns the user's feed marker, or "" if never set.
func (r *Registry) LastSignalsSeen(userID string) string {
	return r.For(userID).GetState().LastSignalsSeenAt
}

// MarkSignalsSeen records at as the user's feed marker and returns it in
// its stored form.
func (r *Registry) MarkSignalsSeen(userID string, at time.Time) string {
	return r.Dispatch(userID, MarkSignalsSeen{At: at}).LastSignalsSeenAt
}
