package workspace

import "sync"

// Store is a single-writer state container. Dispatch calls are serialized;
// GetState never observes a half-applied action.
type Store struct {
	mu     sync.RWMutex
	state  State
	subs   map[int]func(State)
	nextID int
}

func NewStore(initial State) *Store {
	return &Store{
		state: initial.clone(),
		subs:  make(map[int]func(State)),
	}
}

// GetState returns a copy of the current state.
func (s *Store) GetState() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.clone()
}

// Dispatch applies a, notifies subscribers while still holding the write
// lock and returns the new state. Subscribers must not call back into the
// same store.
func (s *Store) Dispatch(a Action) State {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = Reduce(s.state, a)
	for _, fn := range s.subs {
		fn(s.state.clone())
	}
	return s.state.clone()
}

// Subscribe registers fn for every future state change. The returned func
// removes it and is safe to call more than once.
func (s *Store) Subscribe(fn func(State)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}
