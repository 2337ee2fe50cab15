// Package store holds the console's state containers. Each container owns
// its state exclusively, applies mutations under a lock and hands cloned
// snapshots to subscribers after every mutation, in mutation order.
package store

import (
	"sync"
)

// Listener receives a snapshot of the state after a mutation
type Listener[S any] func(state S)

// Store is a mutex-guarded value with post-mutation notification
type Store[S any] struct {
	mu        sync.Mutex
	state     S
	clone     func(S) S
	listeners map[int]Listener[S]
	nextID    int

	// notifyMu is taken before mu is released so listeners observe
	// mutations in the order they were applied
	notifyMu sync.Mutex
}

// New creates a store holding initial. clone must deep-copy S.
func New[S any](initial S, clone func(S) S) *Store[S] {
	return &Store[S]{
		state:     initial,
		clone:     clone,
		listeners: make(map[int]Listener[S]),
	}
}

// Get returns a copy of the current state
func (s *Store[S]) Get() S {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clone(s.state)
}

// Read runs fn against the live state under the lock.
// fn must not retain or modify the state.
func (s *Store[S]) Read(fn func(state *S)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.state)
}

// Update applies fn to the state and notifies subscribers.
// Listeners must not call Update on the same store.
func (s *Store[S]) Update(fn func(state *S)) {
	s.mu.Lock()
	fn(&s.state)
	if len(s.listeners) == 0 {
		s.mu.Unlock()
		return
	}
	snapshot := s.clone(s.state)
	listeners := make([]Listener[S], 0, len(s.listeners))
	for id := 0; id < s.nextID; id++ {
		if l, ok := s.listeners[id]; ok {
			listeners = append(listeners, l)
		}
	}
	s.notifyMu.Lock()
	s.mu.Unlock()
	defer s.notifyMu.Unlock()

	for _, l := range listeners {
		l(snapshot)
	}
}

// Subscribe registers fn for post-mutation snapshots.
// The returned function removes the subscription.
func (s *Store[S]) Subscribe(fn Listener[S]) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.listeners, id)
		})
	}
}

func cloneSet(in map[string]struct{}) map[string]struct{} {
	out := make(map[string]struct{}, len(in))
	for k := range in {
		out[k] = struct{}{}
	}
	return out
}
