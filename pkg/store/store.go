// Package store provides a minimal mutable state container.
//
// A Store owns a snapshot of type S. Every mutation replaces the snapshot
// and notifies subscribers in registration order. Snapshots are immutable by
// convention: mutate by producing a new value, never by editing the value
// returned from GetState.
//
//	s := store.New(Counter{})
//	unsub := s.Subscribe(func() { fmt.Println(s.GetState().Count) })
//	s.Update(func(c Counter) Counter { c.Count++; return c })
//	unsub()
package store

import (
	"sync"

	"github.com/go-drift/storesync/internal/identity"
)

// Action is an opaque message interpreted by a Reducer.
type Action any

// Reducer computes the next snapshot for an action.
type Reducer[S any] func(state S, action Action) S

// Handle is the read side of a store: a snapshot getter plus change
// notification. Bindings only ever see a Handle.
type Handle[S any] interface {
	GetState() S
	Subscribe(listener func()) (unsubscribe func())
}

// Option configures a Store.
type Option[S any] func(*Store[S])

// WithReducer installs the reducer used by Dispatch.
func WithReducer[S any](r Reducer[S]) Option[S] {
	return func(s *Store[S]) { s.reducer = r }
}

// WithEquality makes the store skip notification when a mutation produces a
// snapshot that equal reports as unchanged.
func WithEquality[S any](equal func(a, b S) bool) Option[S] {
	return func(s *Store[S]) { s.equal = equal }
}

// SkipIdentical skips notification when the new snapshot is identical to the
// current one.
func SkipIdentical[S any]() Option[S] {
	return WithEquality(func(a, b S) bool { return identity.Is(a, b) })
}

type listener struct {
	fn func()
}

// Store is a thread-safe state container.
type Store[S any] struct {
	mu        sync.RWMutex
	state     S
	listeners []*listener
	reducer   Reducer[S]
	equal     func(a, b S) bool
}

// New creates a store holding initial.
func New[S any](initial S, opts ...Option[S]) *Store[S] {
	s := &Store[S]{state: initial}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetState returns the current snapshot.
func (s *Store[S]) GetState() S {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Subscribe registers listener and returns a function that removes it.
// The returned function is idempotent.
func (s *Store[S]) Subscribe(fn func()) func() {
	if fn == nil {
		return func() {}
	}
	l := &listener{fn: fn}

	s.mu.Lock()
	s.listeners = append(s.listeners, l)
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			for i, existing := range s.listeners {
				if existing == l {
					s.listeners = append(s.listeners[:i:i], s.listeners[i+1:]...)
					return
				}
			}
		})
	}
}

// ListenerCount returns the number of registered listeners.
func (s *Store[S]) ListenerCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.listeners)
}

// SetState replaces the snapshot and notifies listeners.
func (s *Store[S]) SetState(next S) {
	s.Update(func(S) S { return next })
}

// Update replaces the snapshot with transform(current) and notifies
// listeners. transform runs under the store lock and must not call back into
// the store.
func (s *Store[S]) Update(transform func(S) S) {
	s.mu.Lock()
	prev := s.state
	next := transform(prev)
	if s.equal != nil && s.equal(prev, next) {
		s.mu.Unlock()
		return
	}
	s.state = next
	listeners := s.listeners
	s.mu.Unlock()

	for _, l := range listeners {
		l.fn()
	}
}

// Dispatch runs the reducer and returns the action. Without a reducer the
// state is left untouched and no listener fires.
func (s *Store[S]) Dispatch(action Action) Action {
	if s.reducer == nil {
		return action
	}
	s.Update(func(state S) S { return s.reducer(state, action) })
	return action
}
