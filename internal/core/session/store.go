// Package session holds the authenticated identity of one console session
// and decides whether it may enter a guarded area.
//
// The Store is a pure holder: it performs no validation. Every write
// notifies subscribers synchronously, outside the store lock, with the
// snapshot produced by that write.
package session

import (
	"sync"

	"github.com/roots/admin-console/internal/core/domain"
)

// Snapshot is an immutable view of the store.
type Snapshot struct {
	User      *domain.Identity `json:"user"`
	IsLoading bool             `json:"isLoading"`
}

// Listener receives the snapshot produced by a write.
type Listener func(Snapshot)

type subscription struct {
	id uint64
	fn Listener
}

// Store holds the current identity and the bootstrap loading flag.
type Store struct {
	mu        sync.Mutex
	user      *domain.Identity
	loading   bool
	listeners []subscription
	nextID    uint64
}

// NewStore returns a store in its initial state: no identity, loading.
func NewStore() *Store {
	return &Store{loading: true}
}

// Snapshot returns the current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// SetIdentity replaces the identity. A nil identity clears it.
func (s *Store) SetIdentity(user *domain.Identity) {
	s.write(func() {
		if user == nil {
			s.user = nil
			return
		}
		cp := *user
		s.user = &cp
	})
}

// SetLoading sets the bootstrap loading flag.
func (s *Store) SetLoading(loading bool) {
	s.write(func() { s.loading = loading })
}

// Reset clears the identity and the loading flag in a single write. Used on
// logout and when the remote API rejects the session.
func (s *Store) Reset() {
	s.write(func() {
		s.user = nil
		s.loading = false
	})
}

// Subscribe registers fn for every subsequent write. The returned function
// removes the subscription and is safe to call more than once.
func (s *Store) Subscribe(fn Listener) (unsubscribe func()) {
	s.mu.Lock()
	s.nextID++
	id := s.nextID
	s.listeners = append(s.listeners, subscription{id: id, fn: fn})
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			for i, sub := range s.listeners {
				if sub.id == id {
					s.listeners = append(s.listeners[:i:i], s.listeners[i+1:]...)
					return
				}
			}
		})
	}
}

func (s *Store) write(mutate func()) {
	s.mu.Lock()
	mutate()
	snap := s.snapshotLocked()
	listeners := make([]Listener, len(s.listeners))
	for i, sub := range s.listeners {
		listeners[i] = sub.fn
	}
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(snap)
	}
}

func (s *Store) snapshotLocked() Snapshot {
	snap := Snapshot{IsLoading: s.loading}
	if s.user != nil {
		cp := *s.user
		snap.User = &cp
	}
	return snap
}
