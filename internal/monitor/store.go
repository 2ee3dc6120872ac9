package monitor

import (
	"sync"

	"github.com/slok/taskmon/internal/model"
)

// StatusChange is emitted when the status of the stored snapshot changes.
// Previous is empty when there was no snapshot before.
type StatusChange struct {
	TaskID   string
	Previous model.TaskStatus
	Current  model.TaskStatus
}

// Store holds the last known snapshot of a task and the last error.
type Store struct {
	mu        sync.RWMutex
	snapshot  *model.TaskSnapshot
	lastError string

	subsMu sync.Mutex
	subs   []subscriber[StatusChange]
	nextID int
}

type subscriber[T any] struct {
	id int
	fn func(T)
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{}
}

// Apply replaces the stored snapshot. Subscribers are notified before it returns
// when the status changed.
//
// Snapshots with an unknown status return a *DecodeError. Snapshots of the same
// task that are older than the stored one return ErrStaleSnapshot. In both cases
// the stored snapshot is kept.
func (s *Store) Apply(snap model.TaskSnapshot) error {
	if !snap.Status.Valid() {
		return &DecodeError{TaskID: snap.ID, Status: string(snap.Status)}
	}

	s.mu.Lock()
	prev := s.snapshot
	if prev != nil && prev.ID == snap.ID && isStale(*prev, snap) {
		s.mu.Unlock()
		return ErrStaleSnapshot
	}

	var prevStatus model.TaskStatus
	if prev != nil {
		prevStatus = prev.Status
	}
	cp := snap.Copy()
	s.snapshot = &cp
	s.lastError = ""
	s.mu.Unlock()

	if prevStatus != snap.Status {
		s.emit(StatusChange{TaskID: snap.ID, Previous: prevStatus, Current: snap.Status})
	}

	return nil
}

func isStale(prev, next model.TaskSnapshot) bool {
	if prev.Sequence > 0 && next.Sequence > 0 && next.Sequence < prev.Sequence {
		return true
	}

	// A finished task never goes back, only a new task can.
	return prev.Status.Terminal() && !next.Status.Terminal()
}

// RecordError sets the last error, the snapshot is untouched.
func (s *Store) RecordError(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastError = msg
}

// ClearError removes the last error.
func (s *Store) ClearError() {
	s.RecordError("")
}

// Clear resets the store to its initial state.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot = nil
	s.lastError = ""
}

// Snapshot returns a copy of the stored snapshot, nil if there is none.
func (s *Store) Snapshot() *model.TaskSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.snapshot == nil {
		return nil
	}
	cp := s.snapshot.Copy()
	return &cp
}

// LastError returns the last recorded error, empty if none.
func (s *Store) LastError() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastError
}

// Subscribe registers fn to be called on every status change. The returned
// function removes the subscription.
func (s *Store) Subscribe(fn func(StatusChange)) (unsubscribe func()) {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()

	s.nextID++
	id := s.nextID
	s.subs = append(s.subs, subscriber[StatusChange]{id: id, fn: fn})

	return func() {
		s.subsMu.Lock()
		defer s.subsMu.Unlock()
		s.subs = removeSubscriber(s.subs, id)
	}
}

func (s *Store) emit(ev StatusChange) {
	s.subsMu.Lock()
	subs := make([]subscriber[StatusChange], len(s.subs))
	copy(subs, s.subs)
	s.subsMu.Unlock()

	for _, sub := range subs {
		sub.fn(ev)
	}
}

func removeSubscriber[T any](subs []subscriber[T], id int) []subscriber[T] {
	for i, sub := range subs {
		if sub.id == id {
			return append(subs[:i:i], subs[i+1:]...)
		}
	}
	return subs
}
