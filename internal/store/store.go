// Package store holds the single authoritative presence record.
//
// Every read and write goes through one mutex, so the record is never observed
// half-updated. Writers that change what the sink should show set the dirty
// flag and post a wake-up on a capacity-1 channel; Snapshot copies the record
// out and clears the flag in the same critical section.
package store

import (
	"fmt"
	"sync"
	"time"

	"github.com/arloliu/presence/types"
)

// Store is the mutex-guarded presence record.
type Store struct {
	mu      sync.Mutex
	rec     types.Record
	pending int // writes folded into the next snapshot

	changes      chan struct{}
	onTransition func(types.StateChange)
}

// New creates a store in StateUnknown with a zero heartbeat time.
//
// onTransition, when non-nil, is invoked after every real state transition,
// outside the store lock and on the writer's goroutine.
func New(onTransition func(types.StateChange)) *Store {
	return &Store{
		rec:          types.Record{State: types.StateUnknown},
		changes:      make(chan struct{}, 1),
		onTransition: onTransition,
	}
}

// Changes returns the wake channel. A pending value means the record may be
// dirty; receivers must still check Snapshot's Dirty flag.
func (s *Store) Changes() <-chan struct{} {
	return s.changes
}

// RecordHeartbeat refreshes the heartbeat time and marks the server online.
func (s *Store) RecordHeartbeat(now time.Time) {
	s.mu.Lock()
	s.rec.LastHeartbeatAt = now
	change, changed := s.setStateLocked(types.StateOnline, now)
	s.mu.Unlock()

	if changed {
		s.signal()
		s.emit(change)
	}
}

// RecordPlayerCount stores n as the current player count.
//
// The count is only marked for application while the server is online; in
// any other state it is kept and applied by the next online transition.
//
// Returns:
//   - error: types.ErrInvalidCount if n is negative (the stored count is unchanged)
func (s *Store) RecordPlayerCount(n int) error {
	if n < 0 {
		return fmt.Errorf("%w: %d", types.ErrInvalidCount, n)
	}

	s.mu.Lock()
	s.rec.PlayerCount = n
	online := s.rec.State == types.StateOnline
	if online {
		s.markDirtyLocked()
	}
	s.mu.Unlock()

	if online {
		s.signal()
	}

	return nil
}

// EvaluateTimeout marks the server offline when it is online and the last
// heartbeat is at least timeout old.
//
// Returns:
//   - bool: true if the online to offline transition fired
func (s *Store) EvaluateTimeout(now time.Time, timeout time.Duration) bool {
	s.mu.Lock()
	if s.rec.State != types.StateOnline || now.Sub(s.rec.LastHeartbeatAt) < timeout {
		s.mu.Unlock()
		return false
	}
	change, _ := s.setStateLocked(types.StateOffline, now)
	s.mu.Unlock()

	s.signal()
	s.emit(change)

	return true
}

// Snapshot returns a copy of the record and the number of writes coalesced
// into it, then clears the dirty flag and the write counter atomically.
//
// The returned record carries the Dirty value observed before clearing.
func (s *Store) Snapshot() (types.Record, int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec := s.rec
	writes := s.pending
	s.rec.Dirty = false
	s.pending = 0

	return rec, writes
}

// Resync marks the record dirty without changing it, so the current state is
// applied to the sink again.
func (s *Store) Resync() {
	s.mu.Lock()
	s.markDirtyLocked()
	s.mu.Unlock()

	s.signal()
}

// Current returns a copy of the record without touching the dirty flag.
func (s *Store) Current() types.Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.rec
}

// setStateLocked must be called with mu held.
func (s *Store) setStateLocked(to types.LivenessState, at time.Time) (types.StateChange, bool) {
	from := s.rec.State
	if from == to {
		return types.StateChange{}, false
	}

	s.rec.State = to
	s.markDirtyLocked()

	return types.StateChange{From: from, To: to, At: at}, true
}

func (s *Store) markDirtyLocked() {
	s.rec.Dirty = true
	s.pending++
}

// signal posts a wake-up without blocking; an already pending wake-up
// absorbs this one.
func (s *Store) signal() {
	select {
	case s.changes <- struct{}{}:
	default:
	}
}

func (s *Store) emit(change types.StateChange) {
	if s.onTransition != nil {
		s.onTransition(change)
	}
}
