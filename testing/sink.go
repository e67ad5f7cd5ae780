package testing

import (
	"context"
	"errors"
	"sync"

	"github.com/arloliu/presence/types"
)

// ErrInjected is returned by a RecordingSink configured to fail.
var ErrInjected = errors.New("injected sink failure")

// SinkCall is one call observed by a RecordingSink.
type SinkCall struct {
	Online      bool
	PlayerCount int
}

// RecordingSink is a types.PresenceSink that records every call.
//
// It can be told to fail the next N calls or to block until released,
// which lets tests observe ingestion while the sink is slow.
type RecordingSink struct {
	mu       sync.Mutex
	calls    []SinkCall
	failures int
	failErr  error
	gate     chan struct{}
}

var _ types.PresenceSink = (*RecordingSink)(nil)

// NewRecordingSink creates a sink that accepts every call.
func NewRecordingSink() *RecordingSink {
	return &RecordingSink{}
}

// SetOffline records an offline call.
func (s *RecordingSink) SetOffline(ctx context.Context) error {
	return s.record(ctx, SinkCall{Online: false})
}

// SetOnline records an online call with playerCount.
func (s *RecordingSink) SetOnline(ctx context.Context, playerCount int) error {
	return s.record(ctx, SinkCall{Online: true, PlayerCount: playerCount})
}

// FailNext makes the next n calls return err (ErrInjected when err is nil).
// Failed calls are still recorded.
func (s *RecordingSink) FailNext(n int, err error) {
	if err == nil {
		err = ErrInjected
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.failures = n
	s.failErr = err
}

// Block makes every following call wait until Release is called or the
// call's context is done.
func (s *RecordingSink) Block() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.gate == nil {
		s.gate = make(chan struct{})
	}
}

// Release unblocks pending and future calls.
func (s *RecordingSink) Release() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.gate != nil {
		close(s.gate)
		s.gate = nil
	}
}

// Calls returns a copy of the recorded calls.
func (s *RecordingSink) Calls() []SinkCall {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]SinkCall, len(s.calls))
	copy(out, s.calls)

	return out
}

// Len returns the number of recorded calls.
func (s *RecordingSink) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.calls)
}

// Last returns the most recent call.
func (s *RecordingSink) Last() (SinkCall, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.calls) == 0 {
		return SinkCall{}, false
	}

	return s.calls[len(s.calls)-1], true
}

func (s *RecordingSink) record(ctx context.Context, call SinkCall) error {
	s.mu.Lock()
	gate := s.gate
	s.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls = append(s.calls, call)
	if s.failures > 0 {
		s.failures--
		return s.failErr
	}

	return nil
}
