package sink

import (
	"context"
	"errors"

	"github.com/arloliu/presence/types"
)

// Multi applies every call to each sink in order.
//
// A failing sink does not stop the others; all errors are joined, so
// errors.Is sees each of them.
type Multi struct {
	sinks []types.PresenceSink
}

var _ types.PresenceSink = (*Multi)(nil)

// NewMulti creates a fan-out sink. Nil sinks are skipped.
func NewMulti(sinks ...types.PresenceSink) *Multi {
	m := &Multi{sinks: make([]types.PresenceSink, 0, len(sinks))}
	for _, s := range sinks {
		if s != nil {
			m.sinks = append(m.sinks, s)
		}
	}

	return m
}

// SetOffline calls SetOffline on every sink.
func (m *Multi) SetOffline(ctx context.Context) error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.SetOffline(ctx); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// SetOnline calls SetOnline on every sink.
func (m *Multi) SetOnline(ctx context.Context, playerCount int) error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.SetOnline(ctx, playerCount); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// Len returns the number of wrapped sinks.
func (m *Multi) Len() int {
	return len(m.sinks)
}
