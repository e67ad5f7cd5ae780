package hooks

import (
	"context"

	"github.com/arloliu/presence/types"
)

// NopHooks implements Hooks with no-op callbacks.
//
// This is the default implementation used when no custom hooks are provided,
// eliminating the need for nil checks throughout the codebase.
type NopHooks struct{}

// Compile-time assertions that NopHooks implements hook callbacks.
var (
	_ func(context.Context, types.LivenessState, types.LivenessState) error = (*NopHooks)(nil).OnStateChanged
	_ func(context.Context, error) error                                    = (*NopHooks)(nil).OnSinkError
)

// NewNop creates a new no-op hooks implementation.
//
// Returns:
//   - types.Hooks: Hooks with no-op implementations
func NewNop() types.Hooks {
	h := &NopHooks{}
	return types.Hooks{
		OnStateChanged: h.OnStateChanged,
		OnSinkError:    h.OnSinkError,
	}
}

// Fill returns hooks with every nil callback replaced by its no-op version.
func Fill(h types.Hooks) types.Hooks {
	nop := NewNop()
	if h.OnStateChanged == nil {
		h.OnStateChanged = nop.OnStateChanged
	}
	if h.OnSinkError == nil {
		h.OnSinkError = nop.OnSinkError
	}

	return h
}

// OnStateChanged is a no-op implementation.
func (h *NopHooks) OnStateChanged(ctx context.Context, from, to types.LivenessState) error {
	return nil
}

// OnSinkError is a no-op implementation.
func (h *NopHooks) OnSinkError(ctx context.Context, err error) error {
	return nil
}
