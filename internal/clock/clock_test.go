package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestReal_Now(t *testing.T) {
	before := time.Now()
	now := New().Now()

	require.False(t, now.Before(before))
}

func TestReal_NewTicker(t *testing.T) {
	tk := New().NewTicker(5 * time.Millisecond)
	defer tk.Stop()

	select {
	case <-tk.C():
	case <-time.After(time.Second):
		t.Fatal("ticker did not fire")
	}
}
