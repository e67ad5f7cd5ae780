package sink

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/nats-io/nats.go/jetstream"
	"github.com/stretchr/testify/require"

	presencetest "github.com/arloliu/presence/testing"
	"github.com/arloliu/presence/types"
)

func readDocument(t *testing.T, kv jetstream.KeyValue, key string) (Document, uint64) {
	t.Helper()

	entry, err := kv.Get(t.Context(), key)
	require.NoError(t, err)

	var doc Document
	require.NoError(t, json.Unmarshal(entry.Value(), &doc))

	return doc, entry.Revision()
}

func TestKV_WritesDocuments(t *testing.T) {
	_, nc := presencetest.StartEmbeddedNATS(t)
	kv := presencetest.CreateJetStreamKV(t, nc, "presence-kv-write")

	s := NewKV(kv, "", Formatter{MaxPlayers: 48}, presencetest.NewTestLogger(t))
	fixed := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return fixed }

	require.NoError(t, s.SetOnline(t.Context(), 3))
	doc, _ := readDocument(t, kv, DefaultKVKey)
	require.Equal(t, Document{
		Online:      true,
		PlayerCount: 3,
		MaxPlayers:  48,
		Status:      "Server online 3/48",
		Version:     1,
		UpdatedAt:   fixed,
	}, doc)

	require.NoError(t, s.SetOffline(t.Context()))
	doc, _ = readDocument(t, kv, DefaultKVKey)
	require.False(t, doc.Online)
	require.Equal(t, "Server offline", doc.Status)
	require.Equal(t, int64(2), doc.Version)
	require.Equal(t, int64(2), s.Version())
}

func TestKV_SkipsIdenticalWrites(t *testing.T) {
	_, nc := presencetest.StartEmbeddedNATS(t)
	kv := presencetest.CreateJetStreamKV(t, nc, "presence-kv-dedupe")
	s := NewKV(kv, "status", Formatter{}, nil)

	require.NoError(t, s.SetOnline(t.Context(), 5))
	_, rev := readDocument(t, kv, "status")

	require.NoError(t, s.SetOnline(t.Context(), 5))
	_, again := readDocument(t, kv, "status")
	require.Equal(t, rev, again, "identical content must not be rewritten")

	require.NoError(t, s.SetOnline(t.Context(), 6))
	doc, changed := readDocument(t, kv, "status")
	require.Greater(t, changed, rev)
	require.Equal(t, 6, doc.PlayerCount)
}

func TestKV_Restore(t *testing.T) {
	_, nc := presencetest.StartEmbeddedNATS(t)
	kv := presencetest.CreateJetStreamKV(t, nc, "presence-kv-restore")

	t.Run("missing key is fine", func(t *testing.T) {
		s := NewKV(kv, "restore", Formatter{}, nil)
		require.NoError(t, s.Restore(t.Context()))
		require.Zero(t, s.Version())
	})

	t.Run("versions continue after restart", func(t *testing.T) {
		first := NewKV(kv, "restore", Formatter{}, nil)
		require.NoError(t, first.SetOnline(t.Context(), 1))
		require.NoError(t, first.SetOffline(t.Context()))

		second := NewKV(kv, "restore", Formatter{}, nil)
		require.NoError(t, second.Restore(t.Context()))
		require.Equal(t, int64(2), second.Version())

		require.NoError(t, second.SetOffline(t.Context()))
		doc, _ := readDocument(t, kv, "restore")
		require.Equal(t, int64(3), doc.Version)
	})

	t.Run("malformed document is ignored", func(t *testing.T) {
		_, err := kv.Put(t.Context(), "garbage", []byte("{not json"))
		require.NoError(t, err)

		s := NewKV(kv, "garbage", Formatter{}, nil)
		require.NoError(t, s.Restore(t.Context()))
		require.Zero(t, s.Version())
	})
}

func TestKV_UnavailableServer(t *testing.T) {
	ns, nc := presencetest.StartEmbeddedNATS(t)
	kv := presencetest.CreateJetStreamKV(t, nc, "presence-kv-down")
	s := NewKV(kv, "", Formatter{}, nil)

	ns.Shutdown()
	ns.WaitForShutdown()

	ctx, cancel := context.WithTimeout(t.Context(), 500*time.Millisecond)
	defer cancel()

	err := s.SetOnline(ctx, 1)
	require.Error(t, err)
	require.ErrorIs(t, err, types.ErrSinkUnavailable)
}
