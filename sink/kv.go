package sink

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/nats-io/nats.go/jetstream"
	"github.com/zeebo/xxh3"

	"github.com/arloliu/presence/internal/logging"
	"github.com/arloliu/presence/internal/natsutil"
	"github.com/arloliu/presence/types"
)

// DefaultKVKey is the key the presence document is stored under.
const DefaultKVKey = "presence"

// Document is the JSON presence document stored by the KV sink.
type Document struct {
	Online      bool      `json:"online"`
	PlayerCount int       `json:"playerCount"`
	MaxPlayers  int       `json:"maxPlayers,omitempty"`
	Status      string    `json:"status"`
	Version     int64     `json:"version"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// KV is a PresenceSink that stores a Document in a NATS JetStream KV bucket.
//
// Watchers of the key (dashboards, bots in other processes) see every
// presence change. A call that would write the same content as the last
// successful write is skipped; Version increases on every real write.
type KV struct {
	kv     jetstream.KeyValue
	key    string
	format Formatter
	logger types.Logger
	now    func() time.Time

	mu       sync.Mutex
	version  int64
	lastHash uint64
	hasLast  bool
}

var _ types.PresenceSink = (*KV)(nil)

// NewKV creates a KV sink.
//
// Parameters:
//   - kv: Bucket to write to (see internal/kvutil.EnsureBucket)
//   - key: Document key (DefaultKVKey when empty)
//   - format: Display text formatter
//   - logger: Logger for write events (nop if nil)
//
// Returns:
//   - *KV: A new KV sink
func NewKV(kv jetstream.KeyValue, key string, format Formatter, logger types.Logger) *KV {
	if key == "" {
		key = DefaultKVKey
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	return &KV{
		kv:     kv,
		key:    key,
		format: format,
		logger: logger,
		now:    time.Now,
	}
}

// Restore reads the stored document so versions keep increasing across
// restarts. A missing key is not an error.
//
// Restore does not seed write deduplication; the first call after a restart
// always writes.
func (k *KV) Restore(ctx context.Context) error {
	entry, err := k.kv.Get(ctx, k.key)
	if errors.Is(err, jetstream.ErrKeyNotFound) {
		return nil
	}
	if err != nil {
		return natsutil.SinkError("get presence document", err)
	}

	var doc Document
	if err := json.Unmarshal(entry.Value(), &doc); err != nil {
		k.logger.Warn("ignoring malformed presence document", "key", k.key, "error", err)
		return nil
	}

	k.mu.Lock()
	if doc.Version > k.version {
		k.version = doc.Version
	}
	k.mu.Unlock()

	k.logger.Debug("restored presence document", "key", k.key, "version", doc.Version)

	return nil
}

// SetOffline stores an offline document.
func (k *KV) SetOffline(ctx context.Context) error {
	return k.write(ctx, Document{Online: false, Status: k.format.Offline()})
}

// SetOnline stores an online document with playerCount.
func (k *KV) SetOnline(ctx context.Context, playerCount int) error {
	return k.write(ctx, Document{
		Online:      true,
		PlayerCount: playerCount,
		MaxPlayers:  k.format.MaxPlayers,
		Status:      k.format.Online(playerCount),
	})
}

// Version returns the version of the last written document.
func (k *KV) Version() int64 {
	k.mu.Lock()
	defer k.mu.Unlock()

	return k.version
}

func (k *KV) write(ctx context.Context, doc Document) error {
	// The mutex serializes writers so versions are never reused.
	k.mu.Lock()
	defer k.mu.Unlock()

	hash := contentHash(doc)
	if k.hasLast && hash == k.lastHash {
		k.logger.Debug("presence document unchanged, skipping write", "key", k.key)
		return nil
	}

	doc.Version = k.version + 1
	doc.UpdatedAt = k.now().UTC()

	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal presence document: %w", err)
	}

	if _, err := k.kv.Put(ctx, k.key, data); err != nil {
		return natsutil.SinkError("put presence document", err)
	}

	k.version = doc.Version
	k.lastHash = hash
	k.hasLast = true

	return nil
}

// contentHash covers the fields that describe presence, not the write metadata.
func contentHash(doc Document) uint64 {
	h := xxh3.New()
	if doc.Online {
		_, _ = h.WriteString("1")
	} else {
		_, _ = h.WriteString("0")
	}
	_, _ = fmt.Fprintf(h, "|%d|%d|%s", doc.PlayerCount, doc.MaxPlayers, doc.Status)

	return h.Sum64()
}
