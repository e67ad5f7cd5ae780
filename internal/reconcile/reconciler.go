// Package reconcile applies the presence record to the sink.
//
// One long-lived goroutine waits on the store's wake channel. Each wake-up
// takes a snapshot (clearing the dirty flag atomically) and, when the record
// was dirty, applies it to the sink outside the store lock. Writes that land
// while a sink call is in flight leave one pending wake-up, so any burst is
// folded into at most one extra sink call carrying the latest values.
package reconcile

import (
	"context"
	"errors"
	"fmt"
	rand "math/rand/v2"
	"sync"
	"time"

	"github.com/arloliu/presence/internal/logging"
	"github.com/arloliu/presence/internal/metrics"
	"github.com/arloliu/presence/types"
)

// Sink operation names used in logs and metrics.
const (
	OpSetOnline  = "set_online"
	OpSetOffline = "set_offline"
)

// Source is the part of the presence store the reconciler reads.
type Source interface {
	Changes() <-chan struct{}
	Snapshot() (types.Record, int)
	Resync()
}

// RetryPolicy controls re-application after a failed sink call.
type RetryPolicy struct {
	Disabled   bool
	BaseDelay  time.Duration
	MaxDelay   time.Duration
	Multiplier float64
	Seed       int64 // non-zero makes jitter deterministic
}

// Config configures a Reconciler.
type Config struct {
	SinkTimeout time.Duration
	Retry       RetryPolicy
}

// Reconciler drives the sink from store snapshots.
type Reconciler struct {
	source  Source
	sink    types.PresenceSink
	cfg     Config
	logger  types.Logger
	metrics types.ReconcilerMetrics
	onError func(error)
	rng     *rand.Rand

	// Owned by the run goroutine
	retryTimer *time.Timer
	retryDelay time.Duration

	// Lifecycle management
	mu      sync.Mutex
	started bool
	stopped bool
	cancel  context.CancelFunc
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// New creates a new reconciler.
//
// Parameters:
//   - source: Store providing wake-ups and snapshots
//   - sink: Presence sink to apply records to
//   - cfg: Sink timeout and retry policy
//   - logger: Logger for sink failures (nop if nil)
//
// Returns:
//   - *Reconciler: A new, not yet started reconciler
func New(source Source, sink types.PresenceSink, cfg Config, logger types.Logger) *Reconciler {
	if logger == nil {
		logger = logging.NewNop()
	}

	return &Reconciler{
		source:  source,
		sink:    sink,
		cfg:     cfg,
		logger:  logger,
		metrics: metrics.NewNop(),
		onError: func(error) {},
		rng:     newRetryRNG(cfg.Retry.Seed),
		stopCh:  make(chan struct{}),
		doneCh:  make(chan struct{}),
	}
}

// SetMetrics sets the metrics collector. Must be called before Start.
func (r *Reconciler) SetMetrics(mc types.ReconcilerMetrics) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if mc != nil {
		r.metrics = mc
	}
}

// SetErrorHandler sets a callback invoked with every wrapped sink failure.
// Must be called before Start. The callback runs on the reconciler goroutine
// and must not block.
func (r *Reconciler) SetErrorHandler(fn func(error)) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if fn != nil {
		r.onError = fn
	}
}

// Start launches the reconcile goroutine.
//
// Returns:
//   - error: ErrReconcilerAlreadyStarted or ErrReconcilerAlreadyStopped
func (r *Reconciler) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.stopped {
		return types.ErrReconcilerAlreadyStopped
	}
	if r.started {
		return types.ErrReconcilerAlreadyStarted
	}

	r.started = true
	runCtx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	go r.run(runCtx)

	return nil
}

// Stop ends the goroutine, cancelling an in-flight sink call, and waits for
// it to exit. Subsequent calls return immediately.
//
// Returns:
//   - error: ErrReconcilerNotStarted if Stop is called before Start, nil otherwise
func (r *Reconciler) Stop() error {
	r.mu.Lock()
	if !r.started {
		r.mu.Unlock()
		return types.ErrReconcilerNotStarted
	}
	if r.stopped {
		r.mu.Unlock()
		return nil
	}
	r.stopped = true
	r.mu.Unlock()

	close(r.stopCh)
	r.cancel()
	<-r.doneCh

	return nil
}

func (r *Reconciler) run(ctx context.Context) {
	defer close(r.doneCh)
	defer r.cancelRetry()

	for {
		var retryC <-chan time.Time
		if r.retryTimer != nil {
			retryC = r.retryTimer.C
		}

		select {
		case <-ctx.Done():
			return
		case <-r.stopCh:
			return
		case <-r.source.Changes():
			r.reconcile(ctx)
		case <-retryC:
			r.retryTimer = nil
			r.source.Resync()
		}
	}
}

// reconcile applies one snapshot. A clean snapshot means an earlier wake-up
// already covered these writes.
func (r *Reconciler) reconcile(ctx context.Context) {
	rec, writes := r.source.Snapshot()
	if !rec.Dirty {
		return
	}
	r.metrics.RecordCoalescedWrites(writes)

	op, err := r.apply(ctx, rec)
	if err == nil {
		r.retryDelay = 0
		r.cancelRetry()
		r.logger.Debug("presence applied",
			"op", op,
			"state", rec.State.String(),
			"player_count", rec.PlayerCount,
			"coalesced", writes,
		)

		return
	}

	if ctx.Err() != nil {
		// shutting down; the failure is an artifact of cancellation
		return
	}

	wrapped := fmt.Errorf("%w: %s: %w", types.ErrSinkFailure, op, err)
	if errors.Is(err, types.ErrSinkUnavailable) {
		r.logger.Warn("presence sink unavailable", "op", op, "error", err)
	} else {
		r.logger.Error("presence sink failed", "op", op, "error", err)
	}
	r.onError(wrapped)
	r.scheduleRetry()
}

func (r *Reconciler) apply(ctx context.Context, rec types.Record) (string, error) {
	sinkCtx := ctx
	if r.cfg.SinkTimeout > 0 {
		var cancel context.CancelFunc
		sinkCtx, cancel = context.WithTimeout(ctx, r.cfg.SinkTimeout)
		defer cancel()
	}

	op := OpSetOffline
	if rec.Online() {
		op = OpSetOnline
	}

	start := time.Now()
	var err error
	if op == OpSetOnline {
		err = r.sink.SetOnline(sinkCtx, rec.PlayerCount)
	} else {
		err = r.sink.SetOffline(sinkCtx)
	}
	r.metrics.RecordSinkCall(op, err == nil, time.Since(start).Seconds())

	return op, err
}

// scheduleRetry arms the retry timer unless retries are disabled or one is
// already pending.
func (r *Reconciler) scheduleRetry() {
	retry := r.cfg.Retry
	if retry.Disabled || r.retryTimer != nil {
		return
	}

	r.retryDelay = jitterBackoff(r.retryDelay, retry.BaseDelay, retry.Multiplier, retry.MaxDelay, r.rng)
	r.retryTimer = time.NewTimer(r.retryDelay)
	r.metrics.RecordSinkRetry(r.retryDelay.Seconds())
	r.logger.Debug("presence retry scheduled", "delay", r.retryDelay)
}

func (r *Reconciler) cancelRetry() {
	if r.retryTimer != nil {
		r.retryTimer.Stop()
		r.retryTimer = nil
	}
}
