package heartbeat

import (
	"context"
	"sync"
	"time"

	"github.com/arloliu/presence/internal/logging"
	"github.com/arloliu/presence/internal/metrics"
	"github.com/arloliu/presence/types"
)

// Target is the part of the presence store the monitor drives.
type Target interface {
	EvaluateTimeout(now time.Time, timeout time.Duration) bool
	Current() types.Record
}

// Monitor periodically checks the heartbeat age against a timeout.
type Monitor struct {
	target   Target
	clock    types.Clock
	interval time.Duration
	timeout  time.Duration
	logger   types.Logger
	metrics  types.MonitorMetrics

	// Lifecycle management
	mu      sync.Mutex
	started bool
	stopped bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// New creates a new heartbeat monitor.
//
// Parameters:
//   - target: Store evaluated on every tick
//   - clock: Time source for ticks and the current time
//   - interval: Check interval (typically 1s)
//   - timeout: Heartbeat timeout (typically 10s)
//   - logger: Logger for timeout events (nop if nil)
//
// Returns:
//   - *Monitor: A new, not yet started monitor
func New(target Target, clock types.Clock, interval, timeout time.Duration, logger types.Logger) *Monitor {
	if logger == nil {
		logger = logging.NewNop()
	}

	return &Monitor{
		target:   target,
		clock:    clock,
		interval: interval,
		timeout:  timeout,
		logger:   logger,
		metrics:  metrics.NewNop(),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// SetMetrics sets the metrics collector. Must be called before Start.
func (m *Monitor) SetMetrics(mc types.MonitorMetrics) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if mc != nil {
		m.metrics = mc
	}
}

// Start begins the tick loop in a background goroutine.
//
// Parameters:
//   - ctx: Context for cancellation; the loop exits when it is done
//
// Returns:
//   - error: ErrMonitorAlreadyStarted or ErrMonitorAlreadyStopped
func (m *Monitor) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	// Check stopped first - once stopped, cannot restart
	if m.stopped {
		return types.ErrMonitorAlreadyStopped
	}
	if m.started {
		return types.ErrMonitorAlreadyStarted
	}

	m.started = true
	ticker := m.clock.NewTicker(m.interval)
	go m.run(ctx, ticker)

	return nil
}

// Stop stops the tick loop and waits for it to exit.
//
// It is safe to call Stop multiple times - subsequent calls return immediately.
//
// Returns:
//   - error: ErrMonitorNotStarted if Stop is called before Start, nil otherwise
func (m *Monitor) Stop() error {
	m.mu.Lock()
	if !m.started {
		m.mu.Unlock()
		return types.ErrMonitorNotStarted
	}
	if m.stopped {
		m.mu.Unlock()
		return nil
	}
	m.stopped = true
	m.mu.Unlock()

	close(m.stopCh)
	<-m.doneCh

	return nil
}

func (m *Monitor) run(ctx context.Context, ticker types.Ticker) {
	defer close(m.doneCh)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-m.stopCh:
			return
		case <-ticker.C():
			m.check()
		}
	}
}

// check evaluates the timeout once and refreshes the heartbeat age gauge.
func (m *Monitor) check() {
	now := m.clock.Now()
	if m.target.EvaluateTimeout(now, m.timeout) {
		last := m.target.Current().LastHeartbeatAt
		m.logger.Warn("heartbeat timeout, server marked offline",
			"last_heartbeat", last,
			"silence", now.Sub(last),
			"timeout", m.timeout,
		)
	}

	rec := m.target.Current()
	if rec.LastHeartbeatAt.IsZero() {
		m.metrics.RecordHeartbeatAge(-1)
		return
	}
	m.metrics.RecordHeartbeatAge(now.Sub(rec.LastHeartbeatAt).Seconds())
}
