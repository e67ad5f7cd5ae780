package presence

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/arloliu/presence/internal/clock"
	"github.com/arloliu/presence/internal/heartbeat"
	"github.com/arloliu/presence/internal/hooks"
	"github.com/arloliu/presence/internal/logging"
	"github.com/arloliu/presence/internal/metrics"
	"github.com/arloliu/presence/internal/notify"
	"github.com/arloliu/presence/internal/reconcile"
	"github.com/arloliu/presence/internal/store"
)

// Manager tracks the liveness of one game server and keeps a presence sink
// in step with it.
//
// Manager is the main entry point of the library. It owns:
//   - The presence record (heartbeat time, state, player count, dirty flag)
//   - A heartbeat monitor that reports a silent server offline
//   - A reconciler that applies the record to the sink, coalescing bursts
//
// Thread Safety:
//   - All public methods are safe for concurrent use
//   - RecordHeartbeat and RecordPlayerCount never wait for the sink
//
// Lifecycle:
//   - Create with NewManager()
//   - Call Start() to launch the monitor and reconciler
//   - Feed it through RecordHeartbeat/RecordPlayerCount (or the ingest package)
//   - Call Stop() for graceful shutdown
type Manager struct {
	cfg  Config
	sink PresenceSink

	// Optional dependencies
	clock   Clock
	hooks   *Hooks
	metrics MetricsCollector
	logger  Logger

	// Internal components
	store      *store.Store
	monitor    *heartbeat.Monitor
	reconciler *reconcile.Reconciler
	notifier   *notify.Broadcaster

	// Hook goroutines
	ctx       context.Context
	cancel    context.CancelFunc
	hookWg    sync.WaitGroup
	hookMu    sync.Mutex
	hooksDone bool

	// Lifecycle management
	mu      sync.Mutex
	started bool
	stopped bool
}

// NewManager creates a new Manager instance.
//
// Parameters:
//   - cfg: Configuration; missing values are filled with defaults
//   - sink: Presence sink that displays the server status
//   - opts: Optional configuration (hooks, metrics, logger, clock)
//
// Returns:
//   - *Manager: Initialized manager instance
//   - error: ErrInvalidConfig or ErrSinkRequired
//
// Example:
//
//	cfg := presence.DefaultConfig()
//	mgr, err := presence.NewManager(&cfg, sink.NewLog(logger, sink.Formatter{MaxPlayers: 48}))
func NewManager(cfg *Config, sink PresenceSink, opts ...Option) (*Manager, error) {
	if cfg == nil {
		return nil, ErrInvalidConfig
	}
	if sink == nil {
		return nil, ErrSinkRequired
	}

	// Fill in missing configuration values with defaults
	SetDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	options := &managerOptions{}
	for _, opt := range opts {
		opt(options)
	}

	// Provide safe defaults for optional dependencies to avoid nil checks everywhere
	metricsCollector := options.metrics
	if metricsCollector == nil {
		metricsCollector = metrics.NewNop()
	}

	loggerInstance := options.logger
	if loggerInstance == nil {
		loggerInstance = logging.NewNop()
	}

	// Validate with warnings after logger is available
	cfg.ValidateWithWarnings(loggerInstance)

	var hooksInstance Hooks
	if options.hooks != nil {
		hooksInstance = hooks.Fill(*options.hooks)
	} else {
		hooksInstance = hooks.NewNop()
	}

	clk := options.clock
	if clk == nil {
		clk = clock.New()
	}

	m := &Manager{
		cfg:      *cfg,
		sink:     sink,
		clock:    clk,
		hooks:    &hooksInstance,
		metrics:  metricsCollector,
		logger:   loggerInstance,
		notifier: notify.New(),
	}
	m.ctx, m.cancel = context.WithCancel(context.Background())

	m.store = store.New(m.handleTransition)

	m.monitor = heartbeat.New(m.store, clk, cfg.CheckInterval, cfg.HeartbeatTimeout, loggerInstance)
	m.monitor.SetMetrics(metricsCollector)

	m.reconciler = reconcile.New(m.store, sink, reconcile.Config{
		SinkTimeout: cfg.SinkTimeout,
		Retry: reconcile.RetryPolicy{
			Disabled:   cfg.Retry.Disabled,
			BaseDelay:  cfg.Retry.BaseDelay,
			MaxDelay:   cfg.Retry.MaxDelay,
			Multiplier: cfg.Retry.Multiplier,
			Seed:       cfg.Retry.Seed,
		},
	}, loggerInstance)
	m.reconciler.SetMetrics(metricsCollector)
	m.reconciler.SetErrorHandler(m.handleSinkError)

	return m, nil
}

// Start launches the heartbeat monitor and the reconciler.
//
// Writes recorded before Start are kept and applied as soon as the
// reconciler runs. With Config.InitialSync the initial state is applied
// to the sink as offline.
//
// Parameters:
//   - ctx: Context checked for cancellation before starting
//
// Returns:
//   - error: ErrAlreadyStarted, or ctx.Err() if ctx is already done
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.started {
		return ErrAlreadyStarted
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	m.started = true

	if m.cfg.InitialSync {
		m.store.Resync()
	}

	// Background goroutines use the manager context, not the caller's
	if err := m.reconciler.Start(m.ctx); err != nil {
		return fmt.Errorf("failed to start reconciler: %w", err)
	}
	if err := m.monitor.Start(m.ctx); err != nil {
		_ = m.reconciler.Stop()
		return fmt.Errorf("failed to start heartbeat monitor: %w", err)
	}

	m.logger.Info("presence manager started",
		"heartbeat_timeout", m.cfg.HeartbeatTimeout,
		"check_interval", m.cfg.CheckInterval,
		"initial_sync", m.cfg.InitialSync,
	)

	return nil
}

// Stop gracefully shuts down the manager.
//
// The monitor and reconciler stop promptly (an in-flight sink call is
// cancelled). Running hooks are waited for until ctx is done. Subscriber
// channels are closed.
//
// Parameters:
//   - ctx: Context for shutdown timeout
//
// Returns:
//   - error: ErrNotStarted if not running, or ctx.Err() on hook timeout
func (m *Manager) Stop(ctx context.Context) error {
	m.mu.Lock()
	if !m.started || m.stopped {
		m.mu.Unlock()
		return ErrNotStarted
	}
	m.stopped = true
	m.mu.Unlock()

	var shutdownErr error

	if err := m.monitor.Stop(); err != nil {
		m.logger.Error("failed to stop heartbeat monitor", "error", err)
		shutdownErr = fmt.Errorf("heartbeat monitor stop failed: %w", err)
	}

	if err := m.reconciler.Stop(); err != nil {
		m.logger.Error("failed to stop reconciler", "error", err)
		shutdownErr = errors.Join(shutdownErr, fmt.Errorf("reconciler stop failed: %w", err))
	}

	m.cancel()
	m.notifier.Close()

	// No new hook goroutines after this point
	m.hookMu.Lock()
	m.hooksDone = true
	m.hookMu.Unlock()

	done := make(chan struct{})
	go func() {
		m.hookWg.Wait()
		close(done)
	}()

	select {
	case <-done:
		m.logger.Info("presence manager stopped")
		return shutdownErr
	case <-ctx.Done():
		m.logger.Error("shutdown timeout exceeded, hooks may still be running")
		if shutdownErr == nil {
			return ctx.Err()
		}

		return fmt.Errorf("shutdown timeout: %w; additional error: %w", ctx.Err(), shutdownErr)
	}
}

// RecordHeartbeat notes that the game server is alive.
//
// The first heartbeat, and any heartbeat after a timeout, marks the server
// online. Returns immediately; the sink is updated asynchronously.
func (m *Manager) RecordHeartbeat() {
	m.store.RecordHeartbeat(m.clock.Now())
	m.metrics.RecordHeartbeat()
}

// RecordPlayerCount stores the number of players online.
//
// While the server is online the count is applied to the sink; otherwise it
// is kept and applied with the next online transition. Returns immediately.
//
// Returns:
//   - error: ErrInvalidCount if n is negative
func (m *Manager) RecordPlayerCount(n int) error {
	if err := m.store.RecordPlayerCount(n); err != nil {
		m.metrics.RecordRejectedUpdate("invalid_count")
		return err
	}
	m.metrics.RecordPlayerCount(n)

	return nil
}

// Snapshot returns a copy of the presence record. It does not affect what
// the reconciler applies.
func (m *Manager) Snapshot() Record {
	return m.store.Current()
}

// State returns the current liveness state.
func (m *Manager) State() LivenessState {
	return m.store.Current().State
}

// Running reports whether the manager has been started and not stopped.
func (m *Manager) Running() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.started && !m.stopped
}

// Subscribe returns a channel that receives every liveness transition.
//
// The channel is buffered; a subscriber that falls behind misses
// transitions rather than blocking the manager. It is closed by the
// returned function or by Stop.
//
// Returns:
//   - <-chan StateChange: Channel that receives transitions
//   - func(): Unsubscribe function to clean up resources
//
// Example:
//
//	ch, unsubscribe := mgr.Subscribe()
//	defer unsubscribe()
//	for change := range ch {
//	    fmt.Printf("server %s\n", change.To)
//	}
func (m *Manager) Subscribe() (<-chan StateChange, func()) {
	return m.notifier.Subscribe()
}

// handleTransition runs on the writer's goroutine after the store lock is released.
func (m *Manager) handleTransition(change StateChange) {
	m.logger.Info("presence state transition",
		"from", change.From.String(),
		"to", change.To.String(),
	)
	m.metrics.RecordStateTransition(change.From, change.To)
	m.notifier.Publish(change)

	m.runHook("state change", func(ctx context.Context) error {
		return m.hooks.OnStateChanged(ctx, change.From, change.To)
	})
}

// handleSinkError runs on the reconciler goroutine and must not block.
func (m *Manager) handleSinkError(err error) {
	m.runHook("sink error", func(ctx context.Context) error {
		return m.hooks.OnSinkError(ctx, err)
	})
}

// runHook runs fn in a tracked goroutine; hook errors are only logged.
func (m *Manager) runHook(name string, fn func(ctx context.Context) error) {
	m.hookMu.Lock()
	defer m.hookMu.Unlock()

	if m.hooksDone {
		return
	}

	m.hookWg.Go(func() {
		if err := fn(m.ctx); err != nil {
			m.logger.Error("hook error", "hook", name, "error", err)
		}
	})
}
