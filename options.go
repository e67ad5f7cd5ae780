package presence

// Option configures a Manager with optional dependencies.
type Option func(*managerOptions)

// managerOptions holds optional Manager configuration.
type managerOptions struct {
	hooks   *Hooks
	metrics MetricsCollector
	logger  Logger
	clock   Clock
}

// WithHooks sets lifecycle event hooks.
//
// Parameters:
//   - hooks: Hooks structure with callback functions; nil callbacks are ignored
//
// Returns:
//   - Option: Functional option for NewManager
//
// Example:
//
//	hooks := &presence.Hooks{
//	    OnSinkError: func(ctx context.Context, err error) error {
//	        alerts.Notify(err)
//	        return nil
//	    },
//	}
//	mgr, _ := presence.NewManager(&cfg, sink, presence.WithHooks(hooks))
func WithHooks(hooks *Hooks) Option {
	return func(o *managerOptions) {
		o.hooks = hooks
	}
}

// WithMetrics sets a metrics collector.
//
// Parameters:
//   - metrics: MetricsCollector implementation
//
// Returns:
//   - Option: Functional option for NewManager
//
// Example:
//
//	collector := metrics.NewPrometheus(prometheus.DefaultRegisterer, "presence")
//	mgr, _ := presence.NewManager(&cfg, sink, presence.WithMetrics(collector))
func WithMetrics(metrics MetricsCollector) Option {
	return func(o *managerOptions) {
		o.metrics = metrics
	}
}

// WithLogger sets a logger.
//
// Parameters:
//   - logger: Logger implementation (compatible with zap.SugaredLogger)
//
// Returns:
//   - Option: Functional option for NewManager
func WithLogger(logger Logger) Option {
	return func(o *managerOptions) {
		o.logger = logger
	}
}

// WithClock replaces the wall clock used for heartbeat times and monitor
// ticks. Tests pass a fake clock to control timeouts.
func WithClock(clock Clock) Option {
	return func(o *managerOptions) {
		o.clock = clock
	}
}
