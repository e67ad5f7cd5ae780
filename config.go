package presence

import (
	"fmt"
	"time"
)

// RetryConfig controls re-application of the presence record after a sink
// failure.
//
// With retries enabled, a failed sink call arms a jittered exponential
// backoff timer; when it fires, the current record is applied again. Any
// successful call resets the backoff. With retries disabled the record is
// re-applied only when the next write (heartbeat transition, player count
// or timeout) marks it dirty.
type RetryConfig struct {
	// Disabled turns off timer-driven retries.
	Disabled bool `yaml:"disabled" env:"DISABLED"`

	// BaseDelay is the first retry delay.
	// Default: 1 second
	BaseDelay time.Duration `yaml:"baseDelay" env:"BASE_DELAY"`

	// MaxDelay caps the retry delay.
	// Default: 30 seconds
	MaxDelay time.Duration `yaml:"maxDelay" env:"MAX_DELAY"`

	// Multiplier grows the delay between consecutive failures.
	// Default: 2.0
	Multiplier float64 `yaml:"multiplier" env:"MULTIPLIER"`

	// Seed makes jitter deterministic when non-zero. Leave at 0 in production.
	Seed int64 `yaml:"seed" env:"SEED"`
}

// Config is the configuration for the Manager.
//
// All duration fields accept standard Go duration strings like "10s", "500ms".
type Config struct {
	// HeartbeatTimeout is how long the server may stay silent before it is
	// reported offline.
	// Default: 10 seconds
	HeartbeatTimeout time.Duration `yaml:"heartbeatTimeout" env:"HEARTBEAT_TIMEOUT"`

	// CheckInterval is how often the heartbeat age is compared against
	// HeartbeatTimeout. Offline detection happens between HeartbeatTimeout and
	// HeartbeatTimeout+CheckInterval after the last heartbeat.
	// Default: 1 second
	CheckInterval time.Duration `yaml:"checkInterval" env:"CHECK_INTERVAL"`

	// SinkTimeout bounds every SetOnline/SetOffline call.
	// Default: 10 seconds
	SinkTimeout time.Duration `yaml:"sinkTimeout" env:"SINK_TIMEOUT"`

	// InitialSync applies the initial Unknown state (as offline) once when the
	// manager starts, so the displayed presence never shows a stale "online"
	// left over from a previous run.
	// Default: false
	InitialSync bool `yaml:"initialSync" env:"INITIAL_SYNC"`

	// Retry controls re-application after sink failures.
	Retry RetryConfig `yaml:"retry" envPrefix:"RETRY_"`
}

// DefaultConfig returns a Config with sensible defaults.
//
// Returns:
//   - Config: Configuration with default values
func DefaultConfig() Config {
	return Config{
		HeartbeatTimeout: 10 * time.Second,
		CheckInterval:    1 * time.Second,
		SinkTimeout:      10 * time.Second,
		Retry: RetryConfig{
			BaseDelay:  1 * time.Second,
			MaxDelay:   30 * time.Second,
			Multiplier: 2.0,
		},
	}
}

// SetDefaults fills in missing configuration values with production defaults.
//
// Parameters:
//   - cfg: Config to apply defaults to (modified in place)
func SetDefaults(cfg *Config) {
	defaults := DefaultConfig()

	if cfg.HeartbeatTimeout == 0 {
		cfg.HeartbeatTimeout = defaults.HeartbeatTimeout
	}
	if cfg.CheckInterval == 0 {
		cfg.CheckInterval = defaults.CheckInterval
	}
	if cfg.SinkTimeout == 0 {
		cfg.SinkTimeout = defaults.SinkTimeout
	}
	if cfg.Retry.BaseDelay == 0 {
		cfg.Retry.BaseDelay = defaults.Retry.BaseDelay
	}
	if cfg.Retry.MaxDelay == 0 {
		cfg.Retry.MaxDelay = defaults.Retry.MaxDelay
	}
	if cfg.Retry.Multiplier == 0 {
		cfg.Retry.Multiplier = defaults.Retry.Multiplier
	}
	// Note: InitialSync and Retry.Disabled default to false, Seed of 0 means random jitter
}

// Validate checks configuration constraints and returns error for invalid values.
//
// Hard Validation Rules:
//   - HeartbeatTimeout > 0
//   - 0 < CheckInterval <= HeartbeatTimeout (a check must fit inside the window)
//   - SinkTimeout > 0
//   - Retry (when enabled): BaseDelay > 0, MaxDelay >= BaseDelay, Multiplier >= 1
//
// Returns:
//   - error: Error wrapping ErrInvalidConfig, nil if valid
func (cfg *Config) Validate() error {
	if cfg.HeartbeatTimeout <= 0 {
		return fmt.Errorf("%w: HeartbeatTimeout must be > 0, got %v", ErrInvalidConfig, cfg.HeartbeatTimeout)
	}

	if cfg.CheckInterval <= 0 {
		return fmt.Errorf("%w: CheckInterval must be > 0, got %v", ErrInvalidConfig, cfg.CheckInterval)
	}

	if cfg.CheckInterval > cfg.HeartbeatTimeout {
		return fmt.Errorf(
			"%w: CheckInterval (%v) must be <= HeartbeatTimeout (%v)",
			ErrInvalidConfig, cfg.CheckInterval, cfg.HeartbeatTimeout,
		)
	}

	if cfg.SinkTimeout <= 0 {
		return fmt.Errorf("%w: SinkTimeout must be > 0, got %v", ErrInvalidConfig, cfg.SinkTimeout)
	}

	if cfg.Retry.Disabled {
		return nil
	}

	if cfg.Retry.BaseDelay <= 0 {
		return fmt.Errorf("%w: Retry.BaseDelay must be > 0, got %v", ErrInvalidConfig, cfg.Retry.BaseDelay)
	}

	if cfg.Retry.MaxDelay < cfg.Retry.BaseDelay {
		return fmt.Errorf(
			"%w: Retry.MaxDelay (%v) must be >= Retry.BaseDelay (%v)",
			ErrInvalidConfig, cfg.Retry.MaxDelay, cfg.Retry.BaseDelay,
		)
	}

	if cfg.Retry.Multiplier < 1 {
		return fmt.Errorf("%w: Retry.Multiplier must be >= 1, got %v", ErrInvalidConfig, cfg.Retry.Multiplier)
	}

	return nil
}

// ValidateWithWarnings logs warnings for valid but non-recommended values.
//
// This is called after Validate() in NewManager() to provide operator guidance.
//
// Parameters:
//   - logger: Logger instance for warning output
func (cfg *Config) ValidateWithWarnings(logger Logger) {
	if cfg.CheckInterval > cfg.HeartbeatTimeout/2 {
		logger.Warn(
			"CheckInterval is coarse relative to HeartbeatTimeout, offline detection may lag",
			"check_interval", cfg.CheckInterval,
			"heartbeat_timeout", cfg.HeartbeatTimeout,
			"recommended", cfg.HeartbeatTimeout/10,
		)
	}

	if cfg.SinkTimeout > cfg.HeartbeatTimeout {
		logger.Warn(
			"SinkTimeout exceeds HeartbeatTimeout, a hung sink can hold back the next update",
			"sink_timeout", cfg.SinkTimeout,
			"heartbeat_timeout", cfg.HeartbeatTimeout,
		)
	}

	if !cfg.Retry.Disabled && cfg.Retry.Seed != 0 {
		logger.Warn("Retry.Seed is set, backoff jitter is deterministic", "seed", cfg.Retry.Seed)
	}
}

// TestConfig returns a configuration optimized for fast test execution.
//
// Returns:
//   - Config: Configuration with fast timings for tests
//
// Example:
//
//	cfg := presence.TestConfig()
//	mgr, err := presence.NewManager(&cfg, sink)
func TestConfig() Config {
	cfg := DefaultConfig()

	cfg.HeartbeatTimeout = 200 * time.Millisecond // 50x faster
	cfg.CheckInterval = 20 * time.Millisecond     // 50x faster
	cfg.SinkTimeout = 1 * time.Second
	cfg.Retry.BaseDelay = 10 * time.Millisecond
	cfg.Retry.MaxDelay = 100 * time.Millisecond

	return cfg
}
