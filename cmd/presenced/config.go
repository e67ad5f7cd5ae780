package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/arloliu/presence"
	"github.com/arloliu/presence/ingest"
	"github.com/arloliu/presence/sink"
)

// EnvPrefix prefixes every environment variable read by the daemon.
const EnvPrefix = "PRESENCED_"

// Config is the daemon configuration.
//
// Values are layered: defaults, then the YAML file, then PRESENCED_*
// environment variables, then command-line flags.
type Config struct {
	Presence presence.Config `yaml:"presence"`
	HTTP     HTTPConfig      `yaml:"http" envPrefix:"HTTP_"`
	Admin    AdminConfig     `yaml:"admin" envPrefix:"ADMIN_"`
	Log      LogConfig       `yaml:"log" envPrefix:"LOG_"`
	NATS     NATSConfig      `yaml:"nats" envPrefix:"NATS_"`
	Display  sink.Formatter  `yaml:"display" envPrefix:"DISPLAY_"`
	Metrics  MetricsConfig   `yaml:"metrics" envPrefix:"METRICS_"`
}

// HTTPConfig configures the heartbeat ingest listener.
type HTTPConfig struct {
	Addr              string        `yaml:"addr" env:"ADDR"`
	ReadHeaderTimeout time.Duration `yaml:"readHeaderTimeout" env:"READ_HEADER_TIMEOUT"`
	ShutdownTimeout   time.Duration `yaml:"shutdownTimeout" env:"SHUTDOWN_TIMEOUT"`
}

// AdminConfig configures the /metrics, /healthz and /status listener.
// An empty Addr disables it.
type AdminConfig struct {
	Addr string `yaml:"addr" env:"ADDR"`
}

// LogConfig selects the slog level and handler.
type LogConfig struct {
	Level  string `yaml:"level" env:"LEVEL"`
	Format string `yaml:"format" env:"FORMAT"`
}

// NATSConfig enables the NATS ingest subjects and the KV presence document.
// An empty URL disables both.
type NATSConfig struct {
	URL           string `yaml:"url" env:"URL"`
	Ingest        bool   `yaml:"ingest" env:"INGEST"`
	SubjectPrefix string `yaml:"subjectPrefix" env:"SUBJECT_PREFIX"`
	// Bucket holds the presence document; empty disables the KV sink.
	Bucket  string `yaml:"bucket" env:"BUCKET"`
	Key     string `yaml:"key" env:"KEY"`
	History uint8  `yaml:"history" env:"HISTORY"`
}

// MetricsConfig configures the Prometheus collector.
type MetricsConfig struct {
	Namespace string `yaml:"namespace" env:"NAMESPACE"`
}

// DefaultConfig returns the daemon defaults.
func DefaultConfig() Config {
	cfg := Config{
		Presence: presence.DefaultConfig(),
		HTTP: HTTPConfig{
			Addr:              "127.0.0.1:30180",
			ReadHeaderTimeout: 5 * time.Second,
			ShutdownTimeout:   10 * time.Second,
		},
		Admin: AdminConfig{Addr: "127.0.0.1:30181"},
		Log:   LogConfig{Level: "info", Format: "text"},
		NATS: NATSConfig{
			Ingest:        true,
			SubjectPrefix: ingest.DefaultSubjectPrefix,
			Bucket:        "presence",
			Key:           sink.DefaultKVKey,
			History:       1,
		},
		Display: sink.Formatter{MaxPlayers: 48},
		Metrics: MetricsConfig{Namespace: "presence"},
	}
	// Announce offline at startup so a stale "online" never survives a restart.
	cfg.Presence.InitialSync = true

	return cfg
}

// LoadConfig reads the YAML file at path (skipped when empty) on top of the
// defaults and then applies environment overrides.
//
// Parameters:
//   - path: YAML file path, may be empty
//   - environ: Environment to read; nil reads the process environment
//
// Returns:
//   - Config: Validated configuration
//   - error: Read, parse or validation failure
func LoadConfig(path string, environ map[string]string) (Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	opts := env.Options{Prefix: EnvPrefix}
	if environ != nil {
		opts.Environment = environ
	}
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate checks the daemon-level settings and the embedded presence.Config.
func (c *Config) Validate() error {
	presence.SetDefaults(&c.Presence)
	if err := c.Presence.Validate(); err != nil {
		return err
	}

	if c.HTTP.Addr == "" {
		return fmt.Errorf("%w: http.addr must not be empty", presence.ErrInvalidConfig)
	}
	if c.HTTP.ShutdownTimeout <= 0 {
		return fmt.Errorf("%w: http.shutdownTimeout must be > 0, got %v", presence.ErrInvalidConfig, c.HTTP.ShutdownTimeout)
	}
	if c.Display.MaxPlayers < 0 {
		return fmt.Errorf("%w: display.maxPlayers must be >= 0, got %d", presence.ErrInvalidConfig, c.Display.MaxPlayers)
	}
	if c.NATS.URL != "" && c.NATS.Bucket != "" && c.NATS.Key == "" {
		return fmt.Errorf("%w: nats.key must not be empty when nats.bucket is set", presence.ErrInvalidConfig)
	}

	return nil
}

// ParseConfig parses the command line, then loads the configuration file
// and environment, and finally applies explicit flag overrides.
func ParseConfig(fs *flag.FlagSet, args []string, environ map[string]string) (Config, error) {
	var (
		path      string
		httpAddr  string
		adminAddr string
		natsURL   string
	)
	fs.StringVar(&path, "config", "", "path to a YAML configuration file")
	fs.StringVar(&httpAddr, "http-addr", "", "heartbeat ingest listen address (default 127.0.0.1:30180)")
	fs.StringVar(&adminAddr, "admin-addr", "", "admin listen address for /metrics, /healthz and /status")
	fs.StringVar(&natsURL, "nats-url", "", "NATS server URL, enables NATS ingest and the KV sink")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return Config{}, err
		}

		return Config{}, fmt.Errorf("parse flags: %w", err)
	}

	cfg, err := LoadConfig(path, environ)
	if err != nil {
		return Config{}, err
	}

	if httpAddr != "" {
		cfg.HTTP.Addr = httpAddr
	}
	if adminAddr != "" {
		cfg.Admin.Addr = adminAddr
	}
	if natsURL != "" {
		cfg.NATS.URL = natsURL
	}

	return cfg, nil
}
