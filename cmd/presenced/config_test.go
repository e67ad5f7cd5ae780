package main

import (
	"flag"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/presence"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "presenced.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	require.Equal(t, "127.0.0.1:30180", cfg.HTTP.Addr)
	require.True(t, cfg.Presence.InitialSync)
	require.Equal(t, 10*time.Second, cfg.Presence.HeartbeatTimeout)
	require.Equal(t, 48, cfg.Display.MaxPlayers)
	require.Empty(t, cfg.NATS.URL)
	require.NoError(t, cfg.Validate())
}

func TestLoadConfig(t *testing.T) {
	t.Run("no file and empty environment gives defaults", func(t *testing.T) {
		cfg, err := LoadConfig("", map[string]string{})
		require.NoError(t, err)
		require.Equal(t, DefaultConfig(), cfg)
	})

	t.Run("yaml file overrides defaults", func(t *testing.T) {
		path := writeConfigFile(t, `
presence:
  heartbeatTimeout: 30s
  checkInterval: 2s
  retry:
    maxDelay: 1m
http:
  addr: 0.0.0.0:8080
nats:
  url: nats://127.0.0.1:4222
  bucket: mc
display:
  maxPlayers: 20
  onlineText: Up
`)
		cfg, err := LoadConfig(path, map[string]string{})
		require.NoError(t, err)

		require.Equal(t, 30*time.Second, cfg.Presence.HeartbeatTimeout)
		require.Equal(t, 2*time.Second, cfg.Presence.CheckInterval)
		require.Equal(t, time.Minute, cfg.Presence.Retry.MaxDelay)
		require.Equal(t, time.Second, cfg.Presence.Retry.BaseDelay)
		require.True(t, cfg.Presence.InitialSync)
		require.Equal(t, "0.0.0.0:8080", cfg.HTTP.Addr)
		require.Equal(t, "nats://127.0.0.1:4222", cfg.NATS.URL)
		require.Equal(t, "mc", cfg.NATS.Bucket)
		require.Equal(t, 20, cfg.Display.MaxPlayers)
		require.Equal(t, "Up", cfg.Display.OnlineText)
	})

	t.Run("environment overrides the file", func(t *testing.T) {
		path := writeConfigFile(t, "http:\n  addr: 0.0.0.0:8080\n")
		cfg, err := LoadConfig(path, map[string]string{
			"PRESENCED_HTTP_ADDR":           "127.0.0.1:9000",
			"PRESENCED_HEARTBEAT_TIMEOUT":   "15s",
			"PRESENCED_RETRY_DISABLED":      "true",
			"PRESENCED_INITIAL_SYNC":        "false",
			"PRESENCED_NATS_URL":            "nats://nats:4222",
			"PRESENCED_NATS_SUBJECT_PREFIX": "mc",
			"PRESENCED_DISPLAY_MAX_PLAYERS": "10",
			"PRESENCED_LOG_FORMAT":          "json",
			"PRESENCED_METRICS_NAMESPACE":   "game",
			"UNRELATED_PRESENCED_HTTP_ADDR": "ignored",
		})
		require.NoError(t, err)

		require.Equal(t, "127.0.0.1:9000", cfg.HTTP.Addr)
		require.Equal(t, 15*time.Second, cfg.Presence.HeartbeatTimeout)
		require.True(t, cfg.Presence.Retry.Disabled)
		require.False(t, cfg.Presence.InitialSync)
		require.Equal(t, "nats://nats:4222", cfg.NATS.URL)
		require.Equal(t, "mc", cfg.NATS.SubjectPrefix)
		require.Equal(t, 10, cfg.Display.MaxPlayers)
		require.Equal(t, "json", cfg.Log.Format)
		require.Equal(t, "game", cfg.Metrics.Namespace)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"), map[string]string{})
		require.Error(t, err)
	})

	t.Run("malformed yaml", func(t *testing.T) {
		path := writeConfigFile(t, "presence: [unclosed\n")
		_, err := LoadConfig(path, map[string]string{})
		require.Error(t, err)
	})

	t.Run("malformed environment value", func(t *testing.T) {
		_, err := LoadConfig("", map[string]string{"PRESENCED_HEARTBEAT_TIMEOUT": "soon"})
		require.Error(t, err)
	})

	t.Run("invalid presence settings", func(t *testing.T) {
		path := writeConfigFile(t, "presence:\n  heartbeatTimeout: 1s\n  checkInterval: 5s\n")
		_, err := LoadConfig(path, map[string]string{})
		require.ErrorIs(t, err, presence.ErrInvalidConfig)
	})
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty http addr", func(c *Config) { c.HTTP.Addr = "" }},
		{"non-positive shutdown timeout", func(c *Config) { c.HTTP.ShutdownTimeout = 0 }},
		{"negative max players", func(c *Config) { c.Display.MaxPlayers = -1 }},
		{"bucket without key", func(c *Config) {
			c.NATS.URL = "nats://127.0.0.1:4222"
			c.NATS.Key = ""
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			require.ErrorIs(t, cfg.Validate(), presence.ErrInvalidConfig)
		})
	}
}

func TestParseConfig(t *testing.T) {
	newFlagSet := func() *flag.FlagSet {
		fs := flag.NewFlagSet("presenced", flag.ContinueOnError)
		fs.SetOutput(io.Discard)

		return fs
	}

	t.Run("flags override file and environment", func(t *testing.T) {
		path := writeConfigFile(t, "http:\n  addr: 0.0.0.0:8080\n")
		cfg, err := ParseConfig(newFlagSet(), []string{
			"-config", path,
			"-http-addr", "127.0.0.1:7000",
			"-admin-addr", "127.0.0.1:7001",
			"-nats-url", "nats://flag:4222",
		}, map[string]string{"PRESENCED_HTTP_ADDR": "127.0.0.1:9000"})
		require.NoError(t, err)

		require.Equal(t, "127.0.0.1:7000", cfg.HTTP.Addr)
		require.Equal(t, "127.0.0.1:7001", cfg.Admin.Addr)
		require.Equal(t, "nats://flag:4222", cfg.NATS.URL)
	})

	t.Run("unset flags keep loaded values", func(t *testing.T) {
		cfg, err := ParseConfig(newFlagSet(), nil, map[string]string{"PRESENCED_HTTP_ADDR": "127.0.0.1:9000"})
		require.NoError(t, err)
		require.Equal(t, "127.0.0.1:9000", cfg.HTTP.Addr)
	})

	t.Run("unknown flag", func(t *testing.T) {
		_, err := ParseConfig(newFlagSet(), []string{"-bogus"}, map[string]string{})
		require.Error(t, err)
	})

	t.Run("help", func(t *testing.T) {
		_, err := ParseConfig(newFlagSet(), []string{"-h"}, map[string]string{})
		require.ErrorIs(t, err, flag.ErrHelp)
	})
}
