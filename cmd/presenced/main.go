// Package main runs the presence daemon.
//
// The daemon accepts heartbeats and player counts from a game server over
// HTTP (and optionally NATS), reports the server offline after a silence
// longer than the heartbeat timeout, and publishes every presence change to
// the log and, when NATS is configured, to a JetStream KV document.
//
// Usage:
//
//	presenced -config presenced.yaml
//	PRESENCED_NATS_URL=nats://127.0.0.1:4222 presenced -http-addr 0.0.0.0:30180
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/arloliu/presence/internal/logging"
)

func main() {
	cfg, err := ParseConfig(flag.CommandLine, os.Args[1:], nil)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		log.Fatalf("load config: %v", err)
	}

	logger, err := logging.NewSlogWriter(os.Stderr, cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		log.Fatalf("create logger: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := Run(ctx, cfg, logger); err != nil {
		logger.Error("presenced exited", "error", err)
		stop()
		os.Exit(1) //nolint:gocritic // stop already called
	}
}
