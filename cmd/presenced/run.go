package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/arloliu/presence"
	"github.com/arloliu/presence/ingest"
	"github.com/arloliu/presence/internal/kvutil"
	"github.com/arloliu/presence/internal/metrics"
	"github.com/arloliu/presence/sink"
)

// Run wires the presence manager to its sinks and transports and serves
// until ctx is cancelled.
func Run(ctx context.Context, cfg Config, logger presence.Logger) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	collector := metrics.NewPrometheus(reg, cfg.Metrics.Namespace)

	var nc *nats.Conn
	if cfg.NATS.URL != "" {
		var err error
		nc, err = nats.Connect(cfg.NATS.URL,
			nats.Name("presenced"),
			nats.MaxReconnects(-1),
			nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
				if err != nil {
					logger.Warn("nats disconnected", "error", err)
				}
			}),
			nats.ReconnectHandler(func(c *nats.Conn) {
				logger.Info("nats reconnected", "url", c.ConnectedUrl())
			}),
		)
		if err != nil {
			return fmt.Errorf("connect nats: %w", err)
		}
		defer nc.Close()
	}

	target, err := buildSink(ctx, cfg, nc, logger)
	if err != nil {
		return err
	}

	mgr, err := presence.NewManager(&cfg.Presence, target,
		presence.WithLogger(logger),
		presence.WithMetrics(collector),
	)
	if err != nil {
		return fmt.Errorf("create manager: %w", err)
	}
	if err := mgr.Start(ctx); err != nil {
		return fmt.Errorf("start manager: %w", err)
	}

	ingestOpts := []ingest.Option{ingest.WithLogger(logger), ingest.WithMetrics(collector)}

	if nc != nil && cfg.NATS.Ingest {
		sub, err := ingest.NewSubscriber(nc, cfg.NATS.SubjectPrefix, mgr, ingestOpts...)
		if err != nil {
			stopManager(mgr, cfg, logger)
			return err
		}
		defer func() { _ = sub.Close() }()
	}

	servers := []*http.Server{{
		Addr:              cfg.HTTP.Addr,
		Handler:           ingest.NewHandler(mgr, ingestOpts...),
		ReadHeaderTimeout: cfg.HTTP.ReadHeaderTimeout,
	}}
	if cfg.Admin.Addr != "" {
		servers = append(servers, &http.Server{
			Addr:              cfg.Admin.Addr,
			Handler:           newAdminHandler(mgr, reg),
			ReadHeaderTimeout: cfg.HTTP.ReadHeaderTimeout,
		})
	}

	errCh := make(chan error, len(servers))
	for _, srv := range servers {
		ln, err := net.Listen("tcp", srv.Addr)
		if err != nil {
			shutdown(servers, cfg, logger)
			stopManager(mgr, cfg, logger)
			return fmt.Errorf("listen %s: %w", srv.Addr, err)
		}
		logger.Info("listening", "addr", ln.Addr().String())

		go func() {
			if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- fmt.Errorf("serve %s: %w", srv.Addr, err)
			}
		}()
	}

	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case runErr = <-errCh:
		logger.Error("server failed", "error", runErr)
	}

	shutdown(servers, cfg, logger)
	stopManager(mgr, cfg, logger)

	return runErr
}

// buildSink combines the log sink with the KV sink when NATS is configured.
func buildSink(ctx context.Context, cfg Config, nc *nats.Conn, logger presence.Logger) (presence.PresenceSink, error) {
	sinks := []presence.PresenceSink{sink.NewLog(logger, cfg.Display)}

	if nc != nil && cfg.NATS.Bucket != "" {
		js, err := jetstream.New(nc)
		if err != nil {
			return nil, fmt.Errorf("create jetstream context: %w", err)
		}

		kv, err := kvutil.EnsureBucket(ctx, js, kvutil.BucketConfig{
			Name:        cfg.NATS.Bucket,
			Description: "game server presence",
			History:     cfg.NATS.History,
		}, kvutil.DefaultAttempts)
		if err != nil {
			return nil, fmt.Errorf("open presence bucket: %w", err)
		}

		kvSink := sink.NewKV(kv, cfg.NATS.Key, cfg.Display, logger)
		if err := kvSink.Restore(ctx); err != nil {
			logger.Warn("failed to restore presence document version", "error", err)
		}
		sinks = append(sinks, kvSink)
	}

	return sink.NewMulti(sinks...), nil
}

func shutdown(servers []*http.Server, cfg Config, logger presence.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	for _, srv := range servers {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Warn("http shutdown failed", "addr", srv.Addr, "error", err)
		}
	}
}

func stopManager(mgr *presence.Manager, cfg Config, logger presence.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := mgr.Stop(ctx); err != nil {
		logger.Warn("manager stop failed", "error", err)
	}
}

// statusResponse is the /status body.
type statusResponse struct {
	State           string     `json:"state"`
	Online          bool       `json:"online"`
	PlayerCount     int        `json:"playerCount"`
	LastHeartbeatAt *time.Time `json:"lastHeartbeatAt,omitempty"`
	Pending         bool       `json:"pending"`
}

type statusSource interface {
	Snapshot() presence.Record
	Running() bool
}

func newAdminHandler(src statusSource, gatherer prometheus.Gatherer) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("GET /metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		if !src.Running() {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "stopped"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	mux.HandleFunc("GET /status", func(w http.ResponseWriter, _ *http.Request) {
		rec := src.Snapshot()
		resp := statusResponse{
			State:       rec.State.String(),
			Online:      rec.Online(),
			PlayerCount: rec.PlayerCount,
			Pending:     rec.Dirty,
		}
		if !rec.LastHeartbeatAt.IsZero() {
			at := rec.LastHeartbeatAt.UTC()
			resp.LastHeartbeatAt = &at
		}
		writeJSON(w, http.StatusOK, resp)
	})

	return mux
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
