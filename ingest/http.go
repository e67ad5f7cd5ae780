package ingest

import (
	"errors"
	"io"
	"net/http"

	"github.com/arloliu/presence/internal/logging"
	"github.com/arloliu/presence/internal/metrics"
	"github.com/arloliu/presence/types"
)

// Option configures the ingest transports.
type Option func(*options)

type options struct {
	logger  types.Logger
	metrics types.IngestMetrics
}

// WithLogger sets the logger for rejected requests.
func WithLogger(logger types.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithMetrics sets the collector for rejected requests. Accepted updates
// are counted by the manager.
func WithMetrics(m types.IngestMetrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}

func buildOptions(opts []Option) *options {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = logging.NewNop()
	}
	if o.metrics == nil {
		o.metrics = metrics.NewNop()
	}

	return o
}

// NewHandler returns the HTTP ingest handler. Routes accept any method.
//
// Parameters:
//   - rec: Recorder receiving heartbeats and player counts
//   - opts: Optional logger and metrics
//
// Returns:
//   - http.Handler: Handler serving /heartbeat and /player/{count}
//
// Example:
//
//	srv := &http.Server{Addr: "127.0.0.1:30180", Handler: ingest.NewHandler(mgr)}
func NewHandler(rec Recorder, opts ...Option) http.Handler {
	h := &handler{rec: rec, opts: buildOptions(opts)}

	mux := http.NewServeMux()
	mux.HandleFunc("/heartbeat", h.heartbeat)
	mux.HandleFunc("/player/{count}", h.player)
	// A missing count is an invalid count, not an unknown route
	mux.HandleFunc("/player", h.player)
	mux.HandleFunc("/player/{$}", h.player)
	mux.HandleFunc("/", h.notFound)

	return mux
}

type handler struct {
	rec  Recorder
	opts *options
}

func (h *handler) heartbeat(w http.ResponseWriter, _ *http.Request) {
	h.rec.RecordHeartbeat()
	writeText(w, http.StatusOK, BodyHeartbeatOK)
}

func (h *handler) player(w http.ResponseWriter, r *http.Request) {
	n, err := ParseCount(r.PathValue("count"))
	if err == nil {
		err = h.rec.RecordPlayerCount(n)
	}
	if err != nil {
		if !errors.Is(err, types.ErrInvalidCount) {
			h.opts.logger.Error("failed to record player count", "error", err)
			writeText(w, http.StatusInternalServerError, err.Error())

			return
		}
		h.opts.metrics.RecordRejectedUpdate(reasonInvalidCount)
		h.opts.logger.Debug("rejected player count", "path", r.URL.Path, "error", err)
		writeText(w, http.StatusBadRequest, BodyInvalidCount)

		return
	}

	writeText(w, http.StatusOK, BodyPlayerOK)
}

func (h *handler) notFound(w http.ResponseWriter, r *http.Request) {
	h.opts.metrics.RecordRejectedUpdate(reasonNotFound)
	h.opts.logger.Debug("unknown ingest route", "path", r.URL.Path, "method", r.Method)
	writeText(w, http.StatusNotFound, BodyRouteNotFound)
}

func writeText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}
