package ingest

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	presencetest "github.com/arloliu/presence/testing"
)

type rejectCounter struct {
	presenceNop
	reasons []string
}

func (r *rejectCounter) RecordRejectedUpdate(reason string) {
	r.reasons = append(r.reasons, reason)
}

// presenceNop satisfies types.IngestMetrics for embedding.
type presenceNop struct{}

func (presenceNop) RecordHeartbeat()      {}
func (presenceNop) RecordPlayerCount(int) {}

func do(t *testing.T, h http.Handler, method, path string) (int, string) {
	t.Helper()

	req := httptest.NewRequest(method, path, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	body, err := io.ReadAll(rec.Result().Body)
	require.NoError(t, err)

	return rec.Code, string(body)
}

func TestHandler_Routes(t *testing.T) {
	tests := []struct {
		name       string
		method     string
		path       string
		wantStatus int
		wantBody   string
	}{
		{"heartbeat GET", http.MethodGet, "/heartbeat", http.StatusOK, BodyHeartbeatOK},
		{"heartbeat POST", http.MethodPost, "/heartbeat", http.StatusOK, BodyHeartbeatOK},
		{"player count", http.MethodGet, "/player/3", http.StatusOK, BodyPlayerOK},
		{"player zero", http.MethodPut, "/player/0", http.StatusOK, BodyPlayerOK},
		{"player not a number", http.MethodGet, "/player/abc", http.StatusBadRequest, BodyInvalidCount},
		{"player negative", http.MethodGet, "/player/-1", http.StatusBadRequest, BodyInvalidCount},
		{"player empty segment", http.MethodGet, "/player/", http.StatusBadRequest, BodyInvalidCount},
		{"root", http.MethodGet, "/", http.StatusNotFound, BodyRouteNotFound},
		{"unknown", http.MethodGet, "/status", http.StatusNotFound, BodyRouteNotFound},
		{"player without segment", http.MethodGet, "/player", http.StatusBadRequest, BodyInvalidCount},
		{"player extra segment", http.MethodGet, "/player/3/4", http.StatusNotFound, BodyRouteNotFound},
		{"heartbeat trailing slash", http.MethodGet, "/heartbeat/", http.StatusNotFound, BodyRouteNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHandler(&fakeRecorder{})
			status, body := do(t, h, tt.method, tt.path)

			require.Equal(t, tt.wantStatus, status)
			require.Equal(t, tt.wantBody, body)
		})
	}
}

func TestHandler_RecordsUpdates(t *testing.T) {
	rec := &fakeRecorder{}
	h := NewHandler(rec, WithLogger(presencetest.NewTestLogger(t)))

	do(t, h, http.MethodGet, "/heartbeat")
	do(t, h, http.MethodGet, "/heartbeat")
	do(t, h, http.MethodGet, "/player/7")
	do(t, h, http.MethodGet, "/player/bad")

	heartbeats, counts := rec.state()
	require.Equal(t, 2, heartbeats)
	require.Equal(t, []int{7}, counts, "invalid counts never reach the recorder")
}

func TestHandler_RejectionMetrics(t *testing.T) {
	mc := &rejectCounter{}
	h := NewHandler(&fakeRecorder{}, WithMetrics(mc))

	do(t, h, http.MethodGet, "/player/x")
	do(t, h, http.MethodGet, "/nope")
	do(t, h, http.MethodGet, "/heartbeat")

	require.Equal(t, []string{reasonInvalidCount, reasonNotFound}, mc.reasons)
}
