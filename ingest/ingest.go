package ingest

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/arloliu/presence/types"
)

// Response bodies shared by the HTTP and NATS transports.
const (
	BodyHeartbeatOK    = "heartbeat ok"
	BodyPlayerOK       = "update player ok"
	BodyInvalidCount   = "invalid player count"
	BodyRouteNotFound  = "404 Not found"
	reasonInvalidCount = "invalid_count"
	reasonNotFound     = "not_found"
)

// Recorder receives ingested updates. *presence.Manager implements it.
type Recorder interface {
	RecordHeartbeat()
	RecordPlayerCount(n int) error
}

// ParseCount parses a decimal, non-negative player count.
//
// Returns:
//   - int: The parsed count
//   - error: Error wrapping types.ErrInvalidCount for empty, malformed,
//     out-of-range or negative input
func ParseCount(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("%w: empty", types.ErrInvalidCount)
	}

	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", types.ErrInvalidCount, s)
	}
	if n < 0 {
		return 0, fmt.Errorf("%w: %d", types.ErrInvalidCount, n)
	}

	return n, nil
}
