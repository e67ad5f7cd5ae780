package sink

import (
	"context"

	"github.com/arloliu/presence/internal/logging"
	"github.com/arloliu/presence/types"
)

// Log is a PresenceSink that writes the display text to a logger.
type Log struct {
	logger types.Logger
	format Formatter
}

var _ types.PresenceSink = (*Log)(nil)

// NewLog creates a log sink. A nil logger discards output.
func NewLog(logger types.Logger, format Formatter) *Log {
	if logger == nil {
		logger = logging.NewNop()
	}

	return &Log{logger: logger, format: format}
}

// SetOffline logs the offline text.
func (l *Log) SetOffline(_ context.Context) error {
	l.logger.Info("presence", "online", false, "status", l.format.Offline())
	return nil
}

// SetOnline logs the online text.
func (l *Log) SetOnline(_ context.Context, playerCount int) error {
	l.logger.Info("presence", "online", true, "player_count", playerCount, "status", l.format.Online(playerCount))
	return nil
}
