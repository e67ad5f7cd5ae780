package ingest

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/nats-io/nats.go"

	"github.com/arloliu/presence/types"
)

// DefaultSubjectPrefix is used when NewSubscriber is given an empty prefix.
const DefaultSubjectPrefix = "presence"

// Subscriber receives heartbeats and player counts over core NATS.
type Subscriber struct {
	prefix string
	rec    Recorder
	opts   *options

	mu   sync.Mutex
	subs []*nats.Subscription
}

// NewSubscriber subscribes to the ingest subjects under prefix.
//
// Parameters:
//   - nc: Connected NATS connection
//   - prefix: Subject prefix (DefaultSubjectPrefix when empty)
//   - rec: Recorder receiving updates
//   - opts: Optional logger and metrics
//
// Returns:
//   - *Subscriber: Active subscriber; call Close to unsubscribe
//   - error: Subscription error
//
// Example:
//
//	sub, err := ingest.NewSubscriber(nc, "mc", mgr)
//	defer sub.Close()
//	// nats req mc.heartbeat ""   -> "heartbeat ok"
//	// nats req mc.player.3 ""    -> "update player ok"
func NewSubscriber(nc *nats.Conn, prefix string, rec Recorder, opts ...Option) (*Subscriber, error) {
	if nc == nil {
		return nil, errors.New("nats connection is required")
	}
	if prefix == "" {
		prefix = DefaultSubjectPrefix
	}

	s := &Subscriber{prefix: prefix, rec: rec, opts: buildOptions(opts)}

	handlers := map[string]nats.MsgHandler{
		prefix + ".heartbeat": s.onHeartbeat,
		prefix + ".player":    s.onPlayerPayload,
		prefix + ".player.*":  s.onPlayerSubject,
	}
	for subject, handler := range handlers {
		sub, err := nc.Subscribe(subject, handler)
		if err != nil {
			_ = s.Close()
			return nil, fmt.Errorf("failed to subscribe to %s: %w", subject, err)
		}
		s.subs = append(s.subs, sub)
	}

	s.opts.logger.Info("nats ingest subscribed", "prefix", prefix)

	return s, nil
}

// Subjects returns the subjects the subscriber listens on.
func (s *Subscriber) Subjects() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]string, 0, len(s.subs))
	for _, sub := range s.subs {
		out = append(out, sub.Subject)
	}

	return out
}

// Close unsubscribes from every subject. Safe to call multiple times.
func (s *Subscriber) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var errs []error
	for _, sub := range s.subs {
		if err := sub.Unsubscribe(); err != nil && !errors.Is(err, nats.ErrConnectionClosed) && !errors.Is(err, nats.ErrBadSubscription) {
			errs = append(errs, err)
		}
	}
	s.subs = nil

	return errors.Join(errs...)
}

func (s *Subscriber) onHeartbeat(msg *nats.Msg) {
	s.rec.RecordHeartbeat()
	s.reply(msg, BodyHeartbeatOK)
}

func (s *Subscriber) onPlayerPayload(msg *nats.Msg) {
	s.recordCount(msg, string(msg.Data))
}

func (s *Subscriber) onPlayerSubject(msg *nats.Msg) {
	s.recordCount(msg, strings.TrimPrefix(msg.Subject, s.prefix+".player."))
}

func (s *Subscriber) recordCount(msg *nats.Msg, raw string) {
	n, err := ParseCount(raw)
	if err == nil {
		err = s.rec.RecordPlayerCount(n)
	}
	if err != nil {
		if errors.Is(err, types.ErrInvalidCount) {
			s.opts.metrics.RecordRejectedUpdate(reasonInvalidCount)
		}
		s.opts.logger.Debug("rejected player count", "subject", msg.Subject, "error", err)
		s.reply(msg, BodyInvalidCount)

		return
	}

	s.reply(msg, BodyPlayerOK)
}

func (s *Subscriber) reply(msg *nats.Msg, body string) {
	if msg.Reply == "" {
		return
	}
	if err := msg.Respond([]byte(body)); err != nil {
		s.opts.logger.Warn("failed to reply to ingest request", "subject", msg.Subject, "error", err)
	}
}
