// Package notify fans liveness transitions out to in-process subscribers.
package notify

import (
	"sync"
	"sync/atomic"

	"github.com/arloliu/presence/types"
	"github.com/puzpuzpuz/xsync/v4"
)

// subscriberBuffer is the channel capacity handed to each subscriber.
const subscriberBuffer = 8

// Broadcaster delivers StateChange values to subscribers without ever
// blocking the publisher. A subscriber that falls behind misses changes;
// it can always read the current state from the manager.
type Broadcaster struct {
	subscribers *xsync.Map[uint64, *subscriber]
	nextID      atomic.Uint64
	closed      atomic.Bool
}

// New creates an empty broadcaster.
func New() *Broadcaster {
	return &Broadcaster{subscribers: xsync.NewMap[uint64, *subscriber]()}
}

// Subscribe registers a new subscriber.
//
// Returns:
//   - <-chan types.StateChange: Channel that receives transitions
//   - func(): Unsubscribe function; closes the channel, safe to call twice
//
// Example:
//
//	ch, unsubscribe := b.Subscribe()
//	defer unsubscribe()
//	for change := range ch {
//	    fmt.Printf("%s -> %s\n", change.From, change.To)
//	}
func (b *Broadcaster) Subscribe() (<-chan types.StateChange, func()) {
	sub := &subscriber{ch: make(chan types.StateChange, subscriberBuffer)}
	if b.closed.Load() {
		sub.close()
		return sub.ch, func() {}
	}

	id := b.nextID.Add(1)
	b.subscribers.Store(id, sub)

	return sub.ch, func() { b.remove(id) }
}

// Publish sends change to every subscriber without blocking.
func (b *Broadcaster) Publish(change types.StateChange) {
	b.subscribers.Range(func(_ uint64, sub *subscriber) bool {
		sub.trySend(change)
		return true
	})
}

// Len returns the number of active subscribers.
func (b *Broadcaster) Len() int {
	return b.subscribers.Size()
}

// Close unregisters and closes every subscriber. Later Subscribe calls
// return an already closed channel.
func (b *Broadcaster) Close() {
	b.closed.Store(true)
	b.subscribers.Range(func(id uint64, _ *subscriber) bool {
		b.remove(id)
		return true
	})
}

func (b *Broadcaster) remove(id uint64) {
	if sub, ok := b.subscribers.LoadAndDelete(id); ok {
		sub.close()
	}
}

type subscriber struct {
	ch     chan types.StateChange
	mu     sync.Mutex
	closed bool
}

// trySend delivers change unless the subscriber is closed or its buffer is full.
func (s *subscriber) trySend(change types.StateChange) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	select {
	case s.ch <- change:
	default:
	}
}

func (s *subscriber) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	close(s.ch)
}
