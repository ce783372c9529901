package sim

import (
	"errors"
	"sync"
	"sync/atomic"

	"github.com/arthurguedes375/agar.io/internal/game"
)

// ErrFeedClosed is returned when publishing to a feed nobody can read anymore.
var ErrFeedClosed = errors.New("snapshot feed closed")

// StateUpdate carries an independent copy of the game after a completed tick.
type StateUpdate struct {
	Game game.Game
}

// Feed fans state updates out to subscribers. Each subscriber has its own
// bounded buffer; when it falls behind the oldest pending update is dropped
// so the publisher never blocks.
type Feed struct {
	mu     sync.Mutex
	subs   map[*Subscription]struct{}
	buffer int
	closed bool
}

// NewFeed creates a feed whose subscriptions buffer up to buffer updates.
func NewFeed(buffer int) *Feed {
	if buffer < 1 {
		buffer = 1
	}
	return &Feed{
		subs:   make(map[*Subscription]struct{}),
		buffer: buffer,
	}
}

// Subscription is one consumer's view of a Feed.
type Subscription struct {
	feed    *Feed
	ch      chan StateUpdate
	dropped atomic.Uint64
}

// Subscribe registers a new consumer. Subscribing to a closed feed returns
// a subscription whose channel is already closed.
func (f *Feed) Subscribe() *Subscription {
	s := &Subscription{feed: f, ch: make(chan StateUpdate, f.buffer)}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		close(s.ch)
		return s
	}
	f.subs[s] = struct{}{}
	return s
}

// Publish delivers u to every subscriber, dropping each subscriber's oldest
// pending update if its buffer is full.
func (f *Feed) Publish(u StateUpdate) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return ErrFeedClosed
	}
	for s := range f.subs {
		s.push(u)
	}
	return nil
}

// Subscribers returns the number of active subscriptions.
func (f *Feed) Subscribers() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subs)
}

// Close closes every subscription. Later publishes fail with ErrFeedClosed.
func (f *Feed) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return
	}
	f.closed = true
	for s := range f.subs {
		close(s.ch)
		delete(f.subs, s)
	}
}

// Caller must hold s.feed.mu.
func (s *Subscription) push(u StateUpdate) {
	for {
		select {
		case s.ch <- u:
			return
		default:
		}
		select {
		case <-s.ch:
			s.dropped.Add(1)
		default:
		}
	}
}

// Updates returns the channel updates arrive on. It is closed when the
// subscription or the feed is closed.
func (s *Subscription) Updates() <-chan StateUpdate {
	return s.ch
}

// Dropped returns how many updates were discarded because the consumer lagged.
func (s *Subscription) Dropped() uint64 {
	return s.dropped.Load()
}

// Close unsubscribes. It is safe to call more than once.
func (s *Subscription) Close() {
	f := s.feed
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.subs[s]; !ok {
		return
	}
	delete(f.subs, s)
	close(s.ch)
}
