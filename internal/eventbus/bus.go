// Package eventbus is the per-run fan-out log of AgentEvents: every
// orchestrator lane publishes into one Bus, every SSE client subscribes
// to the same Bus and gets the full history replayed before switching
// to live delivery.
package eventbus

import (
	"sync"
	"time"

	"github.com/boxed-run/sdk/internal/sandbox"
)

const (
	subscriberBuffer = 64
	keepAliveEvery   = 15 * time.Second
)

// Bus is an append-only, in-memory event log for a single run. It has
// no persistence: once every subscriber is gone and the run completes,
// its events are only reachable through whatever replayed them.
type Bus struct {
	mu     sync.Mutex
	events []sandbox.AgentEvent
	seq    uint64
	subs   map[*Subscriber]struct{}
	closed bool
	stop   chan struct{}
}

// Subscriber receives a gap-free view of a Bus: every event published
// before Subscribe returned, then every event published after.
type Subscriber struct {
	ch   chan sandbox.AgentEvent
	bus  *Bus
	once sync.Once
}

// New creates a Bus and starts its keep-alive ticker.
func New() *Bus {
	b := &Bus{subs: make(map[*Subscriber]struct{}), stop: make(chan struct{})}
	go b.keepAlive()
	return b
}

// Publish assigns the next sequence number and timestamp if unset, then
// appends the event and fans it out to every live subscriber. A
// subscriber whose buffer is full is dropped rather than allowed to
// block the publisher (spec.md §4.6 backpressure clause).
func (b *Bus) Publish(evt sandbox.AgentEvent) {
	if evt.TimestampMs == 0 {
		evt.TimestampMs = time.Now().UnixMilli()
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.seq++
	evt.Seq = b.seq
	b.events = append(b.events, evt)
	for sub := range b.subs {
		select {
		case sub.ch <- evt:
		default:
			delete(b.subs, sub)
			close(sub.ch)
		}
	}
}

// Subscribe registers a new Subscriber, replaying everything published
// so far before any live event can arrive — the replay snapshot and the
// subscriber's registration happen under the same lock a concurrent
// Publish would need, so no event can be missed or duplicated.
func (b *Bus) Subscribe() *Subscriber {
	b.mu.Lock()
	defer b.mu.Unlock()

	sub := &Subscriber{ch: make(chan sandbox.AgentEvent, subscriberBuffer+len(b.events)), bus: b}
	for _, evt := range b.events {
		sub.ch <- evt
	}
	if b.closed {
		close(sub.ch)
		return sub
	}
	b.subs[sub] = struct{}{}
	return sub
}

// Unsubscribe removes sub from the fan-out set. Safe to call more than
// once and safe to call after the bus has closed.
func (s *Subscriber) Unsubscribe() {
	s.once.Do(func() {
		s.bus.mu.Lock()
		defer s.bus.mu.Unlock()
		if _, ok := s.bus.subs[s]; ok {
			delete(s.bus.subs, s)
			close(s.ch)
		}
	})
}

// Events is the channel a caller ranges over to receive replay-then-live
// AgentEvents.
func (s *Subscriber) Events() <-chan sandbox.AgentEvent { return s.ch }

func (b *Bus) keepAlive() {
	ticker := time.NewTicker(keepAliveEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			b.mu.Lock()
			last := b.lastEventTimeLocked()
			closed := b.closed
			b.mu.Unlock()
			if closed {
				return
			}
			if time.Since(last) >= keepAliveEvery {
				b.Publish(sandbox.AgentEvent{Type: sandbox.EventPing})
			}
		case <-b.stop:
			return
		}
	}
}

func (b *Bus) lastEventTimeLocked() time.Time {
	if len(b.events) == 0 {
		return time.Time{}
	}
	return time.UnixMilli(b.events[len(b.events)-1].TimestampMs)
}

// Close publishes a final "complete" event, stops the keep-alive
// goroutine, and closes every subscriber's channel. Publish after Close
// is a no-op.
func (b *Bus) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.seq++
	evt := sandbox.AgentEvent{
		Seq:         b.seq,
		Type:        sandbox.EventComplete,
		TimestampMs: time.Now().UnixMilli(),
	}
	b.events = append(b.events, evt)
	for sub := range b.subs {
		select {
		case sub.ch <- evt:
		default:
		}
		close(sub.ch)
		delete(b.subs, sub)
	}
	b.closed = true
	b.mu.Unlock()
	close(b.stop)
}
