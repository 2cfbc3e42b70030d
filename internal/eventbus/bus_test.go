package eventbus

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/boxed-run/sdk/internal/sandbox"
)

func TestBusReplayThenLive(t *testing.T) {
	b := New()
	defer b.Close()

	b.Publish(sandbox.AgentEvent{Type: sandbox.EventStatus, Provider: "modal"})
	b.Publish(sandbox.AgentEvent{Type: sandbox.EventCloneProgress, Provider: "modal"})

	sub := b.Subscribe()
	defer sub.Unsubscribe()

	b.Publish(sandbox.AgentEvent{Type: sandbox.EventOpencodeReady, Provider: "modal"})

	var got []sandbox.AgentEvent
	for i := 0; i < 3; i++ {
		select {
		case evt := <-sub.Events():
			got = append(got, evt)
		case <-time.After(time.Second):
			t.Fatalf("timed out waiting for event %d", i)
		}
	}

	require.Len(t, got, 3)
	assert.Equal(t, sandbox.EventStatus, got[0].Type)
	assert.Equal(t, sandbox.EventCloneProgress, got[1].Type)
	assert.Equal(t, sandbox.EventOpencodeReady, got[2].Type)
	assert.Equal(t, uint64(1), got[0].Seq)
	assert.Equal(t, uint64(3), got[2].Seq)
}

func TestBusBackpressureDropsSlowSubscriber(t *testing.T) {
	b := New()
	defer b.Close()

	sub := b.Subscribe()

	for i := 0; i < subscriberBuffer+10; i++ {
		b.Publish(sandbox.AgentEvent{Type: sandbox.EventOutput})
	}

	// The events buffered before the overflow are still delivered; the
	// channel reports closed once they have been drained.
	for i := 0; i < subscriberBuffer; i++ {
		<-sub.Events()
	}
	_, ok := <-sub.Events()
	assert.False(t, ok, "slow subscriber's channel should have been closed on overflow")
}

func TestBusCloseEmitsCompleteAndClosesSubscribers(t *testing.T) {
	b := New()
	sub := b.Subscribe()

	b.Close()

	var last sandbox.AgentEvent
	for evt := range sub.Events() {
		last = evt
	}
	assert.Equal(t, sandbox.EventComplete, last.Type)

	// Publish after Close must not panic or reopen the bus.
	b.Publish(sandbox.AgentEvent{Type: sandbox.EventOutput})
}

func TestSubscribeAfterCloseReplaysThenClosed(t *testing.T) {
	b := New()
	b.Publish(sandbox.AgentEvent{Type: sandbox.EventStatus})
	b.Close()

	sub := b.Subscribe()
	var events []sandbox.AgentEvent
	for evt := range sub.Events() {
		events = append(events, evt)
	}

	require.Len(t, events, 2)
	assert.Equal(t, sandbox.EventStatus, events[0].Type)
	assert.Equal(t, sandbox.EventComplete, events[1].Type)
}
