package notify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/bus-seat-reservation/internal/model"
)

func TestFanOutToAllSubscribers(t *testing.T) {
	n := New(4)

	a, cancelA := n.Subscribe(1)
	b, cancelB := n.Subscribe(1)
	defer cancelA()
	defer cancelB()

	ev := SeatEvent{SeatLabel: "3C", Status: model.SeatHeld, SessionID: "s1"}
	n.Publish(1, ev)

	assert.Equal(t, ev, <-a)
	assert.Equal(t, ev, <-b)
}

func TestPublishIsScopedToTrip(t *testing.T) {
	n := New(4)

	other, cancel := n.Subscribe(2)
	defer cancel()

	n.Publish(1, SeatEvent{SeatLabel: "1A", Status: model.SeatFree})
	select {
	case ev := <-other:
		t.Fatalf("subscriber of trip 2 received event for trip 1: %+v", ev)
	default:
	}
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	n := New(4)

	ch, cancel := n.Subscribe(1)
	require.Equal(t, 1, n.Subscribers(1))

	cancel()
	assert.Equal(t, 0, n.Subscribers(1))
	_, open := <-ch
	assert.False(t, open, "cancel must close the channel")

	// Cancel is idempotent.
	cancel()
}

func TestSlowSubscriberDropsInsteadOfBlocking(t *testing.T) {
	n := New(1)

	slow, cancelSlow := n.Subscribe(1)
	fast, cancelFast := n.Subscribe(1)
	defer cancelSlow()
	defer cancelFast()

	// Fill the slow subscriber's buffer, then keep the fast one drained.
	n.Publish(1, SeatEvent{SeatLabel: "1A", Status: model.SeatHeld})
	<-fast
	n.Publish(1, SeatEvent{SeatLabel: "1B", Status: model.SeatHeld})
	<-fast

	// The slow subscriber only ever sees the first event; the second was
	// dropped without blocking Publish.
	ev := <-slow
	assert.Equal(t, "1A", ev.SeatLabel)
	select {
	case ev := <-slow:
		t.Fatalf("expected drop, got %+v", ev)
	default:
	}
}
