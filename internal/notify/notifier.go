// Package notify fans seat status changes out to every session watching a
// trip.  Delivery is best-effort: a subscriber that cannot keep up loses
// events rather than blocking the coordinator.  Consumers must treat the
// stream as a hint to refresh their view; only the coordinator's answers
// are authoritative.
package notify

import (
	"sync"

	"github.com/iliyamo/bus-seat-reservation/internal/model"
)

// SeatEvent describes one seat status transition on a trip.  SessionID
// identifies the lock owner for HELD events so clients can recognise their
// own seats; it is empty for FREE and SOLD transitions.
type SeatEvent struct {
	SeatLabel string           `json:"seat"`
	Status    model.SeatStatus `json:"status"`
	SessionID string           `json:"session_id,omitempty"`
}

// subscriber is one open stream.  Events are pushed through a buffered
// channel; when the buffer is full the event is dropped for this
// subscriber only.
type subscriber struct {
	id uint64
	ch chan SeatEvent
}

// Notifier maintains per-trip subscriber lists.  All methods are safe for
// concurrent use.  The zero value is not usable; call New.
type Notifier struct {
	mu     sync.Mutex
	nextID uint64
	trips  map[uint64][]*subscriber
	buffer int
}

// New returns a Notifier whose subscriber channels buffer up to buffer
// events.  Values below 1 fall back to a small default.
func New(buffer int) *Notifier {
	if buffer < 1 {
		buffer = 16
	}
	return &Notifier{
		trips:  make(map[uint64][]*subscriber),
		buffer: buffer,
	}
}

// Subscribe registers a new stream for the given trip and returns the
// event channel together with a cancel function.  The cancel function
// removes the subscription and closes the channel; it is safe to call
// more than once.
func (n *Notifier) Subscribe(tripID uint64) (<-chan SeatEvent, func()) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.nextID++
	sub := &subscriber{id: n.nextID, ch: make(chan SeatEvent, n.buffer)}
	n.trips[tripID] = append(n.trips[tripID], sub)

	var once sync.Once
	cancel := func() {
		once.Do(func() { n.unsubscribe(tripID, sub.id) })
	}
	return sub.ch, cancel
}

// unsubscribe removes one subscriber from a trip and closes its channel.
func (n *Notifier) unsubscribe(tripID uint64, id uint64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	subs := n.trips[tripID]
	for i, s := range subs {
		if s.id == id {
			n.trips[tripID] = append(subs[:i], subs[i+1:]...)
			close(s.ch)
			break
		}
	}
	if len(n.trips[tripID]) == 0 {
		delete(n.trips, tripID)
	}
}

// Publish delivers an event to every subscriber of the trip.  The send is
// non-blocking: a full subscriber buffer drops the event for that
// subscriber.  Publish never blocks on slow consumers, which keeps the
// coordinator's critical sections short.
func (n *Notifier) Publish(tripID uint64, ev SeatEvent) {
	n.mu.Lock()
	defer n.mu.Unlock()
	for _, s := range n.trips[tripID] {
		select {
		case s.ch <- ev:
		default: // subscriber too slow, drop
		}
	}
}

// Subscribers reports how many streams are currently open for a trip.
func (n *Notifier) Subscribers(tripID uint64) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.trips[tripID])
}
