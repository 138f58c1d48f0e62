// Package lock implements the authoritative seat lock table.  One table
// exists per trip and every operation on a trip is serialized through that
// table's mutex, so two simultaneous acquires of the same seat can never
// both succeed.  Locks are leases: each one expires unless renewed, which
// frees the seats of sessions that vanished without releasing.
package lock

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/iliyamo/bus-seat-reservation/internal/model"
	"github.com/iliyamo/bus-seat-reservation/internal/notify"
)

// ErrSeatUnavailable is returned by Acquire when the seat is sold or held
// by another session.  Contention is a routine outcome, not a fault:
// callers should pick another seat or wait for a release event.
var ErrSeatUnavailable = errors.New("seat unavailable")

// ConflictError is returned by Settle when one or more seats the session
// believed it held were lost before commit (lease expiry or forced
// release).  Seats lists the labels no longer owned.
type ConflictError struct {
	Seats []string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("seat conflict: no longer holding %s", strings.Join(e.Seats, ","))
}

// OccupiedLoader supplies the permanently sold seats of a trip.  The
// coordinator consults it once per trip, when the trip's table is first
// touched; afterwards the in-memory occupied set is kept current by
// Settle.
type OccupiedLoader interface {
	OccupiedSeats(ctx context.Context, tripID uint64) ([]string, error)
}

// Publisher receives a seat event for every lock table transition.  It is
// satisfied by *notify.Notifier.  A nil publisher disables events.
type Publisher interface {
	Publish(tripID uint64, ev notify.SeatEvent)
}

// entry is one live lock in a trip table.
type entry struct {
	sessionID  string
	acquiredAt time.Time
	expiresAt  time.Time
}

// tripTable serializes all lock operations for one trip.  occupied holds
// permanently sold seats and never shrinks; locks holds live leases.
type tripTable struct {
	mu       sync.Mutex
	loaded   bool
	occupied map[string]struct{}
	locks    map[string]entry
}

// Coordinator is the mutual-exclusion core.  It owns one table per trip;
// tables are created lazily and seeded from the OccupiedLoader.  All
// methods are safe for concurrent use.
type Coordinator struct {
	mu     sync.Mutex
	trips  map[uint64]*tripTable
	ttl    time.Duration
	loader OccupiedLoader
	pub    Publisher
	now    func() time.Time
}

// New returns a Coordinator whose locks lease for ttl.  loader must be
// non-nil; pub may be nil to disable event publishing.
func New(ttl time.Duration, loader OccupiedLoader, pub Publisher) *Coordinator {
	if loader == nil {
		panic("nil OccupiedLoader passed to lock.New")
	}
	return &Coordinator{
		trips:  make(map[uint64]*tripTable),
		ttl:    ttl,
		loader: loader,
		pub:    pub,
		now:    time.Now,
	}
}

// table returns the lock table for a trip, creating it on first use.
func (c *Coordinator) table(tripID uint64) *tripTable {
	c.mu.Lock()
	defer c.mu.Unlock()
	tt, ok := c.trips[tripID]
	if !ok {
		tt = &tripTable{
			occupied: make(map[string]struct{}),
			locks:    make(map[string]entry),
		}
		c.trips[tripID] = tt
	}
	return tt
}

// ensureLoaded seeds the occupied set from the loader.  Called with the
// table mutex held.  A loader failure leaves the table unloaded so the
// next call retries.
func (c *Coordinator) ensureLoaded(ctx context.Context, tripID uint64, tt *tripTable) error {
	if tt.loaded {
		return nil
	}
	sold, err := c.loader.OccupiedSeats(ctx, tripID)
	if err != nil {
		return err
	}
	for _, s := range sold {
		tt.occupied[s] = struct{}{}
	}
	tt.loaded = true
	return nil
}

// live reports whether the seat carries an unexpired lock and returns it.
func (tt *tripTable) live(seat string, now time.Time) (entry, bool) {
	e, ok := tt.locks[seat]
	if !ok || !e.expiresAt.After(now) {
		return entry{}, false
	}
	return e, true
}

// Acquire grants the session an exclusive lease on the seat.  It succeeds
// when the seat is free or when the session already owns the live lock
// (idempotent re-acquire, which also refreshes the lease).  It fails with
// ErrSeatUnavailable when the seat is sold or held by someone else.
func (c *Coordinator) Acquire(ctx context.Context, tripID uint64, seat, sessionID string) error {
	tt := c.table(tripID)
	tt.mu.Lock()
	defer tt.mu.Unlock()
	if err := c.ensureLoaded(ctx, tripID, tt); err != nil {
		return err
	}
	if _, sold := tt.occupied[seat]; sold {
		return ErrSeatUnavailable
	}
	now := c.now()
	if e, ok := tt.live(seat, now); ok {
		if e.sessionID != sessionID {
			return ErrSeatUnavailable
		}
		// Re-acquire by the owner refreshes the lease in place.
		e.expiresAt = now.Add(c.ttl)
		tt.locks[seat] = e
		return nil
	}
	tt.locks[seat] = entry{
		sessionID:  sessionID,
		acquiredAt: now,
		expiresAt:  now.Add(c.ttl),
	}
	c.publish(tripID, notify.SeatEvent{SeatLabel: seat, Status: model.SeatHeld, SessionID: sessionID})
	return nil
}

// Release removes the session's lock on the seat.  It is a no-op when the
// session is not the current owner, so a stale release can never free a
// competitor's lock.
func (c *Coordinator) Release(ctx context.Context, tripID uint64, seat, sessionID string) {
	tt := c.table(tripID)
	tt.mu.Lock()
	e, ok := tt.live(seat, c.now())
	if !ok || e.sessionID != sessionID {
		tt.mu.Unlock()
		return
	}
	delete(tt.locks, seat)
	tt.mu.Unlock()
	c.publish(tripID, notify.SeatEvent{SeatLabel: seat, Status: model.SeatFree})
}

// ReleaseAll frees every seat the session holds on the trip and returns the
// released labels.  This is the cleanup path bound to session end: deselect
// all, page exit, or token expiry.
func (c *Coordinator) ReleaseAll(ctx context.Context, tripID uint64, sessionID string) []string {
	tt := c.table(tripID)
	tt.mu.Lock()
	now := c.now()
	var released []string
	for seat := range tt.locks {
		if e, ok := tt.live(seat, now); ok && e.sessionID == sessionID {
			delete(tt.locks, seat)
			released = append(released, seat)
		}
	}
	tt.mu.Unlock()
	for _, seat := range released {
		c.publish(tripID, notify.SeatEvent{SeatLabel: seat, Status: model.SeatFree})
	}
	return released
}

// Renew extends the lease of every live lock the session holds on the trip
// and returns how many were renewed.  Clients call this periodically while
// seats stay selected so an active shopper never loses a seat to expiry.
func (c *Coordinator) Renew(ctx context.Context, tripID uint64, sessionID string) int {
	tt := c.table(tripID)
	tt.mu.Lock()
	defer tt.mu.Unlock()
	now := c.now()
	renewed := 0
	for seat := range tt.locks {
		if e, ok := tt.live(seat, now); ok && e.sessionID == sessionID {
			e.expiresAt = now.Add(c.ttl)
			tt.locks[seat] = e
			renewed++
		}
	}
	return renewed
}

// HoldsAll reports whether the session currently owns a live lock on every
// one of the given seats.  It reads the live table, never a cached view,
// which is what makes the settlement re-check trustworthy.
func (c *Coordinator) HoldsAll(ctx context.Context, tripID uint64, seats []string, sessionID string) bool {
	tt := c.table(tripID)
	tt.mu.Lock()
	defer tt.mu.Unlock()
	now := c.now()
	for _, seat := range seats {
		e, ok := tt.live(seat, now)
		if !ok || e.sessionID != sessionID {
			return false
		}
	}
	return len(seats) > 0
}

// Settle converts the session's held seats into sold ones as one unit.  It
// re-validates ownership, runs commit (the database transaction performing
// the debit and booking insert) while the trip table is held, and only on
// success moves the seats to the occupied set.  A failed commit leaves the
// locks exactly as they were so the session can retry payment without
// re-selecting.  Lost seats surface as a *ConflictError.
func (c *Coordinator) Settle(ctx context.Context, tripID uint64, sessionID string, seats []string, commit func(context.Context) error) error {
	tt := c.table(tripID)
	tt.mu.Lock()
	if err := c.ensureLoaded(ctx, tripID, tt); err != nil {
		tt.mu.Unlock()
		return err
	}
	now := c.now()
	var lost []string
	for _, seat := range seats {
		e, ok := tt.live(seat, now)
		if !ok || e.sessionID != sessionID {
			lost = append(lost, seat)
		}
	}
	if len(lost) > 0 {
		tt.mu.Unlock()
		return &ConflictError{Seats: lost}
	}
	if err := commit(ctx); err != nil {
		tt.mu.Unlock()
		return err
	}
	for _, seat := range seats {
		delete(tt.locks, seat)
		tt.occupied[seat] = struct{}{}
	}
	tt.mu.Unlock()
	for _, seat := range seats {
		c.publish(tripID, notify.SeatEvent{SeatLabel: seat, Status: model.SeatSold})
	}
	return nil
}

// Snapshot returns the status of every seat that is sold or held on the
// trip, from the viewpoint of the given session.  Seats absent from the
// map are free.  The seat map handler merges this over the static layout.
func (c *Coordinator) Snapshot(ctx context.Context, tripID uint64, sessionID string) (map[string]model.SeatStatus, error) {
	tt := c.table(tripID)
	tt.mu.Lock()
	defer tt.mu.Unlock()
	if err := c.ensureLoaded(ctx, tripID, tt); err != nil {
		return nil, err
	}
	now := c.now()
	out := make(map[string]model.SeatStatus, len(tt.occupied)+len(tt.locks))
	for seat := range tt.occupied {
		out[seat] = model.SeatSold
	}
	for seat := range tt.locks {
		e, ok := tt.live(seat, now)
		if !ok {
			continue
		}
		if e.sessionID == sessionID {
			out[seat] = model.SeatHeldByYou
		} else {
			out[seat] = model.SeatHeld
		}
	}
	return out, nil
}

// SessionLocks returns every live lock the session holds on the trip,
// including lease deadlines so clients can schedule renewals before a
// hold silently lapses.
func (c *Coordinator) SessionLocks(ctx context.Context, tripID uint64, sessionID string) []model.SeatLock {
	tt := c.table(tripID)
	tt.mu.Lock()
	defer tt.mu.Unlock()
	now := c.now()
	var out []model.SeatLock
	for seat := range tt.locks {
		e, ok := tt.live(seat, now)
		if !ok || e.sessionID != sessionID {
			continue
		}
		out = append(out, model.SeatLock{
			TripID:     tripID,
			SeatLabel:  seat,
			SessionID:  sessionID,
			AcquiredAt: e.acquiredAt,
			ExpiresAt:  e.expiresAt,
		})
	}
	return out
}

// publish forwards an event when a publisher is configured.
func (c *Coordinator) publish(tripID uint64, ev notify.SeatEvent) {
	if c.pub != nil {
		c.pub.Publish(tripID, ev)
	}
}

// StartJanitor launches the background sweeper that removes expired leases
// and announces the freed seats.  Expired locks are already invisible to
// every read, so the sweep only reclaims memory and emits the FREE events
// that waiting shoppers rely on.  The goroutine stops when ctx is
// cancelled.
func (c *Coordinator) StartJanitor(ctx context.Context) {
	interval := c.ttl / 4
	if interval < time.Second {
		interval = time.Second
	}
	go func() {
		t := time.NewTicker(interval)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				c.sweep()
			}
		}
	}()
}

// sweep drops every expired lock across all trips and publishes a FREE
// event per reclaimed seat.
func (c *Coordinator) sweep() {
	c.mu.Lock()
	tables := make(map[uint64]*tripTable, len(c.trips))
	for id, tt := range c.trips {
		tables[id] = tt
	}
	c.mu.Unlock()

	now := c.now()
	for tripID, tt := range tables {
		tt.mu.Lock()
		var freed []string
		for seat, e := range tt.locks {
			if !e.expiresAt.After(now) {
				delete(tt.locks, seat)
				freed = append(freed, seat)
			}
		}
		tt.mu.Unlock()
		if len(freed) > 0 {
			log.Printf("seat-lock: trip %d reclaimed %d expired hold(s)", tripID, len(freed))
		}
		for _, seat := range freed {
			c.publish(tripID, notify.SeatEvent{SeatLabel: seat, Status: model.SeatFree})
		}
	}
}
