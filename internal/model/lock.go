package model

import "time"

// SeatLock is a temporary, session-scoped exclusive claim on one seat of a
// trip.  Locks exist only in the coordinator's in-memory table; they are
// never persisted.  A lock prevents every other session from acquiring the
// same seat until it is released, converted to a sale, or its lease runs
// out.
//
// Fields:
//  TripID     – trip the seat belongs to.
//  SeatLabel  – seat being held, e.g. "7C".
//  SessionID  – session that owns the lock.
//  AcquiredAt – when the lock was first granted.
//  ExpiresAt  – lease deadline; the lock is treated as absent after this.
type SeatLock struct {
	TripID     uint64    `json:"trip_id"`
	SeatLabel  string    `json:"seat"`
	SessionID  string    `json:"session_id"`
	AcquiredAt time.Time `json:"acquired_at"`
	ExpiresAt  time.Time `json:"expires_at"`
}
