// Package settlement converts a session's held seats plus a wallet debit
// into a confirmed booking, atomically.  This file defines the typed
// failure taxonomy.  Every failure is a returned value, never a panic, and
// none of them leaves wallet, lock or booking state changed.
package settlement

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidPin is returned when the supplied PIN does not match the
// account's stored hash.  Handlers should translate this into an HTTP 401
// response without revealing whether the account exists.
var ErrInvalidPin = errors.New("invalid pin")

// ErrTooManyPinAttempts is returned when the account is locked out after
// repeated PIN failures.  Handlers should translate this into an HTTP 429
// response.
var ErrTooManyPinAttempts = errors.New("too many pin attempts")

// ErrInsufficientFunds is returned when the wallet balance does not cover
// the total price.  Handlers should translate this into an HTTP 402
// response.
var ErrInsufficientFunds = errors.New("insufficient funds")

// ErrNoSeatsSelected is returned when the confirm request names no seats.
var ErrNoSeatsSelected = errors.New("no seats selected")

// SeatConflictError is returned when one or more seats the session
// believed it held were reassigned or expired before commit.  The UI must
// report the lost seats explicitly so the shopper can re-select; the
// remaining holds are untouched.
type SeatConflictError struct {
	Seats []string
}

func (e *SeatConflictError) Error() string {
	return fmt.Sprintf("seat conflict: lost %s", strings.Join(e.Seats, ","))
}
