// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers and the settlement service to distinguish between different
// failure scenarios. For example, ErrTripNotFound lets a handler answer
// 404 while any other database error becomes a 500, and
// ErrInsufficientFunds lets the settlement service report the exact
// reason a conditional debit did not apply.
package repository

import "errors"

// ErrTripNotFound is returned when no trip exists for the given
// identifier. Handlers should translate this into an HTTP 404 response.
var ErrTripNotFound = errors.New("trip not found")

// ErrAccountNotFound is returned when no wallet account exists for the
// given identifier. Handlers should translate this into an HTTP 404
// response.
var ErrAccountNotFound = errors.New("wallet account not found")

// ErrInsufficientFunds is returned when a conditional debit does not
// apply because the wallet balance is lower than the amount. The wallet
// row is left untouched.
var ErrInsufficientFunds = errors.New("insufficient funds")

// ErrSeatAlreadySold is returned when inserting booking seats violates
// the unique (trip_id, seat_label) constraint. It means another booking
// confirmed the same seat first; the caller must treat this as a seat
// conflict, never retry the insert.
var ErrSeatAlreadySold = errors.New("seat already sold")
