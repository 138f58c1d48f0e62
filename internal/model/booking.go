package model

import "time"

// BookingStatus enumerates the lifecycle states of a booking.  Settlement
// is atomic, so in practice a stored booking is always CONFIRMED; FAILED
// exists only for callers that choose to persist an audit record of a
// rejected attempt.
const (
	BookingPending   = "PENDING"
	BookingConfirmed = "CONFIRMED"
	BookingFailed    = "FAILED"
)

// Booking is a durable record of a paid seat purchase.  It is created
// exactly once, by the settlement service, inside the same transaction as
// the wallet debit.  SeatLabels is never empty.
//
// Fields:
//  ID            – primary key identifier.
//  Reference     – opaque public reference handed to the client.
//  TripID        – trip the seats belong to.
//  SessionID     – shopping session that performed the purchase.
//  SeatLabels    – seats sold by this booking.
//  TotalCents    – total amount debited from the wallet.
//  PaymentMethod – payment instrument, currently always "WALLET".
//  Status        – CONFIRMED for every stored booking.
//  CreatedAt     – commit timestamp.
type Booking struct {
	ID            uint64    `json:"id"`
	Reference     string    `json:"reference"`
	TripID        uint64    `json:"trip_id"`
	SessionID     string    `json:"session_id"`
	SeatLabels    []string  `json:"seats"`
	TotalCents    uint64    `json:"total_cents"`
	PaymentMethod string    `json:"payment_method"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
}
