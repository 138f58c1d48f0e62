// Package queue defines message payloads exchanged over the message broker.
package queue

// BookingConfirmedEvent is published when a settlement commits.  It
// contains enough information for downstream consumers to log, notify, or
// trigger analytics without querying the primary database.
type BookingConfirmedEvent struct {
	BookingID     uint64   `json:"booking_id"`
	Reference     string   `json:"reference"`
	TripID        uint64   `json:"trip_id"`
	Origin        string   `json:"origin"`
	Destination   string   `json:"destination"`
	Company       string   `json:"company"`
	DepartsAt     string   `json:"departs_at"`
	SeatLabels    []string `json:"seats"`
	TotalCents    uint64   `json:"total_cents"`
	PaymentMethod string   `json:"payment_method"`
	ConfirmedAt   string   `json:"confirmed_at"`
}
