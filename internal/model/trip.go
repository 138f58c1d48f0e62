package model

import "time"

// Trip describes a single scheduled bus departure.  Trips are the unit
// of seat inventory: every seat lock and booking is scoped to one trip.
// Pricing is flat per seat for the whole trip.
//
// Fields:
//  ID          – primary key identifier.
//  Origin      – departure city or terminal name.
//  Destination – arrival city or terminal name.
//  Company     – operating bus company name.
//  DepartsAt   – scheduled departure time (UTC).
//  ArrivesAt   – scheduled arrival time (UTC).
//  PriceCents  – price of one seat in cents.
//  SeatCount   – total number of physical seats on the coach.
type Trip struct {
	ID          uint64    // trips.id
	Origin      string    // trips.origin
	Destination string    // trips.destination
	Company     string    // trips.company
	DepartsAt   time.Time // trips.departs_at
	ArrivesAt   time.Time // trips.arrives_at
	PriceCents  uint32    // trips.price_cents
	SeatCount   uint32    // trips.seat_count
}
