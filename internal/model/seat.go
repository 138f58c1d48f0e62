package model

// SeatStatus is the derived availability of a single seat as seen by one
// session.  It is never stored: the seat map handler computes it from the
// permanent occupied set plus the live lock table at request time.
type SeatStatus string

const (
	// SeatFree means the seat is neither sold nor held by anyone.
	SeatFree SeatStatus = "FREE"
	// SeatHeld means another session currently holds a live lock on the seat.
	SeatHeld SeatStatus = "HELD"
	// SeatHeldByYou means the requesting session holds the lock itself.
	SeatHeldByYou SeatStatus = "HELD_BY_YOU"
	// SeatSold means the seat was permanently sold by a confirmed booking.
	SeatSold SeatStatus = "SOLD"
)

// SeatRow is one physical row of the coach.  Left and Right hold the seat
// labels on either side of the aisle; a trailing partial row may leave
// Right short or empty.
type SeatRow struct {
	Number int      `json:"row"`
	Left   []string `json:"left"`
	Right  []string `json:"right"`
}

// SeatLayout is the full seating plan of a trip.  The grid is derived from
// the trip's seat count (2+2 across the aisle, trailing partial row) and is
// deterministic for a given trip: loading it twice yields the same layout.
// Occupied lists the seats already sold; it reflects confirmed bookings
// only, never temporary holds.
type SeatLayout struct {
	TripID   uint64    `json:"trip_id"`
	Rows     []SeatRow `json:"rows"`
	Occupied []string  `json:"occupied"`
}

// Labels returns every seat label in the layout in row order.  Useful for
// validating that a requested seat actually exists on the coach.
func (l *SeatLayout) Labels() []string {
	out := make([]string, 0, len(l.Rows)*4)
	for _, r := range l.Rows {
		out = append(out, r.Left...)
		out = append(out, r.Right...)
	}
	return out
}
