// Package inventory produces the fixed seating plan of a trip.  The plan
// is pure derivation: given the trip's seat count and its confirmed sales
// it always yields the same grid, so the result is safe to cache and to
// recompute on every trip view.
package inventory

import (
	"context"
	"strconv"

	"github.com/iliyamo/bus-seat-reservation/internal/model"
)

// seatColumns are the seat positions of one coach row, two on each side of
// the aisle.  A trailing partial row fills positions in this order.
var seatColumns = [4]string{"A", "B", "C", "D"}

// TripSource supplies trip records.  Satisfied by *repository.TripRepo.
type TripSource interface {
	GetByID(ctx context.Context, tripID uint64) (*model.Trip, error)
}

// SoldSource supplies the permanently sold seats of a trip.  Satisfied by
// *repository.BookingRepo.
type SoldSource interface {
	OccupiedSeats(ctx context.Context, tripID uint64) ([]string, error)
}

// Inventory builds seat layouts.  It has no mutation operations: occupied
// status changes only when settlement commits a sale.
type Inventory struct {
	trips TripSource
	sold  SoldSource
}

// New returns an Inventory reading from the given sources.
func New(trips TripSource, sold SoldSource) *Inventory {
	if trips == nil || sold == nil {
		panic("nil source passed to inventory.New")
	}
	return &Inventory{trips: trips, sold: sold}
}

// LoadSeats returns the full grid and occupied set for a trip.  The coach
// is laid out 2+2 with the aisle between columns B and C; a seat count
// that is not a multiple of four leaves a partial last row.  Errors from
// the trip source pass through unchanged so callers can distinguish a
// missing trip from a database fault.
func (v *Inventory) LoadSeats(ctx context.Context, tripID uint64) (*model.SeatLayout, error) {
	trip, err := v.trips.GetByID(ctx, tripID)
	if err != nil {
		return nil, err
	}
	occupied, err := v.sold.OccupiedSeats(ctx, tripID)
	if err != nil {
		return nil, err
	}
	layout := &model.SeatLayout{
		TripID:   tripID,
		Rows:     buildRows(trip.SeatCount),
		Occupied: occupied,
	}
	return layout, nil
}

// HasSeat reports whether the label names a real seat on the trip's coach.
// Handlers use it to reject locks on aisle or out-of-range positions.
func (v *Inventory) HasSeat(ctx context.Context, tripID uint64, label string) (bool, error) {
	trip, err := v.trips.GetByID(ctx, tripID)
	if err != nil {
		return false, err
	}
	for _, r := range buildRows(trip.SeatCount) {
		for _, s := range r.Left {
			if s == label {
				return true, nil
			}
		}
		for _, s := range r.Right {
			if s == label {
				return true, nil
			}
		}
	}
	return false, nil
}

// buildRows derives the row grid from the total seat count.
func buildRows(seatCount uint32) []model.SeatRow {
	rows := make([]model.SeatRow, 0, (seatCount+3)/4)
	remaining := int(seatCount)
	for row := 1; remaining > 0; row++ {
		r := model.SeatRow{Number: row}
		for i := 0; i < 4 && remaining > 0; i++ {
			label := seatLabel(row, i)
			if i < 2 {
				r.Left = append(r.Left, label)
			} else {
				r.Right = append(r.Right, label)
			}
			remaining--
		}
		rows = append(rows, r)
	}
	return rows
}

// seatLabel formats a row number and column index into a label like "7C".
func seatLabel(row, col int) string {
	return strconv.Itoa(row) + seatColumns[col]
}
