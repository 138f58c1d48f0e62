package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/bus-seat-reservation/internal/model"
)

// TripRepo provides read access to the trips table.  Trip data is owned by
// the surrounding route management system; this service only ever reads
// it, so the repository deliberately has no mutation methods.
type TripRepo struct {
	db *sql.DB
}

// NewTripRepo returns a new TripRepo bound to the provided database.
func NewTripRepo(db *sql.DB) *TripRepo { return &TripRepo{db: db} }

// DB exposes the underlying handle so services can open transactions that
// span repositories.
func (r *TripRepo) DB() *sql.DB { return r.db }

// GetByID loads one trip.  It returns ErrTripNotFound when no row exists.
func (r *TripRepo) GetByID(ctx context.Context, tripID uint64) (*model.Trip, error) {
	const q = `SELECT id, origin, destination, company, departs_at, arrives_at, price_cents, seat_count
			   FROM trips WHERE id = ?`
	var t model.Trip
	err := r.db.QueryRowContext(ctx, q, tripID).Scan(
		&t.ID, &t.Origin, &t.Destination, &t.Company,
		&t.DepartsAt, &t.ArrivesAt, &t.PriceCents, &t.SeatCount,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTripNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}
