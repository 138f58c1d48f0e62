package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/iliyamo/bus-seat-reservation/internal/model"
)

// mysqlDupEntry is the MySQL error number for a unique key violation.
const mysqlDupEntry = 1062

// BookingRepo provides data access to the bookings and booking_seats
// tables.  booking_seats carries a UNIQUE(trip_id, seat_label) constraint,
// making the database the last line of defence against double-selling a
// seat even if the in-memory lock table were ever wrong.
type BookingRepo struct {
	db *sql.DB
}

// NewBookingRepo returns a new BookingRepo bound to the provided database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

// DB exposes the underlying handle so services can open transactions that
// span repositories.
func (r *BookingRepo) DB() *sql.DB { return r.db }

// CreateTx inserts the booking row within the provided transaction and
// fills in its generated ID and creation time.  The caller is responsible
// for committing or rolling back the transaction.
func (r *BookingRepo) CreateTx(ctx context.Context, tx *sql.Tx, b *model.Booking) error {
	const q = `INSERT INTO bookings (reference, trip_id, session_id, total_cents, payment_method, status, created_at)
			   VALUES (?, ?, ?, ?, ?, ?, ?)`
	now := time.Now().UTC()
	res, err := tx.ExecContext(ctx, q,
		b.Reference, b.TripID, b.SessionID, b.TotalCents, b.PaymentMethod, b.Status,
		now.Format("2006-01-02 15:04:05"),
	)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = uint64(id)
	b.CreatedAt = now
	return nil
}

// CreateSeatsBulkTx inserts one booking_seats row per sold seat within the
// provided transaction.  A unique key violation on (trip_id, seat_label)
// is mapped to ErrSeatAlreadySold; the caller must roll back and report a
// seat conflict.  Passing an empty slice has no effect and returns nil.
func (r *BookingRepo) CreateSeatsBulkTx(ctx context.Context, tx *sql.Tx, b *model.Booking, priceCents uint32) error {
	if len(b.SeatLabels) == 0 {
		return nil
	}
	query := `INSERT INTO booking_seats (booking_id, trip_id, seat_label, price_cents) VALUES `
	args := make([]interface{}, 0, len(b.SeatLabels)*4)
	for i, seat := range b.SeatLabels {
		if i > 0 {
			query += ","
		}
		query += "(?, ?, ?, ?)"
		args = append(args, b.ID, b.TripID, seat, priceCents)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		var me *mysql.MySQLError
		if errors.As(err, &me) && me.Number == mysqlDupEntry {
			return ErrSeatAlreadySold
		}
		return err
	}
	return nil
}

// OccupiedSeats returns the labels of every seat already sold on the trip.
// The coordinator calls this once when a trip's lock table is first
// touched and the inventory calls it on every seat map load.
func (r *BookingRepo) OccupiedSeats(ctx context.Context, tripID uint64) ([]string, error) {
	const q = `SELECT seat_label FROM booking_seats WHERE trip_id = ? ORDER BY seat_label`
	rows, err := r.db.QueryContext(ctx, q, tripID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	seats := make([]string, 0, 8)
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		seats = append(seats, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return seats, nil
}

// GetByReference loads one booking together with its seats.  It returns
// sql.ErrNoRows unchanged when the reference is unknown.
func (r *BookingRepo) GetByReference(ctx context.Context, reference string) (*model.Booking, error) {
	const q = `SELECT id, reference, trip_id, session_id, total_cents, payment_method, status, created_at
			   FROM bookings WHERE reference = ?`
	var b model.Booking
	err := r.db.QueryRowContext(ctx, q, reference).Scan(
		&b.ID, &b.Reference, &b.TripID, &b.SessionID, &b.TotalCents,
		&b.PaymentMethod, &b.Status, &b.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	const qs = `SELECT seat_label FROM booking_seats WHERE booking_id = ? ORDER BY seat_label`
	rows, err := r.db.QueryContext(ctx, qs, b.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		b.SeatLabels = append(b.SeatLabels, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &b, nil
}
