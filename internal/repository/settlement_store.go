package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/bus-seat-reservation/internal/model"
)

// SettlementStore runs the durable half of a settlement: the wallet debit
// and the booking insert, as one database transaction.  Either everything
// commits or nothing does; the settlement service invokes it while the
// trip's lock table is held, which is what makes the whole confirm step
// atomic end to end.
type SettlementStore struct {
	db       *sql.DB
	wallets  *WalletRepo
	bookings *BookingRepo
}

// NewSettlementStore returns a SettlementStore combining the given
// repositories.  All dependencies must be non-nil.
func NewSettlementStore(db *sql.DB, wallets *WalletRepo, bookings *BookingRepo) *SettlementStore {
	if db == nil || wallets == nil || bookings == nil {
		panic("nil dependency passed to NewSettlementStore")
	}
	return &SettlementStore{db: db, wallets: wallets, bookings: bookings}
}

// CommitBooking debits the wallet and persists the booking plus its seats
// in a single transaction.  On success the booking's ID and CreatedAt are
// filled in.  On any error the transaction is rolled back and the wallet
// balance is unchanged; ErrInsufficientFunds and ErrSeatAlreadySold pass
// through for the settlement service to classify.
func (s *SettlementStore) CommitBooking(ctx context.Context, b *model.Booking, accountID uint64, priceCents uint32) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if err := s.wallets.DebitTx(ctx, tx, accountID, b.TotalCents); err != nil {
		return err
	}
	if err := s.bookings.CreateTx(ctx, tx, b); err != nil {
		return err
	}
	if err := s.bookings.CreateSeatsBulkTx(ctx, tx, b, priceCents); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}
