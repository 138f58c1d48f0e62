package settlement

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/bus-seat-reservation/internal/lock"
	"github.com/iliyamo/bus-seat-reservation/internal/model"
	"github.com/iliyamo/bus-seat-reservation/internal/queue"
	"github.com/iliyamo/bus-seat-reservation/internal/repository"
	"github.com/iliyamo/bus-seat-reservation/internal/utils"
)

// TripStore supplies trip records.  Satisfied by *repository.TripRepo.
type TripStore interface {
	GetByID(ctx context.Context, tripID uint64) (*model.Trip, error)
}

// AccountStore supplies wallet accounts.  Satisfied by
// *repository.WalletRepo.
type AccountStore interface {
	GetByID(ctx context.Context, accountID uint64) (*model.WalletAccount, error)
}

// BookingCommitter persists the debit and the booking as one transaction.
// Satisfied by *repository.SettlementStore.
type BookingCommitter interface {
	CommitBooking(ctx context.Context, b *model.Booking, accountID uint64, priceCents uint32) error
}

// SeatLocker is the slice of the coordinator the service needs: the
// commit-time re-validation and the settle-under-lock primitive.
// Satisfied by *lock.Coordinator.
type SeatLocker interface {
	HoldsAll(ctx context.Context, tripID uint64, seats []string, sessionID string) bool
	Settle(ctx context.Context, tripID uint64, sessionID string, seats []string, commit func(context.Context) error) error
}

// ConfirmRequest carries everything one settlement attempt needs.
type ConfirmRequest struct {
	TripID     uint64
	SessionID  string
	AccountID  uint64
	SeatLabels []string
	PIN        string
}

// Service performs booking settlement.  The order of checks is fixed: PIN,
// funds, then seat ownership, with the ownership re-check and the database
// commit running while the trip's lock table is held.  Any failure leaves
// wallet balance, lock ownership and booking state untouched, so the
// shopper can retry payment without re-selecting seats.
type Service struct {
	trips    TripStore
	accounts AccountStore
	store    BookingCommitter
	locks    SeatLocker
	guard    *PinGuard
	publish  func(ctx context.Context, ev queue.BookingConfirmedEvent) error
}

// New constructs a settlement Service.  guard may be nil to disable PIN
// lockout and publish may be nil to disable event publishing; all other
// dependencies must be non-nil.
func New(trips TripStore, accounts AccountStore, store BookingCommitter, locks SeatLocker,
	guard *PinGuard, publish func(ctx context.Context, ev queue.BookingConfirmedEvent) error) *Service {
	if trips == nil || accounts == nil || store == nil || locks == nil {
		panic("nil dependency passed to settlement.New")
	}
	return &Service{trips: trips, accounts: accounts, store: store, locks: locks, guard: guard, publish: publish}
}

// Confirm converts the session's held seats into a confirmed, paid
// booking.  On success the seats become permanently occupied and the
// returned booking is CONFIRMED.  Typed failures: ErrTooManyPinAttempts,
// ErrInvalidPin, ErrInsufficientFunds, ErrNoSeatsSelected,
// *SeatConflictError (carrying the lost seats), plus pass-through
// repository sentinels such as ErrAccountNotFound and ErrTripNotFound.
func (s *Service) Confirm(ctx context.Context, req ConfirmRequest) (*model.Booking, error) {
	seats := dedupe(req.SeatLabels)
	if len(seats) == 0 {
		return nil, ErrNoSeatsSelected
	}

	if s.guard != nil && s.guard.Blocked(ctx, req.AccountID) {
		return nil, ErrTooManyPinAttempts
	}
	account, err := s.accounts.GetByID(ctx, req.AccountID)
	if err != nil {
		return nil, err
	}
	if !utils.VerifyPIN(account.PINHash, req.PIN) {
		if s.guard != nil {
			s.guard.Fail(ctx, req.AccountID)
		}
		return nil, ErrInvalidPin
	}
	if s.guard != nil {
		s.guard.Reset(ctx, req.AccountID)
	}

	trip, err := s.trips.GetByID(ctx, req.TripID)
	if err != nil {
		return nil, err
	}
	total := uint64(trip.PriceCents) * uint64(len(seats))
	if account.BalanceCents < total {
		return nil, ErrInsufficientFunds
	}

	booking := &model.Booking{
		Reference:     uuid.NewString(),
		TripID:        req.TripID,
		SessionID:     req.SessionID,
		SeatLabels:    seats,
		TotalCents:    total,
		PaymentMethod: "WALLET",
		Status:        model.BookingConfirmed,
	}

	// Ownership re-check and the durable commit happen under the trip's
	// lock table.  The balance pre-check above can go stale between read
	// and commit; the conditional debit inside CommitBooking closes that
	// window.
	err = s.locks.Settle(ctx, req.TripID, req.SessionID, seats, func(ctx context.Context) error {
		return s.store.CommitBooking(ctx, booking, req.AccountID, trip.PriceCents)
	})
	if err != nil {
		var conflict *lock.ConflictError
		switch {
		case errors.As(err, &conflict):
			return nil, &SeatConflictError{Seats: conflict.Seats}
		case errors.Is(err, repository.ErrSeatAlreadySold):
			return nil, &SeatConflictError{Seats: seats}
		case errors.Is(err, repository.ErrInsufficientFunds):
			return nil, ErrInsufficientFunds
		default:
			return nil, err
		}
	}

	if s.publish != nil {
		ev := queue.BookingConfirmedEvent{
			BookingID:     booking.ID,
			Reference:     booking.Reference,
			TripID:        trip.ID,
			Origin:        trip.Origin,
			Destination:   trip.Destination,
			Company:       trip.Company,
			DepartsAt:     trip.DepartsAt.UTC().Format(time.RFC3339),
			SeatLabels:    booking.SeatLabels,
			TotalCents:    booking.TotalCents,
			PaymentMethod: booking.PaymentMethod,
			ConfirmedAt:   booking.CreatedAt.UTC().Format(time.RFC3339),
		}
		if err := s.publish(ctx, ev); err != nil {
			// The booking is already durable; a broker outage must not
			// fail the settlement.
			log.Printf("settlement: publish booking.confirmed failed: %v", err)
		}
	}
	return booking, nil
}

// dedupe removes empty and repeated labels while preserving order.
func dedupe(labels []string) []string {
	out := make([]string, 0, len(labels))
	seen := make(map[string]struct{}, len(labels))
	for _, l := range labels {
		if l == "" {
			continue
		}
		if _, ok := seen[l]; ok {
			continue
		}
		seen[l] = struct{}{}
		out = append(out, l)
	}
	return out
}
