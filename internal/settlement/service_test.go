package settlement

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/bus-seat-reservation/internal/lock"
	"github.com/iliyamo/bus-seat-reservation/internal/model"
	"github.com/iliyamo/bus-seat-reservation/internal/queue"
	"github.com/iliyamo/bus-seat-reservation/internal/repository"
	"github.com/iliyamo/bus-seat-reservation/internal/utils"
)

const (
	testPIN   = "4321"
	testTrip  = uint64(42)
	testAcct  = uint64(7)
	seatPrice = uint32(1000)
)

type stubTrips struct {
	trip *model.Trip
	err  error
}

func (s *stubTrips) GetByID(ctx context.Context, tripID uint64) (*model.Trip, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.trip, nil
}

// fakeWallet backs both the account lookups and the commit-time debit so a
// test can assert the balance end to end.
type fakeWallet struct {
	balance uint64
	pinHash string
}

func (w *fakeWallet) GetByID(ctx context.Context, accountID uint64) (*model.WalletAccount, error) {
	if accountID != testAcct {
		return nil, repository.ErrAccountNotFound
	}
	return &model.WalletAccount{ID: accountID, BalanceCents: w.balance, Currency: "IRR", PINHash: w.pinHash}, nil
}

// fakeCommitter stands in for the settlement store.  It debits the fake
// wallet and records the booking, or fails with failWith leaving
// everything untouched.
type fakeCommitter struct {
	wallet   *fakeWallet
	failWith error
	calls    int
	saved    []*model.Booking
}

func (f *fakeCommitter) CommitBooking(ctx context.Context, b *model.Booking, accountID uint64, priceCents uint32) error {
	f.calls++
	if f.failWith != nil {
		return f.failWith
	}
	if f.wallet.balance < b.TotalCents {
		return repository.ErrInsufficientFunds
	}
	f.wallet.balance -= b.TotalCents
	b.ID = uint64(len(f.saved) + 1)
	b.CreatedAt = time.Now().UTC()
	f.saved = append(f.saved, b)
	return nil
}

type stubLoader struct{}

func (stubLoader) OccupiedSeats(ctx context.Context, tripID uint64) ([]string, error) {
	return nil, nil
}

type fixture struct {
	svc       *Service
	wallet    *fakeWallet
	store     *fakeCommitter
	locks     *lock.Coordinator
	published []queue.BookingConfirmedEvent
}

func newFixture(t *testing.T, balance uint64) *fixture {
	t.Helper()
	hash, err := utils.HashPIN(testPIN, bcrypt.MinCost)
	require.NoError(t, err)

	f := &fixture{
		wallet: &fakeWallet{balance: balance, pinHash: hash},
		locks:  lock.New(time.Minute, stubLoader{}, nil),
	}
	f.store = &fakeCommitter{wallet: f.wallet}
	trips := &stubTrips{trip: &model.Trip{
		ID:          testTrip,
		Origin:      "Tehran",
		Destination: "Shiraz",
		Company:     "Royal Safar",
		DepartsAt:   time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC),
		PriceCents:  seatPrice,
		SeatCount:   44,
	}}
	f.svc = New(trips, f.wallet, f.store, f.locks, nil,
		func(ctx context.Context, ev queue.BookingConfirmedEvent) error {
			f.published = append(f.published, ev)
			return nil
		})
	return f
}

func confirmReq(session string, pin string, seats ...string) ConfirmRequest {
	return ConfirmRequest{
		TripID:     testTrip,
		SessionID:  session,
		AccountID:  testAcct,
		SeatLabels: seats,
		PIN:        pin,
	}
}

func TestConfirmInvalidPinLeavesEverythingUntouched(t *testing.T) {
	f := newFixture(t, 5000)
	ctx := context.Background()
	require.NoError(t, f.locks.Acquire(ctx, testTrip, "1A", "session-x"))

	_, err := f.svc.Confirm(ctx, confirmReq("session-x", "9999", "1A"))
	assert.ErrorIs(t, err, ErrInvalidPin)

	assert.Equal(t, uint64(5000), f.wallet.balance)
	assert.Zero(t, f.store.calls)
	assert.True(t, f.locks.HoldsAll(ctx, testTrip, []string{"1A"}, "session-x"))
	assert.Empty(t, f.published)
}

func TestConfirmNoSeatsSelected(t *testing.T) {
	f := newFixture(t, 5000)

	_, err := f.svc.Confirm(context.Background(), confirmReq("session-x", testPIN))
	assert.ErrorIs(t, err, ErrNoSeatsSelected)
	assert.Zero(t, f.store.calls)
}

func TestConfirmUnknownAccount(t *testing.T) {
	f := newFixture(t, 5000)
	req := confirmReq("session-x", testPIN, "1A")
	req.AccountID = 999

	_, err := f.svc.Confirm(context.Background(), req)
	assert.ErrorIs(t, err, repository.ErrAccountNotFound)
}

// TestConfirmInsufficientFundsThenSuccess walks the full retry scenario:
// two sessions hold different seats without conflict, the first confirm
// fails on funds leaving the hold intact, and a top-up later the same
// session settles successfully.
func TestConfirmInsufficientFundsThenSuccess(t *testing.T) {
	f := newFixture(t, 500)
	ctx := context.Background()

	require.NoError(t, f.locks.Acquire(ctx, testTrip, "1A", "session-x"))
	require.NoError(t, f.locks.Acquire(ctx, testTrip, "1B", "session-y"))

	_, err := f.svc.Confirm(ctx, confirmReq("session-x", testPIN, "1A"))
	assert.ErrorIs(t, err, ErrInsufficientFunds)
	assert.Equal(t, uint64(500), f.wallet.balance, "failed settlement must not debit")
	assert.True(t, f.locks.HoldsAll(ctx, testTrip, []string{"1A"}, "session-x"),
		"failed settlement must keep the hold so payment can be retried")

	// Top up and retry.
	f.wallet.balance = 1500
	booking, err := f.svc.Confirm(ctx, confirmReq("session-x", testPIN, "1A"))
	require.NoError(t, err)

	assert.Equal(t, []string{"1A"}, booking.SeatLabels)
	assert.Equal(t, uint64(1000), booking.TotalCents)
	assert.Equal(t, model.BookingConfirmed, booking.Status)
	assert.Equal(t, "WALLET", booking.PaymentMethod)
	assert.NotEmpty(t, booking.Reference)
	assert.Equal(t, uint64(500), f.wallet.balance)

	// 1A is sold now, for everyone including its buyer.
	assert.ErrorIs(t, f.locks.Acquire(ctx, testTrip, "1A", "session-y"), lock.ErrSeatUnavailable)
	assert.ErrorIs(t, f.locks.Acquire(ctx, testTrip, "1A", "session-x"), lock.ErrSeatUnavailable)
	// Y's unrelated hold was never touched.
	assert.True(t, f.locks.HoldsAll(ctx, testTrip, []string{"1B"}, "session-y"))

	require.Len(t, f.published, 1)
	assert.Equal(t, booking.Reference, f.published[0].Reference)
	assert.Equal(t, []string{"1A"}, f.published[0].SeatLabels)
}

// TestConfirmSeatConflictAtCommit simulates a missed notification: a seat
// the session believes it holds was force-released and re-acquired by
// another session before commit.  The confirm must fail with the lost seat
// named, not silently succeed.
func TestConfirmSeatConflictAtCommit(t *testing.T) {
	f := newFixture(t, 5000)
	ctx := context.Background()

	require.NoError(t, f.locks.Acquire(ctx, testTrip, "3A", "session-x"))
	f.locks.ReleaseAll(ctx, testTrip, "session-x")
	require.NoError(t, f.locks.Acquire(ctx, testTrip, "3A", "session-y"))

	_, err := f.svc.Confirm(ctx, confirmReq("session-x", testPIN, "3A"))
	var conflict *SeatConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, []string{"3A"}, conflict.Seats)

	assert.Equal(t, uint64(5000), f.wallet.balance)
	assert.Zero(t, f.store.calls)
	assert.True(t, f.locks.HoldsAll(ctx, testTrip, []string{"3A"}, "session-y"))
	assert.Empty(t, f.published)
}

func TestConfirmBalanceRaceCaughtByConditionalDebit(t *testing.T) {
	f := newFixture(t, 1000)
	ctx := context.Background()
	require.NoError(t, f.locks.Acquire(ctx, testTrip, "1A", "session-x"))

	// The pre-check passes but the conditional debit reports the balance
	// moved underneath it.
	f.store.failWith = repository.ErrInsufficientFunds
	_, err := f.svc.Confirm(ctx, confirmReq("session-x", testPIN, "1A"))
	assert.ErrorIs(t, err, ErrInsufficientFunds)

	// The hold survives and the seat was not marked sold.
	assert.True(t, f.locks.HoldsAll(ctx, testTrip, []string{"1A"}, "session-x"))
}

func TestConfirmDuplicateSaleMapsToConflict(t *testing.T) {
	f := newFixture(t, 5000)
	ctx := context.Background()
	require.NoError(t, f.locks.Acquire(ctx, testTrip, "1A", "session-x"))

	f.store.failWith = repository.ErrSeatAlreadySold
	_, err := f.svc.Confirm(ctx, confirmReq("session-x", testPIN, "1A"))
	var conflict *SeatConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, []string{"1A"}, conflict.Seats)
}

func TestConfirmDeduplicatesSeats(t *testing.T) {
	f := newFixture(t, 5000)
	ctx := context.Background()
	require.NoError(t, f.locks.Acquire(ctx, testTrip, "1A", "session-x"))

	booking, err := f.svc.Confirm(ctx, confirmReq("session-x", testPIN, "1A", "1A", ""))
	require.NoError(t, err)
	assert.Equal(t, []string{"1A"}, booking.SeatLabels)
	assert.Equal(t, uint64(1000), booking.TotalCents, "duplicate labels must not double-charge")
}

func TestConfirmPublishErrorDoesNotFailSettlement(t *testing.T) {
	hash, err := utils.HashPIN(testPIN, bcrypt.MinCost)
	require.NoError(t, err)
	wallet := &fakeWallet{balance: 5000, pinHash: hash}
	store := &fakeCommitter{wallet: wallet}
	locks := lock.New(time.Minute, stubLoader{}, nil)
	trips := &stubTrips{trip: &model.Trip{ID: testTrip, PriceCents: seatPrice, SeatCount: 44}}
	svc := New(trips, wallet, store, locks, nil,
		func(ctx context.Context, ev queue.BookingConfirmedEvent) error {
			return errors.New("broker down")
		})

	ctx := context.Background()
	require.NoError(t, locks.Acquire(ctx, testTrip, "1A", "session-x"))
	booking, err := svc.Confirm(ctx, confirmReq("session-x", testPIN, "1A"))
	require.NoError(t, err)
	assert.Equal(t, model.BookingConfirmed, booking.Status)
}
