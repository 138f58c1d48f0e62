package inventory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/bus-seat-reservation/internal/model"
	"github.com/iliyamo/bus-seat-reservation/internal/repository"
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

type stubSold struct {
	seats []string
}

func (s *stubSold) OccupiedSeats(ctx context.Context, tripID uint64) ([]string, error) {
	return s.seats, nil
}

func testTrip(seatCount uint32) *model.Trip {
	return &model.Trip{
		ID:          42,
		Origin:      "Tehran",
		Destination: "Isfahan",
		Company:     "Royal Safar",
		DepartsAt:   time.Date(2026, 9, 1, 8, 30, 0, 0, time.UTC),
		ArrivesAt:   time.Date(2026, 9, 1, 14, 0, 0, 0, time.UTC),
		PriceCents:  120000,
		SeatCount:   seatCount,
	}
}

func TestLoadSeatsGrid(t *testing.T) {
	inv := New(&stubTrips{trip: testTrip(10)}, &stubSold{})

	layout, err := inv.LoadSeats(context.Background(), 42)
	require.NoError(t, err)
	require.Len(t, layout.Rows, 3)

	// Full rows split 2+2 around the aisle.
	assert.Equal(t, []string{"1A", "1B"}, layout.Rows[0].Left)
	assert.Equal(t, []string{"1C", "1D"}, layout.Rows[0].Right)
	assert.Equal(t, []string{"2A", "2B"}, layout.Rows[1].Left)
	assert.Equal(t, []string{"2C", "2D"}, layout.Rows[1].Right)

	// 10 seats leave a partial last row with only the left pair.
	assert.Equal(t, []string{"3A", "3B"}, layout.Rows[2].Left)
	assert.Empty(t, layout.Rows[2].Right)

	assert.Len(t, layout.Labels(), 10)
}

func TestLoadSeatsIsDeterministic(t *testing.T) {
	inv := New(&stubTrips{trip: testTrip(44)}, &stubSold{seats: []string{"2C"}})

	first, err := inv.LoadSeats(context.Background(), 42)
	require.NoError(t, err)
	second, err := inv.LoadSeats(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestLoadSeatsCarriesOccupied(t *testing.T) {
	inv := New(&stubTrips{trip: testTrip(8)}, &stubSold{seats: []string{"1A", "2D"}})

	layout, err := inv.LoadSeats(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, []string{"1A", "2D"}, layout.Occupied)
}

func TestLoadSeatsUnknownTrip(t *testing.T) {
	inv := New(&stubTrips{err: repository.ErrTripNotFound}, &stubSold{})

	_, err := inv.LoadSeats(context.Background(), 99)
	assert.ErrorIs(t, err, repository.ErrTripNotFound)
}

func TestHasSeat(t *testing.T) {
	inv := New(&stubTrips{trip: testTrip(10)}, &stubSold{})
	ctx := context.Background()

	for _, label := range []string{"1A", "2D", "3B"} {
		ok, err := inv.HasSeat(ctx, 42, label)
		require.NoError(t, err)
		assert.True(t, ok, label)
	}
	// 3C and 3D do not exist on a 10-seat coach, and aisle positions are
	// not seats at all.
	for _, label := range []string{"3C", "3D", "4A", "0A", "1E", ""} {
		ok, err := inv.HasSeat(ctx, 42, label)
		require.NoError(t, err)
		assert.False(t, ok, label)
	}
}
