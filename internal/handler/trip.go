package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/bus-seat-reservation/internal/inventory"
	"github.com/iliyamo/bus-seat-reservation/internal/lock"
	"github.com/iliyamo/bus-seat-reservation/internal/model"
	"github.com/iliyamo/bus-seat-reservation/internal/repository"
)

// TripHandler serves trip details and the per-session seat map.  The seat
// map merges three sources: the static layout from the inventory, the sold
// set, and the live lock table; the merge happens per request so the
// response always reflects the coordinator's current view.
type TripHandler struct {
	Trips     *repository.TripRepo // trip lookups
	Inventory *inventory.Inventory // static layout + occupied set
	Locks     *lock.Coordinator    // live seat statuses
}

// NewTripHandler constructs a TripHandler.  All dependencies must be
// non-nil.
func NewTripHandler(trips *repository.TripRepo, inv *inventory.Inventory, locks *lock.Coordinator) *TripHandler {
	if trips == nil || inv == nil || locks == nil {
		panic("nil dependency passed to NewTripHandler")
	}
	return &TripHandler{Trips: trips, Inventory: inv, Locks: locks}
}

// tripView is the sanitized trip representation returned to clients.
type tripView struct {
	ID          uint64    `json:"id"`
	Origin      string    `json:"origin"`
	Destination string    `json:"destination"`
	Company     string    `json:"company"`
	DepartsAt   time.Time `json:"departs_at"`
	ArrivesAt   time.Time `json:"arrives_at"`
	PriceCents  uint32    `json:"price_cents"`
	SeatCount   uint32    `json:"seat_count"`
}

// Get handles GET /v1/trips/:id.  It returns the trip summary.  This
// response is static per trip and sits behind the response cache.
func (h *TripHandler) Get(c echo.Context) error {
	tripID, err := tripIDParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid trip id"})
	}
	ctx := c.Request().Context()
	trip, err := h.Trips.GetByID(ctx, tripID)
	if err != nil {
		if errors.Is(err, repository.ErrTripNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "trip not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"item": tripView{
		ID:          trip.ID,
		Origin:      trip.Origin,
		Destination: trip.Destination,
		Company:     trip.Company,
		DepartsAt:   trip.DepartsAt,
		ArrivesAt:   trip.ArrivesAt,
		PriceCents:  trip.PriceCents,
		SeatCount:   trip.SeatCount,
	}})
}

// seatView is one seat in the seat map response.
type seatView struct {
	Label  string           `json:"label"`
	Status model.SeatStatus `json:"status"`
}

// seatRowView is one coach row with the aisle implied between Left and
// Right.
type seatRowView struct {
	Number int        `json:"row"`
	Left   []seatView `json:"left"`
	Right  []seatView `json:"right"`
}

// Seats handles GET /v1/trips/:id/seats.  It returns the full grid with a
// per-seat status computed for the calling session: FREE, HELD,
// HELD_BY_YOU or SOLD.  The response is a view, not a promise; only an
// acquire can actually claim a seat.
func (h *TripHandler) Seats(c echo.Context) error {
	sessionID, err := getSessionID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	tripID, err := tripIDParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid trip id"})
	}
	ctx := c.Request().Context()
	layout, err := h.Inventory.LoadSeats(ctx, tripID)
	if err != nil {
		if errors.Is(err, repository.ErrTripNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "trip not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	statuses, err := h.Locks.Snapshot(ctx, tripID, sessionID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load seat statuses"})
	}

	status := func(label string) model.SeatStatus {
		if s, ok := statuses[label]; ok {
			return s
		}
		return model.SeatFree
	}
	rows := make([]seatRowView, 0, len(layout.Rows))
	for _, r := range layout.Rows {
		rv := seatRowView{Number: r.Number}
		for _, label := range r.Left {
			rv.Left = append(rv.Left, seatView{Label: label, Status: status(label)})
		}
		for _, label := range r.Right {
			rv.Right = append(rv.Right, seatView{Label: label, Status: status(label)})
		}
		rows = append(rows, rv)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"trip_id": tripID,
		"rows":    rows,
	})
}
