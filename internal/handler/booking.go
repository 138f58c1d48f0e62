package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/bus-seat-reservation/internal/repository"
	"github.com/iliyamo/bus-seat-reservation/internal/settlement"
)

// BookingHandler exposes settlement and booking lookup.  All the
// interesting decisions live in the settlement service; the handler only
// translates the typed failure taxonomy into HTTP statuses.
type BookingHandler struct {
	Settlement *settlement.Service     // the atomic confirm operation
	Bookings   *repository.BookingRepo // booking lookups by reference
}

// NewBookingHandler constructs a BookingHandler.  All dependencies must be
// non-nil.
func NewBookingHandler(s *settlement.Service, bookings *repository.BookingRepo) *BookingHandler {
	if s == nil || bookings == nil {
		panic("nil dependency passed to NewBookingHandler")
	}
	return &BookingHandler{Settlement: s, Bookings: bookings}
}

// Confirm handles POST /v1/trips/:id/bookings.  The body names the held
// seats, the wallet account and the PIN.  On success the seats are sold,
// the wallet is debited and a 201 with the booking is returned.  Failure
// mapping: 401 invalid PIN (or expired session), 402 insufficient funds,
// 409 seat conflict with the lost seats listed, 429 PIN lockout.  On every
// failure except a conflict the session's holds survive, so the shopper
// can retry payment without re-selecting.
func (h *BookingHandler) Confirm(c echo.Context) error {
	sessionID, err := getSessionID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	tripID, err := tripIDParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid trip id"})
	}
	var body struct {
		SeatLabels []string `json:"seats"`
		AccountID  uint64   `json:"account_id"`
		PIN        string   `json:"pin"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.AccountID == 0 || body.PIN == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "account_id and pin are required"})
	}

	booking, err := h.Settlement.Confirm(c.Request().Context(), settlement.ConfirmRequest{
		TripID:     tripID,
		SessionID:  sessionID,
		AccountID:  body.AccountID,
		SeatLabels: body.SeatLabels,
		PIN:        body.PIN,
	})
	if err != nil {
		var conflict *settlement.SeatConflictError
		switch {
		case errors.As(err, &conflict):
			return c.JSON(http.StatusConflict, echo.Map{
				"error":      "seat conflict",
				"lost_seats": conflict.Seats,
			})
		case errors.Is(err, settlement.ErrInvalidPin):
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid pin"})
		case errors.Is(err, settlement.ErrTooManyPinAttempts):
			return c.JSON(http.StatusTooManyRequests, echo.Map{"error": "too many pin attempts"})
		case errors.Is(err, settlement.ErrInsufficientFunds):
			return c.JSON(http.StatusPaymentRequired, echo.Map{"error": "insufficient funds"})
		case errors.Is(err, settlement.ErrNoSeatsSelected):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "seats is required"})
		case errors.Is(err, repository.ErrAccountNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "wallet account not found"})
		case errors.Is(err, repository.ErrTripNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "trip not found"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "settlement failed"})
		}
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"booking": booking,
	})
}

// Get handles GET /v1/bookings/:reference.  It returns one booking with
// its seats.  References are unguessable UUIDs, which is the access
// control for anonymous sessions.
func (h *BookingHandler) Get(c echo.Context) error {
	ref := c.Param("reference")
	if ref == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reference"})
	}
	booking, err := h.Bookings.GetByReference(c.Request().Context(), ref)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"booking":      booking,
		"confirmed_at": booking.CreatedAt.Format(time.RFC3339),
	})
}
