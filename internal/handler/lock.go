package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/bus-seat-reservation/internal/inventory"
	"github.com/iliyamo/bus-seat-reservation/internal/lock"
	"github.com/iliyamo/bus-seat-reservation/internal/model"
	"github.com/iliyamo/bus-seat-reservation/internal/repository"
)

// LockHandler exposes the seat lock operations: acquire, release, release
// all, and lease renewal.  Losing a seat race here is the expected path,
// answered with 409 and no state change; the client picks another seat or
// waits for a FREE event on the stream.
type LockHandler struct {
	Inventory *inventory.Inventory // validates that a seat exists on the coach
	Locks     *lock.Coordinator    // the authoritative lock table
}

// NewLockHandler constructs a LockHandler.  All dependencies must be
// non-nil.
func NewLockHandler(inv *inventory.Inventory, locks *lock.Coordinator) *LockHandler {
	if inv == nil || locks == nil {
		panic("nil dependency passed to NewLockHandler")
	}
	return &LockHandler{Inventory: inv, Locks: locks}
}

// Acquire handles POST /v1/trips/:id/seats/:seat/lock.  It grants the
// session an exclusive lease on the seat or answers 409 when the seat is
// sold or held by someone else.  Re-acquiring an owned seat succeeds and
// refreshes the lease.
func (h *LockHandler) Acquire(c echo.Context) error {
	sessionID, err := getSessionID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	tripID, err := tripIDParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid trip id"})
	}
	seat := c.Param("seat")
	if seat == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid seat"})
	}
	ctx := c.Request().Context()
	ok, err := h.Inventory.HasSeat(ctx, tripID, seat)
	if err != nil {
		if errors.Is(err, repository.ErrTripNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "trip not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "no such seat"})
	}
	if err := h.Locks.Acquire(ctx, tripID, seat, sessionID); err != nil {
		if errors.Is(err, lock.ErrSeatUnavailable) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "seat unavailable", "seat": seat})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to acquire seat"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"seat": seat})
}

// Release handles DELETE /v1/trips/:id/seats/:seat/lock.  Releasing a seat
// the session does not own is a silent no-op, so stale deselects cannot
// free a competitor's hold.
func (h *LockHandler) Release(c echo.Context) error {
	sessionID, err := getSessionID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	tripID, err := tripIDParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid trip id"})
	}
	seat := c.Param("seat")
	if seat == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid seat"})
	}
	h.Locks.Release(c.Request().Context(), tripID, seat, sessionID)
	return c.NoContent(http.StatusNoContent)
}

// ReleaseAll handles DELETE /v1/trips/:id/locks.  It frees every seat the
// session holds on the trip.  Clients call it on deselect-all and on page
// exit; the lease janitor covers sessions that never get the chance.
func (h *LockHandler) ReleaseAll(c echo.Context) error {
	sessionID, err := getSessionID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	tripID, err := tripIDParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid trip id"})
	}
	released := h.Locks.ReleaseAll(c.Request().Context(), tripID, sessionID)
	return c.JSON(http.StatusOK, echo.Map{"released": len(released)})
}

// List handles GET /v1/trips/:id/locks.  It returns the session's live
// holds with their lease deadlines; clients use the earliest deadline to
// schedule the next renew call.
func (h *LockHandler) List(c echo.Context) error {
	sessionID, err := getSessionID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	tripID, err := tripIDParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid trip id"})
	}
	items := h.Locks.SessionLocks(c.Request().Context(), tripID, sessionID)
	if items == nil {
		items = []model.SeatLock{}
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// Renew handles POST /v1/trips/:id/locks/renew.  It extends the lease on
// every seat the session holds and reports how many were renewed.  A
// result of zero tells the client its holds are gone.
func (h *LockHandler) Renew(c echo.Context) error {
	sessionID, err := getSessionID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	tripID, err := tripIDParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid trip id"})
	}
	renewed := h.Locks.Renew(c.Request().Context(), tripID, sessionID)
	return c.JSON(http.StatusOK, echo.Map{"renewed": renewed})
}
