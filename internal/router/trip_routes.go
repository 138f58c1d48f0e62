package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/bus-seat-reservation/internal/handler"
	"github.com/iliyamo/bus-seat-reservation/internal/middleware"
)

// RegisterTrips registers every session-scoped endpoint under /v1.  All
// routes require a valid session token.  A session can view trips and seat
// maps, take and release seat locks, renew its leases, follow the seat
// status stream, check a wallet balance and confirm a settlement.
//
// limited is the per-session token bucket; it runs after SessionAuth so the
// session id is in context when the rate key is built.
//
// cached wraps trip detail lookups in the Redis response cache; it is
// deliberately not applied to seat maps, locks or the stream because those
// answers must reflect the live lock table.
func RegisterTrips(
	e *echo.Echo,
	trips *handler.TripHandler,
	locks *handler.LockHandler,
	bookings *handler.BookingHandler,
	stream *handler.StreamHandler,
	wallet *handler.WalletHandler,
	secret string,
	limited echo.MiddlewareFunc,
	cached echo.MiddlewareFunc,
) {
	g := e.Group("/v1", middleware.SessionAuth(secret), limited)

	g.GET("/trips/:id", trips.Get, cached)
	g.GET("/trips/:id/seats", trips.Seats)
	g.GET("/trips/:id/stream", stream.Subscribe)

	g.POST("/trips/:id/seats/:seat/lock", locks.Acquire)
	g.DELETE("/trips/:id/seats/:seat/lock", locks.Release)
	g.GET("/trips/:id/locks", locks.List)
	g.DELETE("/trips/:id/locks", locks.ReleaseAll)
	g.POST("/trips/:id/locks/renew", locks.Renew)

	g.POST("/trips/:id/bookings", bookings.Confirm)
	g.GET("/bookings/:reference", bookings.Get)

	g.GET("/wallet/:id", wallet.Balance)
}
