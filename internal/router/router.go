package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing

	"github.com/iliyamo/bus-seat-reservation/internal/handler" // import the handlers that implement business logic
)

// RegisterRoutes registers routes that do not require a session on the
// provided Echo instance.  Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	// Map the GET request at path "/healthz" to the Health handler.  This
	// endpoint can be used by load balancers or monitoring systems to verify
	// that the service is up and running.
	e.GET("/healthz", handler.Health)
}

// RegisterSessions registers the session-opening endpoint.  Opening a
// session is the only /v1 operation that needs no token: it is how the
// token is obtained in the first place.  limited is an IP-keyed token
// bucket; there is no session to key on yet.
func RegisterSessions(e *echo.Echo, h *handler.SessionHandler, limited echo.MiddlewareFunc) {
	e.POST("/v1/sessions", h.Create, limited)
}
