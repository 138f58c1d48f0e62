package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/bus-seat-reservation/internal/notify"
)

// keepaliveInterval is how often an SSE comment line is written so idle
// connections survive proxies that cut silent streams.
const keepaliveInterval = 25 * time.Second

// StreamHandler serves the seat status stream over Server-Sent Events.
// Every lock table transition on the trip arrives as one `seat` event with
// a JSON payload.  The stream is best-effort: a client that falls behind
// misses events and must refetch the seat map, which is also how a client
// recovers after a reconnect.
type StreamHandler struct {
	Notifier *notify.Notifier
}

// NewStreamHandler constructs a StreamHandler.
func NewStreamHandler(n *notify.Notifier) *StreamHandler {
	if n == nil {
		panic("nil notifier passed to NewStreamHandler")
	}
	return &StreamHandler{Notifier: n}
}

// Subscribe handles GET /v1/trips/:id/stream.  It keeps the connection
// open, forwarding seat events until the client disconnects.  Events carry
// seat label, new status and the holder's session ID for HELD transitions,
// so a client can distinguish its own holds from others'.
func (h *StreamHandler) Subscribe(c echo.Context) error {
	if _, err := getSessionID(c); err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	tripID, err := tripIDParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid trip id"})
	}

	events, cancel := h.Notifier.Subscribe(tripID)
	defer cancel()

	res := c.Response()
	res.Header().Set(echo.HeaderContentType, "text/event-stream")
	res.Header().Set(echo.HeaderCacheControl, "no-cache")
	res.Header().Set("Connection", "keep-alive")
	res.WriteHeader(http.StatusOK)
	res.Flush()

	keepalive := time.NewTicker(keepaliveInterval)
	defer keepalive.Stop()

	ctx := c.Request().Context()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-keepalive.C:
			if _, err := fmt.Fprint(res, ": keepalive\n\n"); err != nil {
				return nil
			}
			res.Flush()
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			payload, err := json.Marshal(ev)
			if err != nil {
				continue
			}
			if _, err := fmt.Fprintf(res, "event: seat\ndata: %s\n\n", payload); err != nil {
				return nil
			}
			res.Flush()
		}
	}
}
