package handler

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/bus-seat-reservation/internal/utils"
)

// SessionHandler opens anonymous shopping sessions.  A session is nothing
// more than a random identifier with an expiry: it carries no user
// identity and exists only so the lock table has an owner to key holds by.
// When the token expires every hold owned by the session lapses with it.
type SessionHandler struct {
	Secret string // secret used to sign session tokens
	TTLMin int    // session token time-to-live in minutes
}

// NewSessionHandler constructs a SessionHandler.
func NewSessionHandler(secret string, ttlMin int) *SessionHandler {
	if secret == "" {
		panic("empty secret passed to NewSessionHandler")
	}
	return &SessionHandler{Secret: secret, TTLMin: ttlMin}
}

// Create handles POST /v1/sessions.  It mints a fresh session ID and a
// signed token the client must present on every seat-lock and settlement
// call.  No request body is required.
func (h *SessionHandler) Create(c echo.Context) error {
	sid := uuid.NewString()
	tok, err := utils.NewSessionToken(h.Secret, sid, h.TTLMin)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create session"})
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"session_id": sid,
		"token":      tok.Token,
		"expires_at": tok.Exp.Format(time.RFC3339),
	})
}
