package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/bus-seat-reservation/internal/middleware"
	"github.com/iliyamo/bus-seat-reservation/internal/utils"
)

const testSecret = "test-secret"

// TestSessionCreateAndAuthRoundTrip opens a session and then presents the
// issued token to a route behind SessionAuth, asserting the same session
// ID comes out of the context.
func TestSessionCreateAndAuthRoundTrip(t *testing.T) {
	e := echo.New()
	e.POST("/v1/sessions", NewSessionHandler(testSecret, 30).Create)
	e.GET("/v1/whoami", func(c echo.Context) error {
		sid, err := getSessionID(c)
		if err != nil {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
		}
		return c.JSON(http.StatusOK, echo.Map{"session_id": sid})
	}, middleware.SessionAuth(testSecret))

	// Open a session.
	req := httptest.NewRequest(http.MethodPost, "/v1/sessions", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)

	var created struct {
		SessionID string `json:"session_id"`
		Token     string `json:"token"`
		ExpiresAt string `json:"expires_at"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.NotEmpty(t, created.SessionID)
	require.NotEmpty(t, created.Token)

	// Use the token on a protected route.
	req = httptest.NewRequest(http.MethodGet, "/v1/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+created.Token)
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var who struct {
		SessionID string `json:"session_id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &who))
	assert.Equal(t, created.SessionID, who.SessionID)
}

// An expired token gets the dedicated "session expired" body so clients
// know their holds are gone and a fresh session is needed; the middleware
// is the single place that produces this answer.
func TestSessionAuthAnswersExpiredToken(t *testing.T) {
	e := echo.New()
	e.GET("/v1/whoami", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	}, middleware.SessionAuth(testSecret))

	tok, err := utils.NewSessionToken(testSecret, "stale-session", -1)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/v1/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+tok.Token)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	var body struct {
		Error string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "session expired", body.Error)
}

func TestSessionAuthRejectsBadTokens(t *testing.T) {
	e := echo.New()
	e.GET("/v1/whoami", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	}, middleware.SessionAuth(testSecret))

	tests := []struct {
		description string
		header      string
	}{
		{description: "missing header", header: ""},
		{description: "not bearer", header: "Basic abc"},
		{description: "garbage token", header: "Bearer not-a-token"},
	}
	for _, test := range tests {
		req := httptest.NewRequest(http.MethodGet, "/v1/whoami", nil)
		if test.header != "" {
			req.Header.Set("Authorization", test.header)
		}
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		assert.Equalf(t, http.StatusUnauthorized, rec.Code, test.description)
	}
}
