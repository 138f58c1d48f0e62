package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/bus-seat-reservation/internal/config"
	"github.com/iliyamo/bus-seat-reservation/internal/utils"
)

func rateCfg(strategy string) config.RateLimitConfig {
	return config.RateLimitConfig{
		Enabled:     true,
		Capacity:    60,
		KeyStrategy: strategy,
		Prefix:      "rl",
	}
}

func TestBuildRateKeySessionFromContext(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/v1/trips/1/seats/3A/lock", nil)
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetPath("/v1/trips/:id/seats/:seat/lock")
	c.Set("session_id", "sess-42")

	key := buildRateKey(rateCfg("ip_session_route"), c)

	assert.Contains(t, key, ":session:sess-42:")
	assert.NotContains(t, key, ":session:anon:")
}

func TestBuildRateKeyAnonWithoutSession(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/v1/sessions", nil)
	c := e.NewContext(req, httptest.NewRecorder())

	key := buildRateKey(rateCfg("ip_session_route"), c)

	assert.Contains(t, key, ":session:anon:")
}

// Mirrors the server wiring: SessionAuth runs first in the /v1 group, so by
// the time the limiter builds its key the session id is in context and two
// shoppers behind one NAT land in separate buckets.
func TestRateKeySeparatesSessionsBehindSessionAuth(t *testing.T) {
	const secret = "test-secret"

	e := echo.New()
	var keys []string
	capture := func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			keys = append(keys, buildRateKey(rateCfg("ip_session_route"), c))
			return next(c)
		}
	}
	g := e.Group("/v1", SessionAuth(secret), capture)
	g.GET("/trips/:id", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	call := func(sessionID string) {
		tok, err := utils.NewSessionToken(secret, sessionID, 5)
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodGet, "/v1/trips/1", nil)
		req.Header.Set("Authorization", "Bearer "+tok.Token)
		req.RemoteAddr = "192.0.2.1:1234" // same NAT address for both shoppers
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
	}

	call("shopper-a")
	call("shopper-b")

	require.Len(t, keys, 2)
	assert.NotEqual(t, keys[0], keys[1], "same-IP shoppers must not share one bucket")
	for _, k := range keys {
		assert.False(t, strings.Contains(k, ":session:anon:"), "key %q lost the session dimension", k)
	}
}
