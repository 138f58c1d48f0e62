package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/bus-seat-reservation/internal/config"
)

func cacheCtx(t *testing.T, target string) echo.Context {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	// Echo resolves every trip detail request to the same registered
	// pattern; the key must still tell the trips apart.
	c.SetPath("/v1/trips/:id")
	return c
}

func TestCacheKeyDistinctPerTrip(t *testing.T) {
	cfg := config.CacheConfig{Enabled: true, KeyStrategy: "route_query", Prefix: "cache"}

	k1 := cacheKeyFrom(cfg, cacheCtx(t, "/v1/trips/1"))
	k2 := cacheKeyFrom(cfg, cacheCtx(t, "/v1/trips/2"))

	require.NotEmpty(t, k1)
	assert.NotEqual(t, k1, k2, "different trips must not share a cache entry")
}

func TestCacheKeyStablePerTrip(t *testing.T) {
	cfg := config.CacheConfig{Enabled: true, KeyStrategy: "route_query", Prefix: "cache"}

	first := cacheKeyFrom(cfg, cacheCtx(t, "/v1/trips/7"))
	again := cacheKeyFrom(cfg, cacheCtx(t, "/v1/trips/7"))

	assert.Equal(t, first, again)
}

func TestCacheKeyQueryContributes(t *testing.T) {
	cfg := config.CacheConfig{Enabled: true, KeyStrategy: "route_query", Prefix: "cache"}

	plain := cacheKeyFrom(cfg, cacheCtx(t, "/v1/trips/7"))
	withQ := cacheKeyFrom(cfg, cacheCtx(t, "/v1/trips/7?fields=summary"))

	assert.NotEqual(t, plain, withQ)
}

func TestCacheKeyStrategies(t *testing.T) {
	for _, strat := range []string{"route", "method_route", "method_route_query", "route_query"} {
		cfg := config.CacheConfig{Enabled: true, KeyStrategy: strat, Prefix: "cache"}
		k1 := cacheKeyFrom(cfg, cacheCtx(t, "/v1/trips/1"))
		k2 := cacheKeyFrom(cfg, cacheCtx(t, "/v1/trips/2"))
		assert.NotEqualf(t, k1, k2, "strategy %s collapses trips into one key", strat)
	}
}
