package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/traveller-reservation/internal/config"
)

func newLimitedServer(t *testing.T, cfg config.RateLimitConfig, rdb *redis.Client) *echo.Echo {
	t.Helper()
	e := echo.New()
	e.Use(NewTokenBucket(cfg, rdb))
	e.GET("/v1/seats", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })
	return e
}

func doGet(e *echo.Echo, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.RemoteAddr = "10.0.0.1:5555"
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestTokenBucket_BlocksWhenEmpty(t *testing.T) {
	srv := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	cfg := config.RateLimitConfig{
		Enabled:        true,
		Capacity:       2,
		RefillTokens:   1,
		RefillInterval: time.Hour,
		TTL:            5 * time.Hour,
		KeyStrategy:    "ip_route",
		Prefix:         "rl",
	}
	e := newLimitedServer(t, cfg, rdb)

	first := doGet(e, "/v1/seats")
	require.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "2", first.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "1", first.Header().Get("X-RateLimit-Remaining"))

	require.Equal(t, http.StatusOK, doGet(e, "/v1/seats").Code)

	blocked := doGet(e, "/v1/seats")
	require.Equal(t, http.StatusTooManyRequests, blocked.Code)
	assert.NotEmpty(t, blocked.Header().Get("Retry-After"))
	assert.Contains(t, blocked.Body.String(), "too_many_requests")
}

func TestTokenBucket_DisabledOrNoRedis(t *testing.T) {
	e := newLimitedServer(t, config.RateLimitConfig{Enabled: true, Capacity: 1}, nil)
	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, doGet(e, "/v1/seats").Code)
	}

	srv := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	e = newLimitedServer(t, config.RateLimitConfig{Enabled: false, Capacity: 1}, rdb)
	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, doGet(e, "/v1/seats").Code)
	}
}

func TestTokenBucket_RedisErrorPassesThrough(t *testing.T) {
	srv := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	e := newLimitedServer(t, config.RateLimitConfig{
		Enabled: true, Capacity: 1, RefillTokens: 1, RefillInterval: time.Hour, TTL: time.Hour,
	}, rdb)
	srv.Close()

	assert.Equal(t, http.StatusOK, doGet(e, "/v1/seats").Code)
}

func TestBuildRateKey(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/v1/travellers", nil)
	req.RemoteAddr = "192.0.2.7:1234"
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetPath("/v1/travellers")

	assert.Equal(t, "rl:ip:192.0.2.7", buildRateKey(config.RateLimitConfig{Prefix: "rl", KeyStrategy: "ip"}, c))
	assert.Equal(t, "rl:route:POST /v1/travellers", buildRateKey(config.RateLimitConfig{Prefix: "rl", KeyStrategy: "route"}, c))
	assert.Equal(t, "rl:ip:192.0.2.7:route:POST /v1/travellers", buildRateKey(config.RateLimitConfig{Prefix: "rl"}, c))
}
