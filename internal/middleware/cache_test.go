package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmwangi/casetrack/internal/config"
)

func TestCacheKeyMatchesRequestDerivedKey(t *testing.T) {
	cfg := config.CacheConfig{Prefix: "cache", KeyStrategy: "route_query"}

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/fields", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/v1/fields")

	// a mutation handler purging by CacheKey must hit the same key the
	// middleware stored the listing under
	assert.Equal(t, cacheKeyFrom(cfg, c), CacheKey(cfg, http.MethodGet, "/v1/fields", ""))
}

func TestCacheKeyStrategies(t *testing.T) {
	base := config.CacheConfig{Prefix: "cache"}

	keys := map[string]string{}
	for _, strategy := range []string{"route", "method_route", "method_route_query", "route_query"} {
		cfg := base
		cfg.KeyStrategy = strategy
		keys[strategy] = CacheKey(cfg, http.MethodGet, "/v1/fields", "a=1")
	}

	// every strategy hashes a different tail
	seen := map[string]bool{}
	for strategy, k := range keys {
		assert.False(t, seen[k], "strategy %s collides", strategy)
		seen[k] = true
	}

	// the query is irrelevant under the route strategies
	cfg := base
	cfg.KeyStrategy = "route"
	assert.Equal(t, keys["route"], CacheKey(cfg, http.MethodGet, "/v1/fields", "b=2"))
}

func TestPayloadRoundTrip(t *testing.T) {
	hdr := http.Header{"Content-Type": []string{"application/json"}}
	payload, err := encodePayload(http.StatusOK, hdr, []byte(`{"ok":true}`))
	require.NoError(t, err)

	status, outHdr, body, ok := decodePayload(payload)
	require.True(t, ok)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "application/json", outHdr.Get("Content-Type"))
	assert.Equal(t, `{"ok":true}`, string(body))

	_, _, _, ok = decodePayload([]byte("short"))
	assert.False(t, ok)
}
