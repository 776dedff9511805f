package middlewares

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/netip"
	"testing"
	"time"

	"github.com/dropDatabas3/hellojohn-introspect/internal/rate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestChain_Order(t *testing.T) {
	var order []string
	mw := func(name string) Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	h := Chain(okHandler(), mw("a"), nil, mw("b"))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, []string{"a", "b"}, order)
}

func TestWithRequestID(t *testing.T) {
	var seen string
	h := Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}), WithRequestID())

	t.Run("generated", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Len(t, seen, 36)
		assert.Equal(t, seen, rec.Header().Get("X-Request-ID"))
	})

	t.Run("propagated", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Request-ID", "abc-123")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, "abc-123", seen)
	})
}

func TestWithRecover(t *testing.T) {
	h := Chain(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}), WithRecover(false))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/oauth/introspect", nil))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	var body map[string]map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "internal-server-error-500", body["error"]["id"])
	assert.NotContains(t, body["error"], "detail")
}

func TestWithNoStore(t *testing.T) {
	rec := httptest.NewRecorder()
	Chain(okHandler(), WithNoStore()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
	assert.Equal(t, "no-cache", rec.Header().Get("Pragma"))
}

type failingLimiter struct{}

func (failingLimiter) Allow(context.Context, string) (rate.Result, error) {
	return rate.Result{}, errors.New("redis down")
}

func TestWithRateLimit(t *testing.T) {
	h := Chain(okHandler(), WithRateLimit(RateLimitConfig{
		Limiter:   rate.NewMemoryLimiter(1, time.Hour),
		Whitelist: []string{"/readyz"},
	}))
	do := func(path string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, path, nil))
		return rec
	}

	assert.Equal(t, http.StatusOK, do("/oauth/introspect").Code)

	limited := do("/oauth/introspect")
	assert.Equal(t, http.StatusTooManyRequests, limited.Code)
	assert.NotEmpty(t, limited.Header().Get("Retry-After"))

	assert.Equal(t, http.StatusOK, do("/readyz").Code)
	assert.Equal(t, http.StatusOK, do("/readyz").Code)
}

func TestWithRateLimit_FailsOpen(t *testing.T) {
	rec := httptest.NewRecorder()
	Chain(okHandler(), WithRateLimit(RateLimitConfig{Limiter: failingLimiter{}})).
		ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestClientIP(t *testing.T) {
	trusted := []netip.Prefix{netip.MustParsePrefix("10.0.0.0/8")}

	cases := []struct {
		name    string
		remote  string
		xff     string
		trusted []netip.Prefix
		want    string
	}{
		{"no proxies configured ignores header", "203.0.113.9:4000", "198.51.100.1", nil, "203.0.113.9"},
		{"untrusted peer ignores header", "203.0.113.9:4000", "198.51.100.1", trusted, "203.0.113.9"},
		{"trusted peer uses forwarded client", "10.0.0.2:4000", "198.51.100.1", trusted, "198.51.100.1"},
		{"spoofed left entries are skipped", "10.0.0.2:4000", "1.1.1.1, 198.51.100.1, 10.0.0.3", trusted, "198.51.100.1"},
		{"garbage hop falls back to peer", "10.0.0.2:4000", "not-an-ip", trusted, "10.0.0.2"},
		{"only proxies falls back to peer", "10.0.0.2:4000", "10.0.0.7", trusted, "10.0.0.2"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/oauth/introspect", nil)
			r.RemoteAddr = tc.remote
			r.Header.Set("X-Forwarded-For", tc.xff)

			assert.Equal(t, tc.want, clientIP(r, tc.trusted))
		})
	}
}

func TestWithRateLimit_RotatingForwardedForSharesBucket(t *testing.T) {
	// Given: un cliente directo que cambia X-Forwarded-For en cada request
	h := Chain(okHandler(), WithRateLimit(RateLimitConfig{
		Limiter: rate.NewMemoryLimiter(1, time.Hour),
	}))
	do := func(xff string) int {
		r := httptest.NewRequest(http.MethodPost, "/oauth/introspect", nil)
		r.RemoteAddr = "203.0.113.9:4000"
		r.Header.Set("X-Forwarded-For", xff)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, r)
		return rec.Code
	}

	// When / Then: el header no abre un bucket nuevo
	assert.Equal(t, http.StatusOK, do("198.51.100.1"))
	assert.Equal(t, http.StatusTooManyRequests, do("198.51.100.2"))
}

func TestNoStoreAppliesToRateLimitedResponses(t *testing.T) {
	h := Chain(okHandler(), WithNoStore(), WithRateLimit(RateLimitConfig{
		Limiter: rate.NewMemoryLimiter(1, time.Hour),
	}))
	do := func() *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/oauth/introspect", nil))
		return rec
	}

	do()
	limited := do()

	require.Equal(t, http.StatusTooManyRequests, limited.Code)
	assert.Equal(t, "no-store", limited.Header().Get("Cache-Control"))
}
