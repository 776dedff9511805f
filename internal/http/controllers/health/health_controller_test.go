package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	svc "github.com/dropDatabas3/hellojohn-introspect/internal/http/services/health"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readyz(t *testing.T, deps svc.Deps) (int, map[string]any) {
	t.Helper()
	c := NewHealthController(svc.NewHealthService(deps))
	rec := httptest.NewRecorder()
	c.Readyz(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec.Code, body
}

func TestReadyz(t *testing.T) {
	ok := func(context.Context) error { return nil }
	down := func(context.Context) error { return errors.New("connection refused") }

	cases := []struct {
		name       string
		deps       svc.Deps
		wantCode   int
		wantStatus string
	}{
		{"all ok", svc.Deps{StoreCheck: ok, CacheCheck: ok, KeyCount: 1}, http.StatusOK, "ready"},
		{"no cache configured", svc.Deps{StoreCheck: ok, KeyCount: 1}, http.StatusOK, "ready"},
		{"cache down", svc.Deps{StoreCheck: ok, CacheCheck: down, KeyCount: 1}, http.StatusOK, "degraded"},
		{"store down", svc.Deps{StoreCheck: down, CacheCheck: ok, KeyCount: 1}, http.StatusServiceUnavailable, "unavailable"},
		{"no keys", svc.Deps{StoreCheck: ok, KeyCount: 0}, http.StatusServiceUnavailable, "unavailable"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			code, body := readyz(t, tc.deps)

			assert.Equal(t, tc.wantCode, code)
			assert.Equal(t, tc.wantStatus, body["status"])
		})
	}
}

func TestReadyz_MethodNotAllowed(t *testing.T) {
	c := NewHealthController(svc.NewHealthService(svc.Deps{}))
	rec := httptest.NewRecorder()

	c.Readyz(rec, httptest.NewRequest(http.MethodPost, "/readyz", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, "GET, HEAD", rec.Header().Get("Allow"))
}
