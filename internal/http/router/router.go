// Package router arma el chi.Router del servicio: introspección, readyz y
// métricas, cada uno con su cadena de middlewares.
package router

import (
	"net/http"
	"net/netip"

	"github.com/go-chi/chi/v5"

	httpx "github.com/dropDatabas3/hellojohn-introspect/internal/http"
	healthctrl "github.com/dropDatabas3/hellojohn-introspect/internal/http/controllers/health"
	oauthctrl "github.com/dropDatabas3/hellojohn-introspect/internal/http/controllers/oauth"
	httperrors "github.com/dropDatabas3/hellojohn-introspect/internal/http/errors"
	mw "github.com/dropDatabas3/hellojohn-introspect/internal/http/middlewares"
	"github.com/dropDatabas3/hellojohn-introspect/internal/rate"
)

// Deps contiene las dependencias para el router.
type Deps struct {
	Introspect     *oauthctrl.IntrospectController
	Health         *healthctrl.Controllers
	IntrospectPath string

	MetricsHandler http.Handler // nil => /metrics no se monta
	MetricsPath    string

	RateLimiter    rate.Limiter // opcional
	RateWhitelist  []string
	TrustedProxies []netip.Prefix
	ExposeDetail   bool
}

// New construye el router.
func New(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(
		mw.WithRecover(deps.ExposeDetail),
		mw.WithRequestID(),
		mw.WithLogging(),
	)
	if deps.MetricsHandler != nil {
		r.Use(httpx.WithMetrics)
	}

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		httperrors.WriteError(w, httperrors.ErrNotFound, false)
	})

	// POST /oauth/introspect - Token introspection (RFC 7662).
	// Cualquier otro método llega al controller, que responde 405.
	// no-store va primero: también cubre los 429.
	r.Handle(deps.IntrospectPath, mw.Chain(
		http.HandlerFunc(deps.Introspect.Introspect),
		mw.WithNoStore(),
		mw.WithRateLimit(mw.RateLimitConfig{
			Limiter:   deps.RateLimiter,
			KeyFunc:   mw.NewRateKey(deps.TrustedProxies),
			Whitelist: deps.RateWhitelist,
		}),
	))

	if deps.Health != nil {
		r.HandleFunc("/readyz", deps.Health.Health.Readyz)
	}
	if deps.MetricsHandler != nil {
		r.Handle(deps.MetricsPath, deps.MetricsHandler)
	}

	return r
}
