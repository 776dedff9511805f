// Package app arma el servicio de introspección a partir de la config:
// claves, store, cache de revocación, services, autenticación del caller,
// rate limiting, métricas y router.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	rdb "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/dropDatabas3/hellojohn-introspect/internal/auth"
	"github.com/dropDatabas3/hellojohn-introspect/internal/cache"
	"github.com/dropDatabas3/hellojohn-introspect/internal/config"
	httpx "github.com/dropDatabas3/hellojohn-introspect/internal/http"
	healthctrl "github.com/dropDatabas3/hellojohn-introspect/internal/http/controllers/health"
	oauthctrl "github.com/dropDatabas3/hellojohn-introspect/internal/http/controllers/oauth"
	"github.com/dropDatabas3/hellojohn-introspect/internal/http/router"
	healthsvc "github.com/dropDatabas3/hellojohn-introspect/internal/http/services/health"
	oauthsvc "github.com/dropDatabas3/hellojohn-introspect/internal/http/services/oauth"
	jwtx "github.com/dropDatabas3/hellojohn-introspect/internal/jwt"
	"github.com/dropDatabas3/hellojohn-introspect/internal/observability/logger"
	"github.com/dropDatabas3/hellojohn-introspect/internal/rate"
	"github.com/dropDatabas3/hellojohn-introspect/internal/store"
	"github.com/dropDatabas3/hellojohn-introspect/internal/store/pg"
)

// Version se sobreescribe con -ldflags en el build.
var Version = "dev"

// Container agrupa lo que el servicio necesita en runtime.
type Container struct {
	Config   *config.Config
	Keys     *jwtx.KeySet
	Store    *store.Store
	Cache    cache.Client // nil con cache.kind=none
	Services oauthsvc.Services
	Handler  http.Handler

	redis *rdb.Client
}

// Close libera store y cache.
func (c *Container) Close() error {
	var errs []error
	if c.Cache != nil {
		errs = append(errs, c.Cache.Close())
	} else if c.redis != nil {
		errs = append(errs, c.redis.Close())
	}
	if c.Store != nil {
		errs = append(errs, c.Store.Close())
	}
	return errors.Join(errs...)
}

// LoadKeys carga el KeySource desde jwt.public_key_path o jwt.jwks_path.
func LoadKeys(cfg *config.Config) (*jwtx.KeySet, error) {
	if cfg.JWT.JWKSPath != "" {
		return jwtx.LoadJWKSFile(cfg.JWT.JWKSPath)
	}
	return jwtx.LoadPEMFile(cfg.JWT.PublicKeyPath, cfg.JWT.KeyID)
}

// Build crea el Container sin HTTP: lo usan serve y verify.
func Build(ctx context.Context, cfg *config.Config) (*Container, error) {
	log := logger.From(ctx).With(logger.Component("app"))
	c := &Container{Config: cfg}

	keys, err := LoadKeys(cfg)
	if err != nil {
		return nil, err
	}
	c.Keys = keys
	log.Info("verification keys loaded", zap.Int("count", keys.Len()), zap.Strings("algorithms", keys.Algorithms()))

	st, err := store.Open(ctx, store.Config{
		Driver: cfg.Storage.Driver,
		DSN:    cfg.Storage.DSN,
		Postgres: pg.Options{
			MaxConns:        int32(cfg.Storage.Postgres.MaxOpenConns),
			MinConns:        int32(cfg.Storage.Postgres.MinConns),
			ConnMaxLifetime: config.Duration(cfg.Storage.Postgres.ConnMaxLifetime),
		},
		Mongo:    struct{ URI, Database string }{cfg.Storage.Mongo.URI, cfg.Storage.Mongo.Database},
		SeedPath: cfg.Storage.SeedPath,
	})
	if err != nil {
		return nil, err
	}
	c.Store = st
	log.Info("store opened", logger.Driver(st.Driver))

	if err := c.openCache(ctx); err != nil {
		_ = c.Close()
		return nil, err
	}

	ttl := config.Duration(cfg.Cache.TTL)
	repos := st.WithRevocationCache(c.Cache, ttl)

	c.Services = oauthsvc.NewServices(oauthsvc.Deps{
		Parser: jwtx.NewParser(keys, jwtx.ParseOptions{
			Leeway: config.Duration(cfg.JWT.Leeway),
		}),
		AccessTokens:  repos.AccessTokens(),
		Clients:       repos.Clients(),
		Users:         repos.Users(),
		UsernameField: cfg.Introspection.UsernameField,
	})
	return c, nil
}

func (c *Container) openCache(ctx context.Context) error {
	cfg := c.Config
	ttl := config.Duration(cfg.Cache.TTL)

	switch cfg.Cache.Kind {
	case "redis":
		client := rdb.NewClient(&rdb.Options{
			Addr:     cfg.Cache.Redis.Addr,
			Password: cfg.Cache.Redis.Password,
			DB:       cfg.Cache.Redis.DB,
		})
		pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := client.Ping(pctx).Err(); err != nil {
			_ = client.Close()
			return fmt.Errorf("cache: redis ping failed: %w", err)
		}
		c.redis = client
		c.Cache = cache.NewRedisFromClient(client, cfg.Cache.Redis.Prefix, ttl)
		return nil
	default:
		cc, err := cache.New(ctx, cache.Config{Kind: cfg.Cache.Kind, Prefix: cfg.Cache.Redis.Prefix, DefaultTTL: ttl})
		if err != nil {
			return err
		}
		c.Cache = cc
		return nil
	}
}

// Authenticator arma la cadena de autenticación del caller según auth.mode.
func (c *Container) Authenticator() (auth.Authenticator, error) {
	var chain []auth.Authenticator
	for _, m := range c.Config.AuthModes() {
		switch m {
		case "basic":
			chain = append(chain, auth.NewStaticBasic(c.Config.Auth.IntrospectBasicUser, c.Config.Auth.IntrospectBasicPass))
		case "client_secret":
			// Credenciales contra el store sin cache: un secret rotado aplica ya.
			chain = append(chain, auth.NewClientSecret(c.Store.Clients()))
		case "bearer":
			chain = append(chain, auth.NewBearer(c.Services.Verifier))
		default:
			return nil, fmt.Errorf("app: unknown auth mode %q", m)
		}
	}
	switch len(chain) {
	case 0:
		return nil, errors.New("app: no caller authentication configured")
	case 1:
		return chain[0], nil
	default:
		return auth.NewComposite(chain...), nil
	}
}

// Limiter retorna el rate limiter configurado (nil si rate.enabled=false).
func (c *Container) Limiter() rate.Limiter {
	cfg := c.Config
	if !cfg.Rate.Enabled || cfg.Rate.MaxRequests == 0 {
		return nil
	}
	window := config.Duration(cfg.Rate.Window)
	if c.redis != nil {
		return rate.NewRedisLimiter(c.redis, cfg.Cache.Redis.Prefix+"rl:", cfg.Rate.MaxRequests, window)
	}
	return rate.NewMemoryLimiter(cfg.Rate.MaxRequests, window)
}

// BuildHTTP arma el router completo sobre el Container.
func (c *Container) BuildHTTP() (http.Handler, error) {
	cfg := c.Config

	authn, err := c.Authenticator()
	if err != nil {
		return nil, err
	}

	var metricsHandler http.Handler
	if cfg.Metrics.Enabled {
		metricsHandler, err = httpx.RegisterMetrics(httpx.MetricsConfig{Pool: c.Store.Pool})
		if err != nil {
			return nil, fmt.Errorf("metrics: %w", err)
		}
	}

	hdeps := healthsvc.Deps{
		StoreCheck: c.Store.Ping,
		KeyCount:   c.Keys.Len(),
		Version:    Version,
	}
	if c.Cache != nil {
		hdeps.CacheCheck = c.Cache.Ping
	}

	trusted, err := cfg.TrustedProxies()
	if err != nil {
		return nil, err
	}

	whitelist := append([]string{"/readyz", cfg.Metrics.Path}, cfg.Rate.Whitelist...)
	c.Handler = router.New(router.Deps{
		Introspect:     oauthctrl.NewIntrospectController(c.Services.Introspect, authn, cfg.ExposeDetail()),
		Health:         healthctrl.NewControllers(healthsvc.NewServices(hdeps)),
		IntrospectPath: cfg.Server.IntrospectPath,
		MetricsHandler: metricsHandler,
		MetricsPath:    cfg.Metrics.Path,
		RateLimiter:    c.Limiter(),
		RateWhitelist:  whitelist,
		TrustedProxies: trusted,
		ExposeDetail:   cfg.ExposeDetail(),
	})
	return c.Handler, nil
}

// Server crea el http.Server con los timeouts de config.
func (c *Container) Server() *http.Server {
	cfg := c.Config
	return &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           c.Handler,
		ReadTimeout:       config.Duration(cfg.Server.ReadTimeout),
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      config.Duration(cfg.Server.WriteTimeout),
		IdleTimeout:       60 * time.Second,
	}
}
