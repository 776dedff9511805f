// Package cached decora los repositorios de revocación con un cache de TTL
// corto. Una revocación se observa como máximo ttl después de escribirse.
package cached

import (
	"context"
	"time"

	"github.com/dropDatabas3/hellojohn-introspect/internal/cache"
	"github.com/dropDatabas3/hellojohn-introspect/internal/domain/repository"
	"github.com/dropDatabas3/hellojohn-introspect/internal/metrics"
	"github.com/dropDatabas3/hellojohn-introspect/internal/observability/logger"
	"golang.org/x/sync/singleflight"
)

// DefaultTTL se usa cuando ttl <= 0.
const DefaultTTL = 5 * time.Second

const (
	valRevoked = "1"
	valActive  = "0"
)

// lookup cachea un booleano por key. Los errores del backend no se cachean.
type lookup struct {
	kind  string // token | client
	cache cache.Client
	ttl   time.Duration
	sf    singleflight.Group
}

func (l *lookup) isRevoked(ctx context.Context, id string, load func(context.Context, string) (bool, error)) (bool, error) {
	key := "revoked:" + l.kind + ":" + id

	v, err := l.cache.Get(ctx, key)
	switch {
	case err == nil:
		metrics.RecordCacheLookup(l.kind, true)
		return v == valRevoked, nil
	case !cache.IsNotFound(err):
		// Cache caído: seguimos contra el backend.
		logger.From(ctx).Warn("revocation cache get failed",
			logger.Component("store.cached"), logger.Key(key), logger.Err(err))
	}
	metrics.RecordCacheLookup(l.kind, false)

	res, err, _ := l.sf.Do(key, func() (any, error) {
		revoked, err := load(ctx, id)
		if err != nil {
			return false, err
		}
		val := valActive
		if revoked {
			val = valRevoked
		}
		if err := l.cache.Set(ctx, key, val, l.ttl); err != nil {
			logger.From(ctx).Warn("revocation cache set failed",
				logger.Component("store.cached"), logger.Key(key), logger.Err(err))
		}
		return revoked, nil
	})
	if err != nil {
		return false, err
	}
	return res.(bool), nil
}

func newLookup(kind string, c cache.Client, ttl time.Duration) *lookup {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &lookup{kind: kind, cache: c, ttl: ttl}
}

type accessTokens struct {
	next repository.AccessTokenRepository
	l    *lookup
}

// NewAccessTokens envuelve next con cache de revocación por jti.
func NewAccessTokens(next repository.AccessTokenRepository, c cache.Client, ttl time.Duration) repository.AccessTokenRepository {
	return &accessTokens{next: next, l: newLookup("token", c, ttl)}
}

func (a *accessTokens) IsRevoked(ctx context.Context, jti string) (bool, error) {
	return a.l.isRevoked(ctx, jti, a.next.IsRevoked)
}

type clients struct {
	next repository.ClientStore
	l    *lookup
}

// NewClients envuelve next con cache de revocación por client id.
// GetClient (autenticación del caller) no se cachea.
func NewClients(next repository.ClientStore, c cache.Client, ttl time.Duration) repository.ClientStore {
	return &clients{next: next, l: newLookup("client", c, ttl)}
}

func (c *clients) IsRevoked(ctx context.Context, clientID string) (bool, error) {
	return c.l.isRevoked(ctx, clientID, c.next.IsRevoked)
}

func (c *clients) GetClient(ctx context.Context, clientID string) (*repository.Client, error) {
	return c.next.GetClient(ctx, clientID)
}
