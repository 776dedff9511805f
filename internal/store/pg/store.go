// Package pg implementa los repositorios de introspección sobre Postgres (pgx).
//
// Tablas (ver migrations/postgres):
//
//	oauth_access_tokens(id, revoked)
//	oauth_clients(id, name, secret_hash, revoked)
//	users(id, email, name)
package pg

import (
	"context"
	"errors"
	"time"

	"github.com/dropDatabas3/hellojohn-introspect/internal/domain/repository"
	"github.com/dropDatabas3/hellojohn-introspect/internal/observability/logger"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type Store struct{ pool *pgxpool.Pool }

// Options ajusta el pool.
type Options struct {
	MaxConns        int32
	MinConns        int32
	ConnMaxLifetime time.Duration
}

func New(ctx context.Context, dsn string, opts Options) (*Store, error) {
	pcfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}
	if opts.MaxConns > 0 {
		pcfg.MaxConns = opts.MaxConns
	}
	if opts.MinConns > 0 {
		pcfg.MinConns = opts.MinConns
	}
	if opts.ConnMaxLifetime > 0 {
		pcfg.MaxConnLifetime = opts.ConnMaxLifetime
		pcfg.MaxConnIdleTime = opts.ConnMaxLifetime
	}

	pool, err := pgxpool.NewWithConfig(ctx, pcfg)
	if err != nil {
		return nil, err
	}

	// Non-blocking startup: el servicio arranca aunque la DB esté caída y
	// /readyz lo reporta.
	log := logger.From(ctx).With(logger.Component("store.pg"))
	if err := pool.Ping(ctx); err != nil {
		log.Warn("pg pool startup ping failed", logger.Err(err))
	} else {
		log.Info("pg pool ready", zap.Int32("max_conns", pcfg.MaxConns))
	}

	return &Store{pool: pool}, nil
}

// Pool expone el pool interno (migraciones).
func (s *Store) Pool() *pgxpool.Pool {
	if s == nil {
		return nil
	}
	return s.pool
}

func (s *Store) Ping(ctx context.Context) error { return s.pool.Ping(ctx) }

// Close cierra el pool subyacente (idempotente).
func (s *Store) Close() {
	if s != nil && s.pool != nil {
		s.pool.Close()
	}
}

func (s *Store) AccessTokens() repository.AccessTokenRepository { return &tokenRepo{pool: s.pool} }
func (s *Store) Clients() repository.ClientStore                { return &clientRepo{pool: s.pool} }
func (s *Store) Users() repository.UserRepository               { return &userRepo{pool: s.pool} }

// ====================== TOKENS ======================

type tokenRepo struct{ pool *pgxpool.Pool }

func (r *tokenRepo) IsRevoked(ctx context.Context, jti string) (bool, error) {
	const q = `SELECT revoked FROM oauth_access_tokens WHERE id = $1`
	var revoked bool
	if err := r.pool.QueryRow(ctx, q, jti).Scan(&revoked); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return true, nil
		}
		return false, err
	}
	return revoked, nil
}

// ====================== CLIENTS ======================

type clientRepo struct{ pool *pgxpool.Pool }

func (r *clientRepo) IsRevoked(ctx context.Context, clientID string) (bool, error) {
	const q = `SELECT revoked FROM oauth_clients WHERE id = $1`
	var revoked bool
	if err := r.pool.QueryRow(ctx, q, clientID).Scan(&revoked); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return true, nil
		}
		return false, err
	}
	return revoked, nil
}

func (r *clientRepo) GetClient(ctx context.Context, clientID string) (*repository.Client, error) {
	const q = `SELECT id, COALESCE(name, ''), COALESCE(secret_hash, ''), revoked
		FROM oauth_clients WHERE id = $1`
	var c repository.Client
	if err := r.pool.QueryRow(ctx, q, clientID).Scan(&c.ID, &c.Name, &c.SecretHash, &c.Revoked); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

// ====================== USERS ======================

type userRepo struct{ pool *pgxpool.Pool }

func (r *userRepo) FindByID(ctx context.Context, userID string) (*repository.User, error) {
	const q = `SELECT id, COALESCE(email, ''), COALESCE(name, '') FROM users WHERE id = $1`
	var u repository.User
	if err := r.pool.QueryRow(ctx, q, userID).Scan(&u.ID, &u.Email, &u.Name); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}
