// Package store abre los repositorios de lectura que consume la introspección
// (access tokens, clients, usuarios) según storage.driver.
package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dropDatabas3/hellojohn-introspect/internal/cache"
	"github.com/dropDatabas3/hellojohn-introspect/internal/domain/repository"
	"github.com/dropDatabas3/hellojohn-introspect/internal/store/cached"
	"github.com/dropDatabas3/hellojohn-introspect/internal/store/memory"
	"github.com/dropDatabas3/hellojohn-introspect/internal/store/mongo"
	"github.com/dropDatabas3/hellojohn-introspect/internal/store/pg"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Config struct {
	Driver   string // memory | postgres | mongo
	DSN      string
	Postgres pg.Options
	Mongo    struct{ URI, Database string }
	SeedPath string // memory: YAML con tokens/clients/users
}

// Store agrupa los repositorios de un backend.
type Store struct {
	Driver string

	accessTokens repository.AccessTokenRepository
	clients      repository.ClientStore
	users        repository.UserRepository

	pool  *pgxpool.Pool
	ping  func(context.Context) error
	close func() error
}

func (s *Store) AccessTokens() repository.AccessTokenRepository { return s.accessTokens }
func (s *Store) Clients() repository.ClientStore                { return s.clients }
func (s *Store) Users() repository.UserRepository               { return s.users }

// Pool retorna el pgxpool (nil si el driver no es postgres).
func (s *Store) Pool() *pgxpool.Pool { return s.pool }

func (s *Store) Ping(ctx context.Context) error {
	if s.ping == nil {
		return nil
	}
	return s.ping(ctx)
}

// Close libera las conexiones del backend.
func (s *Store) Close() error {
	if s.close == nil {
		return nil
	}
	return s.close()
}

// Open abre el backend configurado.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	switch strings.ToLower(cfg.Driver) {
	case "", "memory":
		m := memory.New()
		if cfg.SeedPath != "" {
			seed, err := memory.LoadSeed(cfg.SeedPath)
			if err != nil {
				return nil, err
			}
			m.Apply(seed)
		}
		return FromMemory(m), nil

	case "postgres", "pg", "postgresql":
		s, err := pg.New(ctx, cfg.DSN, cfg.Postgres)
		if err != nil {
			return nil, fmt.Errorf("store: postgres: %w", err)
		}
		return &Store{
			Driver:       "postgres",
			accessTokens: s.AccessTokens(),
			clients:      s.Clients(),
			users:        s.Users(),
			pool:         s.Pool(),
			ping:         s.Ping,
			close:        func() error { s.Close(); return nil },
		}, nil

	case "mongo", "mongodb":
		s, err := mongo.New(ctx, cfg.Mongo.URI, cfg.Mongo.Database)
		if err != nil {
			return nil, fmt.Errorf("store: %w", err)
		}
		return &Store{
			Driver:       "mongo",
			accessTokens: s.AccessTokens(),
			clients:      s.Clients(),
			users:        s.Users(),
			ping:         s.Ping,
			close: func() error {
				cctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				return s.Close(cctx)
			},
		}, nil

	default:
		return nil, fmt.Errorf("store: unsupported driver: %s", cfg.Driver)
	}
}

// FromMemory envuelve un memory.Store ya poblado (tests, seed).
func FromMemory(m *memory.Store) *Store {
	return &Store{
		Driver:       "memory",
		accessTokens: m.AccessTokens(),
		clients:      m.Clients(),
		users:        m.Users(),
	}
}

// WithRevocationCache envuelve las consultas de revocación con c.
// Con c nil retorna el mismo Store.
func (s *Store) WithRevocationCache(c cache.Client, ttl time.Duration) *Store {
	if c == nil {
		return s
	}
	out := *s
	out.accessTokens = cached.NewAccessTokens(s.accessTokens, c, ttl)
	out.clients = cached.NewClients(s.clients, c, ttl)
	return &out
}
