// Package memory implementa los repositorios de introspección en memoria.
// Se usa en desarrollo, en tests y con storage.driver=memory (seed YAML).
package memory

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/dropDatabas3/hellojohn-introspect/internal/domain/repository"
	"gopkg.in/yaml.v3"
)

// Store guarda tokens, clients y usuarios. Seguro para uso concurrente.
type Store struct {
	mu      sync.RWMutex
	tokens  map[string]bool // jti -> revoked
	clients map[string]repository.Client
	users   map[string]repository.User
}

// New crea un Store vacío.
func New() *Store {
	return &Store{
		tokens:  make(map[string]bool),
		clients: make(map[string]repository.Client),
		users:   make(map[string]repository.User),
	}
}

// PutToken registra (o reemplaza) el estado de un access token.
func (s *Store) PutToken(jti string, revoked bool) {
	s.mu.Lock()
	s.tokens[jti] = revoked
	s.mu.Unlock()
}

// PutClient registra (o reemplaza) un client.
func (s *Store) PutClient(c repository.Client) {
	s.mu.Lock()
	s.clients[c.ID] = c
	s.mu.Unlock()
}

// PutUser registra (o reemplaza) un usuario.
func (s *Store) PutUser(u repository.User) {
	s.mu.Lock()
	s.users[u.ID] = u
	s.mu.Unlock()
}

// RevokeClient marca un client como revocado. No-op si no existe.
func (s *Store) RevokeClient(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.clients[id]; ok {
		c.Revoked = true
		s.clients[id] = c
	}
}

func (s *Store) AccessTokens() repository.AccessTokenRepository { return tokenRepo{s} }
func (s *Store) Clients() repository.ClientStore                { return clientRepo{s} }
func (s *Store) Users() repository.UserRepository               { return userRepo{s} }

type tokenRepo struct{ s *Store }

func (r tokenRepo) IsRevoked(_ context.Context, jti string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	revoked, ok := r.s.tokens[jti]
	return !ok || revoked, nil
}

type clientRepo struct{ s *Store }

func (r clientRepo) IsRevoked(_ context.Context, id string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	c, ok := r.s.clients[id]
	return !ok || c.Revoked, nil
}

func (r clientRepo) GetClient(_ context.Context, id string) (*repository.Client, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	c, ok := r.s.clients[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &c, nil
}

type userRepo struct{ s *Store }

func (r userRepo) FindByID(_ context.Context, id string) (*repository.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

// =================================================================================
// SEED
// =================================================================================

// TokenRecord es una fila de oauth_access_tokens en el seed.
type TokenRecord struct {
	ID      string `yaml:"id"`
	Revoked bool   `yaml:"revoked"`
}

// Seed es el contenido de storage.seed_path.
//
//	tokens:
//	  - id: 7f3c...
//	clients:
//	  - id: "1"
//	    secret_hash: $2a$10$...
//	users:
//	  - id: "42"
//	    email: jane@example.com
type Seed struct {
	Tokens  []TokenRecord       `yaml:"tokens"`
	Clients []repository.Client `yaml:"clients"`
	Users   []repository.User   `yaml:"users"`
}

// LoadSeed lee un seed YAML.
func LoadSeed(path string) (*Seed, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("memory: read seed: %w", err)
	}
	var seed Seed
	if err := yaml.Unmarshal(b, &seed); err != nil {
		return nil, fmt.Errorf("memory: parse seed: %w", err)
	}
	return &seed, nil
}

// Apply carga el seed en el store.
func (s *Store) Apply(seed *Seed) {
	if seed == nil {
		return
	}
	for _, t := range seed.Tokens {
		s.PutToken(t.ID, t.Revoked)
	}
	for _, c := range seed.Clients {
		s.PutClient(c)
	}
	for _, u := range seed.Users {
		s.PutUser(u)
	}
}
