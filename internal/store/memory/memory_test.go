package memory

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/dropDatabas3/hellojohn-introspect/internal/domain/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_UnknownRecordsAreRevoked(t *testing.T) {
	ctx := context.Background()
	s := New()

	revoked, err := s.AccessTokens().IsRevoked(ctx, "ghost")
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, err = s.Clients().IsRevoked(ctx, "ghost")
	require.NoError(t, err)
	assert.True(t, revoked)

	_, err = s.Users().FindByID(ctx, "ghost")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestStore_Revocation(t *testing.T) {
	ctx := context.Background()
	s := New()
	s.PutToken("t1", false)
	s.PutClient(repository.Client{ID: "c1"})

	revoked, _ := s.AccessTokens().IsRevoked(ctx, "t1")
	assert.False(t, revoked)
	revoked, _ = s.Clients().IsRevoked(ctx, "c1")
	assert.False(t, revoked)

	s.PutToken("t1", true)
	s.RevokeClient("c1")

	revoked, _ = s.AccessTokens().IsRevoked(ctx, "t1")
	assert.True(t, revoked)
	revoked, _ = s.Clients().IsRevoked(ctx, "c1")
	assert.True(t, revoked)
}

func TestLoadSeed(t *testing.T) {
	// Given.
	path := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
tokens:
  - id: jti-1
  - id: jti-2
    revoked: true
clients:
  - id: "1"
    name: resource server
    secret_hash: $2a$10$abc
users:
  - id: "42"
    email: jane@example.com
    name: Jane
`), 0o600))

	// When.
	seed, err := LoadSeed(path)
	require.NoError(t, err)
	s := New()
	s.Apply(seed)

	// Then.
	ctx := context.Background()
	revoked, _ := s.AccessTokens().IsRevoked(ctx, "jti-1")
	assert.False(t, revoked)
	revoked, _ = s.AccessTokens().IsRevoked(ctx, "jti-2")
	assert.True(t, revoked)

	c, err := s.Clients().GetClient(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "$2a$10$abc", c.SecretHash)

	u, err := s.Users().FindByID(ctx, "42")
	require.NoError(t, err)
	assert.Equal(t, "jane@example.com", u.Email)
}
