package cached

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dropDatabas3/hellojohn-introspect/internal/cache"
	"github.com/dropDatabas3/hellojohn-introspect/internal/domain/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingTokens struct {
	mu      sync.Mutex
	revoked bool
	err     error
	calls   atomic.Int32
	delay   time.Duration
}

func (c *countingTokens) IsRevoked(context.Context, string) (bool, error) {
	c.calls.Add(1)
	if c.delay > 0 {
		time.Sleep(c.delay)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.revoked, c.err
}

func (c *countingTokens) set(revoked bool, err error) {
	c.mu.Lock()
	c.revoked, c.err = revoked, err
	c.mu.Unlock()
}

func TestAccessTokens_CachesWithinTTL(t *testing.T) {
	// Given.
	ctx := context.Background()
	backend := &countingTokens{}
	repo := NewAccessTokens(backend, cache.NewMemory("", time.Minute), 50*time.Millisecond)

	// When.
	first, err := repo.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	backend.set(true, nil)
	second, err := repo.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)

	// Then.
	assert.False(t, first)
	assert.False(t, second, "served from cache")
	assert.EqualValues(t, 1, backend.calls.Load())

	// After the TTL the revocation is observed.
	time.Sleep(80 * time.Millisecond)
	third, err := repo.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, third)
}

func TestAccessTokens_ErrorsAreNotCached(t *testing.T) {
	ctx := context.Background()
	backend := &countingTokens{}
	backend.set(false, errors.New("db down"))
	repo := NewAccessTokens(backend, cache.NewMemory("", time.Minute), time.Minute)

	_, err := repo.IsRevoked(ctx, "jti-1")
	require.Error(t, err)

	backend.set(true, nil)
	revoked, err := repo.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)
	assert.EqualValues(t, 2, backend.calls.Load())
}

func TestAccessTokens_CollapsesConcurrentLookups(t *testing.T) {
	ctx := context.Background()
	backend := &countingTokens{delay: 50 * time.Millisecond}
	repo := NewAccessTokens(backend, cache.NewMemory("", time.Minute), time.Minute)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = repo.IsRevoked(ctx, "jti-1")
		}()
	}
	wg.Wait()

	assert.Less(t, backend.calls.Load(), int32(10))
}

type clientStoreStub struct {
	countingTokens
}

func (c *clientStoreStub) GetClient(_ context.Context, id string) (*repository.Client, error) {
	return &repository.Client{ID: id}, nil
}

func TestClients_GetClientPassesThrough(t *testing.T) {
	backend := &clientStoreStub{}
	repo := NewClients(backend, cache.NewMemory("", time.Minute), 0)

	c, err := repo.GetClient(context.Background(), "c1")
	require.NoError(t, err)
	assert.Equal(t, "c1", c.ID)

	revoked, err := repo.IsRevoked(context.Background(), "c1")
	require.NoError(t, err)
	assert.False(t, revoked)
}
