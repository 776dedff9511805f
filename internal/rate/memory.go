package rate

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryLimiter: fixed window en proceso (go-cache). Cada réplica cuenta por
// separado; usar RedisLimiter cuando hay más de una.
type MemoryLimiter struct {
	c      *gocache.Cache
	Max    int64
	Window time.Duration
	now    func() time.Time
}

func NewMemoryLimiter(max int, window time.Duration) *MemoryLimiter {
	return &MemoryLimiter{
		c:      gocache.New(window, 2*window),
		Max:    int64(max),
		Window: window,
		now:    time.Now,
	}
}

func (l *MemoryLimiter) Allow(_ context.Context, key string) (Result, error) {
	now := l.now().UTC()
	k := windowKey("", key, l.Window, now)
	ttl := now.Truncate(l.Window).Add(l.Window).Sub(now)

	// Add falla si la key ya existe: en ese caso incrementamos.
	if err := l.c.Add(k, int64(1), l.Window); err == nil {
		return newResult(1, l.Max, ttl, l.Window), nil
	}
	hits, err := l.c.IncrementInt64(k, 1)
	if err != nil {
		// La key expiró entre Add e Increment: nueva ventana.
		l.c.Set(k, int64(1), l.Window)
		hits = 1
	}
	return newResult(hits, l.Max, ttl, l.Window), nil
}
