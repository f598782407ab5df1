package rate

import (
	"math"
	"sync"

	"golang.org/x/time/rate"
)

// maxTrackedKeys bounds the number of per-key limiters kept in memory. Once
// exceeded, all limiters are dropped and start again with a full burst.
const maxTrackedKeys = 10000

// Limiter limits operations based on a provided key.
type Limiter interface {
	Allow(key string) (bool, error)
}

type localRateLimiter struct {
	limit rate.Limit
	burst int

	sync.Mutex
	limiters map[string]*rate.Limiter
}

// NewLimiter returns a per-key in memory limiter allowing perSecond operations
// per key, or a NoLimiter when perSecond isn't positive.
func NewLimiter(perSecond float64) Limiter {
	if perSecond <= 0 {
		return &NoLimiter{}
	}
	return NewLocalRateLimiter(rate.Limit(perSecond))
}

// NewLocalRateLimiter returns an in memory limiter.
func NewLocalRateLimiter(limit rate.Limit) Limiter {
	return &localRateLimiter{
		limit:    limit,
		burst:    int(math.Max(1, math.Ceil(float64(limit)))),
		limiters: make(map[string]*rate.Limiter),
	}
}

// Allow implements limiter.Allow.
func (l *localRateLimiter) Allow(key string) (bool, error) {
	l.Lock()
	limiter, ok := l.limiters[key]
	if !ok {
		if len(l.limiters) >= maxTrackedKeys {
			l.limiters = make(map[string]*rate.Limiter)
		}

		limiter = rate.NewLimiter(l.limit, l.burst)
		l.limiters[key] = limiter
	}
	l.Unlock()

	return limiter.Allow(), nil
}

// NoLimiter never limits operations
type NoLimiter struct {
}

// Allow implements limiter.Allow.
func (n *NoLimiter) Allow(key string) (bool, error) {
	return true, nil
}
