// Package ratelimit provides a token-bucket limiter per string key with
// idle-entry eviction.
package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const defaultIdleTTL = 10 * time.Minute

// Keyed applies an independent token bucket to every key it sees.
type Keyed struct {
	limit   rate.Limit
	burst   int
	idleTTL time.Duration

	mu    sync.Mutex
	byKey map[string]*bucket
	calls uint64
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewKeyed creates a limiter allowing perSecond sustained events with the
// given burst per key. Returns nil for non-positive arguments; a nil
// limiter allows everything.
func NewKeyed(perSecond float64, burst int, idleTTL time.Duration) *Keyed {
	if perSecond <= 0 || burst <= 0 {
		return nil
	}
	if idleTTL <= 0 {
		idleTTL = defaultIdleTTL
	}
	return &Keyed{
		limit:   rate.Limit(perSecond),
		burst:   burst,
		idleTTL: idleTTL,
		byKey:   make(map[string]*bucket),
	}
}

// Check reports whether at least one token is available for key at now
// without consuming it. A key that has never been charged always passes.
func (l *Keyed) Check(key string, now time.Time) bool {
	if l == nil || key == "" {
		return true
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	b, ok := l.byKey[key]
	if !ok {
		return true
	}
	return b.limiter.TokensAt(now) >= 1
}

// Allow reports whether one token is available for key at now, consuming
// it if so. Idle buckets are evicted on a coarse cadence.
func (l *Keyed) Allow(key string, now time.Time) bool {
	if l == nil || key == "" {
		return true
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.byKey[key]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.byKey[key] = b
	}
	b.lastSeen = now
	allowed := b.limiter.AllowN(now, 1)

	l.calls++
	if l.calls%256 == 0 {
		cutoff := now.Add(-l.idleTTL)
		for k, v := range l.byKey {
			if v.lastSeen.Before(cutoff) {
				delete(l.byKey, k)
			}
		}
	}
	return allowed
}
