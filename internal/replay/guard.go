package replay

import (
	"encoding/hex"
	"sync"
	"time"

	"whisper/internal/domain"
)

// Defaults applied when an Option is absent or non-positive.
const (
	DefaultMaxAge     = 24 * time.Hour
	DefaultMaxSkew    = 5 * time.Minute
	DefaultMaxEntries = 4096
)

type record struct {
	timestamp  time.Time
	insertedAt time.Time
}

// Guard is a bounded replay cache. CheckAndInsert is atomic: of two
// concurrent calls for the same message id exactly one succeeds.
type Guard struct {
	mu      sync.Mutex
	seen    map[string]record
	maxAge  time.Duration
	maxSkew time.Duration
	bound   int
	now     func() time.Time
}

// Option configures a Guard.
type Option func(*Guard)

// WithWindow sets the freshness window: maxAge behind now, maxSkew ahead.
func WithWindow(maxAge, maxSkew time.Duration) Option {
	return func(g *Guard) {
		if maxAge > 0 {
			g.maxAge = maxAge
		}
		if maxSkew > 0 {
			g.maxSkew = maxSkew
		}
	}
}

// WithBound caps the number of retained records.
func WithBound(n int) Option {
	return func(g *Guard) {
		if n > 0 {
			g.bound = n
		}
	}
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(g *Guard) {
		if now != nil {
			g.now = now
		}
	}
}

// New returns a Guard with the default window and bound.
func New(opts ...Option) *Guard {
	g := &Guard{
		seen:    make(map[string]record),
		maxAge:  DefaultMaxAge,
		maxSkew: DefaultMaxSkew,
		bound:   DefaultMaxEntries,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// CheckAndInsert admits a message id once. The freshness check runs first:
// a stale or future timestamp is rejected without touching the cache, so a
// rejected envelope can never evict a live record.
func (g *Guard) CheckAndInsert(messageID [domain.MessageIDSize]byte, timestamp time.Time) error {
	key := hex.EncodeToString(messageID[:])

	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	if now.Sub(timestamp) > g.maxAge || timestamp.Sub(now) > g.maxSkew {
		return domain.ErrStaleOrFutureMessage
	}
	if _, dup := g.seen[key]; dup {
		return domain.ErrReplayDetected
	}

	g.pruneLocked(now)
	if len(g.seen) >= g.bound {
		g.evictOldestLocked()
	}
	g.seen[key] = record{timestamp: timestamp, insertedAt: now}
	return nil
}

// Len reports the number of retained records.
func (g *Guard) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.seen)
}

// pruneLocked drops records whose timestamps have aged out of the window;
// an envelope carrying that timestamp would now fail the freshness check
// anyway, so the record no longer protects anything.
func (g *Guard) pruneLocked(now time.Time) {
	for k, r := range g.seen {
		if now.Sub(r.timestamp) > g.maxAge {
			delete(g.seen, k)
		}
	}
}

func (g *Guard) evictOldestLocked() {
	var oldestKey string
	var oldest time.Time
	for k, r := range g.seen {
		if oldestKey == "" || r.insertedAt.Before(oldest) {
			oldestKey = k
			oldest = r.insertedAt
		}
	}
	if oldestKey != "" {
		delete(g.seen, oldestKey)
	}
}
