package replay_test

import (
	"errors"
	"sync"
	"testing"
	"time"

	"whisper/internal/domain"
	"whisper/internal/replay"
)

func msgID(b byte) [domain.MessageIDSize]byte {
	var id [domain.MessageIDSize]byte
	id[0] = b
	return id
}

func TestCheckAndInsert_DuplicateRejected(t *testing.T) {
	now := time.Unix(1700000000, 0)
	g := replay.New(replay.WithClock(func() time.Time { return now }))

	if err := g.CheckAndInsert(msgID(1), now); err != nil {
		t.Fatalf("first insert: %v", err)
	}
	if err := g.CheckAndInsert(msgID(1), now); !errors.Is(err, domain.ErrReplayDetected) {
		t.Fatalf("got %v, want ErrReplayDetected", err)
	}
	if err := g.CheckAndInsert(msgID(2), now); err != nil {
		t.Fatalf("distinct id: %v", err)
	}
}

func TestCheckAndInsert_FreshnessWindow(t *testing.T) {
	now := time.Unix(1700000000, 0)
	g := replay.New(
		replay.WithWindow(time.Hour, time.Minute),
		replay.WithClock(func() time.Time { return now }),
	)

	cases := map[string]struct {
		ts time.Time
		ok bool
	}{
		"fresh":           {now.Add(-time.Minute), true},
		"edge of max age": {now.Add(-time.Hour), true},
		"too old":         {now.Add(-time.Hour - time.Second), false},
		"slight skew":     {now.Add(30 * time.Second), true},
		"too far ahead":   {now.Add(2 * time.Minute), false},
	}
	b := byte(10)
	for name, tc := range cases {
		err := g.CheckAndInsert(msgID(b), tc.ts)
		b++
		if tc.ok && err != nil {
			t.Errorf("%s: unexpected error %v", name, err)
		}
		if !tc.ok && !errors.Is(err, domain.ErrStaleOrFutureMessage) {
			t.Errorf("%s: got %v, want ErrStaleOrFutureMessage", name, err)
		}
	}
}

func TestCheckAndInsert_RejectedEnvelopeDoesNotTouchCache(t *testing.T) {
	now := time.Unix(1700000000, 0)
	g := replay.New(
		replay.WithWindow(time.Hour, time.Minute),
		replay.WithBound(1),
		replay.WithClock(func() time.Time { return now }),
	)

	if err := g.CheckAndInsert(msgID(1), now); err != nil {
		t.Fatalf("insert: %v", err)
	}
	// A stale envelope must not evict the live record.
	if err := g.CheckAndInsert(msgID(2), now.Add(-2*time.Hour)); !errors.Is(err, domain.ErrStaleOrFutureMessage) {
		t.Fatalf("got %v, want ErrStaleOrFutureMessage", err)
	}
	if err := g.CheckAndInsert(msgID(1), now); !errors.Is(err, domain.ErrReplayDetected) {
		t.Fatalf("record was evicted: got %v, want ErrReplayDetected", err)
	}
}

func TestCheckAndInsert_BoundEvictsOldestInsertion(t *testing.T) {
	now := time.Unix(1700000000, 0)
	clock := now
	g := replay.New(
		replay.WithBound(2),
		replay.WithClock(func() time.Time { return clock }),
	)

	if err := g.CheckAndInsert(msgID(1), now); err != nil {
		t.Fatalf("insert 1: %v", err)
	}
	clock = clock.Add(time.Second)
	if err := g.CheckAndInsert(msgID(2), now); err != nil {
		t.Fatalf("insert 2: %v", err)
	}
	clock = clock.Add(time.Second)
	if err := g.CheckAndInsert(msgID(3), now); err != nil {
		t.Fatalf("insert 3: %v", err)
	}
	if got := g.Len(); got != 2 {
		t.Fatalf("Len = %d, want 2", got)
	}

	// The oldest insertion (1) was evicted; its id is accepted again.
	if err := g.CheckAndInsert(msgID(1), now); err != nil {
		t.Fatalf("evicted id rejected: %v", err)
	}
	// 3 is still present.
	if err := g.CheckAndInsert(msgID(3), now); !errors.Is(err, domain.ErrReplayDetected) {
		t.Fatalf("got %v, want ErrReplayDetected", err)
	}
}

func TestCheckAndInsert_PruneExpiredRecords(t *testing.T) {
	clock := time.Unix(1700000000, 0)
	g := replay.New(
		replay.WithWindow(time.Hour, time.Minute),
		replay.WithClock(func() time.Time { return clock }),
	)

	if err := g.CheckAndInsert(msgID(1), clock); err != nil {
		t.Fatalf("insert: %v", err)
	}
	clock = clock.Add(2 * time.Hour)
	if err := g.CheckAndInsert(msgID(2), clock); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if got := g.Len(); got != 1 {
		t.Fatalf("Len = %d, want 1 after pruning", got)
	}
}

func TestCheckAndInsert_ConcurrentSameIDExactlyOneWins(t *testing.T) {
	now := time.Unix(1700000000, 0)
	g := replay.New(replay.WithClock(func() time.Time { return now }))

	const workers = 32
	var wg sync.WaitGroup
	results := make(chan error, workers)
	start := make(chan struct{})
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			results <- g.CheckAndInsert(msgID(7), now)
		}()
	}
	close(start)
	wg.Wait()
	close(results)

	okCount, dupCount := 0, 0
	for err := range results {
		switch {
		case err == nil:
			okCount++
		case errors.Is(err, domain.ErrReplayDetected):
			dupCount++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if okCount != 1 || dupCount != workers-1 {
		t.Fatalf("ok=%d dup=%d, want exactly one success", okCount, dupCount)
	}
}
