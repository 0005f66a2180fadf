package ratelimit_test

import (
	"testing"
	"time"

	"whisper/internal/ratelimit"
)

func TestKeyed_BurstThenRefill(t *testing.T) {
	now := time.Unix(1700000000, 0)
	l := ratelimit.NewKeyed(1, 2, 0)

	if !l.Allow("a", now) || !l.Allow("a", now) {
		t.Fatal("burst tokens should be available")
	}
	if l.Allow("a", now) {
		t.Fatal("third immediate call should be limited")
	}
	if !l.Allow("a", now.Add(time.Second)) {
		t.Fatal("a token should refill after one second at 1/s")
	}
}

func TestKeyed_KeysAreIndependent(t *testing.T) {
	now := time.Unix(1700000000, 0)
	l := ratelimit.NewKeyed(1, 1, 0)

	if !l.Allow("a", now) {
		t.Fatal("first call for a")
	}
	if l.Allow("a", now) {
		t.Fatal("a exhausted")
	}
	if !l.Allow("b", now) {
		t.Fatal("b has its own bucket")
	}
}

func TestKeyed_CheckDoesNotConsume(t *testing.T) {
	now := time.Unix(1700000000, 0)
	l := ratelimit.NewKeyed(1, 2, 0)

	// Peeking an unknown key never creates a bucket.
	for i := 0; i < 5; i++ {
		if !l.Check("a", now) {
			t.Fatal("unseen key must pass Check")
		}
	}

	if !l.Allow("a", now) {
		t.Fatal("first charge should be allowed")
	}
	if !l.Check("a", now) {
		t.Fatal("one token remains after the first charge")
	}
	if !l.Allow("a", now) {
		t.Fatal("second charge should be allowed")
	}
	if l.Check("a", now) {
		t.Fatal("bucket is exhausted, Check must refuse")
	}
	// Check has consumed nothing along the way.
	if !l.Check("a", now.Add(time.Second)) {
		t.Fatal("a token should refill after one second at 1/s")
	}

	var nilLimiter *ratelimit.Keyed
	if !nilLimiter.Check("a", now) || !l.Check("", now) {
		t.Fatal("nil limiter and empty key must pass Check")
	}
}

func TestKeyed_NilAndEmptyKeyAllowEverything(t *testing.T) {
	now := time.Unix(1700000000, 0)

	var nilLimiter *ratelimit.Keyed
	for i := 0; i < 10; i++ {
		if !nilLimiter.Allow("a", now) {
			t.Fatal("nil limiter must allow")
		}
	}

	if l := ratelimit.NewKeyed(0, 1, 0); l != nil {
		t.Fatal("non-positive rate should yield a nil limiter")
	}

	l := ratelimit.NewKeyed(1, 1, 0)
	for i := 0; i < 10; i++ {
		if !l.Allow("", now) {
			t.Fatal("empty key bypasses limiting")
		}
	}
}
