package domain_test

import (
	"testing"
	"time"

	"whisper/internal/domain"
)

func baseContact() domain.Contact {
	return domain.Contact{
		ID:          "c-1",
		XPub:        domain.X25519Public{1},
		EdPub:       domain.Ed25519Public{2},
		Fingerprint: "fp-old",
		SASWords:    []string{"apple", "banana"},
		Rkid:        "rk-old",
		TrustLevel:  domain.TrustVerified,
		KeyVersion:  3,
	}
}

func TestWithRotatedKeys(t *testing.T) {
	c := baseContact()
	at := time.Unix(1700000000, 0).UTC()

	out := c.WithRotatedKeys(
		domain.X25519Public{9},
		domain.Ed25519Public{8},
		"fp-new", "short-new",
		[]string{"cherry", "daisy"},
		"rk-new",
		at,
	)

	if out.TrustLevel != domain.TrustUnverified {
		t.Fatal("rotation must drop trust to unverified")
	}
	if out.KeyVersion != 4 {
		t.Fatalf("key version %d, want 4", out.KeyVersion)
	}
	if out.Fingerprint != "fp-new" || out.Rkid != "rk-new" {
		t.Fatal("new fingerprint data not installed")
	}
	if len(out.KeyHistory) != 1 {
		t.Fatalf("history length %d, want 1", len(out.KeyHistory))
	}
	h := out.KeyHistory[0]
	if h.Fingerprint != "fp-old" || h.XPub != c.XPub || h.ReplacedAt != at {
		t.Fatal("history entry does not capture the old material")
	}

	// The original value is untouched.
	if c.TrustLevel != domain.TrustVerified || c.KeyVersion != 3 || len(c.KeyHistory) != 0 {
		t.Fatal("rotation mutated the original contact")
	}
}

func TestDerivedValuesDoNotAlias(t *testing.T) {
	c := baseContact()
	out := c.WithTrust(domain.TrustRevoked)

	out.SASWords[0] = "mutated"
	if c.SASWords[0] != "apple" {
		t.Fatal("derived contact aliases the original SAS slice")
	}
	if c.TrustLevel != domain.TrustVerified {
		t.Fatal("WithTrust mutated the receiver")
	}
}

func TestHasSigningKey(t *testing.T) {
	c := baseContact()
	if !c.HasSigningKey() {
		t.Fatal("contact with an Ed25519 key must report it")
	}
	c.EdPub = domain.Ed25519Public{}
	if c.HasSigningKey() {
		t.Fatal("zero key is no signing key")
	}
}
