package domain

import "time"

// TrustLevel is the verification state of a contact's current key material.
type TrustLevel string

const (
	TrustUnverified TrustLevel = "unverified"
	TrustVerified   TrustLevel = "verified"
	TrustRevoked    TrustLevel = "revoked"
)

// KeyHistoryEntry records key material a contact used before a rotation.
type KeyHistoryEntry struct {
	XPub        X25519Public
	EdPub       Ed25519Public
	Fingerprint string
	ReplacedAt  time.Time
}

// Contact is a remote party's public key material as known locally.
//
// Contact values are immutable: every mutation (rekey, trust transition)
// produces a new value built from the old one. The fingerprint, short
// fingerprint and SAS words are copied verbatim from the PublicKeyBundle
// the contact was created from and are never recomputed afterwards; only
// a key rotation replaces them, together with the keys they describe.
type Contact struct {
	ID          string
	DisplayName string

	XPub  X25519Public
	EdPub Ed25519Public // zero value when the contact has no signing key

	Fingerprint      string
	ShortFingerprint string
	SASWords         []string
	Rkid             string

	TrustLevel TrustLevel
	IsBlocked  bool

	KeyVersion uint32
	KeyHistory []KeyHistoryEntry

	CreatedAt  time.Time
	LastSeenAt time.Time
	Note       string
}

// HasSigningKey reports whether the contact published an Ed25519 key.
func (c Contact) HasSigningKey() bool { return !c.EdPub.IsZero() }

// clonedHistory returns an independent copy of the key history so that
// derived Contact values never alias the original's backing array.
func (c Contact) clonedHistory() []KeyHistoryEntry {
	out := make([]KeyHistoryEntry, len(c.KeyHistory))
	copy(out, c.KeyHistory)
	return out
}

// WithTrust returns a copy of the contact at the given trust level.
func (c Contact) WithTrust(level TrustLevel) Contact {
	out := c
	out.SASWords = append([]string(nil), c.SASWords...)
	out.KeyHistory = c.clonedHistory()
	out.TrustLevel = level
	return out
}

// WithBlocked returns a copy of the contact with the block flag set.
func (c Contact) WithBlocked(blocked bool) Contact {
	out := c
	out.SASWords = append([]string(nil), c.SASWords...)
	out.KeyHistory = c.clonedHistory()
	out.IsBlocked = blocked
	return out
}

// WithRotatedKeys returns a copy of the contact carrying the new key
// material and its freshly derived fingerprint data. The previous keys are
// appended to the history and the trust level drops back to Unverified:
// rotation always demands re-verification.
func (c Contact) WithRotatedKeys(
	newXPub X25519Public,
	newEdPub Ed25519Public,
	fingerprint, shortFingerprint string,
	sasWords []string,
	rkid string,
	at time.Time,
) Contact {
	out := c
	out.KeyHistory = append(c.clonedHistory(), KeyHistoryEntry{
		XPub:        c.XPub,
		EdPub:       c.EdPub,
		Fingerprint: c.Fingerprint,
		ReplacedAt:  at,
	})
	out.XPub = newXPub
	out.EdPub = newEdPub
	out.Fingerprint = fingerprint
	out.ShortFingerprint = shortFingerprint
	out.SASWords = append([]string(nil), sasWords...)
	out.Rkid = rkid
	out.TrustLevel = TrustUnverified
	out.KeyVersion = c.KeyVersion + 1
	return out
}
