package domain

import "time"

// IdentityStatus is the lifecycle state of a local identity.
type IdentityStatus string

const (
	// StatusActive marks the single identity new envelopes are sent from.
	StatusActive IdentityStatus = "active"
	// StatusArchived marks an identity demoted by explicit archival or by
	// creation of a fresh identity. Still usable for decryption.
	StatusArchived IdentityStatus = "archived"
	// StatusRotated marks an identity replaced by key rotation. Still
	// usable for decryption of envelopes addressed to the old keys.
	StatusRotated IdentityStatus = "rotated"
)

// Identity is a long-lived cryptographic actor on this device. Private key
// material lives only inside the identity store and its secure storage.
type Identity struct {
	ID          string
	DisplayName string

	XPub   X25519Public
	XPriv  X25519Private
	EdPub  Ed25519Public
	EdPriv Ed25519Private

	// Fingerprint is the digest of the public key bundle, computed once
	// at creation. Rkid is derived from it.
	Fingerprint string
	Rkid        string

	Status     IdentityStatus
	KeyVersion uint32
	CreatedAt  time.Time
}

// Active reports whether this identity is the current default.
func (id Identity) Active() bool { return id.Status == StatusActive }
