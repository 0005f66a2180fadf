package domain

import (
	"context"
	"time"
)

// IdentityStorage is the secure-storage boundary for local identities.
// Implementations own at-rest protection; the engine never caches private
// key material beyond the lifetime of the operation using it.
type IdentityStorage interface {
	LoadIdentities() ([]Identity, error)
	SaveIdentities([]Identity) error
}

// ContactStorage is the secure-storage boundary for the contact store.
type ContactStorage interface {
	LoadContacts() ([]Contact, error)
	SaveContacts([]Contact) error
}

// PolicyGate is consulted before any signing operation. A denial surfaces
// to the caller as ErrPolicyViolation.
type PolicyGate interface {
	IsSigningAuthorized() bool
}

// IdentityService manages the local identity lifecycle. Exactly one
// identity is Active at a time.
type IdentityService interface {
	Create(displayName string) (Identity, error)
	RotateActive() (Identity, error)
	Active() (Identity, error)
	ResolveByRkid(rkid string) (Identity, error)
	Archive(id string) error
	Purge(id string) error
	List() []Identity
	ExportBundle() (PublicKeyBundle, error)
}

// ContactService manages the trust store.
type ContactService interface {
	Add(bundle PublicKeyBundle) (Contact, error)
	Get(id string) (Contact, error)
	List() []Contact
	Verify(id string) (Contact, error)
	Revoke(id string) (Contact, error)
	Unrevoke(id string) (Contact, error)
	SetBlocked(id string, blocked bool) (Contact, error)
	RotateKeys(id string, newXPub X25519Public, newEdPub Ed25519Public) (Contact, error)
	FindBySigningKey(pub Ed25519Public) (Contact, bool)
	Touch(id string, at time.Time)
}

// EncryptOptions selects per-message behavior.
type EncryptOptions struct {
	// Signed attaches a sender signature over the canonical context and
	// plaintext, subject to the policy gate.
	Signed bool
}

// Whisperer turns plaintext into envelopes and back.
type Whisperer interface {
	Encrypt(ctx context.Context, plaintext []byte, recipient Contact, sender Identity, opts EncryptOptions) (Envelope, error)
	Decrypt(ctx context.Context, env Envelope) ([]byte, Attribution, error)
}
