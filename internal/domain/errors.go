package domain

import "errors"

// Failure taxonomy. Every error except ErrRotationInProgress is
// deterministic for identical inputs: retrying cannot change the outcome,
// so nothing in the engine retries internally.
var (
	// ErrEnvelopeMalformed covers wrong field counts, bad base encodings
	// and field lengths outside the cipher suite's expected sizes.
	ErrEnvelopeMalformed = errors.New("envelope malformed")

	// ErrUnsupportedVersion is returned for envelope versions this build
	// does not speak.
	ErrUnsupportedVersion = errors.New("unsupported envelope version")

	// ErrIdentityNotFound means no local identity (active or archived)
	// matches the envelope's rkid.
	ErrIdentityNotFound = errors.New("identity not found")

	// ErrContactNotFound means the referenced contact does not exist.
	ErrContactNotFound = errors.New("contact not found")

	// ErrContactRevoked is returned when verifying a revoked contact;
	// it must be un-revoked explicitly first.
	ErrContactRevoked = errors.New("contact is revoked")

	// ErrAuthenticationFailure is an AEAD tag mismatch. The envelope was
	// tampered with, corrupted, or addressed to different key material.
	ErrAuthenticationFailure = errors.New("authentication failure")

	// ErrSignatureInvalid is a sender signature that does not verify.
	ErrSignatureInvalid = errors.New("signature invalid")

	// ErrReplayDetected means the message id was seen before.
	ErrReplayDetected = errors.New("replay detected")

	// ErrStaleOrFutureMessage means the envelope timestamp lies outside
	// the freshness window.
	ErrStaleOrFutureMessage = errors.New("message timestamp outside freshness window")

	// ErrRotationInProgress is returned when a second rotation is
	// requested while one is in flight. Callers may retry after backoff.
	ErrRotationInProgress = errors.New("identity rotation already in progress")

	// ErrPolicyViolation means the policy gate denied the operation.
	ErrPolicyViolation = errors.New("operation denied by policy")

	// ErrInvalidKey covers malformed or degenerate key material.
	ErrInvalidKey = errors.New("invalid key")
)
