package protocol

import (
	"whisper/internal/crypto"
	"whisper/internal/domain"
	"whisper/internal/util/memzero"
)

// Seal encrypts plaintext to the recipient public key using the ephemeral
// private key and the context parameters. The canonical context doubles as
// HKDF info and AEAD associated data.
func Seal(ephPriv domain.X25519Private, recipient domain.X25519Public, p Params, plaintext []byte) ([]byte, error) {
	shared, err := crypto.DH(ephPriv, recipient)
	if err != nil {
		return nil, err
	}
	defer memzero.Zero(shared[:])

	ctx := Context(p)
	key, err := crypto.DeriveKey(shared[:], p.Salt[:], ctx)
	if err != nil {
		return nil, err
	}
	defer memzero.Zero(key[:])

	return crypto.Seal(key, Nonce(p.MessageID), ctx, plaintext)
}

// Open reverses Seal with the addressed identity's private key and the
// envelope's ephemeral public key. Any tag mismatch surfaces as
// ErrAuthenticationFailure, never a partial result.
func Open(identityPriv domain.X25519Private, p Params, ciphertext []byte) ([]byte, error) {
	shared, err := crypto.DH(identityPriv, p.EphemeralKey)
	if err != nil {
		return nil, err
	}
	defer memzero.Zero(shared[:])

	ctx := Context(p)
	key, err := crypto.DeriveKey(shared[:], p.Salt[:], ctx)
	if err != nil {
		return nil, err
	}
	defer memzero.Zero(key[:])

	return crypto.Open(key, Nonce(p.MessageID), ctx, ciphertext)
}

// Sign produces the envelope signature field: the sender's Ed25519 public
// key followed by a signature over the canonical context and plaintext.
func Sign(edPriv domain.Ed25519Private, edPub domain.Ed25519Public, p Params, plaintext []byte) []byte {
	payload := signaturePayload(p, plaintext)
	out := make([]byte, 0, domain.SignatureSize)
	out = append(out, edPub.Slice()...)
	out = append(out, crypto.SignEd25519(edPriv, payload)...)
	return out
}

// VerifySignature checks an envelope signature field against the canonical
// context and plaintext. It returns the embedded sender key and whether
// the signature verified under it.
func VerifySignature(sig []byte, p Params, plaintext []byte) (domain.Ed25519Public, bool) {
	var pub domain.Ed25519Public
	if len(sig) != domain.SignatureSize {
		return pub, false
	}
	copy(pub[:], sig[:32])
	return pub, crypto.VerifyEd25519(pub, signaturePayload(p, plaintext), sig[32:])
}

func signaturePayload(p Params, plaintext []byte) []byte {
	ctx := Context(p)
	payload := make([]byte, 0, len(ctx)+len(plaintext))
	payload = append(payload, ctx...)
	payload = append(payload, plaintext...)
	return payload
}
