package protocol

import (
	"encoding/binary"

	"whisper/internal/crypto"
	"whisper/internal/domain"
)

// Version is the envelope protocol version this build speaks.
const Version uint8 = 1

// SuiteChaCha20Poly1305 tags the v1 cipher suite: X25519 key agreement,
// HKDF-SHA256 derivation, ChaCha20-Poly1305 AEAD.
const SuiteChaCha20Poly1305 = "c20p"

const (
	contextLabel = "whisper/context/v1"
	nonceLabel   = "whisper/nonce/v1"
)

// Params are the header fields the canonical context is built from. Both
// encryption and decryption populate them from the same envelope fields.
type Params struct {
	Version      uint8
	Suite        string
	Rkid         string
	EphemeralKey domain.X25519Public
	Salt         [domain.SaltSize]byte
	MessageID    [domain.MessageIDSize]byte
	Timestamp    int64
}

// ParamsFromEnvelope rebuilds the context parameters of an envelope.
func ParamsFromEnvelope(env domain.Envelope) Params {
	return Params{
		Version:      env.Version,
		Suite:        env.Suite,
		Rkid:         env.Rkid,
		EphemeralKey: env.EphemeralKey,
		Salt:         env.Salt,
		MessageID:    env.MessageID,
		Timestamp:    env.Timestamp,
	}
}

// Context serializes p into the canonical context bytes. Variable-length
// fields are length-prefixed so no two parameter sets can collide.
func Context(p Params) []byte {
	out := make([]byte, 0, len(contextLabel)+2+len(p.Suite)+1+len(p.Rkid)+1+32+domain.SaltSize+domain.MessageIDSize+8)
	out = append(out, contextLabel...)
	out = append(out, p.Version)
	out = append(out, uint8(len(p.Suite)))
	out = append(out, p.Suite...)
	out = append(out, uint8(len(p.Rkid)))
	out = append(out, p.Rkid...)
	out = append(out, p.EphemeralKey.Slice()...)
	out = append(out, p.Salt[:]...)
	out = append(out, p.MessageID[:]...)
	out = binary.BigEndian.AppendUint64(out, uint64(p.Timestamp))
	return out
}

// Nonce derives the AEAD nonce from the message id. The symmetric key is
// unique per message (fresh ephemeral key and salt), so a deterministic
// nonce is never reused under the same key.
func Nonce(messageID [domain.MessageIDSize]byte) [crypto.NonceBytes]byte {
	sum := crypto.Hash(append([]byte(nonceLabel), messageID[:]...))
	var nonce [crypto.NonceBytes]byte
	copy(nonce[:], sum[:])
	return nonce
}
