package domain

// Envelope sizes fixed by the v1 cipher suite.
const (
	SaltSize      = 16
	MessageIDSize = 16
	// SignatureSize is the sender Ed25519 public key followed by the
	// Ed25519 signature over the canonical context and plaintext.
	SignatureSize = 32 + 64
)

// FlagSigned is envelope flags bit 0: a sender signature is present.
const FlagSigned uint8 = 1 << 0

// Envelope is the transport-agnostic wire object produced by encryption
// and consumed by decryption. Immutable once constructed.
type Envelope struct {
	Version      uint8
	Suite        string
	Rkid         string
	Flags        uint8
	EphemeralKey X25519Public
	Salt         [SaltSize]byte
	MessageID    [MessageIDSize]byte
	Timestamp    int64 // unix seconds
	Ciphertext   []byte
	Signature    []byte // nil unless FlagSigned; SignatureSize bytes
}

// Signed reports whether the signature flag bit is set.
func (e Envelope) Signed() bool { return e.Flags&FlagSigned != 0 }
