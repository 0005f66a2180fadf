package domain

import "fmt"

// Fixed-size key types. Value semantics make accidental aliasing of key
// material impossible; Slice() hands the bytes to crypto APIs that want
// []byte.
type (
	X25519Private  [32]byte
	X25519Public   [32]byte
	Ed25519Private [64]byte // seed || public, the crypto/ed25519 layout
	Ed25519Public  [32]byte
)

func (k X25519Private) Slice() []byte  { return k[:] }
func (k X25519Public) Slice() []byte   { return k[:] }
func (k Ed25519Private) Slice() []byte { return k[:] }
func (k Ed25519Public) Slice() []byte  { return k[:] }

// IsZero reports whether the key is unset. A signing key is optional on
// contacts; the zero value marks its absence.
func (k Ed25519Public) IsZero() bool { return k == Ed25519Public{} }

// The Must constructors convert trusted length-checked input, such as
// bytes already validated by a codec. They panic on a length mismatch
// because reaching one means a validation layer is missing, not that the
// input was merely bad.

func MustX25519Private(b []byte) (out X25519Private) {
	mustLen("X25519 private", len(out), b)
	copy(out[:], b)
	return
}

func MustX25519Public(b []byte) (out X25519Public) {
	mustLen("X25519 public", len(out), b)
	copy(out[:], b)
	return
}

func MustEd25519Private(b []byte) (out Ed25519Private) {
	mustLen("Ed25519 private", len(out), b)
	copy(out[:], b)
	return
}

func MustEd25519Public(b []byte) (out Ed25519Public) {
	mustLen("Ed25519 public", len(out), b)
	copy(out[:], b)
	return
}

func mustLen(kind string, want int, b []byte) {
	if len(b) != want {
		panic(fmt.Errorf("%s key: want %d bytes, got %d", kind, want, len(b)))
	}
}
