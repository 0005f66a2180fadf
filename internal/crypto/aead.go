package crypto

import (
	"golang.org/x/crypto/chacha20poly1305"

	"whisper/internal/domain"
)

// NonceBytes is the ChaCha20-Poly1305 nonce size.
const NonceBytes = chacha20poly1305.NonceSize

// TagBytes is the Poly1305 tag appended to every ciphertext.
const TagBytes = chacha20poly1305.Overhead

// Seal encrypts plaintext under key, binding aad into the tag.
func Seal(key [KeyBytes]byte, nonce [NonceBytes]byte, aad, plaintext []byte) ([]byte, error) {
	aead, err := chacha20poly1305.New(key[:])
	if err != nil {
		return nil, err
	}
	return aead.Seal(nil, nonce[:], plaintext, aad), nil
}

// Open decrypts and authenticates. It fails closed: any tag mismatch is
// ErrAuthenticationFailure and no partial plaintext is ever returned.
func Open(key [KeyBytes]byte, nonce [NonceBytes]byte, aad, ciphertext []byte) ([]byte, error) {
	aead, err := chacha20poly1305.New(key[:])
	if err != nil {
		return nil, err
	}
	pt, err := aead.Open(nil, nonce[:], ciphertext, aad)
	if err != nil {
		return nil, domain.ErrAuthenticationFailure
	}
	return pt, nil
}
