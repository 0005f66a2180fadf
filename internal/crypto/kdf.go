package crypto

import (
	"crypto/sha256"
	"io"

	"golang.org/x/crypto/hkdf"
)

// KeyBytes is the symmetric key size of the v1 cipher suite.
const KeyBytes = 32

// DeriveKey runs HKDF-SHA256 extract-then-expand over the shared secret.
// info is the canonical context; identical inputs always yield the same key.
func DeriveKey(sharedSecret, salt, info []byte) ([KeyBytes]byte, error) {
	var key [KeyBytes]byte
	r := hkdf.New(sha256.New, sharedSecret, salt, info)
	if _, err := io.ReadFull(r, key[:]); err != nil {
		return key, err
	}
	return key, nil
}
