package crypto

import "crypto/sha256"

// Hash returns the SHA-256 digest of b.
func Hash(b []byte) [32]byte { return sha256.Sum256(b) }
