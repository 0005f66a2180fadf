// Package crypto exposes the pure primitives used by the engine.
//
// Contents
//
//   - X25519 key generation, clamping and Diffie–Hellman (GenerateX25519, DH)
//   - HKDF-SHA256 key derivation (DeriveKey)
//   - ChaCha20-Poly1305 sealing and opening (Seal, Open)
//   - Ed25519 key generation, signing and verification (GenerateEd25519,
//     SignEd25519, VerifyEd25519)
//   - SHA-256 hashing (Hash)
//   - Fingerprint, short-fingerprint, SAS-word and rkid derivation
//
// Every function is side-effect free and safe for concurrent use; there is
// no shared mutable state anywhere in this package.
package crypto
