// Package protocol implements the envelope encryption protocol: the
// canonical context construction, nonce derivation, message sealing and
// opening, and the optional sender signature.
//
// The canonical context is the load-bearing invariant of the whole engine.
// It is one deterministic byte sequence built from the envelope header
// fields, used both as the HKDF info input and, byte for byte, as the AEAD
// associated data. Encryption and decryption call the same constructor, so
// the two sides cannot drift apart.
package protocol
