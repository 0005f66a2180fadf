package crypto

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"

	"github.com/mr-tron/base58/base58"
	"github.com/tyler-smith/go-bip39"

	"whisper/internal/domain"
)

// Domain separation labels for the fingerprint-derived identifiers.
const (
	fingerprintLabel = "whisper/fingerprint/v1"
	rkidLabel        = "whisper/rkid/v1"
)

// SASWordCount is the fixed length of a short authentication string.
const SASWordCount = 6

// shortFingerprintBytes is how much of the digest the short form shows.
const shortFingerprintBytes = 10

// RkidBytes is the truncated digest length behind an rkid. Collisions are
// tolerated: envelope routing scans candidates and the AEAD disambiguates.
const RkidBytes = 8

// Fingerprint computes the hex digest of a public key bundle. It is
// computed exactly once, when the bundle is built; everything derived from
// it (short form, SAS words, rkid) is a pure function of this value.
func Fingerprint(xPub domain.X25519Public, edPub domain.Ed25519Public) string {
	h := sha256.New()
	h.Write([]byte(fingerprintLabel))
	h.Write(xPub.Slice())
	if edPub.IsZero() {
		h.Write([]byte{0})
	} else {
		h.Write([]byte{1})
		h.Write(edPub.Slice())
	}
	return hex.EncodeToString(h.Sum(nil))
}

// ShortFingerprint returns the base58 form of the leading fingerprint
// bytes, for compact display.
func ShortFingerprint(fingerprint string) (string, error) {
	raw, err := decodeFingerprint(fingerprint)
	if err != nil {
		return "", err
	}
	return base58.Encode(raw[:shortFingerprintBytes]), nil
}

// SASWords maps the fingerprint onto six words from the BIP-39 English
// wordlist. Two parties holding the same fingerprint always read the same
// six words.
func SASWords(fingerprint string) ([]string, error) {
	raw, err := decodeFingerprint(fingerprint)
	if err != nil {
		return nil, err
	}
	list := bip39.GetWordList()
	words := make([]string, SASWordCount)
	for i := range words {
		idx := binary.BigEndian.Uint16(raw[2*i:]) % uint16(len(list))
		words[i] = list[idx]
	}
	return words, nil
}

// Rkid derives the short routing identifier from a fingerprint. It is
// non-reversible and reveals nothing beyond the truncated digest.
func Rkid(fingerprint string) (string, error) {
	raw, err := decodeFingerprint(fingerprint)
	if err != nil {
		return "", err
	}
	h := sha256.New()
	h.Write([]byte(rkidLabel))
	h.Write(raw)
	return base58.Encode(h.Sum(nil)[:RkidBytes]), nil
}

func decodeFingerprint(fingerprint string) ([]byte, error) {
	raw, err := hex.DecodeString(fingerprint)
	if err != nil {
		return nil, fmt.Errorf("fingerprint is not hex: %w", err)
	}
	if len(raw) != sha256.Size {
		return nil, fmt.Errorf("fingerprint length %d, want %d", len(raw), sha256.Size)
	}
	return raw, nil
}
