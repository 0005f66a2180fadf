package domain

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
)

// PublicKeyBundle is a transient, shareable snapshot of one identity's
// public material plus its already-computed fingerprint and SAS words.
// It is the sole legitimate source for constructing a Contact: receivers
// copy the fingerprint and SAS verbatim and never recompute them.
type PublicKeyBundle struct {
	DisplayName      string
	XPub             X25519Public
	EdPub            Ed25519Public
	Fingerprint      string
	ShortFingerprint string
	SASWords         []string
	Rkid             string
}

// bundleJSON is the interchange form; fixed-size keys travel as base64.
type bundleJSON struct {
	DisplayName      string   `json:"display_name"`
	XPub             string   `json:"x25519_pub"`
	EdPub            string   `json:"ed25519_pub"`
	Fingerprint      string   `json:"fingerprint"`
	ShortFingerprint string   `json:"short_fingerprint"`
	SASWords         []string `json:"sas_words"`
	Rkid             string   `json:"rkid"`
}

func (b PublicKeyBundle) MarshalJSON() ([]byte, error) {
	edPub := ""
	if !b.EdPub.IsZero() {
		edPub = base64.StdEncoding.EncodeToString(b.EdPub.Slice())
	}
	return json.Marshal(bundleJSON{
		DisplayName:      b.DisplayName,
		XPub:             base64.StdEncoding.EncodeToString(b.XPub.Slice()),
		EdPub:            edPub,
		Fingerprint:      b.Fingerprint,
		ShortFingerprint: b.ShortFingerprint,
		SASWords:         b.SASWords,
		Rkid:             b.Rkid,
	})
}

func (b *PublicKeyBundle) UnmarshalJSON(data []byte) error {
	var aux bundleJSON
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	xb, err := base64.StdEncoding.DecodeString(aux.XPub)
	if err != nil {
		return fmt.Errorf("bundle x25519 key: %w", err)
	}
	if len(xb) != 32 {
		return fmt.Errorf("bundle x25519 key length: %w", ErrInvalidKey)
	}
	var edPub Ed25519Public
	if aux.EdPub != "" {
		eb, err := base64.StdEncoding.DecodeString(aux.EdPub)
		if err != nil {
			return fmt.Errorf("bundle ed25519 key: %w", err)
		}
		if len(eb) != 32 {
			return fmt.Errorf("bundle ed25519 key length: %w", ErrInvalidKey)
		}
		edPub = MustEd25519Public(eb)
	}
	*b = PublicKeyBundle{
		DisplayName:      aux.DisplayName,
		XPub:             MustX25519Public(xb),
		EdPub:            edPub,
		Fingerprint:      aux.Fingerprint,
		ShortFingerprint: aux.ShortFingerprint,
		SASWords:         aux.SASWords,
		Rkid:             aux.Rkid,
	}
	return nil
}
