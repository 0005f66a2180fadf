package codec

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"

	"whisper/internal/domain"
	"whisper/internal/protocol"
)

// Prefix is the leading token of the textual envelope form.
const Prefix = "whisper1"

const (
	fieldsUnsigned = 10
	fieldsSigned   = 11
)

var b64 = base64.RawURLEncoding

// Encode renders an envelope in its dot-delimited textual form:
//
//	whisper1.<version>.<suite>.<rkid>.<flags>.<eph>.<salt>.<msgid>.<ts>.<ct>[.<sig>]
//
// Binary fields are base64url without padding; rkid is base58 and travels
// as-is. The envelope must be valid; Encode mirrors Parse exactly.
func Encode(e domain.Envelope) (string, error) {
	if err := Validate(e); err != nil {
		return "", err
	}
	parts := []string{
		Prefix,
		strconv.FormatUint(uint64(e.Version), 10),
		e.Suite,
		e.Rkid,
		strconv.FormatUint(uint64(e.Flags), 10),
		b64.EncodeToString(e.EphemeralKey.Slice()),
		b64.EncodeToString(e.Salt[:]),
		b64.EncodeToString(e.MessageID[:]),
		strconv.FormatInt(e.Timestamp, 10),
		b64.EncodeToString(e.Ciphertext),
	}
	if e.Signed() {
		parts = append(parts, b64.EncodeToString(e.Signature))
	}
	return strings.Join(parts, "."), nil
}

// Parse is the strict inverse of Encode.
func Parse(s string) (domain.Envelope, error) {
	var e domain.Envelope

	parts := strings.Split(strings.TrimSpace(s), ".")
	if len(parts) < 2 || parts[0] != Prefix {
		return e, fmt.Errorf("%w: missing %q prefix", domain.ErrEnvelopeMalformed, Prefix)
	}
	version, err := strconv.ParseUint(parts[1], 10, 8)
	if err != nil {
		return e, fmt.Errorf("%w: bad version field", domain.ErrEnvelopeMalformed)
	}
	e.Version = uint8(version)
	if e.Version != protocol.Version {
		// A future version may use a different field layout; report the
		// version mismatch rather than a spurious parse failure.
		return e, fmt.Errorf("%w: %d", domain.ErrUnsupportedVersion, e.Version)
	}
	if len(parts) != fieldsUnsigned && len(parts) != fieldsSigned {
		return e, fmt.Errorf("%w: %d fields", domain.ErrEnvelopeMalformed, len(parts))
	}

	e.Suite = parts[2]
	e.Rkid = parts[3]

	flags, err := strconv.ParseUint(parts[4], 10, 8)
	if err != nil {
		return e, fmt.Errorf("%w: bad flags field", domain.ErrEnvelopeMalformed)
	}
	e.Flags = uint8(flags)

	eph, err := decodeFixed(parts[5], 32)
	if err != nil {
		return e, fmt.Errorf("%w: ephemeral key: %v", domain.ErrEnvelopeMalformed, err)
	}
	copy(e.EphemeralKey[:], eph)

	salt, err := decodeFixed(parts[6], domain.SaltSize)
	if err != nil {
		return e, fmt.Errorf("%w: salt: %v", domain.ErrEnvelopeMalformed, err)
	}
	copy(e.Salt[:], salt)

	msgID, err := decodeFixed(parts[7], domain.MessageIDSize)
	if err != nil {
		return e, fmt.Errorf("%w: message id: %v", domain.ErrEnvelopeMalformed, err)
	}
	copy(e.MessageID[:], msgID)

	e.Timestamp, err = strconv.ParseInt(parts[8], 10, 64)
	if err != nil {
		return e, fmt.Errorf("%w: bad timestamp field", domain.ErrEnvelopeMalformed)
	}

	e.Ciphertext, err = b64.DecodeString(parts[9])
	if err != nil {
		return e, fmt.Errorf("%w: ciphertext: %v", domain.ErrEnvelopeMalformed, err)
	}

	if len(parts) == fieldsSigned {
		e.Signature, err = decodeFixed(parts[10], domain.SignatureSize)
		if err != nil {
			return e, fmt.Errorf("%w: signature: %v", domain.ErrEnvelopeMalformed, err)
		}
	}

	if err := Validate(e); err != nil {
		return domain.Envelope{}, err
	}
	return e, nil
}

func decodeFixed(s string, want int) ([]byte, error) {
	b, err := b64.DecodeString(s)
	if err != nil {
		return nil, err
	}
	if len(b) != want {
		return nil, fmt.Errorf("length %d, want %d", len(b), want)
	}
	return b, nil
}
