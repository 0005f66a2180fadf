package codec

import (
	"bytes"
	"fmt"

	xdr "github.com/davecgh/go-xdr/xdr2"

	"whisper/internal/domain"
	"whisper/internal/protocol"
)

// wireEnvelope is the XDR layout. XDR has no 8-bit integers, so version
// and flags widen to uint32 on the wire.
type wireEnvelope struct {
	Version      uint32
	Suite        string
	Rkid         string
	Flags        uint32
	EphemeralKey [32]byte
	Salt         [domain.SaltSize]byte
	MessageID    [domain.MessageIDSize]byte
	Timestamp    int64
	Ciphertext   []byte
	Signature    []byte
}

// MarshalBinary renders an envelope in the XDR binary layout.
func MarshalBinary(e domain.Envelope) ([]byte, error) {
	if err := Validate(e); err != nil {
		return nil, err
	}
	w := wireEnvelope{
		Version:      uint32(e.Version),
		Suite:        e.Suite,
		Rkid:         e.Rkid,
		Flags:        uint32(e.Flags),
		EphemeralKey: e.EphemeralKey,
		Salt:         e.Salt,
		MessageID:    e.MessageID,
		Timestamp:    e.Timestamp,
		Ciphertext:   e.Ciphertext,
		Signature:    e.Signature,
	}
	var buf bytes.Buffer
	if _, err := xdr.Marshal(&buf, &w); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrEnvelopeMalformed, err)
	}
	return buf.Bytes(), nil
}

// ParseBinary is the strict inverse of MarshalBinary. Trailing bytes are
// rejected.
func ParseBinary(data []byte) (domain.Envelope, error) {
	var w wireEnvelope
	n, err := xdr.Unmarshal(bytes.NewReader(data), &w)
	if err != nil {
		return domain.Envelope{}, fmt.Errorf("%w: %v", domain.ErrEnvelopeMalformed, err)
	}
	if n != len(data) {
		return domain.Envelope{}, fmt.Errorf("%w: %d trailing bytes", domain.ErrEnvelopeMalformed, len(data)-n)
	}
	if w.Version != uint32(protocol.Version) {
		return domain.Envelope{}, fmt.Errorf("%w: %d", domain.ErrUnsupportedVersion, w.Version)
	}
	if w.Flags > 0xff {
		return domain.Envelope{}, fmt.Errorf("%w: flags out of range", domain.ErrEnvelopeMalformed)
	}
	e := domain.Envelope{
		Version:      uint8(w.Version),
		Suite:        w.Suite,
		Rkid:         w.Rkid,
		Flags:        uint8(w.Flags),
		EphemeralKey: w.EphemeralKey,
		Salt:         w.Salt,
		MessageID:    w.MessageID,
		Timestamp:    w.Timestamp,
		Ciphertext:   w.Ciphertext,
		Signature:    w.Signature,
	}
	if len(e.Signature) == 0 {
		e.Signature = nil
	}
	if err := Validate(e); err != nil {
		return domain.Envelope{}, err
	}
	return e, nil
}
