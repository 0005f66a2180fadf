package codec

import (
	"fmt"

	"github.com/mr-tron/base58/base58"

	"whisper/internal/crypto"
	"whisper/internal/domain"
	"whisper/internal/protocol"
)

// Validate enforces the structural contract shared by both wire forms.
// Version is checked first so an envelope from a future build reports
// ErrUnsupportedVersion rather than a generic parse failure.
func Validate(e domain.Envelope) error {
	if e.Version != protocol.Version {
		return fmt.Errorf("%w: %d", domain.ErrUnsupportedVersion, e.Version)
	}
	if e.Suite != protocol.SuiteChaCha20Poly1305 {
		return fmt.Errorf("%w: unknown cipher suite %q", domain.ErrEnvelopeMalformed, e.Suite)
	}
	raw, err := base58.Decode(e.Rkid)
	if err != nil || len(raw) != crypto.RkidBytes {
		return fmt.Errorf("%w: bad rkid", domain.ErrEnvelopeMalformed)
	}
	if e.Flags&^domain.FlagSigned != 0 {
		return fmt.Errorf("%w: unknown flag bits %#x", domain.ErrEnvelopeMalformed, e.Flags)
	}
	if e.Signed() {
		if len(e.Signature) != domain.SignatureSize {
			return fmt.Errorf("%w: signature length %d", domain.ErrEnvelopeMalformed, len(e.Signature))
		}
	} else if len(e.Signature) != 0 {
		return fmt.Errorf("%w: unsigned envelope carries a signature", domain.ErrEnvelopeMalformed)
	}
	if e.Timestamp <= 0 {
		return fmt.Errorf("%w: bad timestamp", domain.ErrEnvelopeMalformed)
	}
	if len(e.Ciphertext) < crypto.TagBytes {
		return fmt.Errorf("%w: ciphertext shorter than tag", domain.ErrEnvelopeMalformed)
	}
	return nil
}
