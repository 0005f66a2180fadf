package codec_test

import (
	"bytes"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/mr-tron/base58/base58"
	"github.com/pmezard/go-difflib/difflib"

	"whisper/internal/codec"
	"whisper/internal/crypto"
	"whisper/internal/domain"
	"whisper/internal/protocol"
)

// testRkid is a well-formed routing id: base58 over RkidBytes bytes.
var testRkid = base58.Encode([]byte{1, 2, 3, 4, 5, 6, 7, 8})

func validEnvelope() domain.Envelope {
	e := domain.Envelope{
		Version:    protocol.Version,
		Suite:      protocol.SuiteChaCha20Poly1305,
		Rkid:       testRkid,
		Timestamp:  1700000000,
		Ciphertext: bytes.Repeat([]byte{0xAA}, crypto.TagBytes+5),
	}
	for i := range e.EphemeralKey {
		e.EphemeralKey[i] = byte(i)
	}
	for i := range e.Salt {
		e.Salt[i] = byte(i + 50)
	}
	for i := range e.MessageID {
		e.MessageID[i] = byte(i + 100)
	}
	return e
}

func signedEnvelope() domain.Envelope {
	e := validEnvelope()
	e.Flags |= domain.FlagSigned
	e.Signature = bytes.Repeat([]byte{0xBB}, domain.SignatureSize)
	return e
}

// diff renders a readable mismatch between two envelopes.
func diff(t *testing.T, want, got domain.Envelope) string {
	t.Helper()
	out, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(spew.Sdump(want)),
		B:        difflib.SplitLines(spew.Sdump(got)),
		FromFile: "want",
		ToFile:   "got",
		Context:  3,
	})
	if err != nil {
		return err.Error()
	}
	return out
}

func TestTextRoundTrip(t *testing.T) {
	for _, tc := range []struct {
		name string
		env  domain.Envelope
	}{
		{"unsigned", validEnvelope()},
		{"signed", signedEnvelope()},
	} {
		t.Run(tc.name, func(t *testing.T) {
			s, err := codec.Encode(tc.env)
			if err != nil {
				t.Fatalf("Encode: %v", err)
			}
			if !strings.HasPrefix(s, codec.Prefix+".") {
				t.Fatalf("encoded form %q lacks prefix", s)
			}
			got, err := codec.Parse(s)
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			if !reflect.DeepEqual(tc.env, got) {
				t.Fatalf("round trip mismatch:\n%s", diff(t, tc.env, got))
			}
		})
	}
}

func TestBinaryRoundTrip(t *testing.T) {
	for _, tc := range []struct {
		name string
		env  domain.Envelope
	}{
		{"unsigned", validEnvelope()},
		{"signed", signedEnvelope()},
	} {
		t.Run(tc.name, func(t *testing.T) {
			raw, err := codec.MarshalBinary(tc.env)
			if err != nil {
				t.Fatalf("MarshalBinary: %v", err)
			}
			got, err := codec.ParseBinary(raw)
			if err != nil {
				t.Fatalf("ParseBinary: %v", err)
			}
			if !reflect.DeepEqual(tc.env, got) {
				t.Fatalf("round trip mismatch:\n%s", diff(t, tc.env, got))
			}
		})
	}
}

func TestParseBinary_TrailingBytesRejected(t *testing.T) {
	raw, err := codec.MarshalBinary(validEnvelope())
	if err != nil {
		t.Fatalf("MarshalBinary: %v", err)
	}
	raw = append(raw, 0)
	if _, err := codec.ParseBinary(raw); !errors.Is(err, domain.ErrEnvelopeMalformed) {
		t.Fatalf("got %v, want ErrEnvelopeMalformed", err)
	}
}

func TestParse_UnsupportedVersionBeforeStructure(t *testing.T) {
	// A future version may carry any field layout; the version error must
	// win over field-count complaints.
	if _, err := codec.Parse("whisper1.2.anything"); !errors.Is(err, domain.ErrUnsupportedVersion) {
		t.Fatalf("got %v, want ErrUnsupportedVersion", err)
	}
}

func TestParse_Malformed(t *testing.T) {
	good, err := codec.Encode(validEnvelope())
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	fields := strings.Split(good, ".")

	corrupt := func(i int, v string) string {
		out := append([]string(nil), fields...)
		out[i] = v
		return strings.Join(out, ".")
	}

	cases := map[string]string{
		"empty":           "",
		"wrong prefix":    corrupt(0, "whisper2"),
		"bad version":     corrupt(1, "x"),
		"missing field":   strings.Join(fields[:9], "."),
		"extra field":     good + ".x.y",
		"bad suite":       corrupt(2, "none"),
		"bad rkid":        corrupt(3, "0OIl"),
		"short rkid":      corrupt(3, base58.Encode([]byte{1, 2})),
		"bad flags":       corrupt(4, "255"),
		"bad ephemeral":   corrupt(5, "AAAA"),
		"bad salt":        corrupt(6, "!!"),
		"bad msgid":       corrupt(7, "AAAA"),
		"bad timestamp":   corrupt(8, "soon"),
		"zero timestamp":  corrupt(8, "0"),
		"bad ciphertext":  corrupt(9, "!!"),
		"tiny ciphertext": corrupt(9, "AAAA"),
	}
	for name, in := range cases {
		if _, err := codec.Parse(in); !errors.Is(err, domain.ErrEnvelopeMalformed) {
			t.Errorf("%s: got %v, want ErrEnvelopeMalformed", name, err)
		}
	}
}

func TestValidate_SignatureFlagConsistency(t *testing.T) {
	flagNoSig := validEnvelope()
	flagNoSig.Flags |= domain.FlagSigned
	if err := codec.Validate(flagNoSig); !errors.Is(err, domain.ErrEnvelopeMalformed) {
		t.Errorf("signed flag without signature: got %v, want ErrEnvelopeMalformed", err)
	}

	sigNoFlag := validEnvelope()
	sigNoFlag.Signature = bytes.Repeat([]byte{1}, domain.SignatureSize)
	if err := codec.Validate(sigNoFlag); !errors.Is(err, domain.ErrEnvelopeMalformed) {
		t.Errorf("signature without flag: got %v, want ErrEnvelopeMalformed", err)
	}

	shortSig := signedEnvelope()
	shortSig.Signature = shortSig.Signature[:10]
	if err := codec.Validate(shortSig); !errors.Is(err, domain.ErrEnvelopeMalformed) {
		t.Errorf("short signature: got %v, want ErrEnvelopeMalformed", err)
	}
}

func TestValidate_VersionFirst(t *testing.T) {
	e := validEnvelope()
	e.Version = 9
	e.Suite = "bogus" // would also fail; version must win
	if err := codec.Validate(e); !errors.Is(err, domain.ErrUnsupportedVersion) {
		t.Fatalf("got %v, want ErrUnsupportedVersion", err)
	}
}
