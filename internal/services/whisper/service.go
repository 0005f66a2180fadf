package whisper

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"whisper/internal/codec"
	"whisper/internal/domain"
	"whisper/internal/metrics"
	"whisper/internal/protocol"
	"whisper/internal/ratelimit"
	"whisper/internal/replay"
	"whisper/internal/util/memzero"

	wcrypto "whisper/internal/crypto"
)

// Service turns plaintext into envelopes and back.
//
// Encrypt and Decrypt of distinct envelopes are independent CPU-bound
// operations, safe to run concurrently; the only shared state they touch
// is the read-mostly identity set, the replay guard, and contact
// last-seen updates.
type Service struct {
	identities domain.IdentityService
	contacts   domain.ContactService
	guard      *replay.Guard
	gate       domain.PolicyGate
	failures   *ratelimit.Keyed
	log        *slog.Logger
	metrics    *metrics.Metrics
	now        func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithPolicyGate installs the signing authorization gate. Without a gate,
// signing is always authorized.
func WithPolicyGate(gate domain.PolicyGate) Option {
	return func(s *Service) { s.gate = gate }
}

// WithFailureThrottle installs a per-rkid brake on failing decrypts. Each
// authentication failure charges the recipient key's bucket; once it is
// empty further decrypt attempts for that key are refused until the
// bucket refills. Nil disables the throttle.
func WithFailureThrottle(l *ratelimit.Keyed) Option {
	return func(s *Service) { s.failures = l }
}

// WithLogger sets the structured logger.
func WithLogger(log *slog.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// WithMetrics attaches engine counters.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// New constructs the service around the identity and contact services and
// a replay guard.
func New(ids domain.IdentityService, contacts domain.ContactService, guard *replay.Guard, opts ...Option) *Service {
	s := &Service{
		identities: ids,
		contacts:   contacts,
		guard:      guard,
		log:        slog.Default(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Encrypt seals plaintext into an envelope addressed to the recipient.
//
// A fresh ephemeral key pair, salt and message id are drawn per message
// and never reused. The canonical context built from the header fields is
// both the HKDF info and the AEAD associated data; decryption rebuilds the
// identical bytes from the parsed envelope.
func (s *Service) Encrypt(
	ctx context.Context,
	plaintext []byte,
	recipient domain.Contact,
	sender domain.Identity,
	opts domain.EncryptOptions,
) (domain.Envelope, error) {
	if recipient.IsBlocked {
		return domain.Envelope{}, fmt.Errorf("%w: recipient is blocked", domain.ErrPolicyViolation)
	}
	if recipient.TrustLevel != domain.TrustVerified {
		s.log.Warn("encrypting to unverified contact",
			"contact", recipient.ID, "trust", string(recipient.TrustLevel))
	}

	if opts.Signed && s.gate != nil && !s.gate.IsSigningAuthorized() {
		return domain.Envelope{}, fmt.Errorf("%w: signing not authorized", domain.ErrPolicyViolation)
	}

	ephPriv, ephPub, err := wcrypto.GenerateX25519()
	if err != nil {
		return domain.Envelope{}, err
	}
	defer memzero.Zero(ephPriv[:])

	var salt [domain.SaltSize]byte
	if _, err := rand.Read(salt[:]); err != nil {
		return domain.Envelope{}, err
	}
	var messageID [domain.MessageIDSize]byte
	if _, err := rand.Read(messageID[:]); err != nil {
		return domain.Envelope{}, err
	}

	params := protocol.Params{
		Version:      protocol.Version,
		Suite:        protocol.SuiteChaCha20Poly1305,
		Rkid:         recipient.Rkid,
		EphemeralKey: ephPub,
		Salt:         salt,
		MessageID:    messageID,
		Timestamp:    s.now().Unix(),
	}

	// Cancellation point: once the AEAD starts the operation completes.
	if err := ctx.Err(); err != nil {
		return domain.Envelope{}, err
	}

	ciphertext, err := protocol.Seal(ephPriv, recipient.XPub, params, plaintext)
	if err != nil {
		return domain.Envelope{}, err
	}

	env := domain.Envelope{
		Version:      params.Version,
		Suite:        params.Suite,
		Rkid:         params.Rkid,
		EphemeralKey: params.EphemeralKey,
		Salt:         params.Salt,
		MessageID:    params.MessageID,
		Timestamp:    params.Timestamp,
		Ciphertext:   ciphertext,
	}
	if opts.Signed {
		env.Flags |= domain.FlagSigned
		env.Signature = protocol.Sign(sender.EdPriv, sender.EdPub, params, plaintext)
	}

	s.metrics.IncSealed()
	s.log.Debug("envelope sealed", "rkid", env.Rkid, "signed", opts.Signed)
	return env, nil
}

// Decrypt opens an envelope and attributes its sender.
//
// Order of checks: structural validation, identity resolution, failure
// throttle, freshness, replay, then the AEAD. The freshness window is
// enforced before the replay cache is touched, and a replayed message id
// fails even when the ciphertext would authenticate.
func (s *Service) Decrypt(ctx context.Context, env domain.Envelope) ([]byte, domain.Attribution, error) {
	none := domain.UnknownAttribution()

	if err := codec.Validate(env); err != nil {
		return nil, none, err
	}

	identity, err := s.identities.ResolveByRkid(env.Rkid)
	if err != nil {
		return nil, none, err
	}

	// Repeated authentication failures against one recipient key exhaust
	// its budget; checked before the replay guard so a throttled envelope
	// can still be retried later.
	if !s.failures.Check(env.Rkid, s.now()) {
		s.log.Warn("decrypt throttled after repeated failures", "rkid", env.Rkid)
		return nil, none, fmt.Errorf("%w: decryption throttled for this recipient key", domain.ErrPolicyViolation)
	}

	if err := s.guard.CheckAndInsert(env.MessageID, time.Unix(env.Timestamp, 0)); err != nil {
		switch {
		case errors.Is(err, domain.ErrStaleOrFutureMessage):
			s.metrics.IncStaleRejected()
		case errors.Is(err, domain.ErrReplayDetected):
			s.metrics.IncReplayRejected()
			s.log.Warn("replay rejected", "rkid", env.Rkid)
		}
		return nil, none, err
	}

	// Cancellation point; a completed replay insertion is not rolled
	// back, idempotence is preserved by message id.
	if err := ctx.Err(); err != nil {
		return nil, none, err
	}

	params := protocol.ParamsFromEnvelope(env)
	plaintext, err := protocol.Open(identity.XPriv, params, env.Ciphertext)
	if err != nil {
		if errors.Is(err, domain.ErrAuthenticationFailure) {
			s.metrics.IncAuthFailure()
			s.failures.Allow(env.Rkid, s.now())
		}
		return nil, none, err
	}

	attribution := s.attribute(env, params, plaintext)

	s.metrics.IncOpened()
	s.log.Debug("envelope opened",
		"rkid", env.Rkid, "attribution", string(attribution.Kind))
	return plaintext, attribution, nil
}

// attribute derives the sender attribution of a decrypted envelope.
//
// Unsigned envelopes are strictly Unknown: no sender fingerprint is ever
// inferred from the ephemeral key or any other side channel. For signed
// envelopes the plaintext is still released on a bad signature, since the
// AEAD already guaranteed channel integrity, but the failure is explicit
// and never silently upgraded.
func (s *Service) attribute(env domain.Envelope, params protocol.Params, plaintext []byte) domain.Attribution {
	if !env.Signed() {
		return domain.UnknownAttribution()
	}

	senderKey, ok := protocol.VerifySignature(env.Signature, params, plaintext)
	if !ok {
		s.log.Warn("envelope signature failed verification", "rkid", env.Rkid)
		return domain.SignatureInvalidAttribution()
	}

	contact, found := s.contacts.FindBySigningKey(senderKey)
	if !found {
		// Valid signature from a key we do not know; assert nothing.
		return domain.UnknownAttribution()
	}

	s.contacts.Touch(contact.ID, s.now().UTC())
	if contact.TrustLevel == domain.TrustVerified {
		return domain.VerifiedAttribution(contact.ID)
	}
	return domain.UnverifiedSignedAttribution(contact.ID)
}

// Compile-time assertion that Service implements domain.Whisperer.
var _ domain.Whisperer = (*Service)(nil)
