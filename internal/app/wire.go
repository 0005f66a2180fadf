package app

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"whisper/internal/domain"
	"whisper/internal/metrics"
	"whisper/internal/policy"
	"whisper/internal/ratelimit"
	"whisper/internal/replay"
	contactsvc "whisper/internal/services/contacts"
	identitysvc "whisper/internal/services/identity"
	whispersvc "whisper/internal/services/whisper"
	"whisper/internal/store"
)

// Wire bundles the stores and services for the CLI.
type Wire struct {
	Identities domain.IdentityService
	Contacts   domain.ContactService
	Whisper    domain.Whisperer
	Registry   *prometheus.Registry
}

// NewWire constructs the dependency graph from cfg. The passphrase
// unlocks the encrypted file stores for the lifetime of this process.
func NewWire(cfg Config, passphrase string, log *slog.Logger) (*Wire, error) {
	if log == nil {
		log = slog.Default()
	}

	registry := prometheus.NewRegistry()
	m := metrics.New(registry)

	fs := store.NewFileStore(cfg.Home, passphrase)

	ids, err := identitysvc.New(fs,
		identitysvc.WithLogger(log),
		identitysvc.WithMetrics(m),
	)
	if err != nil {
		return nil, err
	}
	contacts, err := contactsvc.New(fs, contactsvc.WithLogger(log))
	if err != nil {
		return nil, err
	}

	guard := replay.New(
		replay.WithWindow(cfg.Replay.MaxAge.Std(), cfg.Replay.MaxSkew.Std()),
		replay.WithBound(cfg.Replay.MaxEntries),
	)

	var gate domain.PolicyGate = policy.Static{Allowed: !cfg.Signing.RequireAuthorization}
	if cfg.Signing.MaxPerMinute > 0 {
		gate = policy.NewLimited(gate, cfg.Signing.MaxPerMinute, cfg.Signing.Burst)
	}

	opts := []whispersvc.Option{
		whispersvc.WithPolicyGate(gate),
		whispersvc.WithLogger(log),
		whispersvc.WithMetrics(m),
	}
	if cfg.Decrypt.FailuresPerMinute > 0 {
		opts = append(opts, whispersvc.WithFailureThrottle(
			ratelimit.NewKeyed(cfg.Decrypt.FailuresPerMinute/60.0, cfg.Decrypt.FailureBurst, 0)))
	}

	svc := whispersvc.New(ids, contacts, guard, opts...)

	return &Wire{
		Identities: ids,
		Contacts:   contacts,
		Whisper:    svc,
		Registry:   registry,
	}, nil
}
