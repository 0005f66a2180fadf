package identity

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"whisper/internal/crypto"
	"whisper/internal/domain"
	"whisper/internal/metrics"
)

// Service keeps the identity set in memory as the single writer and
// persists every mutation through the secure-storage boundary before it
// becomes visible to readers. Reads observe either the pre- or the
// post-mutation state, never a partially constructed identity.
type Service struct {
	storage domain.IdentityStorage
	log     *slog.Logger
	metrics *metrics.Metrics

	// rotation serializes RotateActive; TryLock turns a concurrent second
	// rotation into ErrRotationInProgress instead of interleaving state.
	rotation sync.Mutex

	mu  sync.RWMutex
	ids []domain.Identity
}

// Option configures a Service.
type Option func(*Service)

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

// New loads the identity set from storage.
func New(storage domain.IdentityStorage, opts ...Option) (*Service, error) {
	ids, err := storage.LoadIdentities()
	if err != nil {
		return nil, fmt.Errorf("load identities: %w", err)
	}
	s := &Service{
		storage: storage,
		log:     slog.Default(),
		ids:     ids,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Create generates a fresh identity and makes it Active. A previously
// Active identity is demoted to Archived; its keys remain usable for
// decryption.
func (s *Service) Create(displayName string) (domain.Identity, error) {
	id, err := newIdentity(displayName, 1)
	if err != nil {
		return domain.Identity{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := cloneIdentities(s.ids)
	for i := range next {
		if next[i].Status == domain.StatusActive {
			next[i].Status = domain.StatusArchived
		}
	}
	next = append(next, id)
	if err := s.storage.SaveIdentities(next); err != nil {
		return domain.Identity{}, fmt.Errorf("save identities: %w", err)
	}
	s.ids = next

	s.log.Info("identity created", "id", id.ID, "rkid", id.Rkid)
	return id, nil
}

// RotateActive atomically replaces the Active identity with a fresh one
// carrying keyVersion+1. The old identity transitions to Rotated and is
// retained so old envelopes stay decryptable. At most one rotation runs
// per store; a concurrent second call observes ErrRotationInProgress.
//
// The Active lookup and the swap share one critical section: an identity
// created concurrently is either rotated itself or demoted here, so the
// store never ends up with two Active identities.
func (s *Service) RotateActive() (domain.Identity, error) {
	if !s.rotation.TryLock() {
		return domain.Identity{}, domain.ErrRotationInProgress
	}
	defer s.rotation.Unlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := activeOf(s.ids)
	if err != nil {
		return domain.Identity{}, err
	}

	id, err := newIdentity(current.DisplayName, current.KeyVersion+1)
	if err != nil {
		return domain.Identity{}, err
	}

	next := cloneIdentities(s.ids)
	for i := range next {
		switch {
		case next[i].ID == current.ID:
			next[i].Status = domain.StatusRotated
		case next[i].Status == domain.StatusActive:
			next[i].Status = domain.StatusArchived
		}
	}
	next = append(next, id)
	if err := s.storage.SaveIdentities(next); err != nil {
		return domain.Identity{}, fmt.Errorf("save identities: %w", err)
	}
	s.ids = next

	s.metrics.IncRotation()
	s.log.Info("identity rotated",
		"old", current.ID, "new", id.ID, "key_version", id.KeyVersion)
	return id, nil
}

// Active returns the current default identity.
func (s *Service) Active() (domain.Identity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return activeOf(s.ids)
}

func activeOf(ids []domain.Identity) (domain.Identity, error) {
	for _, id := range ids {
		if id.Status == domain.StatusActive {
			return id, nil
		}
	}
	return domain.Identity{}, domain.ErrIdentityNotFound
}

// ResolveByRkid scans every retained identity, Active and Archived alike,
// so envelopes addressed to rotated-away keys still find their private
// key. Purged identities are gone and cannot match.
func (s *Service) ResolveByRkid(rkid string) (domain.Identity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, id := range s.ids {
		if id.Rkid == rkid {
			return id, nil
		}
	}
	return domain.Identity{}, fmt.Errorf("%w: rkid %s", domain.ErrIdentityNotFound, rkid)
}

// Archive demotes an identity without discarding its keys.
func (s *Service) Archive(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := cloneIdentities(s.ids)
	found := false
	for i := range next {
		if next[i].ID == id {
			next[i].Status = domain.StatusArchived
			found = true
		}
	}
	if !found {
		return domain.ErrIdentityNotFound
	}
	if err := s.storage.SaveIdentities(next); err != nil {
		return fmt.Errorf("save identities: %w", err)
	}
	s.ids = next
	return nil
}

// Purge irreversibly deletes an identity. Envelopes addressed to it become
// permanently undecryptable.
func (s *Service) Purge(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]domain.Identity, 0, len(s.ids))
	found := false
	for _, existing := range s.ids {
		if existing.ID == id {
			found = true
			continue
		}
		next = append(next, existing)
	}
	if !found {
		return domain.ErrIdentityNotFound
	}
	if err := s.storage.SaveIdentities(next); err != nil {
		return fmt.Errorf("save identities: %w", err)
	}
	s.ids = next

	s.log.Warn("identity purged", "id", id)
	return nil
}

// List returns a snapshot of all retained identities.
func (s *Service) List() []domain.Identity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneIdentities(s.ids)
}

// ExportBundle builds the shareable public-key bundle of the Active
// identity. The fingerprint is the one computed at creation; the short
// form and SAS words are pure functions of it.
func (s *Service) ExportBundle() (domain.PublicKeyBundle, error) {
	id, err := s.Active()
	if err != nil {
		return domain.PublicKeyBundle{}, err
	}
	short, err := crypto.ShortFingerprint(id.Fingerprint)
	if err != nil {
		return domain.PublicKeyBundle{}, err
	}
	words, err := crypto.SASWords(id.Fingerprint)
	if err != nil {
		return domain.PublicKeyBundle{}, err
	}
	return domain.PublicKeyBundle{
		DisplayName:      id.DisplayName,
		XPub:             id.XPub,
		EdPub:            id.EdPub,
		Fingerprint:      id.Fingerprint,
		ShortFingerprint: short,
		SASWords:         words,
		Rkid:             id.Rkid,
	}, nil
}

func newIdentity(displayName string, keyVersion uint32) (domain.Identity, error) {
	xPriv, xPub, err := crypto.GenerateX25519()
	if err != nil {
		return domain.Identity{}, err
	}
	edPriv, edPub, err := crypto.GenerateEd25519()
	if err != nil {
		return domain.Identity{}, err
	}

	fingerprint := crypto.Fingerprint(xPub, edPub)
	rkid, err := crypto.Rkid(fingerprint)
	if err != nil {
		return domain.Identity{}, err
	}
	id, err := newID()
	if err != nil {
		return domain.Identity{}, err
	}

	return domain.Identity{
		ID:          id,
		DisplayName: displayName,
		XPub:        xPub,
		XPriv:       xPriv,
		EdPub:       edPub,
		EdPriv:      edPriv,
		Fingerprint: fingerprint,
		Rkid:        rkid,
		Status:      domain.StatusActive,
		KeyVersion:  keyVersion,
		CreatedAt:   time.Now().UTC(),
	}, nil
}

func newID() (string, error) {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", err
	}
	return hex.EncodeToString(b[:]), nil
}

func cloneIdentities(ids []domain.Identity) []domain.Identity {
	out := make([]domain.Identity, len(ids))
	copy(out, ids)
	return out
}

// Compile-time assertion that Service implements domain.IdentityService.
var _ domain.IdentityService = (*Service)(nil)
