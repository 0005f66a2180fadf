package contacts

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"whisper/internal/crypto"
	"whisper/internal/domain"
)

// Service keeps the contact set in memory and writes every mutation
// through the secure-storage boundary before publishing it. One mutex
// serializes all writes, so concurrent rekeys of the same contact queue
// rather than race.
type Service struct {
	storage domain.ContactStorage
	log     *slog.Logger

	mu       sync.RWMutex
	contacts []domain.Contact
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

// New loads the contact set from storage.
func New(storage domain.ContactStorage, opts ...Option) (*Service, error) {
	cs, err := storage.LoadContacts()
	if err != nil {
		return nil, fmt.Errorf("load contacts: %w", err)
	}
	s := &Service{
		storage:  storage,
		log:      slog.Default(),
		contacts: cs,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Add constructs a contact from a received bundle. The fingerprint, short
// fingerprint and SAS words are copied verbatim, never recomputed from
// the raw keys. Recomputing here is exactly the bug that makes two parties
// disagree about the SAS of the "same" contact. Trust starts Unverified.
func (s *Service) Add(bundle domain.PublicKeyBundle) (domain.Contact, error) {
	if bundle.Fingerprint == "" || bundle.Rkid == "" {
		return domain.Contact{}, fmt.Errorf("%w: bundle missing fingerprint or rkid", domain.ErrInvalidKey)
	}
	id, err := newID()
	if err != nil {
		return domain.Contact{}, err
	}
	now := time.Now().UTC()
	c := domain.Contact{
		ID:               id,
		DisplayName:      bundle.DisplayName,
		XPub:             bundle.XPub,
		EdPub:            bundle.EdPub,
		Fingerprint:      bundle.Fingerprint,
		ShortFingerprint: bundle.ShortFingerprint,
		SASWords:         append([]string(nil), bundle.SASWords...),
		Rkid:             bundle.Rkid,
		TrustLevel:       domain.TrustUnverified,
		KeyVersion:       1,
		CreatedAt:        now,
		LastSeenAt:       now,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	next := append(cloneContacts(s.contacts), c)
	if err := s.storage.SaveContacts(next); err != nil {
		return domain.Contact{}, fmt.Errorf("save contacts: %w", err)
	}
	s.contacts = next

	s.log.Info("contact added", "id", c.ID, "rkid", c.Rkid)
	return c, nil
}

// Get returns the contact with the given id.
func (s *Service) Get(id string) (domain.Contact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.contacts {
		if c.ID == id {
			return c, nil
		}
	}
	return domain.Contact{}, fmt.Errorf("%w: %s", domain.ErrContactNotFound, id)
}

// List returns a snapshot of all contacts.
func (s *Service) List() []domain.Contact {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneContacts(s.contacts)
}

// Verify marks the contact's current keys as verified. The transition is
// only legitimate after the humans compared SAS words out-of-band. A
// revoked contact cannot be re-verified without an explicit Unrevoke.
func (s *Service) Verify(id string) (domain.Contact, error) {
	return s.update(id, func(c domain.Contact) (domain.Contact, error) {
		if c.TrustLevel == domain.TrustRevoked {
			return c, domain.ErrContactRevoked
		}
		return c.WithTrust(domain.TrustVerified), nil
	})
}

// Revoke withdraws all trust from the contact's keys.
func (s *Service) Revoke(id string) (domain.Contact, error) {
	return s.update(id, func(c domain.Contact) (domain.Contact, error) {
		return c.WithTrust(domain.TrustRevoked), nil
	})
}

// Unrevoke returns a revoked contact to Unverified; verification still
// requires a fresh SAS comparison.
func (s *Service) Unrevoke(id string) (domain.Contact, error) {
	return s.update(id, func(c domain.Contact) (domain.Contact, error) {
		if c.TrustLevel != domain.TrustRevoked {
			return c, nil
		}
		return c.WithTrust(domain.TrustUnverified), nil
	})
}

// SetBlocked flips the block flag, independent of trust level.
func (s *Service) SetBlocked(id string, blocked bool) (domain.Contact, error) {
	return s.update(id, func(c domain.Contact) (domain.Contact, error) {
		return c.WithBlocked(blocked), nil
	})
}

// RotateKeys replaces the contact's key material after a rekey event. The
// new fingerprint and SAS are computed here, once, for the new keys; the
// old material is appended to the history; trust unconditionally drops to
// Unverified. The stored value is replaced wholesale; no slice is ever
// mutated in place.
func (s *Service) RotateKeys(id string, newXPub domain.X25519Public, newEdPub domain.Ed25519Public) (domain.Contact, error) {
	fingerprint := crypto.Fingerprint(newXPub, newEdPub)
	short, err := crypto.ShortFingerprint(fingerprint)
	if err != nil {
		return domain.Contact{}, err
	}
	words, err := crypto.SASWords(fingerprint)
	if err != nil {
		return domain.Contact{}, err
	}
	rkid, err := crypto.Rkid(fingerprint)
	if err != nil {
		return domain.Contact{}, err
	}

	rotated, err := s.update(id, func(c domain.Contact) (domain.Contact, error) {
		return c.WithRotatedKeys(newXPub, newEdPub, fingerprint, short, words, rkid, time.Now().UTC()), nil
	})
	if err != nil {
		return domain.Contact{}, err
	}

	s.log.Info("contact rekeyed",
		"id", id, "key_version", rotated.KeyVersion, "rkid", rotated.Rkid)
	return rotated, nil
}

// FindBySigningKey looks a contact up by its current Ed25519 key. Key
// history is deliberately excluded: a signature from a rotated-away key
// must not inherit the trust of the replacement.
func (s *Service) FindBySigningKey(pub domain.Ed25519Public) (domain.Contact, bool) {
	if pub.IsZero() {
		return domain.Contact{}, false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.contacts {
		if c.EdPub == pub {
			return c, true
		}
	}
	return domain.Contact{}, false
}

// Touch records when a contact was last attributed on an inbound message.
// Best effort: a storage failure here is logged, not surfaced.
func (s *Service) Touch(id string, at time.Time) {
	_, err := s.update(id, func(c domain.Contact) (domain.Contact, error) {
		out := c.WithTrust(c.TrustLevel) // plain copy
		out.LastSeenAt = at
		return out, nil
	})
	if err != nil {
		s.log.Warn("contact touch failed", "id", id, "err", err)
	}
}

// update applies fn to the contact with the given id and persists the
// resulting set before publishing it.
func (s *Service) update(id string, fn func(domain.Contact) (domain.Contact, error)) (domain.Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i := range s.contacts {
		if s.contacts[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return domain.Contact{}, fmt.Errorf("%w: %s", domain.ErrContactNotFound, id)
	}

	updated, err := fn(s.contacts[idx])
	if err != nil {
		return domain.Contact{}, err
	}

	next := cloneContacts(s.contacts)
	next[idx] = updated
	if err := s.storage.SaveContacts(next); err != nil {
		return domain.Contact{}, fmt.Errorf("save contacts: %w", err)
	}
	s.contacts = next
	return updated, nil
}

func newID() (string, error) {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", err
	}
	return hex.EncodeToString(b[:]), nil
}

func cloneContacts(cs []domain.Contact) []domain.Contact {
	out := make([]domain.Contact, len(cs))
	copy(out, cs)
	return out
}

// Compile-time assertion that Service implements domain.ContactService.
var _ domain.ContactService = (*Service)(nil)
