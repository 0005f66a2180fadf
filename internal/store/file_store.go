package store

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"

	"whisper/internal/domain"
)

const (
	identitiesFile = "identities.json.enc"
	contactsFile   = "contacts.json.enc"
)

// FileStore keeps identities and contacts in encrypted files under dir.
// It implements both storage boundaries of the engine.
type FileStore struct {
	dir        string
	passphrase string
	mu         sync.Mutex
}

// NewFileStore returns a FileStore rooted at dir, unlocked with the given
// passphrase.
func NewFileStore(dir, passphrase string) *FileStore {
	return &FileStore{dir: dir, passphrase: passphrase}
}

// LoadIdentities reads the identity set. A missing file is an empty set.
func (s *FileStore) LoadIdentities() ([]domain.Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var ids []domain.Identity
	if err := s.readSealed(identitiesFile, &ids); err != nil {
		return nil, err
	}
	return ids, nil
}

// SaveIdentities writes the full identity set atomically.
func (s *FileStore) SaveIdentities(ids []domain.Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writeSealed(identitiesFile, ids)
}

// LoadContacts reads the contact set. A missing file is an empty set.
func (s *FileStore) LoadContacts() ([]domain.Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var cs []domain.Contact
	if err := s.readSealed(contactsFile, &cs); err != nil {
		return nil, err
	}
	return cs, nil
}

// SaveContacts writes the full contact set atomically.
func (s *FileStore) SaveContacts(cs []domain.Contact) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writeSealed(contactsFile, cs)
}

func (s *FileStore) readSealed(name string, v any) error {
	blob, err := os.ReadFile(filepath.Join(s.dir, name))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	raw, err := openBlob(s.passphrase, blob)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, v)
}

// writeSealed writes to a temp file in the same directory and renames it
// over the target, so a crash never leaves a truncated store.
func (s *FileStore) writeSealed(name string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	blob, err := sealBlob(s.passphrase, raw)
	if err != nil {
		return err
	}
	path := filepath.Join(s.dir, name)
	tmp, err := os.CreateTemp(s.dir, name+".tmp-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(blob); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	if err := os.Chmod(tmp.Name(), 0o600); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}

var (
	_ domain.IdentityStorage = (*FileStore)(nil)
	_ domain.ContactStorage  = (*FileStore)(nil)
)
