package identity_test

import (
	"errors"
	"sync"
	"testing"

	"whisper/internal/crypto"
	"whisper/internal/domain"
	"whisper/internal/services/identity"
)

// memStore is an in-memory IdentityStorage for tests.
type memStore struct {
	mu  sync.Mutex
	ids []domain.Identity

	// beforeSave, when set, runs inside SaveIdentities before it returns.
	beforeSave func()
}

func (m *memStore) LoadIdentities() ([]domain.Identity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.Identity(nil), m.ids...), nil
}

func (m *memStore) SaveIdentities(ids []domain.Identity) error {
	if m.beforeSave != nil {
		m.beforeSave()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ids = append([]domain.Identity(nil), ids...)
	return nil
}

func newService(t *testing.T) (*identity.Service, *memStore) {
	t.Helper()
	store := &memStore{}
	svc, err := identity.New(store)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return svc, store
}

func TestCreate_BecomesActiveAndDemotesPrevious(t *testing.T) {
	svc, _ := newService(t)

	first, err := svc.Create("alice")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if first.Status != domain.StatusActive || first.KeyVersion != 1 {
		t.Fatalf("first identity: status %s version %d", first.Status, first.KeyVersion)
	}
	if first.Fingerprint == "" || first.Rkid == "" {
		t.Fatal("fingerprint and rkid must be set at creation")
	}

	second, err := svc.Create("alice-work")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	active, err := svc.Active()
	if err != nil {
		t.Fatalf("Active: %v", err)
	}
	if active.ID != second.ID {
		t.Fatalf("active is %s, want %s", active.ID, second.ID)
	}

	actives := 0
	for _, id := range svc.List() {
		if id.Status == domain.StatusActive {
			actives++
		}
	}
	if actives != 1 {
		t.Fatalf("%d active identities, want exactly 1", actives)
	}
}

func TestRotateActive_RetainsOldKeysUnderNewVersion(t *testing.T) {
	svc, _ := newService(t)

	old, err := svc.Create("alice")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	rotated, err := svc.RotateActive()
	if err != nil {
		t.Fatalf("RotateActive: %v", err)
	}

	if rotated.KeyVersion != old.KeyVersion+1 {
		t.Fatalf("key version %d, want %d", rotated.KeyVersion, old.KeyVersion+1)
	}
	if rotated.Fingerprint == old.Fingerprint {
		t.Fatal("rotation must produce a new fingerprint")
	}

	// Envelopes addressed to the old rkid still resolve.
	got, err := svc.ResolveByRkid(old.Rkid)
	if err != nil {
		t.Fatalf("ResolveByRkid(old): %v", err)
	}
	if got.Status != domain.StatusRotated {
		t.Fatalf("old identity status %s, want %s", got.Status, domain.StatusRotated)
	}
	if got.XPriv != old.XPriv {
		t.Fatal("old private key must be retained")
	}

	active, err := svc.Active()
	if err != nil {
		t.Fatalf("Active: %v", err)
	}
	if active.ID != rotated.ID {
		t.Fatalf("active is %s, want the rotated identity", active.ID)
	}
}

func TestRotateActive_SecondConcurrentCallFails(t *testing.T) {
	store := &memStore{}
	svc, err := identity.New(store)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := svc.Create("alice"); err != nil {
		t.Fatalf("Create: %v", err)
	}

	entered := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	store.beforeSave = func() {
		once.Do(func() {
			close(entered)
			<-release
		})
	}

	done := make(chan error, 1)
	go func() {
		_, err := svc.RotateActive()
		done <- err
	}()

	<-entered
	if _, err := svc.RotateActive(); !errors.Is(err, domain.ErrRotationInProgress) {
		t.Fatalf("got %v, want ErrRotationInProgress", err)
	}
	close(release)

	if err := <-done; err != nil {
		t.Fatalf("first rotation: %v", err)
	}
}

func TestRotateActive_ConcurrentCreateKeepsOneActive(t *testing.T) {
	for i := 0; i < 25; i++ {
		svc, store := newService(t)
		if _, err := svc.Create("a"); err != nil {
			t.Fatalf("Create: %v", err)
		}

		var wg sync.WaitGroup
		wg.Add(2)
		start := make(chan struct{})
		go func() {
			defer wg.Done()
			<-start
			if _, err := svc.Create("b"); err != nil {
				t.Errorf("Create: %v", err)
			}
		}()
		go func() {
			defer wg.Done()
			<-start
			if _, err := svc.RotateActive(); err != nil {
				t.Errorf("RotateActive: %v", err)
			}
		}()
		close(start)
		wg.Wait()

		actives := 0
		for _, id := range svc.List() {
			if id.Status == domain.StatusActive {
				actives++
			}
		}
		if actives != 1 {
			t.Fatalf("%d Active identities after concurrent Create and RotateActive, want exactly 1", actives)
		}

		// The persisted state agrees with the in-memory view.
		persisted, err := store.LoadIdentities()
		if err != nil {
			t.Fatalf("LoadIdentities: %v", err)
		}
		actives = 0
		for _, id := range persisted {
			if id.Status == domain.StatusActive {
				actives++
			}
		}
		if actives != 1 {
			t.Fatalf("%d Active identities persisted, want exactly 1", actives)
		}
	}
}

func TestRotateActive_NoActiveIdentity(t *testing.T) {
	svc, _ := newService(t)
	if _, err := svc.RotateActive(); !errors.Is(err, domain.ErrIdentityNotFound) {
		t.Fatalf("got %v, want ErrIdentityNotFound", err)
	}
}

func TestArchiveAndPurge(t *testing.T) {
	svc, _ := newService(t)

	id, err := svc.Create("alice")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := svc.Archive(id.ID); err != nil {
		t.Fatalf("Archive: %v", err)
	}
	// Archived identities still decrypt.
	if _, err := svc.ResolveByRkid(id.Rkid); err != nil {
		t.Fatalf("ResolveByRkid after archive: %v", err)
	}
	if _, err := svc.Active(); !errors.Is(err, domain.ErrIdentityNotFound) {
		t.Fatalf("Active after archive: got %v, want ErrIdentityNotFound", err)
	}

	if err := svc.Purge(id.ID); err != nil {
		t.Fatalf("Purge: %v", err)
	}
	if _, err := svc.ResolveByRkid(id.Rkid); !errors.Is(err, domain.ErrIdentityNotFound) {
		t.Fatalf("ResolveByRkid after purge: got %v, want ErrIdentityNotFound", err)
	}
	if err := svc.Purge(id.ID); !errors.Is(err, domain.ErrIdentityNotFound) {
		t.Fatalf("double purge: got %v, want ErrIdentityNotFound", err)
	}
}

func TestExportBundle_DerivedFromStoredFingerprint(t *testing.T) {
	svc, _ := newService(t)

	id, err := svc.Create("alice")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	bundle, err := svc.ExportBundle()
	if err != nil {
		t.Fatalf("ExportBundle: %v", err)
	}

	if bundle.Fingerprint != id.Fingerprint {
		t.Fatal("bundle fingerprint differs from the stored one")
	}
	if bundle.Rkid != id.Rkid {
		t.Fatal("bundle rkid differs from the stored one")
	}
	if len(bundle.SASWords) != crypto.SASWordCount {
		t.Fatalf("%d SAS words, want %d", len(bundle.SASWords), crypto.SASWordCount)
	}
	wantWords, err := crypto.SASWords(id.Fingerprint)
	if err != nil {
		t.Fatalf("SASWords: %v", err)
	}
	for i := range wantWords {
		if bundle.SASWords[i] != wantWords[i] {
			t.Fatalf("SAS word %d: got %q, want %q", i, bundle.SASWords[i], wantWords[i])
		}
	}
}

func TestNew_LoadsPersistedState(t *testing.T) {
	store := &memStore{}
	svc, err := identity.New(store)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	created, err := svc.Create("alice")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	reloaded, err := identity.New(store)
	if err != nil {
		t.Fatalf("New (reload): %v", err)
	}
	active, err := reloaded.Active()
	if err != nil {
		t.Fatalf("Active after reload: %v", err)
	}
	if active.ID != created.ID {
		t.Fatalf("reloaded active %s, want %s", active.ID, created.ID)
	}
}
