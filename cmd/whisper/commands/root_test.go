package commands

import "testing"

func TestRootCommandTree(t *testing.T) {
	root := newRoot()

	registered := make(map[string]bool)
	for _, c := range root.Commands() {
		registered[c.Name()] = true
	}

	want := []string{
		"init", "rotate", "identities", "fingerprint",
		"archive", "purge", "export-bundle",
		"contact", "encrypt", "decrypt",
	}
	for _, name := range want {
		if !registered[name] {
			t.Errorf("command %q not registered", name)
		}
	}
	if registered["bundle"] {
		t.Error("bundle export must be registered as export-bundle, not bundle")
	}
}
