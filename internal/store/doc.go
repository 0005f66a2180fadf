// Package store persists identities and contacts as encrypted JSON files.
// Each file is sealed with a key derived from the passphrase via scrypt
// and ChaCha20-Poly1305; the passphrase is held only for the lifetime of
// the store handle, which in the CLI is one process invocation.
package store
