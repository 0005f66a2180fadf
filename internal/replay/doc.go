// Package replay enforces dedup and freshness over message identifiers.
// The guard is the only inbound admission control in the engine: an
// envelope is decrypted at most once per message id, and only while its
// timestamp is inside the freshness window.
package replay
