// Package domain defines the core data models and contracts shared across
// the engine: identities, contacts, public-key bundles, envelopes, the
// attribution variant, the error taxonomy, and the narrow interfaces that
// external collaborators (secure storage, policy gate) implement.
package domain
