// Package whisper orchestrates the engine: it resolves identities and
// contacts, runs the envelope protocol, and enforces replay protection
// and signing policy around it.
package whisper
