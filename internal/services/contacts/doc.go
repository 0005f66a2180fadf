// Package contacts is the trust store: contact records built verbatim
// from received public-key bundles, trust-level transitions gated on
// out-of-band SAS comparison, and copy-on-write key rotation with an
// append-only key history.
package contacts
