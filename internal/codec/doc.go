// Package codec serializes and parses envelopes in two equivalent forms:
// the dot-delimited textual form carried over clipboard/QR transports, and
// an XDR binary layout. Parsing is strict; serialization is the exact
// inverse of parsing for every valid envelope.
package codec
