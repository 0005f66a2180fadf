// Package memzero wipes key material once it is no longer needed.
package memzero

// Zero overwrites b with zeros. The loop is recognized by the compiler
// and lowered to a memclr; it is not optimized away because b escapes.
func Zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
