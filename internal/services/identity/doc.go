// Package identity manages the local identity lifecycle: creation,
// rotation, archival and purge, with exactly one Active identity at a
// time and rkid-based resolution across archived generations.
package identity
