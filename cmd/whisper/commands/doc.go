// Package commands implements the whisper CLI. Envelopes are plain
// strings on stdin/stdout; clipboard, QR or file transfer is the user's
// business.
package commands
