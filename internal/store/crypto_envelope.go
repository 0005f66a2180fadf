package store

import (
	"crypto/rand"
	"encoding/json"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/scrypt"

	"whisper/internal/util/memzero"
)

// sealedBlob is the at-rest envelope. The KDF parameters travel with the
// blob so they can be tuned without breaking old files.
type sealedBlob struct {
	Version int    `json:"version"`
	N       int    `json:"scrypt_n"`
	R       int    `json:"scrypt_r"`
	P       int    `json:"scrypt_p"`
	Salt    []byte `json:"salt"`
	Nonce   []byte `json:"nonce"`
	CT      []byte `json:"ct"`
}

const sealedBlobVersion = 1

func scryptParamsDefault() (N, r, p int) { return 1 << 15, 8, 1 }

func sealBlob(passphrase string, plaintext []byte) ([]byte, error) {
	salt := make([]byte, 16)
	if _, err := rand.Read(salt); err != nil {
		return nil, err
	}
	N, r, p := scryptParamsDefault()
	key, err := scrypt.Key([]byte(passphrase), salt, N, r, p, chacha20poly1305.KeySize)
	if err != nil {
		return nil, err
	}
	defer memzero.Zero(key)

	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, err
	}
	ct := aead.Seal(nil, nonce, plaintext, salt)
	return json.Marshal(sealedBlob{
		Version: sealedBlobVersion,
		N:       N, R: r, P: p,
		Salt:  salt,
		Nonce: nonce,
		CT:    ct,
	})
}

func openBlob(passphrase string, blob []byte) ([]byte, error) {
	var env sealedBlob
	if err := json.Unmarshal(blob, &env); err != nil {
		return nil, fmt.Errorf("store blob: %w", err)
	}
	if env.Version != sealedBlobVersion {
		return nil, fmt.Errorf("store blob version %d not supported", env.Version)
	}
	key, err := scrypt.Key([]byte(passphrase), env.Salt, env.N, env.R, env.P, chacha20poly1305.KeySize)
	if err != nil {
		return nil, err
	}
	defer memzero.Zero(key)

	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, err
	}
	pt, err := aead.Open(nil, env.Nonce, env.CT, env.Salt)
	if err != nil {
		return nil, fmt.Errorf("open store: wrong passphrase or corrupted file")
	}
	return pt, nil
}
