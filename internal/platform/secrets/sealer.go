// Package secrets seals credentials before they are written to disk.
package secrets

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"
)

// ErrNoKey is returned when sealing is attempted without a master key.
var ErrNoKey = errors.New("secrets key not configured")

const keyInfo = "budget-engine credential vault v1"

// Sealer encrypts and authenticates small secrets with XChaCha20-Poly1305.
type Sealer struct {
	key []byte
}

// NewSealer derives the sealing key from a master passphrase.
func NewSealer(masterKey string) (*Sealer, error) {
	if masterKey == "" {
		return nil, ErrNoKey
	}
	key := make([]byte, chacha20poly1305.KeySize)
	if _, err := io.ReadFull(hkdf.New(sha256.New, []byte(masterKey), nil, []byte(keyInfo)), key); err != nil {
		return nil, fmt.Errorf("derive key: %w", err)
	}
	return &Sealer{key: key}, nil
}

// Seal returns base64(nonce || ciphertext). name is bound as associated data.
func (s *Sealer) Seal(name string, plaintext []byte) (string, error) {
	aead, err := chacha20poly1305.NewX(s.key)
	if err != nil {
		return "", err
	}
	nonce := make([]byte, aead.NonceSize(), aead.NonceSize()+len(plaintext)+aead.Overhead())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}
	sealed := aead.Seal(nonce, nonce, plaintext, []byte(name))
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Open reverses Seal. It fails if the value was sealed under another name or key.
func (s *Sealer) Open(name, sealed string) ([]byte, error) {
	raw, err := base64.StdEncoding.DecodeString(sealed)
	if err != nil {
		return nil, fmt.Errorf("decode sealed value: %w", err)
	}
	aead, err := chacha20poly1305.NewX(s.key)
	if err != nil {
		return nil, err
	}
	if len(raw) < aead.NonceSize() {
		return nil, errors.New("sealed value too short")
	}
	nonce, ciphertext := raw[:aead.NonceSize()], raw[aead.NonceSize():]
	return aead.Open(nil, nonce, ciphertext, []byte(name))
}
