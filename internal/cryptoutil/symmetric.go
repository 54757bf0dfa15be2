package cryptoutil

import (
	"crypto/rand"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
)

// GenerateSymmetricKey returns a fresh random session key.
func GenerateSymmetricKey() ([]byte, error) {
	key := make([]byte, chacha20poly1305.KeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("cryptoutil: generating session key: %w", err)
	}
	return key, nil
}

// EncryptSymmetric seals plaintext under key, returning nonce||ciphertext.
func EncryptSymmetric(key, plaintext []byte) ([]byte, error) {
	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, fmt.Errorf("cryptoutil: encrypt: %w", err)
	}
	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("cryptoutil: encrypt: nonce: %w", err)
	}
	return aead.Seal(nonce, nonce, plaintext, nil), nil
}

// DecryptSymmetric opens a nonce||ciphertext blob produced by EncryptSymmetric.
func DecryptSymmetric(key, blob []byte) ([]byte, error) {
	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, fmt.Errorf("cryptoutil: decrypt: %w", err)
	}
	if len(blob) < aead.NonceSize() {
		return nil, fmt.Errorf("cryptoutil: decrypt: ciphertext too short")
	}
	nonce, ciphertext := blob[:aead.NonceSize()], blob[aead.NonceSize():]
	plaintext, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("cryptoutil: decrypt: %w", err)
	}
	return plaintext, nil
}

// RandomBytes returns n cryptographically random bytes, used for the
// server_nonce exchanged in the clear during the handshake.
func RandomBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return nil, fmt.Errorf("cryptoutil: random bytes: %w", err)
	}
	return b, nil
}
