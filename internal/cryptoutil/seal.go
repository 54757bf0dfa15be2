package cryptoutil

import (
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"io"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"
)

const hkdfInfo = "universa-clientendpoint-seal"

// SealToPublic anonymously encrypts plaintext to pub: a fresh X25519
// keypair is generated, DH'd against pub, and the shared secret expanded
// with HKDF-SHA256 into a ChaCha20-Poly1305 key. The output is
// ephemeral_pub(32) || nonce(12) || ciphertext, so OpenSealed needs only
// the recipient's private key to recover plaintext. This is the endpoint's
// stand-in for "encrypt with the client's public key" where the client key
// in question is a signing key with no native encryption use.
func SealToPublic(pub DHPublic, plaintext []byte) ([]byte, error) {
	ephPriv, ephPub, err := GenerateDHKeyPair()
	if err != nil {
		return nil, fmt.Errorf("cryptoutil: seal: generating ephemeral key: %w", err)
	}
	shared, err := dh(ephPriv, pub)
	if err != nil {
		return nil, fmt.Errorf("cryptoutil: seal: dh: %w", err)
	}
	key, err := expandKey(shared)
	if err != nil {
		return nil, err
	}
	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, fmt.Errorf("cryptoutil: seal: %w", err)
	}
	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("cryptoutil: seal: nonce: %w", err)
	}
	ciphertext := aead.Seal(nil, nonce, plaintext, nil)

	out := make([]byte, 0, len(ephPub)+len(nonce)+len(ciphertext))
	out = append(out, ephPub[:]...)
	out = append(out, nonce...)
	out = append(out, ciphertext...)
	return out, nil
}

// OpenSealed reverses SealToPublic given the recipient's private key.
func OpenSealed(priv DHPrivate, sealed []byte) ([]byte, error) {
	const nonceSize = chacha20poly1305.NonceSize
	if len(sealed) < 32+nonceSize {
		return nil, fmt.Errorf("cryptoutil: open: sealed value too short")
	}
	var ephPub DHPublic
	copy(ephPub[:], sealed[:32])
	nonce := sealed[32 : 32+nonceSize]
	ciphertext := sealed[32+nonceSize:]

	shared, err := dh(priv, ephPub)
	if err != nil {
		return nil, fmt.Errorf("cryptoutil: open: dh: %w", err)
	}
	key, err := expandKey(shared)
	if err != nil {
		return nil, err
	}
	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, fmt.Errorf("cryptoutil: open: %w", err)
	}
	plaintext, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("cryptoutil: open: %w", err)
	}
	return plaintext, nil
}

func expandKey(secret []byte) ([]byte, error) {
	key := make([]byte, chacha20poly1305.KeySize)
	kdf := hkdf.New(sha256.New, secret, nil, []byte(hkdfInfo))
	if _, err := io.ReadFull(kdf, key); err != nil {
		return nil, fmt.Errorf("cryptoutil: hkdf expand: %w", err)
	}
	return key, nil
}
