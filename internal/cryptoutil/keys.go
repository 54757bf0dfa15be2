// Package cryptoutil provides the concrete cryptographic primitives the
// client authentication endpoint treats as opaque: asymmetric sign/verify,
// an anonymous asymmetric seal used to deliver a session key, symmetric
// AEAD, and a CSPRNG. It follows the primitive choices of
// wbd2023-UNSW-COMP6841-Ciphera (Ed25519 for signing, X25519 for
// Diffie-Hellman, ChaCha20-Poly1305 for symmetric encryption).
package cryptoutil

import (
	"crypto/ed25519"
	"crypto/rand"
	"fmt"

	"golang.org/x/crypto/curve25519"
)

// SignPublic is an Ed25519 verification key.
type SignPublic [ed25519.PublicKeySize]byte

// SignPrivate is an Ed25519 signing key.
type SignPrivate [ed25519.PrivateKeySize]byte

// DHPublic is a Curve25519 public key.
type DHPublic [32]byte

// DHPrivate is a Curve25519 private key.
type DHPrivate [32]byte

// ClientKey bundles the two purpose-built keys a client presents at
// connect time: one for verifying its signatures, one for sealing the
// session key to it. Both halves are fixed-size arrays, so ClientKey is
// itself comparable and usable directly as a map key by the session
// registry.
type ClientKey struct {
	Sign SignPublic
	DH   DHPublic
}

// NodeIdentity is the server's own long-term signing key pair.
type NodeIdentity struct {
	SignPriv SignPrivate
	SignPub  SignPublic
}

// GenerateSignKeyPair returns a fresh Ed25519 signing key pair.
func GenerateSignKeyPair() (SignPrivate, SignPublic, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return SignPrivate{}, SignPublic{}, err
	}
	var sp SignPrivate
	var pp SignPublic
	copy(sp[:], priv)
	copy(pp[:], pub)
	return sp, pp, nil
}

// GenerateDHKeyPair returns a fresh Curve25519 key pair, clamped per RFC 7748.
func GenerateDHKeyPair() (DHPrivate, DHPublic, error) {
	var priv DHPrivate
	if _, err := rand.Read(priv[:]); err != nil {
		return DHPrivate{}, DHPublic{}, err
	}
	clamp(&priv)
	pubBytes, err := curve25519.X25519(priv[:], curve25519.Basepoint)
	if err != nil {
		return DHPrivate{}, DHPublic{}, err
	}
	var pub DHPublic
	copy(pub[:], pubBytes)
	return priv, pub, nil
}

func clamp(k *DHPrivate) {
	k[0] &= 248
	k[31] &= 127
	k[31] |= 64
}

func dh(priv DHPrivate, pub DHPublic) ([]byte, error) {
	return curve25519.X25519(priv[:], pub[:])
}

// GenerateNodeIdentity returns a fresh node signing identity.
func GenerateNodeIdentity() (*NodeIdentity, error) {
	priv, pub, err := GenerateSignKeyPair()
	if err != nil {
		return nil, err
	}
	return &NodeIdentity{SignPriv: priv, SignPub: pub}, nil
}

// NodeIdentityFromBytes reconstructs a NodeIdentity from a raw Ed25519
// private key, deriving the public half from it.
func NodeIdentityFromBytes(raw []byte) (*NodeIdentity, error) {
	if len(raw) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("cryptoutil: node key must be %d bytes, got %d", ed25519.PrivateKeySize, len(raw))
	}
	var priv SignPrivate
	copy(priv[:], raw)
	pub := ed25519.PrivateKey(raw).Public().(ed25519.PublicKey)
	var pp SignPublic
	copy(pp[:], pub)
	return &NodeIdentity{SignPriv: priv, SignPub: pp}, nil
}

// Sign returns priv's Ed25519 signature over msg. ed25519.Sign hashes msg
// with SHA-512 internally as part of the scheme, so this reproduces
// spec's "sign with SHA-512" without a separate digest step.
func Sign(priv SignPrivate, msg []byte) []byte {
	return ed25519.Sign(ed25519.PrivateKey(priv[:]), msg)
}

// Verify reports whether sig is pub's valid Ed25519 signature over msg.
func Verify(pub SignPublic, msg, sig []byte) bool {
	return ed25519.Verify(ed25519.PublicKey(pub[:]), msg, sig)
}

// MustSignPublic validates and wraps b as a SignPublic.
func MustSignPublic(b []byte) (SignPublic, error) {
	if len(b) != ed25519.PublicKeySize {
		return SignPublic{}, fmt.Errorf("cryptoutil: sign key must be %d bytes, got %d", ed25519.PublicKeySize, len(b))
	}
	var out SignPublic
	copy(out[:], b)
	return out, nil
}

// MustDHPublic validates and wraps b as a DHPublic.
func MustDHPublic(b []byte) (DHPublic, error) {
	if len(b) != 32 {
		return DHPublic{}, fmt.Errorf("cryptoutil: dh key must be 32 bytes, got %d", len(b))
	}
	var out DHPublic
	copy(out[:], b)
	return out, nil
}
