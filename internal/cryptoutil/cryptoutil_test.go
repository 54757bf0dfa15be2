package cryptoutil

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSignVerifyRoundTrip(t *testing.T) {
	priv, pub, err := GenerateSignKeyPair()
	require.NoError(t, err)

	msg := []byte("hello session")
	sig := Sign(priv, msg)
	require.True(t, Verify(pub, msg, sig))
	require.False(t, Verify(pub, []byte("tampered"), sig))
}

func TestSealOpenRoundTrip(t *testing.T) {
	priv, pub, err := GenerateDHKeyPair()
	require.NoError(t, err)

	plaintext := []byte("session-key-material")
	sealed, err := SealToPublic(pub, plaintext)
	require.NoError(t, err)

	opened, err := OpenSealed(priv, sealed)
	require.NoError(t, err)
	require.Equal(t, plaintext, opened)
}

func TestOpenSealedWrongKeyFails(t *testing.T) {
	_, pub, err := GenerateDHKeyPair()
	require.NoError(t, err)
	otherPriv, _, err := GenerateDHKeyPair()
	require.NoError(t, err)

	sealed, err := SealToPublic(pub, []byte("secret"))
	require.NoError(t, err)

	_, err = OpenSealed(otherPriv, sealed)
	require.Error(t, err)
}

func TestSymmetricEncryptDecryptRoundTrip(t *testing.T) {
	key, err := GenerateSymmetricKey()
	require.NoError(t, err)

	plaintext := []byte(`{"command":"hello"}`)
	blob, err := EncryptSymmetric(key, plaintext)
	require.NoError(t, err)
	require.NotEqual(t, plaintext, blob)

	decrypted, err := DecryptSymmetric(key, blob)
	require.NoError(t, err)
	require.Equal(t, plaintext, decrypted)
}

func TestDecryptSymmetricBadKeyFails(t *testing.T) {
	key, err := GenerateSymmetricKey()
	require.NoError(t, err)
	blob, err := EncryptSymmetric(key, []byte("payload"))
	require.NoError(t, err)

	otherKey, err := GenerateSymmetricKey()
	require.NoError(t, err)

	_, err = DecryptSymmetric(otherKey, blob)
	require.Error(t, err)
}

func TestClientKeyPackParseRoundTrip(t *testing.T) {
	_, signPub, err := GenerateSignKeyPair()
	require.NoError(t, err)
	_, dhPub, err := GenerateDHKeyPair()
	require.NoError(t, err)

	ck := ClientKey{Sign: signPub, DH: dhPub}
	raw, err := PackClientKey(ck)
	require.NoError(t, err)

	parsed, err := ParseClientKey(raw)
	require.NoError(t, err)
	require.Equal(t, ck, parsed)
}

func TestParseClientKeyRejectsGarbage(t *testing.T) {
	_, err := ParseClientKey([]byte("not cbor"))
	require.Error(t, err)
}
