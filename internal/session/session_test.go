package session

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/universa-network/clientendpoint/internal/command"
	"github.com/universa-network/clientendpoint/internal/cryptoutil"
	"github.com/universa-network/clientendpoint/internal/localnode"
	"github.com/universa-network/clientendpoint/internal/wireformat"
)

type clientIdentity struct {
	signPriv cryptoutil.SignPrivate
	dhPriv   cryptoutil.DHPrivate
	key      cryptoutil.ClientKey
}

func newClientIdentity(t *testing.T) clientIdentity {
	t.Helper()
	signPriv, signPub, err := cryptoutil.GenerateSignKeyPair()
	require.NoError(t, err)
	dhPriv, dhPub, err := cryptoutil.GenerateDHKeyPair()
	require.NoError(t, err)
	return clientIdentity{
		signPriv: signPriv,
		dhPriv:   dhPriv,
		key:      cryptoutil.ClientKey{Sign: signPub, DH: dhPub},
	}
}

func newNodeIdentity(t *testing.T) *cryptoutil.NodeIdentity {
	t.Helper()
	id, err := cryptoutil.GenerateNodeIdentity()
	require.NoError(t, err)
	return id
}

// runGetToken performs a full client-side get_token round trip against
// record, returning the response and the recovered session key (nil when
// the response carries errors).
func runGetToken(t *testing.T, record *Record, node *cryptoutil.NodeIdentity, client clientIdentity, serverNonce, clientNonce []byte) (wireformat.Binder, []byte) {
	t.Helper()

	data, err := wireformat.Pack(wireformat.New(
		"server_nonce", serverNonce,
		"client_nonce", clientNonce,
	))
	require.NoError(t, err)
	sig := cryptoutil.Sign(client.signPriv, data)

	req := wireformat.New("data", data, "signature", sig)
	resp := record.Do(func(r *Record) (wireformat.Binder, error) {
		return r.GetToken(node, req)
	})

	if _, hasErrors := resp["errors"]; hasErrors {
		return resp, nil
	}

	outerData, err := resp.GetBytes("data")
	require.NoError(t, err)
	outerSig, err := resp.GetBytes("signature")
	require.NoError(t, err)
	require.True(t, cryptoutil.Verify(node.SignPub, outerData, outerSig))

	outer, err := wireformat.Unpack(outerData)
	require.NoError(t, err)
	sealed, err := outer.GetBytes("encrypted_token")
	require.NoError(t, err)

	plain, err := cryptoutil.OpenSealed(client.dhPriv, sealed)
	require.NoError(t, err)
	inner, err := wireformat.Unpack(plain)
	require.NoError(t, err)
	sk, err := inner.GetBytes("sk")
	require.NoError(t, err)

	return resp, sk
}

func TestConnectIsIdempotent(t *testing.T) {
	client := newClientIdentity(t)
	record := New(client.key, 12345)

	first := record.Do((*Record).Connect)
	second := record.Do((*Record).Connect)

	require.Equal(t, first, second)
}

func TestGetTokenValidSignatureYieldsVerifiableToken(t *testing.T) {
	client := newClientIdentity(t)
	node := newNodeIdentity(t)
	record := New(client.key, 1)

	connectResp := record.Do((*Record).Connect)
	serverNonce, err := connectResp.GetBytes("server_nonce")
	require.NoError(t, err)

	clientNonce := []byte("client-freshness-value")
	outer, sk := runGetToken(t, record, node, client, serverNonce, clientNonce)
	require.NotNil(t, sk)

	outerData, err := outer.GetBytes("data")
	require.NoError(t, err)
	unpacked, err := wireformat.Unpack(outerData)
	require.NoError(t, err)
	echoed, err := unpacked.GetBytes("client_nonce")
	require.NoError(t, err)
	require.Equal(t, clientNonce, echoed)
}

func TestGetTokenWrongServerNonceIsRejected(t *testing.T) {
	client := newClientIdentity(t)
	node := newNodeIdentity(t)
	record := New(client.key, 2)
	record.Do((*Record).Connect)

	resp, sk := runGetToken(t, record, node, client, []byte("not-the-real-nonce-000000000000000000000000000"), []byte("cn"))
	require.Nil(t, sk)

	errs, ok := resp["errors"].([]interface{})
	require.True(t, ok)
	require.Len(t, errs, 1)
	fields := errs[0].(map[string]interface{})
	require.Equal(t, "BAD_VALUE", fields["code"])
	require.Equal(t, "server_nonce", fields["object"])
}

func TestGetTokenInvalidSignatureIsRejected(t *testing.T) {
	client := newClientIdentity(t)
	node := newNodeIdentity(t)
	record := New(client.key, 3)
	connectResp := record.Do((*Record).Connect)
	serverNonce, err := connectResp.GetBytes("server_nonce")
	require.NoError(t, err)

	data, err := wireformat.Pack(wireformat.New("server_nonce", serverNonce, "client_nonce", []byte("cn")))
	require.NoError(t, err)

	req := wireformat.New("data", data, "signature", []byte("not-a-real-signature-of-the-right-length!!"))
	resp := record.Do(func(r *Record) (wireformat.Binder, error) {
		return r.GetToken(node, req)
	})

	errs, ok := resp["errors"].([]interface{})
	require.True(t, ok)
	fields := errs[0].(map[string]interface{})
	require.Equal(t, "BAD_VALUE", fields["code"])
	require.Equal(t, "signed_data", fields["object"])
}

func TestRepeatedGetTokenReturnsCachedToken(t *testing.T) {
	client := newClientIdentity(t)
	node := newNodeIdentity(t)
	record := New(client.key, 4)
	connectResp := record.Do((*Record).Connect)
	serverNonce, err := connectResp.GetBytes("server_nonce")
	require.NoError(t, err)

	first, sk1 := runGetToken(t, record, node, client, serverNonce, []byte("cn-1"))
	second, sk2 := runGetToken(t, record, node, client, serverNonce, []byte("cn-2"))

	firstOuterData, err := first.GetBytes("data")
	require.NoError(t, err)
	firstOuter, err := wireformat.Unpack(firstOuterData)
	require.NoError(t, err)
	firstToken, err := firstOuter.GetBytes("encrypted_token")
	require.NoError(t, err)

	secondOuterData, err := second.GetBytes("data")
	require.NoError(t, err)
	secondOuter, err := wireformat.Unpack(secondOuterData)
	require.NoError(t, err)
	secondToken, err := secondOuter.GetBytes("encrypted_token")
	require.NoError(t, err)

	require.Equal(t, firstToken, secondToken)
	require.Equal(t, sk1, sk2)
}

func TestCommandFullRoundTripAndRekey(t *testing.T) {
	client := newClientIdentity(t)
	node := newNodeIdentity(t)
	record := New(client.key, 5)
	connectResp := record.Do((*Record).Connect)
	serverNonce, err := connectResp.GetBytes("server_nonce")
	require.NoError(t, err)

	_, sk := runGetToken(t, record, node, client, serverNonce, []byte("cn"))
	require.NotNil(t, sk)

	dispatch := command.NewDispatcher(localnode.Stub{})

	innerCmd, err := wireformat.Pack(wireformat.New("command", "hello"))
	require.NoError(t, err)
	params, err := cryptoutil.EncryptSymmetric(sk, innerCmd)
	require.NoError(t, err)

	req := wireformat.New("params", params)
	resp := record.Do(func(r *Record) (wireformat.Binder, error) {
		return r.Command(dispatch, req)
	})

	ciphertext, err := resp.GetBytes("result")
	require.NoError(t, err)
	plaintext, err := cryptoutil.DecryptSymmetric(sk, ciphertext)
	require.NoError(t, err)
	inner, err := wireformat.Unpack(plaintext)
	require.NoError(t, err)
	innerResult, err := inner.GetBinder("result")
	require.NoError(t, err)
	status, err := innerResult.GetString("status")
	require.NoError(t, err)
	require.Equal(t, "OK", status)

	// Rekey forces the next command to fail.
	record.Do((*Record).ClearKey)
	resp2 := record.Do(func(r *Record) (wireformat.Binder, error) {
		return r.Command(dispatch, req)
	})
	errs, ok := resp2["errors"].([]interface{})
	require.True(t, ok)
	fields := errs[0].(map[string]interface{})
	require.Equal(t, "COMMAND_FAILED", fields["code"])
}

func TestCommandUnknownInnerCommand(t *testing.T) {
	client := newClientIdentity(t)
	node := newNodeIdentity(t)
	record := New(client.key, 6)
	connectResp := record.Do((*Record).Connect)
	serverNonce, err := connectResp.GetBytes("server_nonce")
	require.NoError(t, err)
	_, sk := runGetToken(t, record, node, client, serverNonce, []byte("cn"))

	dispatch := command.NewDispatcher(localnode.Stub{})
	innerCmd, err := wireformat.Pack(wireformat.New("command", "does_not_exist"))
	require.NoError(t, err)
	params, err := cryptoutil.EncryptSymmetric(sk, innerCmd)
	require.NoError(t, err)

	resp := record.Do(func(r *Record) (wireformat.Binder, error) {
		return r.Command(dispatch, wireformat.New("params", params))
	})
	ciphertext, err := resp.GetBytes("result")
	require.NoError(t, err)
	plaintext, err := cryptoutil.DecryptSymmetric(sk, ciphertext)
	require.NoError(t, err)
	inner, err := wireformat.Unpack(plaintext)
	require.NoError(t, err)
	errRec, err := inner.GetBinder("error")
	require.NoError(t, err)
	code, err := errRec.GetString("code")
	require.NoError(t, err)
	require.Equal(t, "UNKNOWN_COMMAND", code)
}
