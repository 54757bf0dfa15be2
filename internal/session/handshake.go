package session

import (
	"bytes"
	"fmt"

	"github.com/universa-network/clientendpoint/internal/apperrors"
	"github.com/universa-network/clientendpoint/internal/cryptoutil"
	"github.com/universa-network/clientendpoint/internal/wireformat"
)

// GetToken implements the second handshake step (C4). node is the
// endpoint's own signing identity, used to sign the outer response blob.
// Must be called through Do.
func (r *Record) GetToken(node *cryptoutil.NodeIdentity, req wireformat.Binder) (wireformat.Binder, error) {
	data, err := req.GetBytes("data")
	if err != nil {
		return nil, apperrors.NewClientError(apperrors.Failure, "data", err.Error())
	}
	signature, err := req.GetBytes("signature")
	if err != nil {
		return nil, apperrors.NewClientError(apperrors.Failure, "signature", err.Error())
	}

	if !cryptoutil.Verify(r.publicKey.Sign, data, signature) {
		return nil, apperrors.NewClientError(apperrors.BadValue, "signed_data", "signature verification failed")
	}

	inner, err := wireformat.Unpack(data)
	if err != nil {
		return nil, apperrors.NewClientError(apperrors.BadValue, "signed_data", err.Error())
	}
	serverNonce, err := inner.GetBytes("server_nonce")
	if err != nil {
		return nil, apperrors.NewClientError(apperrors.BadValue, "server_nonce", err.Error())
	}
	clientNonce, err := inner.GetBytes("client_nonce")
	if err != nil {
		return nil, apperrors.NewClientError(apperrors.BadValue, "client_nonce", err.Error())
	}
	if !bytes.Equal(serverNonce, r.serverNonce) {
		return nil, apperrors.NewClientError(apperrors.BadValue, "server_nonce", "server nonce mismatch")
	}

	if !r.keyed() {
		if err := r.deriveSessionKeyLocked(); err != nil {
			return nil, fmt.Errorf("deriving session key: %w", err)
		}
	}

	outer := wireformat.New(
		"client_nonce", clientNonce,
		"encrypted_token", r.encryptedAnswer,
	)
	packedOuter, err := wireformat.Pack(outer)
	if err != nil {
		return nil, fmt.Errorf("packing token response: %w", err)
	}
	nodeSig := cryptoutil.Sign(node.SignPriv, packedOuter)

	return wireformat.New(
		"data", packedOuter,
		"signature", nodeSig,
	), nil
}

// deriveSessionKeyLocked generates a fresh session key, seals it to the
// client's DH key, and caches the sealed blob as encrypted_answer. Caller
// must hold r.mu (via Do) and must have already checked !r.keyed().
func (r *Record) deriveSessionKeyLocked() error {
	key, err := cryptoutil.GenerateSymmetricKey()
	if err != nil {
		return err
	}
	inner := wireformat.New("sk", key)
	packedInner, err := wireformat.Pack(inner)
	if err != nil {
		return fmt.Errorf("packing session key blob: %w", err)
	}
	sealed, err := cryptoutil.SealToPublic(r.publicKey.DH, packedInner)
	if err != nil {
		return fmt.Errorf("sealing session key: %w", err)
	}
	r.sessionKey = key
	r.encryptedAnswer = sealed
	return nil
}
