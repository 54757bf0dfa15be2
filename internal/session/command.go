package session

import (
	"fmt"

	"github.com/universa-network/clientendpoint/internal/apperrors"
	"github.com/universa-network/clientendpoint/internal/command"
	"github.com/universa-network/clientendpoint/internal/cryptoutil"
	"github.com/universa-network/clientendpoint/internal/wireformat"
)

// Command implements the authenticated command envelope (C5): decrypt the
// inner params under the session key, dispatch, encrypt the reply. Must
// be called through Do.
//
// If the session key is absent (never keyed, or cleared by ChangeKeyFor)
// there is no key to encrypt a reply with, so this returns a
// *apperrors.ClientError directly rather than an encrypted {error: ...}
// blob: Do accumulates it as an ordinary, unencrypted error record on the
// response. Once a session key is present, dispatch failures (unknown
// command, backend errors) are reported inside the encrypted result as
// {error: error_record}, matching the wire contract.
func (r *Record) Command(dispatch command.Dispatcher, req wireformat.Binder) (wireformat.Binder, error) {
	if !r.keyed() {
		return nil, apperrors.NewClientError(apperrors.CommandFailed, "session_key", "session is not keyed")
	}

	ciphertext, err := req.GetBytes("params")
	if err != nil {
		return nil, apperrors.NewClientError(apperrors.Failure, "params", err.Error())
	}

	plaintext, err := cryptoutil.DecryptSymmetric(r.sessionKey, ciphertext)
	if err != nil {
		return nil, apperrors.NewClientError(apperrors.CommandFailed, "params", "decryption failed")
	}

	inner, err := wireformat.Unpack(plaintext)
	if err != nil {
		return nil, apperrors.NewClientError(apperrors.CommandFailed, "params", err.Error())
	}
	cmd, err := inner.GetString("command")
	if err != nil {
		return nil, apperrors.NewClientError(apperrors.CommandFailed, "command", err.Error())
	}

	reply := dispatchReply(dispatch, cmd, inner)
	packedReply, err := wireformat.Pack(reply)
	if err != nil {
		return nil, fmt.Errorf("packing command reply: %w", err)
	}
	encryptedReply, err := cryptoutil.EncryptSymmetric(r.sessionKey, packedReply)
	if err != nil {
		return nil, fmt.Errorf("encrypting command reply: %w", err)
	}

	return wireformat.New("result", encryptedReply), nil
}

// dispatchReply runs dispatch and shapes its outcome as {result: value}
// or {error: error_record}; it never returns an error itself, since both
// outcomes are represented as data to be encrypted.
func dispatchReply(dispatch command.Dispatcher, cmd string, params wireformat.Binder) wireformat.Binder {
	result, err := dispatch(cmd, params)
	if err == nil {
		return wireformat.New("result", result)
	}
	if ce, ok := err.(*apperrors.ClientError); ok {
		return wireformat.New("error", ce.Record.Fields())
	}
	return wireformat.New("error", apperrors.New(apperrors.CommandFailed, cmd, err.Error()).Fields())
}
