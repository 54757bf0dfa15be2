// Package session implements the per-client Session Record: handshake
// state, the accumulated error list, and the answer/Do wrapper every
// handler runs through. It follows the synchronized-instance-method style
// of original_source's ClientEndpoint.Session, translated into a Go mutex
// guarding an otherwise ordinary struct.
package session

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/universa-network/clientendpoint/internal/apperrors"
	"github.com/universa-network/clientendpoint/internal/cryptoutil"
	"github.com/universa-network/clientendpoint/internal/wireformat"
)

const serverNonceSize = 48

// Record is one client's handshake and command state. All mutation runs
// under mu; callers reach it exclusively through Do, never by touching
// fields directly.
type Record struct {
	mu sync.Mutex

	publicKey       cryptoutil.ClientKey
	sessionID       int64
	serverNonce     []byte
	sessionKey      []byte
	encryptedAnswer []byte
	errors          []apperrors.ErrorRecord
}

// New constructs a Record for publicKey with the given id. Only the
// registry calls this, under its own creation lock, so invariant 1 (at
// most one Record per public key) is the registry's responsibility, not
// this type's.
func New(publicKey cryptoutil.ClientKey, sessionID int64) *Record {
	return &Record{publicKey: publicKey, sessionID: sessionID}
}

// SessionID returns the record's stable numeric handle.
func (r *Record) SessionID() int64 {
	return atomic.LoadInt64(&r.sessionID)
}

// PublicKey returns the client key this record is bound to.
func (r *Record) PublicKey() cryptoutil.ClientKey {
	return r.publicKey
}

// Do runs fn under the record's mutex, clearing the error accumulator
// first and merging any accumulated errors into the returned Binder
// afterward. It mirrors original_source's inSession/answer pair: a
// *apperrors.ClientError returned by fn becomes an appended error record
// rather than propagating, and any other error is recorded as a FAILURE.
func (r *Record) Do(fn func(r *Record) (wireformat.Binder, error)) wireformat.Binder {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.errors = r.errors[:0]

	result, err := fn(r)
	if err != nil {
		if ce, ok := err.(*apperrors.ClientError); ok {
			r.errors = append(r.errors, ce.Record)
		} else {
			r.errors = append(r.errors, apperrors.New(apperrors.Failure, "", err.Error()))
		}
		result = nil
	}
	return r.answerLocked(result)
}

// answerLocked merges r.errors into result, matching original_source's
// Session.answer: a nil result becomes {} or {errors: [...]}.
func (r *Record) answerLocked(result wireformat.Binder) wireformat.Binder {
	if len(r.errors) == 0 {
		if result == nil {
			return wireformat.Binder{}
		}
		return result
	}
	if result == nil {
		result = wireformat.Binder{}
	}
	records := make([]interface{}, len(r.errors))
	for i, rec := range r.errors {
		records[i] = rec.Fields()
	}
	result["errors"] = records
	return result
}

// Connect implements the idempotent first handshake step: ensure
// server_nonce exists, return {server_nonce, session_id}. Must be called
// through Do.
func (r *Record) Connect() (wireformat.Binder, error) {
	if r.serverNonce == nil {
		nonce, err := cryptoutil.RandomBytes(serverNonceSize)
		if err != nil {
			return nil, fmt.Errorf("generating server nonce: %w", err)
		}
		r.serverNonce = nonce
	}
	return wireformat.New(
		"server_nonce", r.serverNonce,
		"session_id", r.sessionID,
	), nil
}

// ClearKey clears the session key and cached token, forcing the next
// command to fail until the client re-runs the handshake. Must be called
// through Do.
func (r *Record) ClearKey() (wireformat.Binder, error) {
	if r.sessionKey != nil {
		cryptoutil.Zero(r.sessionKey)
	}
	r.sessionKey = nil
	r.encryptedAnswer = nil
	return wireformat.Binder{}, nil
}

// keyed reports whether the handshake has completed and a session key is
// available for command traffic.
func (r *Record) keyed() bool {
	return r.sessionKey != nil
}
