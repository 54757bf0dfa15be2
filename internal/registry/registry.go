// Package registry implements the Session Registry (C3): two maps sharing
// the same Record instances, keyed by public key and by numeric session
// id, with de-duplicating creation. It follows original_source's
// getSession, which serializes creation on a single lock while leaving
// lookups free.
package registry

import (
	"fmt"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/universa-network/clientendpoint/internal/apperrors"
	"github.com/universa-network/clientendpoint/internal/cryptoutil"
	"github.com/universa-network/clientendpoint/internal/session"
)

// Registry holds every live Session Record for one running endpoint.
// Records are never removed except at process shutdown.
type Registry struct {
	createMu sync.Mutex

	byKey sync.Map // cryptoutil.ClientKey -> *session.Record
	byID  sync.Map // int64 -> *session.Record

	nextID atomic.Int64
}

// New builds an empty Registry, seeding the session-id counter the way
// original_source does: process-start epoch seconds plus a random
// non-negative 31-bit offset, keeping ids clear of any pre-restart values
// while remaining an ordinary handle rather than a security token.
func New() *Registry {
	r := &Registry{}
	seed := time.Now().Unix() + int64(rand.Int31())
	r.nextID.Store(seed)
	return r
}

// GetOrCreate returns the existing record for publicKey, or atomically
// creates and inserts a new one. Creation is serialized on createMu so two
// concurrent /connect calls for the same unseen key never produce two
// records (invariant 1); the fast path (existing record) takes no lock.
func (r *Registry) GetOrCreate(publicKey cryptoutil.ClientKey) *session.Record {
	if v, ok := r.byKey.Load(publicKey); ok {
		return v.(*session.Record)
	}

	r.createMu.Lock()
	defer r.createMu.Unlock()

	if v, ok := r.byKey.Load(publicKey); ok {
		return v.(*session.Record)
	}

	id := r.nextID.Add(1)
	record := session.New(publicKey, id)
	r.byKey.Store(publicKey, record)
	r.byID.Store(id, record)
	return record
}

// GetByID returns the record registered under id, or a *apperrors.ClientError
// naming a bad session number if none exists.
func (r *Registry) GetByID(id int64) (*session.Record, error) {
	v, ok := r.byID.Load(id)
	if !ok {
		return nil, apperrors.NewClientError(apperrors.Failure, "session_id", fmt.Sprintf("bad session number: %d", id))
	}
	return v.(*session.Record), nil
}

// ChangeKeyFor clears the session key on the record bound to publicKey, if
// one exists. It is a no-op if the key has never connected.
func (r *Registry) ChangeKeyFor(publicKey cryptoutil.ClientKey) {
	v, ok := r.byKey.Load(publicKey)
	if !ok {
		return
	}
	record := v.(*session.Record)
	record.Do((*session.Record).ClearKey)
}

// Size returns the number of distinct client keys currently registered,
// for tests asserting de-duplication under concurrency.
func (r *Registry) Size() int {
	n := 0
	r.byKey.Range(func(_, _ interface{}) bool {
		n++
		return true
	})
	return n
}
