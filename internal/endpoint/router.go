// Package endpoint implements the Request Router (C6) and Endpoint
// Facade (C7): the HTTP surface of the client authentication endpoint,
// wiring the wire codec, session registry, handshake, and command
// envelope together the way original_source's ClientEndpoint does.
package endpoint

import (
	"fmt"
	"io"
	"net/http"

	"gopkg.in/op/go-logging.v1"

	"github.com/universa-network/clientendpoint/internal/apperrors"
	"github.com/universa-network/clientendpoint/internal/command"
	"github.com/universa-network/clientendpoint/internal/cryptoutil"
	"github.com/universa-network/clientendpoint/internal/registry"
	"github.com/universa-network/clientendpoint/internal/roster"
	"github.com/universa-network/clientendpoint/internal/session"
	"github.com/universa-network/clientendpoint/internal/wireformat"
)

// HardUploadLimit is the maximum accepted declared content length, in
// bytes: requests declaring more are rejected before their body is read.
const HardUploadLimit = 2 * 1024 * 1024

// DefaultThreadLimit is the default size of the bounded worker pool
// admitting requests, matching original_source's THREAD_LIMIT.
const DefaultThreadLimit = 16

// Router dispatches parsed request bodies to the correct handler by URI,
// enforcing the body-size guard and shaping errors uniformly for paths
// that never reach a Session Record.
type Router struct {
	node       *cryptoutil.NodeIdentity
	registry   *registry.Registry
	directory  *roster.Directory
	dispatcher command.Dispatcher
	log        *logging.Logger

	admit chan struct{} // nil means unbounded
}

// NewRouter builds a Router. threadLimit <= 0 means an unbounded elastic
// pool; otherwise requests are admitted through a semaphore of that size,
// the closest equivalent to a bounded worker pool that sits in front of
// net/http's own connection handling instead of replacing it.
func NewRouter(node *cryptoutil.NodeIdentity, reg *registry.Registry, dir *roster.Directory, dispatcher command.Dispatcher, threadLimit int, log *logging.Logger) *Router {
	r := &Router{
		node:       node,
		registry:   reg,
		directory:  dir,
		dispatcher: dispatcher,
		log:        log,
	}
	if threadLimit > 0 {
		r.admit = make(chan struct{}, threadLimit)
	}
	return r
}

// ServeHTTP implements http.Handler: admission control, body-size guard,
// wire-format parse, URI dispatch, wire-format response.
func (rt *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	if rt.admit != nil {
		rt.admit <- struct{}{}
		defer func() { <-rt.admit }()
	}

	if req.ContentLength > HardUploadLimit {
		rt.writeFailure(w, http.StatusNotAcceptable, fmt.Sprintf(
			"Body too large: %d, while maximum allowed is %d", req.ContentLength, HardUploadLimit))
		return
	}

	if err := req.ParseMultipartForm(HardUploadLimit); err != nil {
		rt.writeFailure(w, http.StatusOK, "No requestData")
		return
	}
	file, _, err := req.FormFile("requestData")
	if err != nil {
		rt.writeFailure(w, http.StatusOK, "No requestData")
		return
	}
	defer file.Close()

	raw, err := io.ReadAll(file)
	if err != nil {
		rt.writeFailure(w, http.StatusOK, "tempfile missing")
		return
	}

	params, err := wireformat.Unpack(raw)
	if err != nil {
		rt.writeFailure(w, http.StatusOK, err.Error())
		return
	}

	result := rt.dispatchURI(req.URL.Path, params)
	rt.writeBinder(w, http.StatusOK, result)
}

// dispatchURI implements the closed, small URI dispatch table as a tagged
// match rather than a registry of callables, per design notes.
func (rt *Router) dispatchURI(uri string, params wireformat.Binder) wireformat.Binder {
	switch uri {
	case "/ping":
		return rt.handlePing(params)
	case "/network":
		return rt.directory.Get()
	case "/connect":
		return rt.handleConnect(params)
	case "/get_token":
		return rt.handleGetToken(params)
	case "/command":
		return rt.handleCommand(params)
	default:
		return oneShotError(apperrors.New(apperrors.UnknownCommand, "uri", "command not supported: "+uri))
	}
}

func (rt *Router) handlePing(params wireformat.Binder) wireformat.Binder {
	out := make(wireformat.Binder, len(params)+1)
	for k, v := range params {
		out[k] = v
	}
	out["ping"] = "pong"
	return out
}

func (rt *Router) handleConnect(params wireformat.Binder) wireformat.Binder {
	keyBytes, err := params.GetBytes("client_key")
	if err != nil {
		return oneShotError(apperrors.New(apperrors.BadClientKey, "client_key", err.Error()))
	}
	clientKey, err := cryptoutil.ParseClientKey(keyBytes)
	if err != nil {
		return oneShotError(errorRecordOf(err, apperrors.BadClientKey, "client_key"))
	}
	record := rt.registry.GetOrCreate(clientKey)
	return record.Do(func(r *session.Record) (wireformat.Binder, error) {
		return r.Connect()
	})
}

func (rt *Router) handleGetToken(params wireformat.Binder) wireformat.Binder {
	id, err := params.GetLong("session_id")
	if err != nil {
		return oneShotError(apperrors.New(apperrors.Failure, "session_id", err.Error()))
	}
	rec, err := rt.registry.GetByID(id)
	if err != nil {
		return oneShotError(errorRecordOf(err, apperrors.Failure, "session_id"))
	}
	return rec.Do(func(r *session.Record) (wireformat.Binder, error) {
		return r.GetToken(rt.node, params)
	})
}

func (rt *Router) handleCommand(params wireformat.Binder) wireformat.Binder {
	id, err := params.GetLong("session_id")
	if err != nil {
		return oneShotError(apperrors.New(apperrors.Failure, "session_id", err.Error()))
	}
	rec, err := rt.registry.GetByID(id)
	if err != nil {
		return oneShotError(errorRecordOf(err, apperrors.Failure, "session_id"))
	}
	return rec.Do(func(r *session.Record) (wireformat.Binder, error) {
		return r.Command(rt.dispatcher, params)
	})
}

// oneShotError builds the {errors: [...]} response used for failures that
// occur outside any Session Record's context.
func oneShotError(rec apperrors.ErrorRecord) wireformat.Binder {
	return wireformat.Binder{"errors": []interface{}{rec.Fields()}}
}

func errorRecordOf(err error, fallback apperrors.Code, object string) apperrors.ErrorRecord {
	if ce, ok := err.(*apperrors.ClientError); ok {
		return ce.Record
	}
	return apperrors.New(fallback, object, err.Error())
}

func (rt *Router) writeFailure(w http.ResponseWriter, status int, message string) {
	rt.writeBinder(w, status, oneShotError(apperrors.New(apperrors.Failure, "", message)))
}

func (rt *Router) writeBinder(w http.ResponseWriter, status int, b wireformat.Binder) {
	packed, err := wireformat.Pack(b)
	if err != nil {
		if rt.log != nil {
			rt.log.Errorf("packing response: %s", err)
		}
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/octet-stream")
	w.WriteHeader(status)
	_, _ = w.Write(packed)
}
