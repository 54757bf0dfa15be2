package endpoint

import (
	"context"
	"net/http"
	"sync"

	"gopkg.in/op/go-logging.v1"

	"github.com/universa-network/clientendpoint/internal/command"
	"github.com/universa-network/clientendpoint/internal/cryptoutil"
	"github.com/universa-network/clientendpoint/internal/localnode"
	"github.com/universa-network/clientendpoint/internal/registry"
	"github.com/universa-network/clientendpoint/internal/roster"
)

// Config gathers the values an Endpoint is constructed from. It has no
// ambient defaults of its own; DefaultConfig supplies them.
type Config struct {
	Addr        string
	ThreadLimit int
	Node        *cryptoutil.NodeIdentity
	Backend     localnode.Node
	Roster      roster.Roster
	Logger      *logging.Logger
}

// DefaultConfig returns a Config with the endpoint's default thread limit
// and an empty roster and Stub backend; callers override what they need.
func DefaultConfig(node *cryptoutil.NodeIdentity) Config {
	return Config{
		ThreadLimit: DefaultThreadLimit,
		Node:        node,
		Backend:     localnode.Stub{},
		Roster:      roster.Roster{},
	}
}

// Endpoint is the Endpoint Facade (C7): it owns the session registry, the
// memoized network directory, and the HTTP server, and is the single
// explicitly-constructed value holding what would otherwise be process-
// wide mutable state.
type Endpoint struct {
	cfg      Config
	registry *registry.Registry
	server   *http.Server

	shutdownOnce sync.Once
}

// New constructs an Endpoint from cfg. It does not start listening; call
// Start for that.
func New(cfg Config) *Endpoint {
	reg := registry.New()
	dir := roster.NewDirectory(cfg.Roster)
	dispatcher := command.NewDispatcher(cfg.Backend)
	router := NewRouter(cfg.Node, reg, dir, dispatcher, cfg.ThreadLimit, cfg.Logger)

	return &Endpoint{
		cfg:      cfg,
		registry: reg,
		server: &http.Server{
			Addr:    cfg.Addr,
			Handler: router,
		},
	}
}

// Start begins serving on the configured address. It blocks until the
// server stops, returning nil if that was due to a clean Shutdown.
func (e *Endpoint) Start() error {
	if e.cfg.Logger != nil {
		e.cfg.Logger.Noticef("client authentication endpoint listening on %s", e.cfg.Addr)
	}
	err := e.server.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown stops accepting new connections and waits for in-flight
// requests to finish. It is idempotent: subsequent calls are no-ops.
func (e *Endpoint) Shutdown(ctx context.Context) error {
	var err error
	e.shutdownOnce.Do(func() {
		err = e.server.Shutdown(ctx)
	})
	return err
}

// ChangeKeyFor clears the session key bound to publicKey, forcing the
// client to re-run the handshake before its next command succeeds. This
// is the endpoint's administrative key-rotation hook (C7); it is not
// itself reachable over the wire.
func (e *Endpoint) ChangeKeyFor(publicKey cryptoutil.ClientKey) {
	e.registry.ChangeKeyFor(publicKey)
}

// Registry exposes the session registry for callers (tests, admin
// tooling) that need direct lookups outside the HTTP surface.
func (e *Endpoint) Registry() *registry.Registry {
	return e.registry
}

