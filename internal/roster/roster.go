// Package roster models the injected set of peer nodes exposed through
// the /network endpoint, and the memoized directory built from it.
package roster

import (
	"sync"

	"github.com/universa-network/clientendpoint/internal/wireformat"
)

// NodeInfo is one peer's connection information as configured out of
// band; it is never mutated once the Roster is constructed.
type NodeInfo struct {
	Host       string
	ClientPort int
	PackedKey  []byte
}

// Roster is the injected, read-only configuration of known peer nodes,
// keyed by node id.
type Roster map[string]NodeInfo

// Directory lazily builds and memoizes the /network response from a
// Roster. It follows original_source's getNetworkDirectory: read without
// a lock first, and only lock (with a re-check) to build it the one time
// it is missing. sync.Once gives the same publish-once guarantee more
// directly than the original's double-checked field.
type Directory struct {
	once   sync.Once
	roster Roster
	built  wireformat.Binder
}

// NewDirectory returns a Directory that will build its response from
// roster on first access.
func NewDirectory(roster Roster) *Directory {
	return &Directory{roster: roster}
}

// Get returns the memoized /network response, building it on first call.
func (d *Directory) Get() wireformat.Binder {
	d.once.Do(func() {
		d.built = d.build()
	})
	return d.built
}

func (d *Directory) build() wireformat.Binder {
	out := make(wireformat.Binder, len(d.roster))
	for nodeID, info := range d.roster {
		out[nodeID] = wireformat.New(
			"ip", info.Host,
			"port", int64(info.ClientPort),
			"key", info.PackedKey,
		)
	}
	return out
}
