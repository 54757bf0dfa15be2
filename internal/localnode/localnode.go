// Package localnode declares the interface to the application-level
// command backend. The client authentication endpoint treats it as an
// opaque collaborator: once a command is authenticated and decrypted, any
// command not covered by the endpoint's own built-in table is delegated
// here.
package localnode

import (
	"errors"

	"github.com/universa-network/clientendpoint/internal/wireformat"
)

// ErrUnknownCommand is returned by a Node when it does not recognize the
// requested command name.
var ErrUnknownCommand = errors.New("localnode: unknown command")

// Node executes application-level commands once the transport layer has
// already authenticated and decrypted the request.
type Node interface {
	// Execute runs the named command with the given parameters and
	// returns its result, or ErrUnknownCommand if the name is not
	// recognized.
	Execute(command string, params wireformat.Binder) (wireformat.Binder, error)
}

// Stub is a Node that recognizes no commands; it is useful as a
// placeholder backend in tests and in configurations that only exercise
// the built-in command set.
type Stub struct{}

// Execute always reports ErrUnknownCommand.
func (Stub) Execute(command string, params wireformat.Binder) (wireformat.Binder, error) {
	return nil, ErrUnknownCommand
}
