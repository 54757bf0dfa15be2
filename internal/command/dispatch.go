// Package command implements the built-in inner-command dispatch table
// (C5's business-logic half): hello, sping, test_error, and delegation to
// the LocalNode backend for everything else.
package command

import (
	"errors"

	"github.com/universa-network/clientendpoint/internal/apperrors"
	"github.com/universa-network/clientendpoint/internal/localnode"
	"github.com/universa-network/clientendpoint/internal/wireformat"
)

// errTestError backs the synthetic test_error command used by test
// harnesses to exercise the COMMAND_FAILED path.
var errTestError = errors.New("test_error: synthetic failure")

// Dispatcher runs a single decrypted inner command and returns its
// result, or a *apperrors.ClientError describing why it failed.
type Dispatcher func(cmd string, params wireformat.Binder) (wireformat.Binder, error)

// NewDispatcher builds a Dispatcher backed by node for any command name
// outside the endpoint's built-in set.
func NewDispatcher(node localnode.Node) Dispatcher {
	return func(cmd string, params wireformat.Binder) (wireformat.Binder, error) {
		switch cmd {
		case "hello":
			return wireformat.New(
				"status", "OK",
				"message", "welcome to the Universa",
			), nil
		case "sping":
			return wireformat.New("sping", "spong"), nil
		case "test_error":
			return nil, apperrors.NewClientError(apperrors.CommandFailed, "command", errTestError.Error())
		default:
			result, err := node.Execute(cmd, params)
			if err == nil {
				return result, nil
			}
			if errors.Is(err, localnode.ErrUnknownCommand) {
				return nil, apperrors.NewClientError(apperrors.UnknownCommand, "command", cmd)
			}
			return nil, apperrors.NewClientError(apperrors.CommandFailed, "command", err.Error())
		}
	}
}
