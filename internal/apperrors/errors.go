// Package apperrors defines the structured error vocabulary shared by every
// component of the client authentication endpoint. Handlers return either a
// value or a *ClientError; nothing unwinds across a session boundary.
package apperrors

import "fmt"

// Code names one of the endpoint's error kinds.
type Code string

const (
	// Failure is a generic, unrecoverable error: oversize body, missing
	// form field, or an unexpected exception.
	Failure Code = "FAILURE"
	// BadClientKey means the client's public key could not be parsed.
	BadClientKey Code = "BAD_CLIENT_KEY"
	// BadValue means a cryptographic check or parameter comparison failed.
	BadValue Code = "BAD_VALUE"
	// UnknownCommand means the URI or inner command string was not recognized.
	UnknownCommand Code = "UNKNOWN_COMMAND"
	// CommandFailed means the backend raised an error while executing an
	// authenticated command.
	CommandFailed Code = "COMMAND_FAILED"
)

// ErrorRecord is the wire-level shape of a single reported error.
type ErrorRecord struct {
	Code    Code
	Object  string
	Message string
}

// New builds an ErrorRecord.
func New(code Code, object, message string) ErrorRecord {
	return ErrorRecord{Code: code, Object: object, Message: message}
}

// Error implements the error interface so an ErrorRecord can be returned
// directly wherever only the code/object/message triple matters.
func (e ErrorRecord) Error() string {
	return fmt.Sprintf("%s/%s: %s", e.Code, e.Object, e.Message)
}

// Fields renders the record as a plain map, ready to be wrapped in a
// wireformat.Binder without this package needing to depend on the codec.
func (e ErrorRecord) Fields() map[string]interface{} {
	return map[string]interface{}{
		"code":    string(e.Code),
		"object":  e.Object,
		"message": e.Message,
	}
}

// ClientError carries an ErrorRecord through Go's ordinary error-return
// control flow, the same role original_source's ClientError exception
// played: a typed failure a handler can construct and return without
// wrapping a bare string.
type ClientError struct {
	Record ErrorRecord
}

// NewClientError builds a *ClientError from its three fields.
func NewClientError(code Code, object, message string) *ClientError {
	return &ClientError{Record: New(code, object, message)}
}

func (e *ClientError) Error() string { return e.Record.Error() }
