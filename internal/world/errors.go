package world

import "github.com/rotisserie/eris"

// SerializationError reports a snapshot that could not be produced or
// applied. It indicates bad data or a programming error, not a runtime
// condition to retry.
type SerializationError struct {
	Op  string
	Err error
}

func newSerializationError(op string, cause error) *SerializationError {
	return &SerializationError{Op: op, Err: eris.Wrap(cause, op)}
}

func (e *SerializationError) Error() string { return e.Err.Error() }

func (e *SerializationError) Unwrap() error { return e.Err }
