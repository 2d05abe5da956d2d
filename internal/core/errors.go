package core

import "errors"

// Error taxonomy shared by services and handlers. Wrapped with %w so callers
// classify with errors.Is and map to HTTP status codes at the edge.
var (
	// ErrNotFound means the id does not exist within the caller's tenant scope.
	ErrNotFound = errors.New("not found")
	// ErrInvalidArgument means the input is malformed or incomplete.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrInvalidState means the operation is incompatible with the entity's
	// current state (e.g. paying a non-negotiated debt).
	ErrInvalidState = errors.New("invalid state")
)
