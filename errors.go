package tcaws

import "errors"

var (
	// ErrNotFound is returned when the requested key does not exist in the bucket
	ErrNotFound = errors.New("not found")
	// ErrPermission is returned when the object store denies access
	ErrPermission = errors.New("permission denied")
	// ErrNetwork is returned when the object store could not be reached
	ErrNetwork = errors.New("network error")
	// ErrUpstream is returned when the object store answered with an unexpected error
	ErrUpstream = errors.New("upstream error")
	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")
	// ErrUnsupported is returned when a backend cannot perform an operation
	ErrUnsupported = errors.New("unsupported operation")
	// ErrPoolClosed is returned when a task is submitted to a closed pool
	ErrPoolClosed = errors.New("pool closed")
)
