package ws

import "errors"

var (
	// ErrClientClosed is returned when writing to a client whose transport
	// is gone or whose send buffer overflowed.
	ErrClientClosed = errors.New("ws: client closed")

	// ErrNotAuthenticated is returned when an unauthenticated client is
	// offered to the registry.
	ErrNotAuthenticated = errors.New("ws: client not authenticated")

	// ErrNilClient is returned for nil registry arguments.
	ErrNilClient = errors.New("ws: nil client")
)
