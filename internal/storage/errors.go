package storage

import "errors"

// Storage errors.
var (
	// ErrInvalidInput is returned when a request cannot be turned into a query,
	// e.g. a zero Series.
	ErrInvalidInput = errors.New("invalid input")
)
