// Package sentinel holds the error values stores and outbound clients return
// for facts about a resource. Services map them onto domain-errors codes;
// input validation never produces them.
package sentinel

import "errors"

var (
	// ErrNotFound means no row or record matched the key.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyUsed means a uniqueness constraint rejected the write.
	ErrAlreadyUsed = errors.New("already used")
	// ErrUnavailable means a backing system could not be reached.
	ErrUnavailable = errors.New("unavailable")
)
