// Package storage defines the alert journal contract shared by the memory
// and PostgreSQL implementations.
package storage

import "errors"

// Journal errors.
var (
	// ErrNotFound is returned when a requested alert does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateKey is returned when an alert_id is already journaled.
	// The journal is append-only and never updates a row.
	ErrDuplicateKey = errors.New("duplicate key: append-only store does not allow updates")

	// ErrInvalidInput is returned when input validation fails.
	ErrInvalidInput = errors.New("invalid input")
)
