package storage

import "errors"

// Common client storage errors
var (
	// ErrAuthNotFound indicates that no viewer session exists
	ErrAuthNotFound = errors.New("authentication data not found")

	// ErrKeyNotFound indicates that the key-value entry was not found
	ErrKeyNotFound = errors.New("key not found")

	// ErrStorageClosed indicates that storage is closed
	ErrStorageClosed = errors.New("storage is closed")
)
