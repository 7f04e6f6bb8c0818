package kv

import "errors"

// ErrNotFound is returned by Get when no value exists for the key.
var ErrNotFound = errors.New("kv: key not found")

// Store is a minimal durable key-value port. The offline queue persists
// its serialized state through it, keeping the client decoupled from any
// particular storage mechanism: an in-memory map backs unit tests while
// a file or SQLite adapter backs production use.
type Store interface {
	// Get retrieves the value for key.
	// Returns ErrNotFound when the key has never been set.
	Get(key string) ([]byte, error)

	// Set writes the value for key, replacing any prior value.
	Set(key string, value []byte) error

	// Delete removes the key. Deleting an absent key is not an error.
	Delete(key string) error
}
