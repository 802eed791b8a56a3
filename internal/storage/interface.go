package storage

import (
	"context"

	"github.com/cockroachdb/errors"
)

// ErrNotFound is returned by a Backend when the key holds no value.
var ErrNotFound = errors.New("key not found")

// Backend is the key-value medium the booking store persists through.
// Implementations must return ErrNotFound (possibly wrapped) for missing keys.
type Backend interface {
	// Get returns the value stored under key.
	Get(ctx context.Context, key string) ([]byte, error)
	// Put replaces the value stored under key.
	Put(ctx context.Context, key string, value []byte) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Ping checks that the medium is reachable.
	Ping(ctx context.Context) error
	Close() error
	// Location describes where values live (a path, DSN host, or address).
	Location() string
}
