// Package provider defines the storage abstraction used by memocache.
//
// Implementations MUST be byte-for-byte transparent: Get must return exactly the
// same []byte that was previously passed to Set for a key (no prepended/appended
// metadata, no re-encoding, no mutation).
//
// Keys written by memocache have the shape "<name>__<args>". Scan is called with
// the "<name>__" prefix to drop a whole namespace at once, so a store that shares
// its keyspace with other writers should not reuse that shape.
package provider

import (
	"context"
	"time"
)

// Provider is a minimal byte store with TTLs and prefix scans.
// Must be safe for concurrent use.
type Provider interface {
	// Get returns (value, true, nil) on hit; (nil, false, nil) on miss.
	// If an IO/remote error happens, return (nil, false, err).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores value with the given TTL. May ignore cost if unsupported.
	// Returns ok=false when the store rejected the write under pressure.
	Set(ctx context.Context, key string, value []byte, cost int64, ttl time.Duration) (ok bool, err error)

	// Scan returns every live key that starts with prefix. Order is unspecified.
	Scan(ctx context.Context, prefix string) ([]string, error)

	// Del removes keys in one batch. Missing keys are not an error.
	Del(ctx context.Context, keys ...string) error

	// Close releases resources.
	Close(ctx context.Context) error
}
