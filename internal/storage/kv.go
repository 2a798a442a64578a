// Package storage persists opaque blobs under string keys. The asset store
// keeps its whole collection under a single key, so the backends only need
// get/put semantics.
package storage

import (
	"context"
	"errors"
	"fmt"
	"regexp"
)

var (
	ErrNotFound   = errors.New("key not found")
	ErrInvalidKey = errors.New("invalid key")
)

// KV is a minimal key-value store.
type KV interface {
	// Get returns the value stored under key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)
	// Put stores value under key, replacing any previous value.
	Put(ctx context.Context, key string, value []byte) error
	// Ping reports whether the backend is usable.
	Ping(ctx context.Context) error
	Close() error
}

var validKey = regexp.MustCompile(`^[A-Za-z0-9_-]{1,128}$`)

// ValidateKey rejects keys that cannot be used as file names or SQL keys
// without escaping.
func ValidateKey(key string) error {
	if !validKey.MatchString(key) {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return nil
}
