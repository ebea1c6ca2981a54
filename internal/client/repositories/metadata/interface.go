// Package metadata is the key/value repository behind the local token store.
package metadata

import "context"

// Repository stores opaque byte values under string keys.
//
// Get returns (nil, nil) for a missing key. Put and Delete take several keys
// so that related entries change in a single statement.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, entries map[string][]byte) error
	Delete(ctx context.Context, keys ...string) error
}
