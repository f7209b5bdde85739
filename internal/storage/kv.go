package storage

import (
	"context"
	"errors"
)

// ErrClosed is returned by operations on a closed store.
var ErrClosed = errors.New("storage: store is closed")

// KV is an asynchronous string-keyed store of opaque values.
//
// Get returns only the keys that exist; a missing key is not an error.
// Values returned by Get and passed to Set are never retained by reference.
type KV interface {
	// Get returns the values stored under keys.
	Get(ctx context.Context, keys ...string) (map[string][]byte, error)

	// Set stores every entry of items.
	Set(ctx context.Context, items map[string][]byte) error

	// Remove deletes keys. Removing a missing key is a no-op.
	Remove(ctx context.Context, keys ...string) error

	// Keys lists every stored key in lexical order.
	Keys(ctx context.Context) ([]string, error)
}

// GetOne returns the value stored under key and whether it exists.
func GetOne(ctx context.Context, kv KV, key string) ([]byte, bool, error) {
	items, err := kv.Get(ctx, key)
	if err != nil {
		return nil, false, err
	}
	value, ok := items[key]
	return value, ok, nil
}

// SetOne stores value under key.
func SetOne(ctx context.Context, kv KV, key string, value []byte) error {
	return kv.Set(ctx, map[string][]byte{key: value})
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return []byte{}
	}
	c := make([]byte, len(b))
	copy(c, b)
	return c
}
