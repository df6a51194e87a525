package kv

import (
	"context"
	"errors"
)

// Store is the persistent key/value collaborator shared by the cart,
// the discount ledger and the order history. Values are JSON blobs.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

var ErrKeyNotFound = errors.New("key not found")
