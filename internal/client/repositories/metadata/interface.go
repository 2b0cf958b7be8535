// Package metadata is a small durable key/value store for client-side
// flags and counters: the guest trial quota, the per-install client id,
// anything that must survive process restarts but never expires on its own.
package metadata

import (
	"context"
)

// Repository is the KV contract. Get returns (nil, nil) for a missing key.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	List(ctx context.Context) (map[string][]byte, error)
	Clear(ctx context.Context) error
}
