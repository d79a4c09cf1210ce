package repository

import "context"

// Storage is a per-client key/value store with browser local-storage
// semantics. Get reports false when the key is absent.
type Storage interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}
