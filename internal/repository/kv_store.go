package repository

import "context"

// KVStore is a durable string store addressed by key.  Get reports
// found=false, with a nil error, when the key has never been written.
type KVStore interface {
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key, value string) error
}
