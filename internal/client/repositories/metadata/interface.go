// Package metadata is the CLI's local key/value table, kept in SQLite next
// to the user's configuration.
package metadata

import (
	"context"
)

// Repository stores small opaque values by key. Get returns
// common.ErrorNotFound for a missing key.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}
