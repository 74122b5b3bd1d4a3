// Package metadata stores small string values (the token pair) in the local
// SQLite key/value table.
package metadata

import (
	"context"
)

// Repository is a string key/value store. Get reports ok=false for missing keys.
type Repository interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key string, value string) error
	Delete(ctx context.Context, keys ...string) error
	List(ctx context.Context) (map[string]string, error)
}
