// Package metadata keeps client settings that must survive a restart, such
// as whether this device is trusted to restore the session.
package metadata

import (
	"context"
)

// Repository stores text settings by key.
type Repository interface {
	// Get returns the value of key and whether it is set.
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	// Delete is a no-op for a key that is not set.
	Delete(ctx context.Context, key string) error
}
