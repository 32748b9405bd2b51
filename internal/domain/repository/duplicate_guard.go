package repository

import (
	"context"
	"time"
)

// DuplicateGuard coalesces concurrent duplicate booking submissions. Reserve
// claims a request fingerprint for the window; a second Reserve for the same
// fingerprint inside the window returns false.
type DuplicateGuard interface {
	Reserve(ctx context.Context, fingerprint string, window time.Duration) (bool, error)
	Release(ctx context.Context, fingerprint string) error
}
