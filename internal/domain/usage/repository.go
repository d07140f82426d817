package usage

import (
	"context"
)

// Repository is the durable counter store. All serialization across
// concurrent invocations lives in these operations; callers hold no
// locks and share no process state.
type Repository interface {
	// IncrementWithCeiling atomically increments the period counter by
	// one, but only if the resulting value would not exceed ceiling. It
	// returns the post-increment count on success. A rejection at the
	// ceiling returns ErrQuotaExceeded with the observed count attached;
	// the counter is left untouched. The record is created on first
	// increment.
	IncrementWithCeiling(ctx context.Context, periodKey string, tenantID string, ceiling int64) (int64, error)

	// DecrementIfPositive gives one unit back, guarded so the counter
	// never goes below zero. Best effort: a failed precondition is not
	// an error.
	DecrementIfPositive(ctx context.Context, periodKey string) error

	// Get returns the counter record, or ErrNotFound. It never creates
	// a record as a side effect.
	Get(ctx context.Context, periodKey string) (*Period, error)

	// Reset unconditionally zeroes the counter and stamps reset_at.
	Reset(ctx context.Context, periodKey string, tenantID string) error

	// History returns up to limit periods for a tenant, newest first.
	History(ctx context.Context, tenantID string, limit int) ([]*Period, error)
}
