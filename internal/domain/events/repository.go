package events

import (
	"context"
)

// Repository is the durable idempotency set for processed events. A
// process-local set is not sufficient: markers must survive restarts and
// be shared by every concurrent worker.
type Repository interface {
	// IsProcessed reports whether a marker exists for the event identity.
	IsProcessed(ctx context.Context, eventID string) (bool, error)

	// MarkProcessed inserts the marker if absent and reports whether this
	// caller performed the insert. Two concurrent deliveries of the same
	// event see exactly one true.
	MarkProcessed(ctx context.Context, marker *ProcessedMarker) (bool, error)
}
