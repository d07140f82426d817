package testutil

import (
	"context"
	"sync"

	"github.com/zeroechelon/outpost/internal/domain/audit"
)

// RecordingAuditLogger captures audit entries for assertions.
type RecordingAuditLogger struct {
	mu      sync.Mutex
	entries []audit.Entry
}

func NewRecordingAuditLogger() *RecordingAuditLogger {
	return &RecordingAuditLogger{}
}

func (a *RecordingAuditLogger) Log(ctx context.Context, entry audit.Entry) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries = append(a.entries, entry)
}

func (a *RecordingAuditLogger) Entries() []audit.Entry {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]audit.Entry, len(a.entries))
	copy(out, a.entries)
	return out
}

// HasAction reports whether any captured entry carries the action.
func (a *RecordingAuditLogger) HasAction(action string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, e := range a.entries {
		if e.Action == action {
			return true
		}
	}
	return false
}

func (a *RecordingAuditLogger) Clear() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries = nil
}
