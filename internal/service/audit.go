package service

import (
	"context"
	"time"

	"github.com/zeroechelon/outpost/internal/domain/audit"
	"github.com/zeroechelon/outpost/internal/logger"
	"github.com/zeroechelon/outpost/internal/types"
)

// auditLogger emits audit entries as structured log records. The audit
// trail's persistence is owned by the platform's log pipeline, not by the
// billing core; this sink never fails the calling operation.
type auditLogger struct {
	logger *logger.Logger
}

// NewAuditLogger returns the structured-logging audit sink.
func NewAuditLogger(logger *logger.Logger) audit.Logger {
	return &auditLogger{logger: logger}
}

func (a *auditLogger) Log(ctx context.Context, entry audit.Entry) {
	if entry.ID == "" {
		entry.ID = types.GenerateUUIDWithPrefix("audit")
	}
	if entry.At.IsZero() {
		entry.At = time.Now().UTC()
	}

	a.logger.Infow("audit",
		"audit_id", entry.ID,
		"tenant_id", entry.TenantID,
		"action", entry.Action,
		"resource", entry.Resource,
		"metadata", entry.Metadata,
		"at", entry.At.Format(time.RFC3339),
		"request_id", types.GetRequestID(ctx),
	)
}
