// Package observability writes audit events to the structured log and the
// audit publisher in one call.
package observability

import (
	"context"
	"log/slog"

	"passgate/pkg/attrs"
	audit "passgate/pkg/platform/audit"
	"passgate/pkg/requestcontext"
)

// Emitter is satisfied by *publisher.Publisher.
type Emitter interface {
	Emit(ctx context.Context, event audit.Event) error
}

// LogAudit logs event with attrList and, when publisher is set, emits it.
// Request metadata comes from ctx; user_id, admin_id, subject and reason are
// lifted from attrList.
func LogAudit(ctx context.Context, logger *slog.Logger, publisher Emitter, event audit.AuditEvent, attrList ...any) {
	requestID := requestcontext.RequestID(ctx)
	if requestID != "" {
		attrList = append(attrList, "request_id", requestID)
	}

	if logger != nil {
		args := append(attrList, "event", string(event), "log_type", "audit")
		logger.InfoContext(ctx, string(event), args...)
	}

	if publisher == nil {
		return
	}
	err := publisher.Emit(ctx, audit.Event{
		Action:    string(event),
		UserID:    attrs.ExtractString(attrList, "user_id"),
		AdminID:   attrs.ExtractString(attrList, "admin_id"),
		Subject:   extractSubject(attrList),
		Reason:    attrs.ExtractString(attrList, "reason"),
		RequestID: requestID,
		ClientIP:  requestcontext.ClientIP(ctx),
		ClientOS:  requestcontext.ClientOS(ctx),
		AppID:     requestcontext.AppID(ctx),
	})
	if err != nil && logger != nil {
		logger.ErrorContext(ctx, "failed to emit audit event",
			"event", string(event),
			"error", err,
		)
	}
}

func extractSubject(attrList []any) string {
	return attrs.FirstString(attrList, "subject", "email", "ip")
}
