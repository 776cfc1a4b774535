package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	audit "passgate/pkg/platform/audit"
	"passgate/pkg/requestcontext"
)

type captureEmitter struct {
	events []audit.Event
	err    error
}

func (c *captureEmitter) Emit(_ context.Context, e audit.Event) error {
	c.events = append(c.events, e)
	return c.err
}

func TestLogAudit(t *testing.T) {
	ctx := requestcontext.WithRequestID(context.Background(), "req-1")
	ctx = requestcontext.WithClientMetadata(ctx, "203.0.113.9", "curl/8")
	ctx = requestcontext.WithAppID(ctx, "app-1")

	t.Run("logs and emits with extracted fields", func(t *testing.T) {
		var buf bytes.Buffer
		logger := slog.New(slog.NewJSONHandler(&buf, nil))
		em := &captureEmitter{}

		LogAudit(ctx, logger, em, audit.EventUserRegistered,
			"user_id", "u-1",
			"admin_id", "a-1",
			"email", "j***@example.com",
		)

		require.Len(t, em.events, 1)
		e := em.events[0]
		assert.Equal(t, "user_registered", e.Action)
		assert.Equal(t, "u-1", e.UserID)
		assert.Equal(t, "a-1", e.AdminID)
		assert.Equal(t, "j***@example.com", e.Subject)
		assert.Equal(t, "req-1", e.RequestID)
		assert.Equal(t, "203.0.113.9", e.ClientIP)
		assert.Equal(t, "app-1", e.AppID)

		var line map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
		assert.Equal(t, "audit", line["log_type"])
		assert.Equal(t, "user_registered", line["event"])
		assert.Equal(t, "req-1", line["request_id"])
	})

	t.Run("emit failure is logged, not returned", func(t *testing.T) {
		var buf bytes.Buffer
		logger := slog.New(slog.NewJSONHandler(&buf, nil))
		em := &captureEmitter{err: errors.New("sink down")}

		LogAudit(ctx, logger, em, audit.EventPasscodeRejected, "reason", "not_found")

		assert.Contains(t, buf.String(), "failed to emit audit event")
	})

	t.Run("nil publisher only logs", func(t *testing.T) {
		var buf bytes.Buffer
		LogAudit(ctx, slog.New(slog.NewJSONHandler(&buf, nil)), nil, audit.EventPasscodeValidated)
		assert.Contains(t, buf.String(), "passcode_validated")
	})
}
