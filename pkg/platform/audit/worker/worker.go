package worker

import (
	"context"
	"log/slog"
	"time"

	audit "passgate/pkg/platform/audit"
)

// Outbox is the read side of the Postgres audit outbox.
type Outbox interface {
	FetchUnpublished(ctx context.Context, limit int) ([]audit.Event, error)
	MarkPublished(ctx context.Context, ids []string) error
}

// Relay moves outbox rows to a downstream sink (Kafka in production). Rows
// are marked published only after the sink accepted them, so delivery is
// at-least-once.
type Relay struct {
	outbox   Outbox
	sink     audit.Store
	logger   *slog.Logger
	interval time.Duration
	batch    int
}

func NewRelay(outbox Outbox, sink audit.Store, logger *slog.Logger, interval time.Duration, batch int) *Relay {
	if interval <= 0 {
		interval = time.Second
	}
	if batch <= 0 {
		batch = 100
	}
	return &Relay{outbox: outbox, sink: sink, logger: logger, interval: interval, batch: batch}
}

// Run polls until ctx is cancelled.
func (r *Relay) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if _, err := r.RelayOnce(ctx); err != nil {
				r.logger.ErrorContext(ctx, "audit outbox relay failed", "error", err)
			}
		}
	}
}

// RelayOnce forwards one batch and returns how many events were published.
func (r *Relay) RelayOnce(ctx context.Context) (int, error) {
	events, err := r.outbox.FetchUnpublished(ctx, r.batch)
	if err != nil {
		return 0, err
	}

	published := make([]string, 0, len(events))
	var sinkErr error
	for _, event := range events {
		if sinkErr = r.sink.Append(ctx, event); sinkErr != nil {
			break
		}
		published = append(published, event.ID)
	}

	if err := r.outbox.MarkPublished(ctx, published); err != nil {
		return 0, err
	}
	return len(published), sinkErr
}
