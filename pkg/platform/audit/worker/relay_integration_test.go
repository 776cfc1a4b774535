//go:build integration

package worker

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"

	audit "passgate/pkg/platform/audit"
	auditkafka "passgate/pkg/platform/audit/store/kafka"
	auditpostgres "passgate/pkg/platform/audit/store/postgres"
	"passgate/pkg/testutil/containers"
)

func TestRelayMovesOutboxToKafka(t *testing.T) {
	ctx := context.Background()
	pg := containers.NewPostgresContainer(t)
	broker := containers.NewRedpandaContainer(t)
	const topic = "passgate.audit.it"

	producer, err := kgo.NewClient(kgo.SeedBrokers(broker), kgo.AllowAutoTopicCreation())
	require.NoError(t, err)
	t.Cleanup(producer.Close)

	outbox := auditpostgres.New(pg.Pool)
	for _, action := range []audit.AuditEvent{audit.EventPasscodeValidated, audit.EventUserRegistered} {
		require.NoError(t, outbox.Append(ctx, audit.Event{
			ID:        uuid.NewString(),
			Timestamp: time.Now().UTC(),
			Action:    string(action),
			Category:  action.Category(),
			RequestID: "req-it",
		}))
	}

	relay := NewRelay(outbox, auditkafka.New(producer, topic), slog.New(slog.NewTextHandler(io.Discard, nil)), time.Second, 10)
	n, err := relay.RelayOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	pending, err := outbox.FetchUnpublished(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, pending)

	consumer, err := kgo.NewClient(
		kgo.SeedBrokers(broker),
		kgo.ConsumeTopics(topic),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
	require.NoError(t, err)
	t.Cleanup(consumer.Close)

	pollCtx, cancel := context.WithTimeout(ctx, 20*time.Second)
	defer cancel()
	var actions []string
	for len(actions) < 2 && pollCtx.Err() == nil {
		fetches := consumer.PollFetches(pollCtx)
		fetches.EachRecord(func(r *kgo.Record) {
			assert.Equal(t, "req-it", string(r.Key))
			var payload audit.Payload
			require.NoError(t, json.Unmarshal(r.Value, &payload))
			actions = append(actions, payload.Event().Action)
		})
	}
	assert.ElementsMatch(t, []string{string(audit.EventPasscodeValidated), string(audit.EventUserRegistered)}, actions)
}
