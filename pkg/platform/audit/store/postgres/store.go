package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	audit "passgate/pkg/platform/audit"
)

// DB is the subset of *pgxpool.Pool the store uses.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Store implements audit.Store using the transactional outbox pattern.
// Events are written to audit_outbox and relayed to Kafka by worker.Relay.
type Store struct {
	db DB
}

func New(db DB) *Store {
	return &Store{db: db}
}

// Append writes an audit event to the outbox table.
func (s *Store) Append(ctx context.Context, event audit.Event) error {
	payload := audit.NewPayload(event)
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal audit payload: %w", err)
	}

	_, err = s.db.Exec(ctx, `
		INSERT INTO audit_outbox (id, action, category, payload, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		event.ID, event.Action, payload.Category, body, event.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("insert audit outbox: %w", err)
	}
	return nil
}

// FetchUnpublished returns up to limit events not yet relayed, oldest first.
func (s *Store) FetchUnpublished(ctx context.Context, limit int) ([]audit.Event, error) {
	rows, err := s.db.Query(ctx, `
		SELECT payload FROM audit_outbox
		WHERE published_at IS NULL
		ORDER BY created_at, id
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("query audit outbox: %w", err)
	}
	defer rows.Close()

	var events []audit.Event
	for rows.Next() {
		var body []byte
		if err := rows.Scan(&body); err != nil {
			return nil, fmt.Errorf("scan audit outbox: %w", err)
		}
		var payload audit.Payload
		if err := json.Unmarshal(body, &payload); err != nil {
			return nil, fmt.Errorf("decode audit outbox payload: %w", err)
		}
		events = append(events, payload.Event())
	}
	return events, rows.Err()
}

// MarkPublished stamps the given outbox rows as relayed.
func (s *Store) MarkPublished(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := s.db.Exec(ctx, `
		UPDATE audit_outbox SET published_at = now()
		WHERE id = ANY($1::uuid[])`, ids)
	if err != nil {
		return fmt.Errorf("mark audit outbox published: %w", err)
	}
	return nil
}
