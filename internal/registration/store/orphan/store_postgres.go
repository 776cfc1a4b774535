package orphan

import (
	"context"
	"fmt"

	"passgate/internal/platform/postgres"
	"passgate/internal/registration/models"
)

type PostgresOrphanStore struct {
	db postgres.DB
}

func NewPostgres(db postgres.DB) *PostgresOrphanStore {
	return &PostgresOrphanStore{db: db}
}

func (s *PostgresOrphanStore) Record(ctx context.Context, o models.OrphanedAccount) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO registration_orphans (user_id, email, admin_id, request_id, reason, detected_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id) DO UPDATE SET
			reason = EXCLUDED.reason,
			detected_at = EXCLUDED.detected_at,
			resolved_at = NULL`,
		o.UserID, o.Email, o.AdminID, o.RequestID, o.Reason, o.DetectedAt,
	)
	if err != nil {
		return fmt.Errorf("record orphaned account: %w", err)
	}
	return nil
}

func (s *PostgresOrphanStore) ListUnresolved(ctx context.Context, limit int) ([]models.OrphanedAccount, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.Query(ctx, `
		SELECT user_id, email, admin_id, request_id, reason, detected_at, resolved_at
		FROM registration_orphans
		WHERE resolved_at IS NULL
		ORDER BY detected_at
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list orphaned accounts: %w", err)
	}
	defer rows.Close()

	var out []models.OrphanedAccount
	for rows.Next() {
		var o models.OrphanedAccount
		if err := rows.Scan(&o.UserID, &o.Email, &o.AdminID, &o.RequestID, &o.Reason, &o.DetectedAt, &o.ResolvedAt); err != nil {
			return nil, fmt.Errorf("scan orphaned account: %w", err)
		}
		out = append(out, o)
	}
	return out, rows.Err()
}
