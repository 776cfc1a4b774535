package admin

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"passgate/internal/platform/postgres"
	"passgate/internal/registration/models"
	"passgate/pkg/platform/sentinel"
)

// PostgresAdminStore reads admin records from the admins table.
type PostgresAdminStore struct {
	db postgres.DB
}

func NewPostgres(db postgres.DB) *PostgresAdminStore {
	return &PostgresAdminStore{db: db}
}

const adminColumns = `id, name, registration_passcode, active, created_at`

func scanAdmin(row pgx.Row) (*models.AdminRecord, error) {
	var a models.AdminRecord
	if err := row.Scan(&a.ID, &a.Name, &a.RegistrationPasscode, &a.Active, &a.CreatedAt); err != nil {
		return nil, err
	}
	return &a, nil
}

// FindActiveByPasscode runs the equality query on (registration_passcode, active),
// limited to one row. Duplicates resolve to the oldest record.
func (s *PostgresAdminStore) FindActiveByPasscode(ctx context.Context, normalized string) (*models.AdminRecord, error) {
	row := s.db.QueryRow(ctx, `
		SELECT `+adminColumns+`
		FROM admins
		WHERE registration_passcode = $1 AND active = TRUE
		ORDER BY created_at, id
		LIMIT 1`, normalized)

	a, err := scanAdmin(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("admin with passcode: %w", sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("find admin by passcode: %w", err)
	}
	return a, nil
}

// Save upserts an admin record.
func (s *PostgresAdminStore) Save(ctx context.Context, admin *models.AdminRecord) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO admins (`+adminColumns+`)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			registration_passcode = EXCLUDED.registration_passcode,
			active = EXCLUDED.active`,
		admin.ID, admin.Name, admin.RegistrationPasscode, admin.Active, admin.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("save admin: %w", err)
	}
	return nil
}

// ListActive returns all active admins, oldest first.
func (s *PostgresAdminStore) ListActive(ctx context.Context) ([]*models.AdminRecord, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+adminColumns+`
		FROM admins
		WHERE active = TRUE
		ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list admins: %w", err)
	}
	defer rows.Close()

	var out []*models.AdminRecord
	for rows.Next() {
		a, err := scanAdmin(rows)
		if err != nil {
			return nil, fmt.Errorf("scan admin: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
