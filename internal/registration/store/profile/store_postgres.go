package profile

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"passgate/internal/platform/postgres"
	"passgate/internal/registration/models"
	"passgate/pkg/platform/sentinel"
)

// PostgresProfileStore persists profiles in the users table.
type PostgresProfileStore struct {
	db postgres.DB
}

func NewPostgres(db postgres.DB) *PostgresProfileStore {
	return &PostgresProfileStore{db: db}
}

const userColumns = `id, name, contact, contact_type, notes, plan_ids, admin_id, status,
	first_login_time, last_login_time, registration_date`

func scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	var status string
	err := row.Scan(&u.ID, &u.Name, &u.Contact, &u.ContactType, &u.Notes, &u.PlanIDs, &u.AdminID, &status,
		&u.FirstLoginTime, &u.LastLoginTime, &u.RegistrationDate)
	if err != nil {
		return nil, err
	}
	u.Status = models.UserStatus(status)
	if u.PlanIDs == nil {
		u.PlanIDs = []string{}
	}
	return &u, nil
}

// Create inserts a profile keyed by the account id.
func (s *PostgresProfileStore) Create(ctx context.Context, user *models.User) error {
	planIDs := user.PlanIDs
	if planIDs == nil {
		planIDs = []string{}
	}
	_, err := s.db.Exec(ctx, `
		INSERT INTO users (`+userColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		user.ID, user.Name, user.Contact, user.ContactType, user.Notes, planIDs, user.AdminID, string(user.Status),
		user.FirstLoginTime, user.LastLoginTime, user.RegistrationDate,
	)
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return fmt.Errorf("user %s: %w", user.ID, sentinel.ErrConflict)
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (s *PostgresProfileStore) FindByID(ctx context.Context, id string) (*models.User, error) {
	u, err := scanUser(s.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("user %s: %w", id, sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return u, nil
}
