package identity

import (
	"context"
	"fmt"

	"passgate/internal/platform/postgres"
)

// PostgresProvider stores accounts in the accounts table. Email uniqueness is
// enforced by the accounts_email_key index.
type PostgresProvider struct {
	db     postgres.DB
	policy policy
}

func NewPostgres(db postgres.DB, opts ...Option) *PostgresProvider {
	return &PostgresProvider{db: db, policy: newPolicy(opts)}
}

func (p *PostgresProvider) CreateAccount(ctx context.Context, req AccountRequest) (*Account, error) {
	acct, err := p.policy.build(req)
	if err != nil {
		return nil, err
	}
	_, err = p.db.Exec(ctx, `
		INSERT INTO accounts (id, email, password_hash, display_name, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		acct.ID, acct.Email, acct.passwordHash, acct.DisplayName, acct.CreatedAt,
	)
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("insert account: %w", err)
	}
	out := acct.Account
	return &out, nil
}
