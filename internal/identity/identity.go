// Package identity creates login accounts for self-registered users.
package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"passgate/pkg/email"
	"passgate/pkg/platform/sentinel"
)

// DefaultMinPasswordLength matches the upstream identity provider's policy.
const DefaultMinPasswordLength = 6

var (
	ErrWeakPassword = fmt.Errorf("password too short: %w", sentinel.ErrInvalid)
	ErrInvalidEmail = fmt.Errorf("malformed email: %w", sentinel.ErrInvalid)
	ErrEmailTaken   = fmt.Errorf("email already registered: %w", sentinel.ErrConflict)
)

// Provider creates accounts. Implementations enforce email uniqueness.
type Provider interface {
	CreateAccount(ctx context.Context, req AccountRequest) (*Account, error)
}

type AccountRequest struct {
	Email       string
	Password    string
	DisplayName string
}

// Account is the created login identity. The password hash never leaves the package.
type Account struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"displayName"`
	CreatedAt   time.Time `json:"createdAt"`
}

type account struct {
	Account
	passwordHash string
}

type policy struct {
	minPasswordLength int
	now               func() time.Time
}

type Option func(*policy)

// WithMinPasswordLength overrides DefaultMinPasswordLength.
func WithMinPasswordLength(n int) Option {
	return func(p *policy) {
		if n > 0 {
			p.minPasswordLength = n
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(p *policy) {
		if now != nil {
			p.now = now
		}
	}
}

func newPolicy(opts []Option) policy {
	p := policy{minPasswordLength: DefaultMinPasswordLength, now: time.Now}
	for _, opt := range opts {
		opt(&p)
	}
	return p
}

// build checks the request against the policy and returns the record to persist.
func (p policy) build(req AccountRequest) (*account, error) {
	addr := email.Normalize(req.Email)
	if !email.IsValid(addr) {
		return nil, ErrInvalidEmail
	}
	if len(req.Password) < p.minPasswordLength {
		return nil, ErrWeakPassword
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return nil, fmt.Errorf("password too long: %w", sentinel.ErrInvalid)
		}
		return nil, fmt.Errorf("hash password: %w", err)
	}
	return &account{
		Account: Account{
			ID:          uuid.NewString(),
			Email:       addr,
			DisplayName: req.DisplayName,
			CreatedAt:   p.now().UTC(),
		},
		passwordHash: string(hashed),
	}, nil
}

// VerifyPassword reports whether password matches hash.
func VerifyPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
