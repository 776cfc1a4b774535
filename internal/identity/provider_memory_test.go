package identity

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"passgate/pkg/platform/sentinel"
)

type InMemoryProviderSuite struct {
	suite.Suite
	provider *InMemoryProvider
	ctx      context.Context
	now      time.Time
}

func TestInMemoryProviderSuite(t *testing.T) {
	suite.Run(t, new(InMemoryProviderSuite))
}

func (s *InMemoryProviderSuite) SetupTest() {
	s.now = time.Date(2026, 4, 2, 10, 0, 0, 0, time.UTC)
	s.provider = NewInMemory(WithClock(func() time.Time { return s.now }))
	s.ctx = context.Background()
}

func (s *InMemoryProviderSuite) TestCreateAccount() {
	s.Run("creates account with normalized email", func() {
		acct, err := s.provider.CreateAccount(s.ctx, AccountRequest{
			Email:       "  Jane@Example.com ",
			Password:    "secret1",
			DisplayName: "Jane",
		})
		s.Require().NoError(err)
		s.NotEmpty(acct.ID)
		s.Equal("jane@example.com", acct.Email)
		s.Equal("Jane", acct.DisplayName)
		s.Equal(s.now, acct.CreatedAt)
	})

	s.Run("duplicate email conflicts regardless of case", func() {
		_, err := s.provider.CreateAccount(s.ctx, AccountRequest{Email: "JANE@example.com", Password: "another1"})
		s.ErrorIs(err, ErrEmailTaken)
		s.True(errors.Is(err, sentinel.ErrConflict))
	})

	s.Run("short password is rejected", func() {
		_, err := s.provider.CreateAccount(s.ctx, AccountRequest{Email: "bob@example.com", Password: "12345"})
		s.ErrorIs(err, ErrWeakPassword)
		s.True(errors.Is(err, sentinel.ErrInvalid))
	})

	s.Run("malformed email is rejected", func() {
		_, err := s.provider.CreateAccount(s.ctx, AccountRequest{Email: "not-an-email", Password: "secret1"})
		s.ErrorIs(err, ErrInvalidEmail)
	})

	s.Equal(1, s.provider.Count())
}

func (s *InMemoryProviderSuite) TestPasswordIsHashed() {
	_, err := s.provider.CreateAccount(s.ctx, AccountRequest{Email: "amy@example.com", Password: "hunter22"})
	s.Require().NoError(err)

	_, ok := s.provider.Authenticate(s.ctx, "amy@example.com", "hunter22")
	s.True(ok)
	_, ok = s.provider.Authenticate(s.ctx, "amy@example.com", "wrong-pass")
	s.False(ok)

	stored := s.provider.byEmail["amy@example.com"]
	s.NotEqual("hunter22", stored.passwordHash)
}

func (s *InMemoryProviderSuite) TestConcurrentDuplicateCreatesOneAccount() {
	const workers = 8
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.provider.CreateAccount(s.ctx, AccountRequest{Email: "race@example.com", Password: "secret1"})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	var created int
	for err := range errs {
		if err == nil {
			created++
			continue
		}
		s.ErrorIs(err, ErrEmailTaken)
	}
	s.Equal(1, created)
}

func (s *InMemoryProviderSuite) TestMinPasswordLengthOption() {
	p := NewInMemory(WithMinPasswordLength(10))
	_, err := p.CreateAccount(s.ctx, AccountRequest{Email: "x@example.com", Password: "123456789"})
	s.ErrorIs(err, ErrWeakPassword)
}
