//go:build integration

package admin

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"passgate/internal/registration/models"
	"passgate/pkg/platform/sentinel"
	"passgate/pkg/testutil/containers"
)

type PostgresAdminStoreSuite struct {
	suite.Suite
	pg    *containers.PostgresContainer
	store *PostgresAdminStore
	ctx   context.Context
}

func TestPostgresAdminStoreSuite(t *testing.T) {
	suite.Run(t, new(PostgresAdminStoreSuite))
}

func (s *PostgresAdminStoreSuite) SetupSuite() {
	s.pg = containers.NewPostgresContainer(s.T())
	s.store = NewPostgres(s.pg.Pool)
	s.ctx = context.Background()
}

func (s *PostgresAdminStoreSuite) SetupTest() {
	s.pg.Truncate(s.T(), "admins")
}

func (s *PostgresAdminStoreSuite) save(id, name, passcode string, created time.Time) *models.AdminRecord {
	a, err := models.NewAdminRecord(id, name, passcode, created)
	s.Require().NoError(err)
	s.Require().NoError(s.store.Save(s.ctx, a))
	return a
}

func (s *PostgresAdminStoreSuite) TestFindActiveByPasscode() {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s.save("admin-new", "Newer", "team42", base.Add(time.Hour))
	s.save("admin-old", "Older", "TEAM42", base)

	found, err := s.store.FindActiveByPasscode(s.ctx, "TEAM42")
	s.Require().NoError(err)
	s.Equal("admin-old", found.ID)
	s.Equal("Older", found.Name)

	_, err = s.store.FindActiveByPasscode(s.ctx, "NOPE")
	s.True(errors.Is(err, sentinel.ErrNotFound))
}

func (s *PostgresAdminStoreSuite) TestInactiveAdminIsIgnored() {
	a := s.save("admin-1", "", "abc", time.Now().UTC())
	a.Active = false
	s.Require().NoError(s.store.Save(s.ctx, a))

	_, err := s.store.FindActiveByPasscode(s.ctx, "ABC")
	s.True(errors.Is(err, sentinel.ErrNotFound))

	active, err := s.store.ListActive(s.ctx)
	s.Require().NoError(err)
	s.Empty(active)
}
