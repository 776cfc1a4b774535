package admin

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"passgate/internal/registration/models"
	"passgate/pkg/platform/sentinel"
)

// InMemoryAdminStore keeps admin records keyed by id.
type InMemoryAdminStore struct {
	mu     sync.RWMutex
	admins map[string]*models.AdminRecord
}

func NewInMemory() *InMemoryAdminStore {
	return &InMemoryAdminStore{admins: make(map[string]*models.AdminRecord)}
}

// Save inserts or replaces an admin record.
func (s *InMemoryAdminStore) Save(_ context.Context, admin *models.AdminRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *admin
	s.admins[admin.ID] = &cp
	return nil
}

// FindActiveByPasscode returns the oldest active admin whose stored passcode
// equals normalized.
func (s *InMemoryAdminStore) FindActiveByPasscode(_ context.Context, normalized string) (*models.AdminRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var match *models.AdminRecord
	for _, a := range s.admins {
		if !a.Active || a.RegistrationPasscode != normalized {
			continue
		}
		if match == nil || older(a, match) {
			match = a
		}
	}
	if match == nil {
		return nil, fmt.Errorf("admin with passcode: %w", sentinel.ErrNotFound)
	}
	cp := *match
	return &cp, nil
}

// ListActive returns all active admins, oldest first.
func (s *InMemoryAdminStore) ListActive(_ context.Context) ([]*models.AdminRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.AdminRecord, 0, len(s.admins))
	for _, a := range s.admins {
		if a.Active {
			cp := *a
			out = append(out, &cp)
		}
	}
	slices.SortFunc(out, func(a, b *models.AdminRecord) int {
		if older(a, b) {
			return -1
		}
		if older(b, a) {
			return 1
		}
		return 0
	})
	return out, nil
}

func older(a, b *models.AdminRecord) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return a.ID < b.ID
}
