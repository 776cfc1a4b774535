package profile

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"passgate/internal/registration/models"
	"passgate/pkg/platform/sentinel"
)

// InMemoryProfileStore keeps user profiles keyed by user id.
type InMemoryProfileStore struct {
	mu    sync.RWMutex
	users map[string]*models.User
}

func NewInMemory() *InMemoryProfileStore {
	return &InMemoryProfileStore{users: make(map[string]*models.User)}
}

func clone(u *models.User) *models.User {
	cp := *u
	cp.PlanIDs = slices.Clone(u.PlanIDs)
	if cp.PlanIDs == nil {
		cp.PlanIDs = []string{}
	}
	return &cp
}

// Create writes a new profile. A profile with the same id is a conflict.
func (s *InMemoryProfileStore) Create(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.users[user.ID]; exists {
		return fmt.Errorf("user %s: %w", user.ID, sentinel.ErrConflict)
	}
	s.users[user.ID] = clone(user)
	return nil
}

func (s *InMemoryProfileStore) FindByID(_ context.Context, id string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", id, sentinel.ErrNotFound)
	}
	return clone(u), nil
}

// Count returns the number of stored profiles.
func (s *InMemoryProfileStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.users), nil
}
