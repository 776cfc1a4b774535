// Package orphan records identity accounts left without a profile after a
// partial registration failure.
package orphan

import (
	"context"
	"slices"
	"sync"

	"passgate/internal/registration/models"
)

type InMemoryOrphanStore struct {
	mu      sync.Mutex
	orphans map[string]models.OrphanedAccount
}

func NewInMemory() *InMemoryOrphanStore {
	return &InMemoryOrphanStore{orphans: make(map[string]models.OrphanedAccount)}
}

// Record stores o, replacing any earlier record for the same user.
func (s *InMemoryOrphanStore) Record(_ context.Context, o models.OrphanedAccount) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orphans[o.UserID] = o
	return nil
}

// ListUnresolved returns at most limit unresolved orphans, oldest first.
func (s *InMemoryOrphanStore) ListUnresolved(_ context.Context, limit int) ([]models.OrphanedAccount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.OrphanedAccount, 0, len(s.orphans))
	for _, o := range s.orphans {
		if o.ResolvedAt == nil {
			out = append(out, o)
		}
	}
	slices.SortFunc(out, func(a, b models.OrphanedAccount) int {
		return a.DetectedAt.Compare(b.DetectedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
