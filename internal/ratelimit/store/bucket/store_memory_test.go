package bucket

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

const (
	testLimit  = 3
	testWindow = time.Minute
)

type InMemoryBucketStoreSuite struct {
	suite.Suite
	store *InMemoryBucketStore
	ctx   context.Context
	now   time.Time
}

func TestInMemoryBucketStoreSuite(t *testing.T) {
	suite.Run(t, new(InMemoryBucketStoreSuite))
}

func (s *InMemoryBucketStoreSuite) SetupTest() {
	s.now = time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)
	s.store = NewInMemory().WithClock(func() time.Time { return s.now })
	s.ctx = context.Background()
}

func (s *InMemoryBucketStoreSuite) TestAllow() {
	s.Run("requests up to the limit are allowed", func() {
		for i := range testLimit {
			res, err := s.store.Allow(s.ctx, "k1", testLimit, testWindow)
			s.Require().NoError(err)
			s.True(res.Allowed)
			s.Equal(testLimit-i-1, res.Remaining)
		}
	})

	s.Run("request over the limit is denied with retry hint", func() {
		res, err := s.store.Allow(s.ctx, "k1", testLimit, testWindow)
		s.Require().NoError(err)
		s.False(res.Allowed)
		s.Equal(60, res.RetryAfter)
	})

	s.Run("keys are independent", func() {
		res, err := s.store.Allow(s.ctx, "k2", testLimit, testWindow)
		s.Require().NoError(err)
		s.True(res.Allowed)
	})
}

func (s *InMemoryBucketStoreSuite) TestWindowSlides() {
	for range testLimit {
		_, err := s.store.Allow(s.ctx, "slide", testLimit, testWindow)
		s.Require().NoError(err)
	}
	s.now = s.now.Add(testWindow + time.Second)

	res, err := s.store.Allow(s.ctx, "slide", testLimit, testWindow)
	s.Require().NoError(err)
	s.True(res.Allowed)
	s.Equal(testLimit-1, res.Remaining)
}

func (s *InMemoryBucketStoreSuite) TestReset() {
	for range testLimit + 1 {
		_, _ = s.store.Allow(s.ctx, "reset", testLimit, testWindow)
	}
	s.Require().NoError(s.store.Reset(s.ctx, "reset"))

	res, err := s.store.Allow(s.ctx, "reset", testLimit, testWindow)
	s.Require().NoError(err)
	s.True(res.Allowed)
}

func (s *InMemoryBucketStoreSuite) TestConcurrentAllowNeverExceedsLimit() {
	const workers = 20
	var wg sync.WaitGroup
	var mu sync.Mutex
	allowed := 0
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := s.store.Allow(s.ctx, "concurrent", testLimit, testWindow)
			if err == nil && res.Allowed {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	s.Equal(testLimit, allowed)
}
