package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewRateLimitResult(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	reset := now.Add(30 * time.Second)

	allowed := NewRateLimitResult(3, 10, reset, now)
	assert.True(t, allowed.Allowed)
	assert.Equal(t, 7, allowed.Remaining)
	assert.Zero(t, allowed.RetryAfter)

	denied := NewRateLimitResult(11, 10, reset, now)
	assert.False(t, denied.Allowed)
	assert.Zero(t, denied.Remaining)
	assert.Equal(t, 30, denied.RetryAfter)

	atReset := NewRateLimitResult(11, 10, now, now)
	assert.Equal(t, 1, atReset.RetryAfter)
}

func TestIPKey(t *testing.T) {
	assert.Equal(t, "rl:ip:/v1/x:10.0.0.1", IPKey("/v1/x", "10.0.0.1"))
	assert.Equal(t, "rl:ip:r:__1", IPKey("r", "::1"))
}
