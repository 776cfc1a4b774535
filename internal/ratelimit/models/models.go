// Package models holds rate limiting value types shared by stores and middleware.
package models

import (
	"strings"
	"time"
)

// RateLimitResult is the outcome of charging one request against a bucket.
type RateLimitResult struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
	// RetryAfter is whole seconds until the bucket admits a request again.
	RetryAfter int
}

// NewRateLimitResult derives Remaining and RetryAfter from count, the number
// of requests already charged in the current window including this one.
func NewRateLimitResult(count, limit int, resetAt, now time.Time) *RateLimitResult {
	r := &RateLimitResult{
		Allowed: count <= limit,
		Limit:   limit,
		ResetAt: resetAt,
	}
	if r.Allowed {
		r.Remaining = limit - count
		return r
	}
	r.RetryAfter = int(resetAt.Sub(now).Round(time.Second) / time.Second)
	if r.RetryAfter < 1 {
		r.RetryAfter = 1
	}
	return r
}

// SanitizeKeySegment replaces ':' so a caller-controlled value cannot
// address a neighbouring bucket.
func SanitizeKeySegment(s string) string {
	return strings.ReplaceAll(s, ":", "_")
}

// IPKey is the bucket key for a client IP on a route.
func IPKey(route, ip string) string {
	return "rl:ip:" + SanitizeKeySegment(route) + ":" + SanitizeKeySegment(ip)
}
