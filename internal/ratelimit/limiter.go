// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ratelimit enforces a minimum interval between user-initiated sends.
//
// The limiter is a token bucket with a capacity of one token that refills at one
// token per interval. Taking the token is the same as recording "now" as the last
// accepted send; a rejected call takes nothing, so rejections have no effect on
// when the next send becomes possible.
package ratelimit

import (
	"time"

	"golang.org/x/time/rate"
)

// DefaultInterval is the minimum spacing between accepted sends.
const DefaultInterval = 1000 * time.Millisecond

// Limiter gates sends. Safe for concurrent use.
type Limiter struct {
	interval time.Duration
	bucket   *rate.Limiter
}

// New creates a limiter that accepts at most one call per interval. A
// non-positive interval falls back to DefaultInterval.
func New(interval time.Duration) *Limiter {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Limiter{
		interval: interval,
		bucket:   rate.NewLimiter(rate.Every(interval), 1),
	}
}

// TryAcquire reports whether a send at now is allowed. The first call always
// succeeds; afterwards a call succeeds only if at least Interval has elapsed
// since the last successful one.
func (l *Limiter) TryAcquire(now time.Time) bool {
	return l.bucket.AllowN(now, 1)
}

// Interval returns the configured minimum spacing.
func (l *Limiter) Interval() time.Duration {
	return l.interval
}
