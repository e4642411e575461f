// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/jeranaias/shopchat/internal/ratelimit"
)

// UserIDSource supplies the stable user identifier.
type UserIDSource interface {
	GetOrCreateUserID() string
}

// Config holds configuration for a session.
type Config struct {
	// MinSendInterval is the minimum spacing between accepted sends
	// (default: 1 second)
	MinSendInterval time.Duration
}

// DefaultConfig returns the default session configuration.
func DefaultConfig() Config {
	return Config{MinSendInterval: ratelimit.DefaultInterval}
}

// =============================================================================
// SESSION
// =============================================================================

// Session is the mutable state of one widget instance: its send limiter, the
// one-time opening flag and the user it talks for.
type Session struct {
	id        string
	startedAt time.Time
	identity  UserIDSource
	limiter   *ratelimit.Limiter
	opened    atomic.Bool

	mu           sync.Mutex
	lastActivity time.Time
	sends        int
}

// New creates a session.
func New(identity UserIDSource, cfg Config) *Session {
	now := time.Now()
	return &Session{
		id:           uuid.NewString(),
		startedAt:    now,
		identity:     identity,
		limiter:      ratelimit.New(cfg.MinSendInterval),
		lastActivity: now,
	}
}

// ID returns the session identifier (distinct from the user identifier).
func (s *Session) ID() string {
	return s.id
}

// StartedAt returns when the session was created.
func (s *Session) StartedAt() time.Time {
	return s.startedAt
}

// UserID returns the stable user identifier.
func (s *Session) UserID() string {
	return s.identity.GetOrCreateUserID()
}

// AllowSend applies the rate limit to a send at now. Accepted sends count as
// activity.
func (s *Session) AllowSend(now time.Time) bool {
	if !s.limiter.TryAcquire(now) {
		return false
	}
	s.mu.Lock()
	s.lastActivity = now
	s.sends++
	s.mu.Unlock()
	return true
}

// MarkOpened records that the panel has been shown. It returns true only for
// the first call; every later call returns false.
func (s *Session) MarkOpened() bool {
	return s.opened.CompareAndSwap(false, true)
}

// Opened reports whether MarkOpened has been called.
func (s *Session) Opened() bool {
	return s.opened.Load()
}

// LastActivity returns the time of the last accepted send.
func (s *Session) LastActivity() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActivity
}

// Sends returns the number of accepted sends.
func (s *Session) Sends() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sends
}
