// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// UserIDKey is the key holding the user identifier.
const UserIDKey = "chat_user_id"

// Identity hands out the stable per-profile user identifier.
type Identity struct {
	mu     sync.Mutex
	kv     KV
	cached string
	logger zerolog.Logger
}

// NewIdentity creates an identity source backed by kv.
func NewIdentity(kv KV, logger ...zerolog.Logger) *Identity {
	id := &Identity{kv: kv, logger: zerolog.Nop()}
	if len(logger) > 0 {
		id.logger = logger[0].With().Str("component", "identity").Logger()
	}
	return id
}

// GetOrCreateUserID returns the stored identifier, generating and persisting a
// random UUID the first time. Once returned, the same value is returned for the
// life of the Identity even if it could not be persisted.
func (i *Identity) GetOrCreateUserID() string {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.cached != "" {
		return i.cached
	}

	stored, ok, err := i.kv.Get(UserIDKey)
	if err != nil {
		i.logger.Warn().Err(err).Msg("failed to read user id")
	}
	if ok && strings.TrimSpace(stored) != "" {
		i.cached = stored
		return i.cached
	}

	id := uuid.NewString()
	if err := i.kv.Set(UserIDKey, id); err != nil {
		i.logger.Warn().Err(err).Msg("failed to persist user id")
	}
	i.cached = id
	return id
}
