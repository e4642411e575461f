// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import "time"

// =============================================================================
// ROLE TYPE
// =============================================================================

// Role represents the sender of a turn.
type Role string

const (
	RoleUser Role = "user"
	RoleBot  Role = "bot"
)

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// DisplayName returns a human-readable name for the role.
func (r Role) DisplayName() string {
	switch r {
	case RoleUser:
		return "You"
	case RoleBot:
		return "Assistant"
	default:
		return string(r)
	}
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleBot
}

// =============================================================================
// TURN TYPE
// =============================================================================

// Turn is one message in the conversation log.
//
// Content is markup (a small HTML subset). Every piece of externally supplied
// text inside it has already been escaped by whoever built the turn, so render
// layers may interpret it without further sanitizing.
type Turn struct {
	Content   string
	Role      Role
	Timestamp time.Time
}

// NewTurn creates a turn stamped with the current time.
func NewTurn(role Role, content string) Turn {
	return NewTurnAt(role, content, time.Now())
}

// NewTurnAt creates a turn with an explicit timestamp. Used when replaying
// stored history.
func NewTurnAt(role Role, content string, ts time.Time) Turn {
	return Turn{
		Content:   content,
		Role:      role,
		Timestamp: ts,
	}
}

// IsUser reports whether the turn was typed (or chosen) by the user.
func (t Turn) IsUser() bool {
	return t.Role == RoleUser
}
