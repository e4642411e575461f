// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/jeranaias/shopchat/internal/model"
)

const (
	// HistoryKey is the key holding the serialized conversation log.
	HistoryKey = "chatbot_history"

	// DefaultHistoryCapacity is the maximum number of stored turns.
	DefaultHistoryCapacity = 50
)

// historyEntry is the persisted shape of one turn. Timestamp is milliseconds
// since the Unix epoch.
type historyEntry struct {
	Message   string `json:"message"`
	Type      string `json:"type"`
	Timestamp int64  `json:"timestamp"`
}

// History is the bounded conversation log.
type History struct {
	mu       sync.Mutex
	kv       KV
	capacity int
	logger   zerolog.Logger
}

// HistoryOption configures a History.
type HistoryOption func(*History)

// WithHistoryCapacity overrides the number of turns kept. Values below 1 are
// ignored.
func WithHistoryCapacity(n int) HistoryOption {
	return func(h *History) {
		if n > 0 {
			h.capacity = n
		}
	}
}

// WithHistoryLogger sets the logger used for swallowed persistence errors.
func WithHistoryLogger(l zerolog.Logger) HistoryOption {
	return func(h *History) {
		h.logger = l.With().Str("component", "history").Logger()
	}
}

// NewHistory creates a history backed by kv.
func NewHistory(kv KV, opts ...HistoryOption) *History {
	h := &History{
		kv:       kv,
		capacity: DefaultHistoryCapacity,
		logger:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Capacity returns the maximum number of stored turns.
func (h *History) Capacity() int {
	return h.capacity
}

// Append stores turn at the end of the log, evicting the oldest entries beyond
// capacity. Failures are logged and otherwise ignored.
func (h *History) Append(turn model.Turn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	entries, err := h.read()
	if err != nil {
		h.logger.Warn().Err(err).Msg("failed to save message history")
		return
	}

	entries = append(entries, historyEntry{
		Message:   turn.Content,
		Type:      turn.Role.String(),
		Timestamp: turn.Timestamp.UnixMilli(),
	})
	if excess := len(entries) - h.capacity; excess > 0 {
		entries = entries[excess:]
	}

	if err := h.write(entries); err != nil {
		h.logger.Warn().Err(err).Msg("failed to save message history")
	}
}

// LoadAll returns the stored turns, oldest first. Entries with an unknown role
// are skipped. Returns nil when nothing can be read.
func (h *History) LoadAll() []model.Turn {
	h.mu.Lock()
	defer h.mu.Unlock()

	entries, err := h.read()
	if err != nil {
		h.logger.Warn().Err(err).Msg("failed to load message history")
		return nil
	}

	turns := make([]model.Turn, 0, len(entries))
	for _, e := range entries {
		role := model.Role(e.Type)
		if !role.Valid() {
			h.logger.Debug().Str("type", e.Type).Msg("skipping history entry with unknown type")
			continue
		}
		turns = append(turns, model.NewTurnAt(role, e.Message, time.UnixMilli(e.Timestamp)))
	}
	return turns
}

// Clear removes the whole log.
func (h *History) Clear() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.kv.Delete(HistoryKey)
}

func (h *History) read() ([]historyEntry, error) {
	raw, ok, err := h.kv.Get(HistoryKey)
	if err != nil {
		return nil, err
	}
	if !ok || raw == "" {
		return nil, nil
	}

	var entries []historyEntry
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (h *History) write(entries []historyEntry) error {
	raw, err := json.Marshal(entries)
	if err != nil {
		return err
	}
	return h.kv.Set(HistoryKey, string(raw))
}
