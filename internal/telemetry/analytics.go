// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package telemetry

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// DefaultCapacity is the number of events retained.
const DefaultCapacity = 1000

// Event names emitted by the widget.
const (
	EventMessageAdded = "message_added"
	EventAPISuccess   = "api_success"
	EventAPIError     = "api_error"
)

// Event is one analytics record.
type Event struct {
	Name      string         `json:"event"`
	Data      map[string]any `json:"data,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// Analytics is a bounded, append-only event buffer. When full, the oldest
// event is dropped. Nothing reads it except diagnostics.
type Analytics struct {
	mu     sync.Mutex
	events []Event
	start  int
	count  int
	logger zerolog.Logger
	now    func() time.Time
}

// NewAnalytics creates a buffer holding up to capacity events. A non-positive
// capacity selects DefaultCapacity.
func NewAnalytics(capacity int) *Analytics {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Analytics{
		events: make([]Event, capacity),
		logger: zerolog.Nop(),
		now:    time.Now,
	}
}

// WithLogger logs every tracked event at debug level.
func (a *Analytics) WithLogger(l zerolog.Logger) *Analytics {
	a.logger = l.With().Str("component", "analytics").Logger()
	return a
}

// WithClock replaces the event clock.
func (a *Analytics) WithClock(now func() time.Time) *Analytics {
	if now != nil {
		a.now = now
	}
	return a
}

// Track records an event.
func (a *Analytics) Track(name string, data map[string]any) {
	ev := Event{Name: name, Data: data, Timestamp: a.now()}

	a.mu.Lock()
	capacity := len(a.events)
	if a.count < capacity {
		a.events[(a.start+a.count)%capacity] = ev
		a.count++
	} else {
		a.events[a.start] = ev
		a.start = (a.start + 1) % capacity
	}
	a.mu.Unlock()

	a.logger.Debug().Str("event", name).Fields(data).Msg("analytics")
}

// Events returns a copy of the retained events, oldest first.
func (a *Analytics) Events() []Event {
	a.mu.Lock()
	defer a.mu.Unlock()

	out := make([]Event, a.count)
	for i := 0; i < a.count; i++ {
		out[i] = a.events[(a.start+i)%len(a.events)]
	}
	return out
}

// Len returns the number of retained events.
func (a *Analytics) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.count
}

// Capacity returns the maximum number of retained events.
func (a *Analytics) Capacity() int {
	return len(a.events)
}

// Counts tallies retained events by name.
func (a *Analytics) Counts() map[string]int {
	counts := make(map[string]int)
	for _, ev := range a.Events() {
		counts[ev.Name]++
	}
	return counts
}
