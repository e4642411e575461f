// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package telemetry

import (
	"bytes"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalytics_TrackAndSnapshot(t *testing.T) {
	ts := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	a := NewAnalytics(10).WithClock(func() time.Time { return ts })

	a.Track(EventMessageAdded, map[string]any{"type": "user"})
	a.Track(EventAPISuccess, map[string]any{"message": "hi", "attempt": 1})

	events := a.Events()
	require.Len(t, events, 2)
	assert.Equal(t, EventMessageAdded, events[0].Name)
	assert.Equal(t, "user", events[0].Data["type"])
	assert.Equal(t, ts, events[0].Timestamp)
	assert.Equal(t, EventAPISuccess, events[1].Name)

	// The snapshot is a copy.
	events[0].Name = "mutated"
	assert.Equal(t, EventMessageAdded, a.Events()[0].Name)
}

func TestAnalytics_DropsOldest(t *testing.T) {
	a := NewAnalytics(3)
	for i := 0; i < 7; i++ {
		a.Track(fmt.Sprintf("e%d", i), nil)
	}

	events := a.Events()
	require.Len(t, events, 3)
	assert.Equal(t, "e4", events[0].Name)
	assert.Equal(t, "e5", events[1].Name)
	assert.Equal(t, "e6", events[2].Name)
	assert.Equal(t, 3, a.Len())
}

func TestAnalytics_DefaultCapacity(t *testing.T) {
	a := NewAnalytics(0)
	assert.Equal(t, DefaultCapacity, a.Capacity())

	for i := 0; i < DefaultCapacity+5; i++ {
		a.Track(EventAPIError, nil)
	}
	assert.Equal(t, DefaultCapacity, a.Len())
}

func TestAnalytics_Counts(t *testing.T) {
	a := NewAnalytics(10)
	a.Track(EventMessageAdded, nil)
	a.Track(EventMessageAdded, nil)
	a.Track(EventAPIError, nil)

	assert.Equal(t, map[string]int{EventMessageAdded: 2, EventAPIError: 1}, a.Counts())
}

func TestAnalytics_LogsEvents(t *testing.T) {
	var buf bytes.Buffer
	a := NewAnalytics(5).WithLogger(zerolog.New(&buf).Level(zerolog.DebugLevel))

	a.Track(EventAPIError, map[string]any{"attempt": 2})

	out := buf.String()
	assert.Contains(t, out, `"event":"api_error"`)
	assert.Contains(t, out, `"attempt":2`)
	assert.Contains(t, out, `"component":"analytics"`)
}

func TestAnalytics_Concurrent(t *testing.T) {
	a := NewAnalytics(50)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				a.Track(EventMessageAdded, nil)
				_ = a.Events()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, a.Len())
}
