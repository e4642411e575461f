// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ratelimit

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var epoch = time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)

func TestLimiter_FirstCallAllowed(t *testing.T) {
	l := New(time.Second)
	assert.True(t, l.TryAcquire(epoch))
}

func TestLimiter_RejectsWithinWindow(t *testing.T) {
	l := New(time.Second)

	assert.True(t, l.TryAcquire(epoch))
	assert.False(t, l.TryAcquire(epoch))
	assert.False(t, l.TryAcquire(epoch.Add(500*time.Millisecond)))
	assert.False(t, l.TryAcquire(epoch.Add(999*time.Millisecond)))
}

func TestLimiter_AllowsAtBoundary(t *testing.T) {
	l := New(time.Second)

	assert.True(t, l.TryAcquire(epoch))
	assert.True(t, l.TryAcquire(epoch.Add(time.Second)))
}

func TestLimiter_RejectionHasNoSideEffect(t *testing.T) {
	l := New(time.Second)

	assert.True(t, l.TryAcquire(epoch))
	// Hammering inside the window must not push the next allowed time out.
	for i := 1; i < 10; i++ {
		assert.False(t, l.TryAcquire(epoch.Add(time.Duration(i)*90*time.Millisecond)))
	}
	assert.True(t, l.TryAcquire(epoch.Add(time.Second)))
	assert.False(t, l.TryAcquire(epoch.Add(1500*time.Millisecond)))
	assert.True(t, l.TryAcquire(epoch.Add(2*time.Second)))
}

func TestLimiter_NoBurstAfterIdle(t *testing.T) {
	l := New(time.Second)

	assert.True(t, l.TryAcquire(epoch))
	later := epoch.Add(time.Hour)
	assert.True(t, l.TryAcquire(later))
	assert.False(t, l.TryAcquire(later.Add(10*time.Millisecond)))
}

func TestLimiter_DefaultInterval(t *testing.T) {
	assert.Equal(t, DefaultInterval, New(0).Interval())
	assert.Equal(t, DefaultInterval, New(-time.Second).Interval())
	assert.Equal(t, 2*time.Second, New(2*time.Second).Interval())
}

func TestLimiter_ConcurrentSingleWinner(t *testing.T) {
	l := New(time.Second)

	var wg sync.WaitGroup
	var accepted atomic.Int32
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if l.TryAcquire(epoch) {
				accepted.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), accepted.Load())
}
