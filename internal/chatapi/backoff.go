// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chatapi

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// linearBackOff waits step, 2*step, 3*step, ... between attempts.
type linearBackOff struct {
	step    time.Duration
	retries int
}

var _ backoff.BackOff = (*linearBackOff)(nil)

func (b *linearBackOff) NextBackOff() time.Duration {
	b.retries++
	return b.step * time.Duration(b.retries)
}

func (b *linearBackOff) Reset() {
	b.retries = 0
}

// retryPolicy allows maxAttempts attempts in total and stops early when ctx is
// done.
func retryPolicy(ctx context.Context, step time.Duration, maxAttempts int) backoff.BackOffContext {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	limited := backoff.WithMaxRetries(&linearBackOff{step: step}, uint64(maxAttempts-1))
	return backoff.WithContext(limited, ctx)
}
