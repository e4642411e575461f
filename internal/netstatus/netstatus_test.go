// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package netstatus

import (
	"context"
	"errors"
	"net"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// URL VALIDATION TESTS
// =============================================================================

func TestValidateEndpoint(t *testing.T) {
	tests := []struct {
		url     string
		wantErr error
	}{
		{"http://127.0.0.1:5000/chat", nil},
		{"https://shop.example.com/chat", nil},
		{"HTTPS://shop.example.com", nil},
		{"file:///etc/passwd", ErrInvalidURLScheme},
		{"javascript:alert(1)", ErrInvalidURLScheme},
		{"ftp://example.com", ErrInvalidURLScheme},
		{"example.com/chat", ErrInvalidURLScheme},
		{"http://", ErrMissingHost},
		{"http://[::1", ErrInvalidURL},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			err := ValidateEndpoint(tt.url)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestProbeAddress(t *testing.T) {
	tests := []struct {
		url, want string
	}{
		{"http://127.0.0.1:5000/chat", "127.0.0.1:5000"},
		{"http://example.com/chat", "example.com:80"},
		{"https://example.com/chat", "example.com:443"},
		{"https://[::1]:8443/", "[::1]:8443"},
	}
	for _, tt := range tests {
		got, err := ProbeAddress(tt.url)
		require.NoError(t, err, tt.url)
		assert.Equal(t, tt.want, got)
	}

	_, err := ProbeAddress("gopher://x")
	assert.ErrorIs(t, err, ErrInvalidURLScheme)
}

func TestIsLocalhost(t *testing.T) {
	for _, host := range []string{"localhost", "LOCALHOST:5000", "127.0.0.1", "127.1.2.3:80", "::1", "[::1]:8080", "0:0:0:0:0:0:0:1"} {
		assert.True(t, IsLocalhost(host), host)
	}
	for _, host := range []string{"example.com", "10.0.0.1", "localhost.evil.com", ""} {
		assert.False(t, IsLocalhost(host), host)
	}
}

// =============================================================================
// MONITOR TESTS
// =============================================================================

// switchDialer succeeds or fails depending on a flag.
type switchDialer struct {
	up    atomic.Bool
	calls atomic.Int32
}

func (s *switchDialer) Dial(ctx context.Context, network, address string) (net.Conn, error) {
	s.calls.Add(1)
	if !s.up.Load() {
		return nil, errors.New("connection refused")
	}
	client, server := net.Pipe()
	server.Close()
	return client, nil
}

type transitions struct {
	mu  sync.Mutex
	got []bool
}

func (tr *transitions) record(online bool) {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	tr.got = append(tr.got, online)
}

func (tr *transitions) list() []bool {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	return append([]bool(nil), tr.got...)
}

func TestMonitor_BaselineIsSilent(t *testing.T) {
	for _, up := range []bool{true, false} {
		dialer := &switchDialer{}
		dialer.up.Store(up)
		tr := &transitions{}

		m, err := NewMonitor("http://127.0.0.1:5000/chat", tr.record)
		require.NoError(t, err)
		m.WithDialer(dialer.Dial)

		assert.False(t, m.Check(context.Background()))
		online, known := m.Online()
		assert.True(t, known)
		assert.Equal(t, up, online)
		assert.Empty(t, tr.list())
	}
}

func TestMonitor_ReportsTransitions(t *testing.T) {
	dialer := &switchDialer{}
	dialer.up.Store(true)
	tr := &transitions{}

	m, err := NewMonitor("http://shop.local/chat", tr.record)
	require.NoError(t, err)
	m.WithDialer(dialer.Dial)
	assert.Equal(t, "shop.local:80", m.Address())

	ctx := context.Background()
	m.Check(ctx)

	dialer.up.Store(false)
	assert.True(t, m.Check(ctx))
	assert.False(t, m.Check(ctx))

	dialer.up.Store(true)
	assert.True(t, m.Check(ctx))
	assert.False(t, m.Check(ctx))

	assert.Equal(t, []bool{false, true}, tr.list())
}

func TestMonitor_RunStopsOnCancel(t *testing.T) {
	dialer := &switchDialer{}
	dialer.up.Store(true)

	m, err := NewMonitor("http://127.0.0.1:1/", nil)
	require.NoError(t, err)
	m.WithDialer(dialer.Dial).WithInterval(5 * time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		m.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool { return dialer.calls.Load() >= 3 }, time.Second, time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestNewMonitor_InvalidURL(t *testing.T) {
	_, err := NewMonitor("file:///tmp/x", nil)
	assert.ErrorIs(t, err, ErrInvalidURLScheme)
}
