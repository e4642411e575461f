// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package netstatus

import (
	"context"
	"net"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// DefaultProbeInterval is the spacing between reachability probes.
const DefaultProbeInterval = 15 * time.Second

// DialFunc opens a connection. net.Dialer.DialContext satisfies it.
type DialFunc func(ctx context.Context, network, address string) (net.Conn, error)

// Monitor probes the backend with a TCP dial and reports transitions between
// reachable and unreachable. The first probe only establishes the baseline.
type Monitor struct {
	addr     string
	interval time.Duration
	timeout  time.Duration
	dial     DialFunc
	onChange func(online bool)
	logger   zerolog.Logger

	mu     sync.Mutex
	known  bool
	online bool
}

// NewMonitor creates a monitor for the endpoint at rawURL. onChange is called
// on every transition after the baseline.
func NewMonitor(rawURL string, onChange func(online bool)) (*Monitor, error) {
	addr, err := ProbeAddress(rawURL)
	if err != nil {
		return nil, err
	}
	d := &net.Dialer{}
	return &Monitor{
		addr:     addr,
		interval: DefaultProbeInterval,
		timeout:  5 * time.Second,
		dial:     d.DialContext,
		onChange: onChange,
		logger:   zerolog.Nop(),
	}, nil
}

// WithInterval sets the probe spacing.
func (m *Monitor) WithInterval(d time.Duration) *Monitor {
	if d > 0 {
		m.interval = d
	}
	return m
}

// WithDialer replaces the dial function.
func (m *Monitor) WithDialer(dial DialFunc) *Monitor {
	if dial != nil {
		m.dial = dial
	}
	return m
}

// WithLogger sets the logger.
func (m *Monitor) WithLogger(l zerolog.Logger) *Monitor {
	m.logger = l.With().Str("component", "netstatus").Str("addr", m.addr).Logger()
	return m
}

// Address returns the probed host:port.
func (m *Monitor) Address() string {
	return m.addr
}

// Online returns the last probe result and whether any probe has run.
func (m *Monitor) Online() (online, known bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.online, m.known
}

// Run probes immediately and then every interval until ctx is done.
func (m *Monitor) Run(ctx context.Context) {
	m.Check(ctx)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Check(ctx)
		}
	}
}

// Check runs one probe. It reports whether the state changed; the baseline
// probe never counts as a change.
func (m *Monitor) Check(ctx context.Context) bool {
	online := m.probe(ctx)
	if ctx.Err() != nil {
		return false
	}

	m.mu.Lock()
	baseline := !m.known
	changed := !baseline && online != m.online
	m.known = true
	m.online = online
	m.mu.Unlock()

	if baseline {
		m.logger.Debug().Bool("online", online).Msg("connectivity baseline")
		return false
	}
	if changed {
		m.logger.Info().Bool("online", online).Msg("connectivity changed")
		if m.onChange != nil {
			m.onChange(online)
		}
	}
	return changed
}

func (m *Monitor) probe(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	conn, err := m.dial(ctx, "tcp", m.addr)
	if err != nil {
		m.logger.Debug().Err(err).Msg("probe failed")
		return false
	}
	conn.Close()
	return true
}
