// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package exchange

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jeranaias/shopchat/internal/chatapi"
	"github.com/jeranaias/shopchat/internal/model"
	"github.com/jeranaias/shopchat/internal/session"
	"github.com/jeranaias/shopchat/internal/storage"
	"github.com/jeranaias/shopchat/internal/telemetry"
)

// =============================================================================
// FAKE RENDERER
// =============================================================================

// fakeRenderer records every call as a short string, in order.
type fakeRenderer struct {
	mu     sync.Mutex
	calls  []string
	groups []*OptionGroup
	next   PendingHandle
	shown  map[PendingHandle]bool

	// onInput runs after SetInputEnabled is recorded, outside the lock.
	onInput func(enabled bool)
}

func newFakeRenderer() *fakeRenderer {
	return &fakeRenderer{shown: make(map[PendingHandle]bool)}
}

func (r *fakeRenderer) AppendTurn(turn model.Turn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, fmt.Sprintf("turn:%s:%s", turn.Role, turn.Content))
}

func (r *fakeRenderer) AppendOptionChips(group *OptionGroup) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.groups = append(r.groups, group)
	r.calls = append(r.calls, "chips:"+strings.Join(group.Labels, "|"))
}

func (r *fakeRenderer) ShowPendingIndicator(label string) PendingHandle {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.next++
	r.shown[r.next] = true
	r.calls = append(r.calls, "show:"+label)
	return r.next
}

func (r *fakeRenderer) HidePendingIndicator(h PendingHandle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.shown, h)
	r.calls = append(r.calls, "hide")
}

func (r *fakeRenderer) SetInputEnabled(enabled bool) {
	r.mu.Lock()
	r.calls = append(r.calls, fmt.Sprintf("input:%t", enabled))
	hook := r.onInput
	r.mu.Unlock()

	if hook != nil {
		hook(enabled)
	}
}

func (r *fakeRenderer) Calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

func (r *fakeRenderer) Turns() []string {
	var out []string
	for _, c := range r.Calls() {
		if strings.HasPrefix(c, "turn:") {
			out = append(out, c)
		}
	}
	return out
}

func (r *fakeRenderer) Groups() []*OptionGroup {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*OptionGroup(nil), r.groups...)
}

func (r *fakeRenderer) VisibleIndicators() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.shown)
}

// =============================================================================
// FAKE SENDER
// =============================================================================

type fakeSender struct {
	mu      sync.Mutex
	sent    []string
	users   []string
	respond func(message string) (*chatapi.ChatResponse, error)
}

func (s *fakeSender) Send(ctx context.Context, message, userID string) (*chatapi.ChatResponse, error) {
	s.mu.Lock()
	s.sent = append(s.sent, message)
	s.users = append(s.users, userID)
	respond := s.respond
	s.mu.Unlock()

	if respond == nil {
		return &chatapi.ChatResponse{}, nil
	}
	return respond(message)
}

func (s *fakeSender) Sent() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.sent...)
}

func replyWith(t *testing.T, body string) func(string) (*chatapi.ChatResponse, error) {
	resp := mustResponse(t, body)
	return func(string) (*chatapi.ChatResponse, error) { return resp, nil }
}

func mustResponse(t *testing.T, body string) *chatapi.ChatResponse {
	t.Helper()
	var resp chatapi.ChatResponse
	require.NoError(t, json.Unmarshal([]byte(body), &resp))
	return &resp
}

// =============================================================================
// FAKE CLOCK
// =============================================================================

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// =============================================================================
// HARNESS
// =============================================================================

type harness struct {
	ctrl      *Controller
	renderer  *fakeRenderer
	sender    *fakeSender
	clock     *fakeClock
	history   *storage.History
	analytics *telemetry.Analytics
	identity  *storage.Identity
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	kv := storage.NewMemoryKV()
	h := &harness{
		renderer:  newFakeRenderer(),
		sender:    &fakeSender{},
		clock:     &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)},
		history:   storage.NewHistory(kv),
		analytics: telemetry.NewAnalytics(100),
		identity:  storage.NewIdentity(kv),
	}
	sess := session.New(h.identity, session.DefaultConfig())
	h.ctrl = NewController(h.sender, sess, h.renderer,
		WithHistory(h.history),
		WithTracker(h.analytics),
		WithClock(h.clock.Now),
	)
	return h
}

// submit sends text after moving the clock past the rate-limit window.
func (h *harness) submit(t *testing.T, text string) error {
	t.Helper()
	h.clock.Advance(2 * time.Second)
	return h.ctrl.Submit(context.Background(), text)
}
