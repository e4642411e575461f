// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package plain is the line-mode front end of shopchat: turns are printed as
// they arrive and options are picked by number.
package plain

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/shopchat/internal/exchange"
	"github.com/jeranaias/shopchat/internal/model"
	"github.com/jeranaias/shopchat/internal/ui/markup"
	"github.com/jeranaias/shopchat/internal/ui/styles"
)

var (
	userLabel    = lipgloss.NewStyle().Foreground(styles.Accent).Bold(true)
	botLabel     = lipgloss.NewStyle().Foreground(styles.Brand).Bold(true)
	optionStyle  = lipgloss.NewStyle().Foreground(styles.Brand)
	pendingStyle = lipgloss.NewStyle().Foreground(styles.TextMuted).Italic(true)
)

// Renderer writes turns to an io.Writer. It implements exchange.Renderer.
type Renderer struct {
	mu       sync.Mutex
	w        io.Writer
	format   markup.Formatter
	echoUser bool
	enabled  bool
	active   *exchange.OptionGroup
	next     atomic.Uint64
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithFormatter replaces the markup formatter (plain text by default).
func WithFormatter(f markup.Formatter) Option {
	return func(r *Renderer) {
		if f != nil {
			r.format = f
		}
	}
}

// WithUserEcho prints user turns too. Off by default because in a REPL the
// user's line is already on screen.
func WithUserEcho(on bool) Option {
	return func(r *Renderer) { r.echoUser = on }
}

// NewRenderer creates a renderer writing to w.
func NewRenderer(w io.Writer, opts ...Option) *Renderer {
	r := &Renderer{
		w:       w,
		format:  markup.PlainFormatter,
		enabled: true,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// AppendTurn implements exchange.Renderer.
func (r *Renderer) AppendTurn(turn model.Turn) {
	if turn.IsUser() && !r.echoUser {
		return
	}
	label := botLabel
	if turn.IsUser() {
		label = userLabel
	}
	body := r.format.Format(turn.Content)

	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintf(r.w, "%s %s\n", label.Render(turn.Role.DisplayName()+":"), indent(body))
}

// AppendOptionChips implements exchange.Renderer. The group becomes the one
// numbers select from.
func (r *Renderer) AppendOptionChips(group *exchange.OptionGroup) {
	if group == nil || len(group.Labels) == 0 {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.active = group

	parts := make([]string, 0, len(group.Labels))
	for i, label := range group.Labels {
		parts = append(parts, optionStyle.Render(fmt.Sprintf("[%d] %s", i+1, label)))
	}
	fmt.Fprintf(r.w, "  %s\n", strings.Join(parts, "  "))
}

// ShowPendingIndicator implements exchange.Renderer.
func (r *Renderer) ShowPendingIndicator(label string) exchange.PendingHandle {
	h := exchange.PendingHandle(r.next.Add(1))
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintln(r.w, pendingStyle.Render("… "+label))
	return h
}

// HidePendingIndicator implements exchange.Renderer. Printed lines stay.
func (r *Renderer) HidePendingIndicator(exchange.PendingHandle) {}

// SetInputEnabled implements exchange.Renderer.
func (r *Renderer) SetInputEnabled(enabled bool) {
	r.mu.Lock()
	r.enabled = enabled
	r.mu.Unlock()
}

// InputEnabled reports the last state set by the controller.
func (r *Renderer) InputEnabled() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.enabled
}

// ActiveOptions returns the newest option group that is still selectable.
func (r *Renderer) ActiveOptions() *exchange.OptionGroup {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.active == nil || r.active.Used() {
		return nil
	}
	return r.active
}

// indent aligns continuation lines under the first one.
func indent(s string) string {
	return strings.ReplaceAll(s, "\n", "\n  ")
}
