// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package widget

import (
	"sync"
	"sync/atomic"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/shopchat/internal/exchange"
	"github.com/jeranaias/shopchat/internal/model"
)

// ProgramRenderer implements exchange.Renderer by posting messages to a
// running bubbletea program. Messages sent before Attach are dropped.
type ProgramRenderer struct {
	mu   sync.RWMutex
	send func(tea.Msg)
	next atomic.Uint64
}

// NewProgramRenderer creates a renderer; send may be nil and set later.
func NewProgramRenderer(send func(tea.Msg)) *ProgramRenderer {
	return &ProgramRenderer{send: send}
}

// Attach sets the delivery function, normally (*tea.Program).Send.
func (r *ProgramRenderer) Attach(send func(tea.Msg)) {
	r.mu.Lock()
	r.send = send
	r.mu.Unlock()
}

func (r *ProgramRenderer) post(msg tea.Msg) {
	r.mu.RLock()
	send := r.send
	r.mu.RUnlock()
	if send != nil {
		send(msg)
	}
}

// AppendTurn implements exchange.Renderer.
func (r *ProgramRenderer) AppendTurn(turn model.Turn) {
	r.post(TurnMsg{Turn: turn})
}

// AppendOptionChips implements exchange.Renderer.
func (r *ProgramRenderer) AppendOptionChips(group *exchange.OptionGroup) {
	r.post(ChipsMsg{Group: group})
}

// ShowPendingIndicator implements exchange.Renderer.
func (r *ProgramRenderer) ShowPendingIndicator(label string) exchange.PendingHandle {
	h := exchange.PendingHandle(r.next.Add(1))
	r.post(PendingShownMsg{Handle: h, Label: label})
	return h
}

// HidePendingIndicator implements exchange.Renderer.
func (r *ProgramRenderer) HidePendingIndicator(h exchange.PendingHandle) {
	r.post(PendingHiddenMsg{Handle: h})
}

// SetInputEnabled implements exchange.Renderer.
func (r *ProgramRenderer) SetInputEnabled(enabled bool) {
	r.post(InputEnabledMsg{Enabled: enabled})
}
