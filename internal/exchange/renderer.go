// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package exchange

import (
	"slices"
	"sync/atomic"

	"github.com/jeranaias/shopchat/internal/model"
)

// PendingHandle identifies one visible pending indicator.
type PendingHandle uint64

// Renderer is the presentation side of the widget. Implementations must be safe
// to call from the goroutine running an exchange.
type Renderer interface {
	// AppendTurn adds a turn to the visible log.
	AppendTurn(turn model.Turn)
	// AppendOptionChips shows a group of selectable chips.
	AppendOptionChips(group *OptionGroup)
	// ShowPendingIndicator shows a typing indicator with an optional label.
	ShowPendingIndicator(label string) PendingHandle
	// HidePendingIndicator removes the indicator. Unknown handles are ignored.
	HidePendingIndicator(h PendingHandle)
	// SetInputEnabled enables or disables user input.
	SetInputEnabled(enabled bool)
}

// OptionGroup is one set of chips offered by a single response. Selecting any
// chip uses up the whole group.
type OptionGroup struct {
	ID     uint64
	Labels []string
	used   atomic.Bool
}

// NewOptionGroup creates a chip group.
func NewOptionGroup(id uint64, labels []string) *OptionGroup {
	return &OptionGroup{ID: id, Labels: append([]string(nil), labels...)}
}

// Has reports whether label is one of the group's chips.
func (g *OptionGroup) Has(label string) bool {
	return slices.Contains(g.Labels, label)
}

// Used reports whether a chip of this group has been selected.
func (g *OptionGroup) Used() bool {
	return g.used.Load()
}

// markUsed disables the group. Only the first caller gets true.
func (g *OptionGroup) markUsed() bool {
	return g.used.CompareAndSwap(false, true)
}
