// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package widget

import (
	"github.com/jeranaias/shopchat/internal/exchange"
	"github.com/jeranaias/shopchat/internal/model"
)

// =============================================================================
// RENDER MESSAGES
// =============================================================================

// TurnMsg appends a turn to the log.
type TurnMsg struct {
	Turn model.Turn
}

// ChipsMsg offers a new option group.
type ChipsMsg struct {
	Group *exchange.OptionGroup
}

// PendingShownMsg adds a pending indicator.
type PendingShownMsg struct {
	Handle exchange.PendingHandle
	Label  string
}

// PendingHiddenMsg removes a pending indicator.
type PendingHiddenMsg struct {
	Handle exchange.PendingHandle
}

// InputEnabledMsg enables or disables the input line.
type InputEnabledMsg struct {
	Enabled bool
}

// =============================================================================
// STATUS MESSAGES
// =============================================================================

// ExchangeDoneMsg reports the result of a controller call.
type ExchangeDoneMsg struct {
	Err error
}

// ConnectivityMsg reports a backend reachability change.
type ConnectivityMsg struct {
	Online bool
}

// PlaceholderMsg replaces the input placeholder, e.g. after a config reload.
type PlaceholderMsg struct {
	Text string
}

// noticeClearMsg clears a transient footer notice.
type noticeClearMsg struct {
	seq int
}
