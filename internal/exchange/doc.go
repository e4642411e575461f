// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package exchange implements the message exchange controller.
//
// A Controller owns the round trip for one widget:
//
//	input -> validate -> rate limit -> echo + pending indicator
//	      -> backend -> interpret -> bot turns + chips -> history
//
// Everything the controller renders is markup built by this package. Text from
// the user or the backend is escaped first (EscapeHTML), so a Renderer can
// interpret the markup without sanitizing it again.
//
// # Key Types
//
//   - Controller: Submit, SelectOption, PanelShown, NotifyConnectivity
//   - Renderer: presentation collaborator (TUI or line mode)
//   - OptionGroup: one response's chips, used up by the first selection
//   - Plan: the pure result of Interpret
package exchange
