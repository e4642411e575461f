// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package widget is the bubbletea front end of shopchat: a toggle badge in the
// bottom-right corner that opens a chat panel.
//
// The exchange controller never touches the model directly. It talks to a
// ProgramRenderer, which turns every render call into a tea.Msg; controller
// calls themselves run inside tea.Cmds so the update loop never blocks on the
// network.
//
// # Keys
//
//   - Ctrl+O: open/close the panel (Esc also closes)
//   - Enter: send the input, or pick the focused option
//   - Tab / Shift+Tab: move through the newest option group
//   - PgUp / PgDn: scroll the log
//   - Ctrl+Y: copy the last reply as plain text
//   - Ctrl+C: quit
package widget
