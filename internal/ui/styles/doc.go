// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the colors and Lip Gloss styles of the shopchat
// terminal widget.
//
// Colors are lipgloss.AdaptiveColor values so the same theme works on dark and
// light terminals. NewTheme detects the terminal with termenv; tests use
// NewThemeFor to pin the profile.
package styles
