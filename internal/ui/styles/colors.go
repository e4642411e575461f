// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

// colors.go - shopchat color palette.
//
// All colors use Lip Gloss AdaptiveColor for automatic light/dark detection.

import "github.com/charmbracelet/lipgloss"

// =============================================================================
// BRAND COLORS
// =============================================================================

// Brand is the widget green used for the badge and the bot accent.
var Brand = lipgloss.AdaptiveColor{Light: "#388E3C", Dark: "#4CAF50"}

// BrandDeep is the pressed/open state of the badge.
var BrandDeep = lipgloss.AdaptiveColor{Light: "#1B5E20", Dark: "#2E7D32"}

// Accent is used for the user side of the conversation.
var Accent = lipgloss.AdaptiveColor{Light: "#1565C0", Dark: "#64B5F6"}

// =============================================================================
// SURFACES AND TEXT
// =============================================================================

var Surface = lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#1E1E2E"}
var Overlay = lipgloss.AdaptiveColor{Light: "#E0E0E0", Dark: "#45475A"}

var TextPrimary = lipgloss.AdaptiveColor{Light: "#212121", Dark: "#ECEFF1"}
var TextMuted = lipgloss.AdaptiveColor{Light: "#757575", Dark: "#8E94A6"}
var TextInverse = lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#10131A"}

// =============================================================================
// STATUS COLORS
// =============================================================================

var Success = lipgloss.AdaptiveColor{Light: "#15803D", Dark: "#22C55E"}
var Error = lipgloss.AdaptiveColor{Light: "#DC2626", Dark: "#EF4444"}
var Warning = lipgloss.AdaptiveColor{Light: "#D97706", Dark: "#F59E0B"}

// =============================================================================
// ACCESSIBILITY: Shapes alongside colors
// =============================================================================

// StatusIndicators are ASCII markers printed next to colored status text.
var StatusIndicators = struct {
	Success string
	Error   string
	Warning string
}{
	Success: "[OK]",
	Error:   "[X]",
	Warning: "[!]",
}

// RenderSuccess renders a success line with its indicator.
func RenderSuccess(message string) string {
	return lipgloss.NewStyle().Foreground(Success).Bold(true).
		Render(StatusIndicators.Success + " " + message)
}

// RenderError renders an error line with its indicator.
func RenderError(message string) string {
	return lipgloss.NewStyle().Foreground(Error).Bold(true).
		Render(StatusIndicators.Error + " " + message)
}

// RenderWarning renders a warning line with its indicator.
func RenderWarning(message string) string {
	return lipgloss.NewStyle().Foreground(Warning).Bold(true).
		Render(StatusIndicators.Warning + " " + message)
}
