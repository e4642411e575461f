// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme holds the styled pieces of the chat widget.
type Theme struct {
	// Terminal capabilities
	IsDark       bool
	ColorProfile termenv.Profile

	// ==========================================================================
	// TOGGLE BADGE
	// ==========================================================================

	Badge     lipgloss.Style
	BadgeOpen lipgloss.Style

	// ==========================================================================
	// PANEL
	// ==========================================================================

	Panel       lipgloss.Style
	PanelHeader lipgloss.Style
	Status      lipgloss.Style
	StatusDown  lipgloss.Style

	// ==========================================================================
	// TURNS
	// ==========================================================================

	UserLabel  lipgloss.Style
	BotLabel   lipgloss.Style
	UserBubble lipgloss.Style
	BotBubble  lipgloss.Style

	// ==========================================================================
	// OPTION CHIPS
	// ==========================================================================

	Chip        lipgloss.Style
	ChipFocused lipgloss.Style

	// ==========================================================================
	// INPUT AND PENDING INDICATOR
	// ==========================================================================

	Input         lipgloss.Style
	InputDisabled lipgloss.Style
	Spinner       lipgloss.Style
	PendingText   lipgloss.Style

	Muted lipgloss.Style
	Help  lipgloss.Style
}

// NewTheme creates a theme for the detected terminal.
func NewTheme() *Theme {
	return NewThemeFor(termenv.ColorProfile(), termenv.HasDarkBackground())
}

// NewThemeFor creates a theme for an explicit profile and background.
func NewThemeFor(profile termenv.Profile, dark bool) *Theme {
	t := &Theme{
		IsDark:       dark,
		ColorProfile: profile,
	}
	t.initStyles()
	return t
}

func (t *Theme) initStyles() {
	t.Badge = lipgloss.NewStyle().
		Foreground(TextInverse).
		Background(Brand).
		Bold(true).
		Padding(0, 2)
	t.BadgeOpen = t.Badge.
		Background(BrandDeep)

	t.Panel = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Brand).
		Padding(0, 1)
	t.PanelHeader = lipgloss.NewStyle().
		Foreground(TextInverse).
		Background(Brand).
		Bold(true).
		Padding(0, 1)
	t.Status = lipgloss.NewStyle().
		Foreground(Success)
	t.StatusDown = lipgloss.NewStyle().
		Foreground(Error).
		Bold(true)

	t.UserLabel = lipgloss.NewStyle().
		Foreground(Accent).
		Bold(true)
	t.BotLabel = lipgloss.NewStyle().
		Foreground(Brand).
		Bold(true)
	t.UserBubble = lipgloss.NewStyle().
		Foreground(TextPrimary).
		BorderStyle(lipgloss.NormalBorder()).
		BorderLeft(true).
		BorderForeground(Accent).
		PaddingLeft(1)
	t.BotBubble = lipgloss.NewStyle().
		Foreground(TextPrimary).
		BorderStyle(lipgloss.NormalBorder()).
		BorderLeft(true).
		BorderForeground(Brand).
		PaddingLeft(1)

	t.Chip = lipgloss.NewStyle().
		Foreground(Brand).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Brand).
		Padding(0, 1)
	t.ChipFocused = t.Chip.
		Foreground(TextInverse).
		Background(Brand).
		Bold(true)

	t.Input = lipgloss.NewStyle().
		Border(lipgloss.NormalBorder(), true, false, false, false).
		BorderForeground(Overlay)
	t.InputDisabled = t.Input.
		Foreground(TextMuted)
	t.Spinner = lipgloss.NewStyle().
		Foreground(Brand)
	t.PendingText = lipgloss.NewStyle().
		Foreground(TextMuted).
		Italic(true)

	t.Muted = lipgloss.NewStyle().
		Foreground(TextMuted)
	t.Help = lipgloss.NewStyle().
		Foreground(TextMuted).
		Faint(true)
}
