// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package widget

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/shopchat/internal/model"
)

// View implements tea.Model. The badge always sits in the bottom-right corner;
// the panel, when open, is stacked above it.
func (m Model) View() string {
	badge := m.renderBadge()
	if !m.open {
		return lipgloss.Place(m.width, m.height, lipgloss.Right, lipgloss.Bottom, badge)
	}
	col := lipgloss.JoinVertical(lipgloss.Right, m.renderPanel(), badge)
	return lipgloss.Place(m.width, m.height, lipgloss.Right, lipgloss.Bottom, col)
}

func (m Model) renderBadge() string {
	if m.open {
		return m.theme.BadgeOpen.Render("✕ Chat")
	}
	return m.theme.Badge.Render("💬 Chat")
}

func (m Model) renderPanel() string {
	pw := m.panelWidth()
	inner := pw - 4

	parts := []string{m.renderHeader(inner), m.viewport.View()}
	if m.chips != nil {
		parts = append(parts, m.renderChips())
	}
	for _, p := range m.pending {
		parts = append(parts, m.spinner.View()+" "+m.theme.PendingText.Render(p.label))
	}

	inputStyle := m.theme.Input
	if !m.inputEnabled {
		inputStyle = m.theme.InputDisabled
	}
	parts = append(parts, inputStyle.Width(inner).Render(m.input.View()))
	parts = append(parts, m.renderFooter())

	return m.theme.Panel.Width(pw - 2).Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}

func (m Model) renderHeader(width int) string {
	status := ""
	if m.known {
		if m.online {
			status = " " + m.theme.Status.Render("●")
		} else {
			status = " " + m.theme.StatusDown.Render("● offline")
		}
	}
	return m.theme.PanelHeader.Width(width-lipgloss.Width(status)).Render(m.title) + status
}

func (m Model) renderChips() string {
	if m.chips == nil {
		return ""
	}
	chips := make([]string, 0, len(m.chips.Labels))
	for i, label := range m.chips.Labels {
		style := m.theme.Chip
		if i == m.chipFocus {
			style = m.theme.ChipFocused
		}
		chips = append(chips, style.Render(label))
	}

	// Wrap chips onto rows that fit the panel.
	inner := m.panelWidth() - 4
	var (
		rows []string
		row  []string
		w    int
	)
	for _, c := range chips {
		cw := lipgloss.Width(c)
		if len(row) > 0 && w+cw > inner {
			rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, row...))
			row, w = nil, 0
		}
		row = append(row, c)
		w += cw
	}
	if len(row) > 0 {
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, row...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (m Model) renderFooter() string {
	if m.notice != "" {
		return m.theme.Muted.Render(m.notice)
	}
	var b strings.Builder
	for i, k := range m.keys.ShortHelp() {
		if i > 0 {
			b.WriteString(" • ")
		}
		h := k.Help()
		b.WriteString(h.Key + " " + h.Desc)
	}
	return m.theme.Help.MaxWidth(m.panelWidth() - 4).Render(b.String())
}

func (m Model) renderTurn(t model.Turn) string {
	label, bubble := m.theme.BotLabel, m.theme.BotBubble
	if t.IsUser() {
		label, bubble = m.theme.UserLabel, m.theme.UserBubble
	}
	body := m.format.Format(t.Content)
	return label.Render(t.Role.DisplayName()) + "\n" + bubble.Width(m.bubbleWidth()).Render(body)
}
