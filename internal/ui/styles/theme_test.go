// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"testing"

	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
)

func TestNewThemeFor(t *testing.T) {
	th := NewThemeFor(termenv.Ascii, true)

	assert.True(t, th.IsDark)
	assert.Equal(t, termenv.Ascii, th.ColorProfile)
	assert.Contains(t, th.Badge.Render("Chat"), "Chat")
	assert.Contains(t, th.ChipFocused.Render("Sí"), "Sí")
}

func TestNewTheme_Detects(t *testing.T) {
	th := NewTheme()
	assert.NotNil(t, th)
	assert.Contains(t, th.Panel.Render("x"), "x")
}

func TestRenderStatus(t *testing.T) {
	assert.Contains(t, RenderSuccess("saved"), "[OK] saved")
	assert.Contains(t, RenderError("failed"), "[X] failed")
	assert.Contains(t, RenderWarning("careful"), "[!] careful")
}
