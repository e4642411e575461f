// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package markup

import (
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
	"github.com/muesli/termenv"
)

// Formatter turns turn markup into terminal text.
type Formatter interface {
	Format(src string) string
}

// FormatterFunc adapts a function to Formatter.
type FormatterFunc func(string) string

// Format implements Formatter.
func (f FormatterFunc) Format(src string) string { return f(src) }

// PlainFormatter formats with ToPlain.
var PlainFormatter Formatter = FormatterFunc(ToPlain)

// DefaultWrap is the word-wrap width used when none is given.
const DefaultWrap = 80

// ResolveStyle maps a configured theme to a glamour standard style. "auto"
// picks dark or light from the terminal background.
func ResolveStyle(theme string) string {
	switch strings.ToLower(strings.TrimSpace(theme)) {
	case "dark":
		return "dark"
	case "light":
		return "light"
	case "notty":
		return "notty"
	default:
		if termenv.HasDarkBackground() {
			return "dark"
		}
		return "light"
	}
}

// Renderer formats turn markup for the terminal with glamour.
type Renderer struct {
	mu    sync.Mutex
	style string
	width int
	tr    *glamour.TermRenderer
}

// NewRenderer builds a renderer for theme wrapping at width columns.
func NewRenderer(theme string, width int) (*Renderer, error) {
	r := &Renderer{style: ResolveStyle(theme)}
	if err := r.SetWidth(width); err != nil {
		return nil, err
	}
	return r, nil
}

// Style returns the glamour style in use.
func (r *Renderer) Style() string {
	return r.style
}

// Width returns the current wrap width.
func (r *Renderer) Width() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.width
}

// SetWidth rebuilds the underlying renderer for a new wrap width.
func (r *Renderer) SetWidth(width int) error {
	if width <= 0 {
		width = DefaultWrap
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.tr != nil && width == r.width {
		return nil
	}

	tr, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(r.style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return fmt.Errorf("failed to create markdown renderer: %w", err)
	}
	r.tr = tr
	r.width = width
	return nil
}

// Format renders markup. If glamour fails the plain-text form is returned.
func (r *Renderer) Format(src string) string {
	md := ToMarkdown(src)
	if md == "" {
		return ""
	}

	r.mu.Lock()
	out, err := r.tr.Render(md)
	r.mu.Unlock()
	if err != nil {
		return ToPlain(src)
	}
	return strings.Trim(out, "\n")
}
