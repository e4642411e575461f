// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package exchange

import (
	"regexp"
	"strings"

	"github.com/jeranaias/shopchat/internal/chatapi"
)

// =============================================================================
// ESCAPING
// =============================================================================

// SECURITY: every string that reaches a turn comes from the user or the backend
// and is escaped here before it is embedded in markup.
var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#039;",
)

// EscapeHTML replaces the five reserved markup characters with entities.
func EscapeHTML(s string) string {
	return htmlEscaper.Replace(s)
}

// TextMarkup turns plain text into turn markup. Line breaks are preserved.
func TextMarkup(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(EscapeHTML(s), "\n", "<br>")
}

// =============================================================================
// STATE TAGS
// =============================================================================

// stateTag matches the conversation-state marker the backend may prefix to its
// text, e.g. "(INIT) Hola".
var stateTag = regexp.MustCompile(`^\((?:INIT|REC|CUS|DONE)\)\s*`)

// StripStateTag trims s and removes one leading state tag.
func StripStateTag(s string) string {
	s = strings.TrimSpace(s)
	return strings.TrimSpace(stateTag.ReplaceAllString(s, ""))
}

// =============================================================================
// RESULT BLOCKS
// =============================================================================

// PharmaciesMarkup lists pharmacies as map links, one block each.
func PharmaciesMarkup(pharmacies []chatapi.Pharmacy) string {
	var b strings.Builder
	for _, p := range pharmacies {
		b.WriteString(`<div><a href="`)
		b.WriteString(EscapeHTML(p.MapsLink.String()))
		b.WriteString(`">🏥 `)
		b.WriteString(EscapeHTML(p.Name.String()))
		b.WriteString(`</a></div>`)
	}
	return b.String()
}

// ProductsMarkup renders product cards, one block each. Recommended-for,
// allergens and image are emitted only when present.
func ProductsMarkup(products []chatapi.Product) string {
	var b strings.Builder
	for _, p := range products {
		name := EscapeHTML(p.Name.String())

		b.WriteString("<div>")
		if img := p.Image.String(); img != "" {
			b.WriteString(`<img src="` + EscapeHTML(img) + `" alt="Imagen de ` + name + `">`)
		}
		b.WriteString("<b>🟢 " + name + "</b> - 💲" + EscapeHTML(p.Price.String()) + "<br>")
		b.WriteString("<b>🏷️ Categoría:</b> " + EscapeHTML(p.Category.String()) + "<br>")
		b.WriteString("<b>📝 Descripción:</b> " + EscapeHTML(p.Description.String()) + "<br>")
		b.WriteString("<b>💊 Uso:</b> " + EscapeHTML(p.Usage.String()) + "<br>")
		if v := p.RecommendedFor.String(); v != "" {
			b.WriteString("<b>👍 Recomendado para:</b> " + EscapeHTML(v) + "<br>")
		}
		if v := p.Allergens.String(); v != "" {
			b.WriteString("<b>⚠️ Alérgenos:</b> " + EscapeHTML(v) + "<br>")
		}
		b.WriteString(`<a href="` + EscapeHTML(p.Link.String()) + `">🔗 Ver producto</a>`)
		b.WriteString("</div>")
	}
	return b.String()
}
