// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"fmt"
	"html"
	"strings"
	"time"
)

// =============================================================================
// HTML EXPORTER
// =============================================================================

// HTMLExporter exports transcripts to a standalone HTML page.
type HTMLExporter struct {
	options *Options
}

// NewHTMLExporter creates a new HTML exporter.
func NewHTMLExporter(opts *Options) *HTMLExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &HTMLExporter{options: opts}
}

// Export converts a transcript to HTML. Turn markup is embedded unchanged.
func (e *HTMLExporter) Export(t *Transcript) ([]byte, error) {
	if err := t.validate(); err != nil {
		return nil, err
	}

	theme := "light"
	if e.options.Theme == "dark" {
		theme = "dark"
	}

	var sb strings.Builder
	sb.WriteString("<!DOCTYPE html>\n<html>\n<head>\n")
	sb.WriteString("  <meta charset=\"UTF-8\">\n")
	sb.WriteString("  <meta name=\"viewport\" content=\"width=device-width, initial-scale=1.0\">\n")
	fmt.Fprintf(&sb, "  <title>%s</title>\n", html.EscapeString(t.Title))
	sb.WriteString("  <meta name=\"generator\" content=\"shopchat\">\n")
	fmt.Fprintf(&sb, "  <meta name=\"date\" content=\"%s\">\n", t.Started().Format(time.RFC3339))
	sb.WriteString(stylesheet)
	sb.WriteString("</head>\n")
	fmt.Fprintf(&sb, "<body class=\"%s\">\n", theme)

	sb.WriteString("  <header>\n")
	fmt.Fprintf(&sb, "    <h1>%s</h1>\n", html.EscapeString(t.Title))
	fmt.Fprintf(&sb, "    <p class=\"meta\">%s &middot; %d turns</p>\n",
		formatTimestamp(t.Started()), len(t.Turns))
	sb.WriteString("  </header>\n")

	sb.WriteString("  <main>\n")
	for _, turn := range t.Turns {
		fmt.Fprintf(&sb, "    <div class=\"turn %s\">\n", html.EscapeString(turn.Role.String()))
		fmt.Fprintf(&sb, "      <div class=\"label\">%s", html.EscapeString(turn.Role.DisplayName()))
		if e.options.IncludeTimestamps {
			fmt.Fprintf(&sb, " <time>%s</time>", formatShortTimestamp(turn.Timestamp))
		}
		sb.WriteString("</div>\n")
		fmt.Fprintf(&sb, "      <div class=\"bubble\">%s</div>\n", turn.Content)
		sb.WriteString("    </div>\n")
	}
	sb.WriteString("  </main>\n")

	fmt.Fprintf(&sb, "  <footer>Exported from shopchat on %s</footer>\n",
		t.ExportedAt.Format("January 2, 2006 at 3:04 PM"))
	sb.WriteString("</body>\n</html>\n")

	return []byte(sb.String()), nil
}

// FileExtension returns the file extension for HTML.
func (e *HTMLExporter) FileExtension() string {
	return ".html"
}

// MimeType returns the MIME type for HTML.
func (e *HTMLExporter) MimeType() string {
	return "text/html"
}

const stylesheet = `  <style>
    body { font-family: system-ui, sans-serif; max-width: 720px; margin: 2rem auto; padding: 0 1rem; }
    body.light { background: #fafafa; color: #212121; }
    body.dark { background: #1e1f24; color: #e6e6e6; }
    .meta, footer, time { color: #8e94a6; font-size: 0.85rem; }
    .turn { margin: 0.75rem 0; display: flex; flex-direction: column; }
    .turn.user { align-items: flex-end; }
    .label { font-weight: 600; font-size: 0.85rem; margin-bottom: 0.2rem; }
    .bubble { border-radius: 12px; padding: 0.6rem 0.9rem; max-width: 80%; }
    .user .bubble { background: #1565c0; color: #fff; }
    .bot .bubble { background: #e8f5e9; color: #1b1b1b; }
    .bubble img { max-width: 100%; }
  </style>
`
