// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/jeranaias/shopchat/internal/ui/markup"
)

// =============================================================================
// MARKDOWN EXPORTER
// =============================================================================

// MarkdownExporter exports transcripts to Markdown.
type MarkdownExporter struct {
	options *Options
}

// NewMarkdownExporter creates a new Markdown exporter.
func NewMarkdownExporter(opts *Options) *MarkdownExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &MarkdownExporter{options: opts}
}

// Export converts a transcript to Markdown with YAML front matter.
func (e *MarkdownExporter) Export(t *Transcript) ([]byte, error) {
	if err := t.validate(); err != nil {
		return nil, err
	}

	var sb strings.Builder

	sb.WriteString("---\n")
	fmt.Fprintf(&sb, "title: %s\n", escapeYAML(t.Title))
	fmt.Fprintf(&sb, "user: %s\n", escapeYAML(t.UserID))
	fmt.Fprintf(&sb, "date: %s\n", t.Started().Format(time.RFC3339))
	fmt.Fprintf(&sb, "turns: %d\n", len(t.Turns))
	fmt.Fprintf(&sb, "exported: %s\n", t.ExportedAt.Format(time.RFC3339))
	sb.WriteString("generator: shopchat\n")
	sb.WriteString("---\n\n")

	fmt.Fprintf(&sb, "# %s\n\n", escapeMarkdown(t.Title))

	for i, turn := range t.Turns {
		label := turn.Role.DisplayName()
		if e.options.IncludeTimestamps {
			fmt.Fprintf(&sb, "### %s <sub>%s</sub>\n\n", label, formatShortTimestamp(turn.Timestamp))
		} else {
			fmt.Fprintf(&sb, "### %s\n\n", label)
		}
		sb.WriteString(markup.ToMarkdown(turn.Content))
		sb.WriteString("\n\n")
		if i < len(t.Turns)-1 {
			sb.WriteString("---\n\n")
		}
	}

	return []byte(sb.String()), nil
}

// FileExtension returns the file extension for Markdown.
func (e *MarkdownExporter) FileExtension() string {
	return ".md"
}

// MimeType returns the MIME type for Markdown.
func (e *MarkdownExporter) MimeType() string {
	return "text/markdown"
}

// =============================================================================
// ESCAPING HELPERS
// =============================================================================

var markdownTitleEscaper = strings.NewReplacer(
	"#", "\\#",
	"*", "\\*",
	"_", "\\_",
	"[", "\\[",
	"]", "\\]",
)

// escapeMarkdown escapes characters that would break a heading.
func escapeMarkdown(s string) string {
	return markdownTitleEscaper.Replace(s)
}

// escapeYAML quotes a front matter value when needed.
func escapeYAML(s string) string {
	if strings.ContainsAny(s, ":#|>@`\"'[]{}!%&*\n\r\\") || strings.HasPrefix(s, " ") || strings.HasSuffix(s, " ") {
		s = strings.ReplaceAll(s, "\\", "\\\\")
		s = strings.ReplaceAll(s, "\"", "\\\"")
		s = strings.ReplaceAll(s, "\n", "\\n")
		s = strings.ReplaceAll(s, "\r", "\\r")
		return "\"" + s + "\""
	}
	return s
}
