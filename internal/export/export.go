// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jeranaias/shopchat/internal/model"
	"github.com/jeranaias/shopchat/internal/util"
)

// =============================================================================
// EXPORT INTERFACE
// =============================================================================

// ErrEmptyTranscript is returned when there is nothing to export.
var ErrEmptyTranscript = errors.New("export: transcript has no turns")

// ErrUnknownFormat is returned by ForFormat for an unsupported name.
var ErrUnknownFormat = errors.New("export: unknown format")

// Exporter converts a transcript to one file format.
type Exporter interface {
	Export(t *Transcript) ([]byte, error)
	FileExtension() string
	MimeType() string
}

// Transcript is the conversation handed to an exporter.
type Transcript struct {
	Title      string
	UserID     string
	Turns      []model.Turn
	ExportedAt time.Time
}

// NewTranscript builds a transcript stamped with the current time.
func NewTranscript(title, userID string, turns []model.Turn) *Transcript {
	return &Transcript{
		Title:      title,
		UserID:     userID,
		Turns:      turns,
		ExportedAt: time.Now(),
	}
}

func (t *Transcript) validate() error {
	if t == nil || len(t.Turns) == 0 {
		return ErrEmptyTranscript
	}
	return nil
}

// Started returns the timestamp of the first turn.
func (t *Transcript) Started() time.Time {
	if len(t.Turns) == 0 {
		return time.Time{}
	}
	return t.Turns[0].Timestamp
}

// =============================================================================
// EXPORT OPTIONS
// =============================================================================

// Options configures export behavior.
type Options struct {
	// IncludeTimestamps adds per-turn timestamps.
	IncludeTimestamps bool

	// Theme for HTML export ("light" or "dark").
	Theme string
}

// DefaultOptions returns default export options.
func DefaultOptions() *Options {
	return &Options{
		IncludeTimestamps: true,
		Theme:             "light",
	}
}

// Formats lists the names accepted by ForFormat.
var Formats = []string{"md", "json", "html"}

// ForFormat returns the exporter for a format name.
func ForFormat(name string, opts *Options) (Exporter, error) {
	switch strings.ToLower(strings.TrimPrefix(name, ".")) {
	case "md", "markdown":
		return NewMarkdownExporter(opts), nil
	case "json":
		return NewJSONExporter(opts), nil
	case "html", "htm":
		return NewHTMLExporter(opts), nil
	default:
		return nil, fmt.Errorf("%w: %q (want one of %s)", ErrUnknownFormat, name, strings.Join(Formats, ", "))
	}
}

// =============================================================================
// EXPORT FUNCTIONS
// =============================================================================

// ExportToFile writes t using exporter. When path is a directory or empty, a
// file name is generated from the title and the export time.
// SECURITY: Transcripts hold user messages; written 0600.
func ExportToFile(t *Transcript, exporter Exporter, path string) (string, error) {
	content, err := exporter.Export(t)
	if err != nil {
		return "", fmt.Errorf("export failed: %w", err)
	}

	if path == "" || strings.HasSuffix(path, string(filepath.Separator)) || isDir(path) {
		name := fmt.Sprintf("chat_%s_%s%s",
			sanitizeFilename(t.Title),
			t.ExportedAt.Format("20060102_150405"),
			exporter.FileExtension(),
		)
		path = filepath.Join(path, name)
	}

	if err := util.AtomicWriteFile(path, content, 0600); err != nil {
		return "", fmt.Errorf("write file: %w", err)
	}
	return path, nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// sanitizeFilename replaces characters that are invalid in file names.
func sanitizeFilename(s string) string {
	const maxLen = 40
	if runes := []rune(s); len(runes) > maxLen {
		s = string(runes[:maxLen])
	}

	var b strings.Builder
	for _, r := range s {
		switch {
		case strings.ContainsRune(`/\:*?"<>|`, r):
			b.WriteRune('-')
		case r == ' ' || r == '\t' || r == '\n' || r == '\r':
			b.WriteRune('_')
		case r < 32 || r == 127:
			b.WriteRune('-')
		default:
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "conversation"
	}
	return b.String()
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// formatTimestamp formats a timestamp for headers.
func formatTimestamp(t time.Time) string {
	return t.Format("2006-01-02 15:04:05")
}

// formatShortTimestamp formats a timestamp for inline display.
func formatShortTimestamp(t time.Time) string {
	return t.Format("15:04:05")
}
