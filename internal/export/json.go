// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"encoding/json"
	"time"

	"github.com/jeranaias/shopchat/internal/ui/markup"
)

// JSONExporter exports transcripts to JSON. Options do not apply; the output
// always carries every field.
type JSONExporter struct{}

// NewJSONExporter creates a JSON exporter. opts is accepted for symmetry.
func NewJSONExporter(*Options) *JSONExporter {
	return &JSONExporter{}
}

type jsonTranscript struct {
	Title      string     `json:"title"`
	UserID     string     `json:"user_id"`
	ExportedAt time.Time  `json:"exported_at"`
	Turns      []jsonTurn `json:"turns"`
}

type jsonTurn struct {
	Role      string    `json:"role"`
	Text      string    `json:"text"`
	Markup    string    `json:"markup"`
	Timestamp time.Time `json:"timestamp"`
}

// Export converts a transcript to indented JSON.
func (e *JSONExporter) Export(t *Transcript) ([]byte, error) {
	if err := t.validate(); err != nil {
		return nil, err
	}
	out := jsonTranscript{
		Title:      t.Title,
		UserID:     t.UserID,
		ExportedAt: t.ExportedAt,
		Turns:      make([]jsonTurn, 0, len(t.Turns)),
	}
	for _, turn := range t.Turns {
		out.Turns = append(out.Turns, jsonTurn{
			Role:      turn.Role.String(),
			Text:      markup.ToPlain(turn.Content),
			Markup:    turn.Content,
			Timestamp: turn.Timestamp,
		})
	}
	return json.MarshalIndent(out, "", "  ")
}

// FileExtension returns the file extension for JSON.
func (e *JSONExporter) FileExtension() string {
	return ".json"
}

// MimeType returns the MIME type for JSON.
func (e *JSONExporter) MimeType() string {
	return "application/json"
}
