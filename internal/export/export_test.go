// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/shopchat/internal/model"
)

var t0 = time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)

func sample() *Transcript {
	return &Transcript{
		Title:  "Consulta: crema",
		UserID: "u-1",
		Turns: []model.Turn{
			model.NewTurnAt(model.RoleUser, "hola", t0),
			model.NewTurnAt(model.RoleBot, "<b>Crema</b><br>Precio: 5 &amp; más", t0.Add(time.Second)),
		},
		ExportedAt: t0.Add(time.Hour),
	}
}

func TestForFormat(t *testing.T) {
	for name, ext := range map[string]string{"md": ".md", "markdown": ".md", "JSON": ".json", ".html": ".html"} {
		e, err := ForFormat(name, nil)
		require.NoError(t, err, name)
		assert.Equal(t, ext, e.FileExtension())
	}
	_, err := ForFormat("pdf", nil)
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestExporters_RejectEmpty(t *testing.T) {
	for _, name := range Formats {
		e, err := ForFormat(name, nil)
		require.NoError(t, err)
		_, err = e.Export(&Transcript{Title: "x"})
		assert.ErrorIs(t, err, ErrEmptyTranscript, name)
		_, err = e.Export(nil)
		assert.ErrorIs(t, err, ErrEmptyTranscript, name)
	}
}

func TestMarkdownExporter(t *testing.T) {
	out, err := NewMarkdownExporter(nil).Export(sample())
	require.NoError(t, err)
	md := string(out)

	assert.True(t, strings.HasPrefix(md, "---\n"))
	assert.Contains(t, md, `title: "Consulta: crema"`)
	assert.Contains(t, md, "turns: 2")
	assert.Contains(t, md, "### You <sub>09:30:00</sub>")
	assert.Contains(t, md, "### Assistant <sub>09:30:01</sub>")
	assert.Contains(t, md, "**Crema**")
	assert.Contains(t, md, "Precio: 5 & más")
}

func TestMarkdownExporter_NoTimestamps(t *testing.T) {
	out, err := NewMarkdownExporter(&Options{}).Export(sample())
	require.NoError(t, err)
	assert.Contains(t, string(out), "### You\n")
	assert.NotContains(t, string(out), "<sub>")
}

func TestJSONExporter(t *testing.T) {
	out, err := NewJSONExporter(nil).Export(sample())
	require.NoError(t, err)

	var got jsonTranscript
	require.NoError(t, json.Unmarshal(out, &got))
	assert.Equal(t, "u-1", got.UserID)
	require.Len(t, got.Turns, 2)
	assert.Equal(t, "bot", got.Turns[1].Role)
	assert.Equal(t, "Crema\nPrecio: 5 & más", got.Turns[1].Text)
	assert.Equal(t, sample().Turns[1].Content, got.Turns[1].Markup)
}

func TestHTMLExporter(t *testing.T) {
	tr := sample()
	tr.Title = "<script>x</script>"
	out, err := NewHTMLExporter(&Options{Theme: "dark"}).Export(tr)
	require.NoError(t, err)
	page := string(out)

	assert.Contains(t, page, `<body class="dark">`)
	assert.Contains(t, page, "&lt;script&gt;x&lt;/script&gt;")
	assert.NotContains(t, page, "<script>")
	assert.Contains(t, page, "<b>Crema</b><br>Precio: 5 &amp; más")
	assert.Contains(t, page, `<div class="turn user">`)
}

func TestExportToFile(t *testing.T) {
	dir := t.TempDir()

	path, err := ExportToFile(sample(), NewMarkdownExporter(nil), dir)
	require.NoError(t, err)
	assert.Equal(t, dir, filepath.Dir(path))
	assert.Equal(t, "chat_Consulta-_crema_20250314_103000.md", filepath.Base(path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	explicit := filepath.Join(dir, "sub", "out.json")
	path, err = ExportToFile(sample(), NewJSONExporter(nil), explicit)
	require.NoError(t, err)
	assert.Equal(t, explicit, path)
	assert.FileExists(t, explicit)
}

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "a-b_c", sanitizeFilename("a/b c"))
	assert.Equal(t, "conversation", sanitizeFilename(""))
	assert.Equal(t, 40, len([]rune(sanitizeFilename(strings.Repeat("ñ", 60)))))
}
