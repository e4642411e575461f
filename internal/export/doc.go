// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package export writes the stored conversation to a file.
//
// Three formats are supported:
//
//	md    Markdown, one section per turn
//	json  the turns with their markup and a plain-text rendering
//	html  a standalone page; turn markup is embedded as-is
//
// Turn content is already-escaped markup, so the HTML exporter embeds it
// without escaping again while every other field is escaped.
package export
