// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util holds small helpers shared across shopchat.
//
// # Key Functions
//
// File Operations:
//   - AtomicWriteFile: crash-safe replace of a file (temp file, fsync, rename)
//
// String Utilities:
//   - TruncateWidth: column-aware truncation with ellipsis
//   - PadRight: column-aware padding for table output
//   - SingleLine: whitespace collapsing for one-line previews
//
// # Usage
//
//	err := util.AtomicWriteFile(path, data, 0600)
//	cell := util.PadRight(util.TruncateWidth(preview, 40), 40)
package util
