// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage provides the local persistent state of a shopchat widget.
//
// State lives in a small key/value store, the terminal equivalent of a browser's
// local storage. Two backends are available:
//
//   - FileKV: a single JSON object file, rewritten atomically on every change
//   - SQLiteKV: a one-table SQLite database (pure Go driver)
//
// MemoryKV backs tests and the degraded mode used when the configured backend
// cannot be opened.
//
// # Key Types
//
//   - History: bounded, ordered conversation log (oldest entries evicted first)
//   - Identity: stable per-profile user identifier
//
// History and Identity never fail their callers. Backend errors are logged and
// the operation degrades to a no-op so the chat keeps working without history.
//
// # Usage
//
//	kv, err := storage.Open(storage.BackendFile, "")
//	history := storage.NewHistory(kv, storage.WithHistoryLogger(logger))
//	history.Append(model.NewTurn(model.RoleUser, "hola"))
//	turns := history.LoadAll()
//
//	ident := storage.NewIdentity(kv)
//	userID := ident.GetOrCreateUserID()
//
// # Storage Location
//
// Defaults to ~/.shopchat/store.json or ~/.shopchat/store.db.
package storage
