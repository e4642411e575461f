// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session holds the per-widget state that the exchange controller
// consults: the send rate limiter, the once-per-run opening flag and the user
// identity. Each widget gets its own Session, so several widgets in one process
// never share limits or flags.
package session
