// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package telemetry keeps a small in-memory record of widget activity.
//
// Analytics is a ring buffer of named events (message_added, api_success,
// api_error). It is diagnostic only: no behavior depends on its contents, and
// events never leave the process except through the debug log.
package telemetry
