// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chatapi is the HTTP client for the shop assistant chat backend.
//
// A request is a JSON POST of {message, user_id, client_timestamp}. The reply is
// a loosely typed object where every field is optional; ChatResponse decodes it
// permissively so that missing or oddly typed fields degrade to "absent" rather
// than failing the exchange.
//
// Failed attempts (transport errors, non-2xx statuses, undecodable bodies and
// replies carrying an "error" field) are retried with a linear backoff: the
// n-th retry waits n times the retry step. With the defaults a backend that
// always fails sees three attempts separated by 1s and 2s.
//
// # Usage
//
//	client := chatapi.New(cfg.API.URL).
//		WithLogger(logger).
//		WithTracker(analytics)
//
//	resp, err := client.Send(ctx, "hola", userID)
//	if errors.Is(err, chatapi.ErrRetriesExhausted) {
//		// render the apology turn
//	}
package chatapi
