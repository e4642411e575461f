// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for shopchat.
//
// Supports both TOML and JSON configuration formats, with defaults,
// environment variable overrides, and validation.
//
// # Configuration Precedence
//
// Configuration is loaded from (in order of precedence):
//   - Environment variables (SHOPCHAT_*), including those from ./.env
//   - The file passed with --config
//   - ~/.shopchat/config.toml
//   - ~/.shopchat/config.json
//   - Built-in defaults
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	client := chatapi.New(cfg.API.URL).WithMaxRetries(cfg.API.MaxRetries)
package config
