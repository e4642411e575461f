// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli implements the shopchat command tree.
//
// # Commands
//
//	shopchat                 open the chat widget (TUI or line mode)
//	shopchat send <msg...>   one exchange, printed to stdout
//	shopchat history         list stored turns (history clear to wipe)
//	shopchat whoami          print the stable user identifier
//	shopchat config ...      init, show, get, path
//	shopchat version         build information
//
// Global flags: --config, --api-url, --plain, --storage, --debug.
package cli
