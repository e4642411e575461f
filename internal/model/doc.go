// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the conversation data types shared by the store, the
// exchange controller and the render layers.
//
// # Key Types
//
//   - Role: who a turn is attributed to (user or bot)
//   - Turn: one rendered message; Content is always safe markup
//
// A Turn is a value type. It is created once and then only copied: the
// controller appends it to the render layer and to the local history in the
// same order, and nothing mutates it afterwards.
package model
