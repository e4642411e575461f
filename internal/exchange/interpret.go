// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package exchange

import (
	"github.com/jeranaias/shopchat/internal/chatapi"
)

// Mode distinguishes user-initiated exchanges from the opening greeting.
type Mode int

const (
	// ModeReply answers a user message. A blank text becomes the
	// "didn't understand" fallback.
	ModeReply Mode = iota
	// ModeOpening answers the greeting sentinel. A blank text renders nothing.
	ModeOpening
)

// Plan is what a response turns into: bot turn markup in render order,
// followed by an optional chip group.
type Plan struct {
	Turns   []string
	Options []string
}

// Interpret maps a response onto turns in the fixed order messages-or-text,
// pharmacies, products, followup, then options. notUnderstood is the plain-text
// fallback used in ModeReply.
func Interpret(resp *chatapi.ChatResponse, notUnderstood string, mode Mode) Plan {
	var plan Plan
	if resp == nil {
		resp = &chatapi.ChatResponse{}
	}

	if resp.HasMessages() {
		for _, m := range resp.Messages {
			plan.Turns = append(plan.Turns, TextMarkup(m))
		}
	} else {
		text := StripStateTag(resp.TextValue())
		switch {
		case text != "":
			plan.Turns = append(plan.Turns, TextMarkup(text))
		case mode == ModeReply:
			plan.Turns = append(plan.Turns, TextMarkup(notUnderstood))
		}
	}

	if len(resp.Pharmacies) > 0 {
		plan.Turns = append(plan.Turns, PharmaciesMarkup(resp.Pharmacies))
	}

	if len(resp.Products) > 0 {
		plan.Turns = append(plan.Turns, ProductsMarkup(resp.Products))
	}

	if resp.FollowupText != nil {
		plan.Turns = append(plan.Turns, TextMarkup(*resp.FollowupText))
	}

	if len(resp.Options) > 0 {
		plan.Options = append([]string(nil), resp.Options...)
	}

	return plan
}
