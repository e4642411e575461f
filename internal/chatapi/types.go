// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chatapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// InitMessage is the reserved message that asks the backend for its greeting.
const InitMessage = "__init__"

// =============================================================================
// REQUEST
// =============================================================================

// ChatRequest is the body POSTed to the chat endpoint.
type ChatRequest struct {
	Message         string `json:"message"`
	UserID          string `json:"user_id"`
	ClientTimestamp string `json:"client_timestamp"`
}

// NewChatRequest stamps a request with sentAt in ISO-8601 UTC with millisecond
// precision.
func NewChatRequest(message, userID string, sentAt time.Time) ChatRequest {
	return ChatRequest{
		Message:         message,
		UserID:          userID,
		ClientTimestamp: sentAt.UTC().Format("2006-01-02T15:04:05.000Z"),
	}
}

// =============================================================================
// RESPONSE
// =============================================================================

// FlexString decodes any JSON scalar into a string. Numbers keep their literal
// text; true becomes "true"; false, null, objects and arrays become "".
type FlexString string

// UnmarshalJSON implements json.Unmarshaler.
func (f *FlexString) UnmarshalJSON(data []byte) error {
	*f = FlexString(scalarText(data))
	return nil
}

// String returns the decoded text.
func (f FlexString) String() string {
	return string(f)
}

// Product is one catalog entry returned by a recommendation.
type Product struct {
	Name           FlexString `json:"name"`
	Price          FlexString `json:"price"`
	Category       FlexString `json:"category"`
	Description    FlexString `json:"description"`
	Usage          FlexString `json:"usage"`
	RecommendedFor FlexString `json:"recommended_for,omitempty"`
	Allergens      FlexString `json:"allergens,omitempty"`
	Image          FlexString `json:"image,omitempty"`
	Link           FlexString `json:"link"`
}

// Pharmacy is a nearby pharmacy with a map link.
type Pharmacy struct {
	Name     FlexString `json:"name"`
	MapsLink FlexString `json:"maps_link"`
}

// ChatResponse is the decoded backend reply. Nil pointers and nil slices mean
// the field was absent or unusable.
type ChatResponse struct {
	Text         *string
	Messages     []string
	Options      []string
	Products     []Product
	Pharmacies   []Pharmacy
	FollowupText *string
	Error        string
}

// UnmarshalJSON decodes a reply field by field. Only a body that is not a JSON
// object is an error; a field of the wrong type is treated as absent.
func (r *ChatResponse) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if fields == nil {
		return fmt.Errorf("%w: null body", ErrMalformedResponse)
	}

	*r = ChatResponse{}

	if raw, ok := fields["text"]; ok {
		var s string
		if json.Unmarshal(raw, &s) == nil {
			r.Text = &s
		}
	}
	if raw, ok := fields["followup_text"]; ok && truthy(raw) {
		if s := scalarText(raw); s != "" {
			r.FollowupText = &s
		}
	}
	if raw, ok := fields["error"]; ok && truthy(raw) {
		r.Error = scalarText(raw)
		if r.Error == "" {
			r.Error = string(bytes.TrimSpace(raw))
		}
	}

	r.Messages = decodeMessages(fields["messages"])
	r.Options = decodeStrings(fields["options"])
	r.Products = decodeObjects[Product](fields["products"])
	r.Pharmacies = decodeObjects[Pharmacy](fields["pharmacies"])

	return nil
}

// HasMessages reports whether the reply carries a non-empty messages array.
// The array may still decode to zero turns when every element is an object.
func (r *ChatResponse) HasMessages() bool {
	return r.Messages != nil
}

// TextValue returns the text field or "" when absent.
func (r *ChatResponse) TextValue() string {
	if r.Text == nil {
		return ""
	}
	return *r.Text
}

// scalarText renders a raw JSON scalar as text.
func scalarText(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return ""
	}
	switch raw[0] {
	case '"':
		var s string
		if json.Unmarshal(raw, &s) == nil {
			return s
		}
		return ""
	case 't':
		return "true"
	case 'f', 'n', '{', '[':
		return ""
	default:
		var n json.Number
		if json.Unmarshal(raw, &n) == nil {
			return n.String()
		}
		return ""
	}
}

// truthy applies loose truthiness to a JSON value: empty strings, zero, false
// and null are false; every other value, objects and arrays included, is true.
func truthy(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return false
	}
	switch raw[0] {
	case '"':
		var s string
		return json.Unmarshal(raw, &s) == nil && s != ""
	case 't', '{', '[':
		return true
	case 'f', 'n':
		return false
	default:
		var f float64
		return json.Unmarshal(raw, &f) == nil && f != 0
	}
}

// decodeMessages decodes the messages array keeping one entry per element, in
// order. Blank strings stay, null becomes "", false becomes "false"; objects
// and arrays are dropped. Returns nil if raw is not a non-empty array.
func decodeMessages(raw json.RawMessage) []string {
	var items []json.RawMessage
	if len(raw) == 0 || json.Unmarshal(raw, &items) != nil || len(items) == 0 {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		item = bytes.TrimSpace(item)
		if len(item) == 0 {
			continue
		}
		switch item[0] {
		case '{', '[':
			continue
		case 'f':
			out = append(out, "false")
		default:
			out = append(out, scalarText(item))
		}
	}
	return out
}

// decodeStrings decodes an array of scalars, dropping blank entries. Returns
// nil if raw is not an array.
func decodeStrings(raw json.RawMessage) []string {
	var items []json.RawMessage
	if len(raw) == 0 || json.Unmarshal(raw, &items) != nil {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s := scalarText(item); strings.TrimSpace(s) != "" {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// decodeObjects decodes an array of objects, skipping elements that are not
// objects. Returns nil if raw is not an array.
func decodeObjects[T any](raw json.RawMessage) []T {
	var items []json.RawMessage
	if len(raw) == 0 || json.Unmarshal(raw, &items) != nil {
		return nil
	}
	out := make([]T, 0, len(items))
	for _, item := range items {
		item = bytes.TrimSpace(item)
		if len(item) == 0 || item[0] != '{' {
			continue
		}
		var v T
		if json.Unmarshal(item, &v) == nil {
			out = append(out, v)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
