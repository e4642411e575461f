// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package exchange

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/text/unicode/norm"

	"github.com/jeranaias/shopchat/internal/chatapi"
	"github.com/jeranaias/shopchat/internal/model"
	"github.com/jeranaias/shopchat/internal/session"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrEmptyMessage is returned for empty or whitespace-only input.
	ErrEmptyMessage = errors.New("exchange: empty message")

	// ErrRateLimited is returned when a send comes too soon after the last one.
	ErrRateLimited = errors.New("exchange: rate limited")

	// ErrExchangePending is returned while another exchange is in flight.
	ErrExchangePending = errors.New("exchange: exchange already pending")

	// ErrOptionsUsed is returned when a chip of an already used group is selected.
	ErrOptionsUsed = errors.New("exchange: option group already used")

	// ErrUnknownOption is returned when the label is not part of the group.
	ErrUnknownOption = errors.New("exchange: unknown option")

	// ErrPanic is returned when an exchange panicked and was recovered.
	ErrPanic = errors.New("exchange: unexpected error")
)

// =============================================================================
// COLLABORATORS
// =============================================================================

// Sender performs one request/response with retries.
type Sender interface {
	Send(ctx context.Context, message, userID string) (*chatapi.ChatResponse, error)
}

// TurnStore persists rendered turns.
type TurnStore interface {
	Append(turn model.Turn)
	LoadAll() []model.Turn
}

// EventTracker receives analytics events.
type EventTracker interface {
	Track(name string, data map[string]any)
}

type nopStore struct{}

func (nopStore) Append(model.Turn)     {}
func (nopStore) LoadAll() []model.Turn { return nil }

// =============================================================================
// CONTROLLER
// =============================================================================

// Controller drives one widget: it validates and rate-limits input, echoes it,
// runs the exchange against the backend and renders the outcome.
type Controller struct {
	client   Sender
	session  *session.Session
	renderer Renderer
	history  TurnStore
	tracker  EventTracker
	logger   zerolog.Logger
	now      func() time.Time

	mu      sync.Mutex
	pending bool
	groupID atomic.Uint64

	messages atomic.Pointer[Messages]
}

// Option configures a Controller.
type Option func(*Controller)

// WithHistory persists every rendered turn to store.
func WithHistory(store TurnStore) Option {
	return func(c *Controller) {
		if store != nil {
			c.history = store
		}
	}
}

// WithTracker sets the analytics sink.
func WithTracker(t EventTracker) Option {
	return func(c *Controller) { c.tracker = t }
}

// WithMessages overrides the fixed user-visible strings. Blank fields keep
// their defaults.
func WithMessages(m Messages) Option {
	return func(c *Controller) { c.SetMessages(m) }
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Controller) {
		c.logger = l.With().Str("component", "exchange").Logger()
	}
}

// WithClock replaces the clock used for rate limiting and turn timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		if now != nil {
			c.now = now
		}
	}
}

// NewController wires a controller.
func NewController(client Sender, sess *session.Session, renderer Renderer, opts ...Option) *Controller {
	c := &Controller{
		client:   client,
		session:  sess,
		renderer: renderer,
		history:  nopStore{},
		logger:   zerolog.Nop(),
		now:      time.Now,
	}
	c.SetMessages(DefaultMessages())
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Messages returns the fixed strings in use.
func (c *Controller) Messages() Messages {
	return *c.messages.Load()
}

// SetMessages replaces the fixed strings. Blank fields keep their defaults.
// Safe to call while an exchange is running; the change applies to turns
// rendered afterwards.
func (c *Controller) SetMessages(m Messages) {
	m = m.withDefaults()
	c.messages.Store(&m)
}

// Pending reports whether an exchange is in flight.
func (c *Controller) Pending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending
}

// =============================================================================
// OPERATIONS
// =============================================================================

// Submit sends text typed by the user. Empty input, rate-limited input and
// input arriving during another exchange are dropped without rendering
// anything and reported through the returned error. A terminal backend failure
// is rendered as the server error turn and also returned.
func (c *Controller) Submit(ctx context.Context, text string) error {
	message := strings.TrimSpace(norm.NFC.String(text))
	if message == "" {
		c.logger.Debug().Msg("empty message rejected")
		return ErrEmptyMessage
	}

	if !c.begin() {
		c.logger.Debug().Str("message", message).Msg("exchange pending, message dropped")
		return ErrExchangePending
	}

	if !c.session.AllowSend(c.now()) {
		c.end()
		c.logger.Info().Str("message", message).Msg("message rate limited")
		return ErrRateLimited
	}

	return c.run(ctx, message, ModeReply)
}

// SelectOption handles a chip selection. The whole group is used up before the
// label is submitted as if the user had typed it.
func (c *Controller) SelectOption(ctx context.Context, group *OptionGroup, label string) error {
	if group == nil || !group.Has(label) {
		return ErrUnknownOption
	}
	if !group.markUsed() {
		return ErrOptionsUsed
	}
	return c.Submit(ctx, label)
}

// PanelShown is called every time the chat panel becomes visible. The first
// call replays stored history and runs the opening exchange; later calls do
// nothing.
func (c *Controller) PanelShown(ctx context.Context) error {
	if !c.session.MarkOpened() {
		return nil
	}

	// Replayed turns are already stored.
	for _, turn := range c.history.LoadAll() {
		c.renderer.AppendTurn(turn)
	}

	if !c.begin() {
		return ErrExchangePending
	}
	return c.run(ctx, chatapi.InitMessage, ModeOpening)
}

// NotifyConnectivity renders a notice for a connectivity transition.
func (c *Controller) NotifyConnectivity(online bool) {
	if online {
		c.logger.Info().Msg("connection restored")
		c.appendTurn(model.RoleBot, TextMarkup(c.Messages().ConnectionRestored))
		return
	}
	c.logger.Info().Msg("connection lost")
	c.appendTurn(model.RoleBot, TextMarkup(c.Messages().ConnectionLost))
}

// =============================================================================
// EXCHANGE
// =============================================================================

func (c *Controller) begin() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pending {
		return false
	}
	c.pending = true
	return true
}

func (c *Controller) end() {
	c.mu.Lock()
	c.pending = false
	c.mu.Unlock()
}

// run performs one exchange. The caller must hold the pending slot; run
// releases it. Input is re-enabled and the indicator removed on every path,
// including panics.
func (c *Controller) run(ctx context.Context, message string, mode Mode) (err error) {
	var (
		handle PendingHandle
		shown  bool
		msgs   = c.Messages()
	)

	defer c.renderer.SetInputEnabled(true)
	defer c.end()
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error().Interface("panic", r).Str("message", message).Msg("exchange panicked")
			if shown {
				c.renderer.HidePendingIndicator(handle)
			}
			c.appendTurn(model.RoleBot, TextMarkup(msgs.UnexpectedError))
			err = fmt.Errorf("%w: %v", ErrPanic, r)
		}
	}()

	label := msgs.Typing
	if mode == ModeReply {
		c.appendTurn(model.RoleUser, TextMarkup(message))
	} else {
		label = msgs.Connecting
	}
	handle = c.renderer.ShowPendingIndicator(label)
	shown = true
	c.renderer.SetInputEnabled(false)

	resp, sendErr := c.client.Send(ctx, message, c.session.UserID())

	c.renderer.HidePendingIndicator(handle)
	shown = false

	if sendErr != nil {
		if ctx.Err() != nil {
			c.logger.Debug().Err(sendErr).Msg("exchange cancelled")
			return sendErr
		}
		c.logger.Error().Err(sendErr).Str("message", message).Msg("exchange failed")
		failure := msgs.ServerError
		if mode == ModeOpening {
			failure = msgs.GreetingFailed
		}
		c.appendTurn(model.RoleBot, TextMarkup(failure))
		return fmt.Errorf("exchange: %w", sendErr)
	}

	plan := Interpret(resp, msgs.NotUnderstood, mode)
	for _, markup := range plan.Turns {
		c.appendTurn(model.RoleBot, markup)
	}
	if len(plan.Options) > 0 {
		c.renderer.AppendOptionChips(NewOptionGroup(c.groupID.Add(1), plan.Options))
	}
	return nil
}

// appendTurn renders a turn, then persists and tracks it.
func (c *Controller) appendTurn(role model.Role, markup string) {
	turn := model.NewTurnAt(role, markup, c.now())
	c.renderer.AppendTurn(turn)
	c.history.Append(turn)
	if c.tracker != nil {
		c.tracker.Track("message_added", map[string]any{"type": role.String()})
	}
}
