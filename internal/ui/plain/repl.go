// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package plain

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/peterh/liner"
	"github.com/rs/zerolog"

	"github.com/jeranaias/shopchat/internal/exchange"
)

// Prompter reads one line of input. *liner.State satisfies it.
type Prompter interface {
	Prompt(prompt string) (string, error)
	AppendHistory(item string)
}

// Controller is the part of exchange.Controller the REPL drives.
type Controller interface {
	Submit(ctx context.Context, text string) error
	SelectOption(ctx context.Context, group *exchange.OptionGroup, label string) error
	PanelShown(ctx context.Context) error
}

const helpText = `Type a message and press Enter.
When options are listed, enter their number to pick one.
/help  show this help
/quit  leave (also Ctrl+D)`

// REPL is the line-mode chat loop. The panel counts as shown from the start.
type REPL struct {
	ctrl   Controller
	render *Renderer
	in     Prompter
	out    io.Writer
	prompt string
	logger zerolog.Logger
}

// NewREPL creates a loop reading from in and printing notices to out.
func NewREPL(ctrl Controller, render *Renderer, in Prompter, out io.Writer) *REPL {
	return &REPL{
		ctrl:   ctrl,
		render: render,
		in:     in,
		out:    out,
		prompt: "> ",
		logger: zerolog.Nop(),
	}
}

// WithPrompt sets the prompt string.
func (r *REPL) WithPrompt(p string) *REPL {
	r.prompt = p
	return r
}

// WithLogger sets the logger.
func (r *REPL) WithLogger(l zerolog.Logger) *REPL {
	r.logger = l.With().Str("component", "repl").Logger()
	return r
}

// Run shows the panel and reads lines until EOF, an abort, /quit or ctx ends.
func (r *REPL) Run(ctx context.Context) error {
	r.check(r.ctrl.PanelShown(ctx))

	for {
		if ctx.Err() != nil {
			return nil
		}

		line, err := r.in.Prompt(r.prompt)
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, liner.ErrPromptAborted) {
				fmt.Fprintln(r.out)
				return nil
			}
			return fmt.Errorf("read input: %w", err)
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		r.in.AppendHistory(line)

		switch strings.ToLower(line) {
		case "/quit", "/exit":
			return nil
		case "/help":
			fmt.Fprintln(r.out, helpText)
			continue
		}

		if group, label, ok := r.option(line); ok {
			r.check(r.ctrl.SelectOption(ctx, group, label))
			continue
		}
		r.check(r.ctrl.Submit(ctx, line))
	}
}

// option resolves a number typed while options are on offer.
func (r *REPL) option(line string) (*exchange.OptionGroup, string, bool) {
	group := r.render.ActiveOptions()
	if group == nil {
		return nil, "", false
	}
	n, err := strconv.Atoi(line)
	if err != nil || n < 1 || n > len(group.Labels) {
		return nil, "", false
	}
	return group, group.Labels[n-1], true
}

// check logs a controller result. User-visible failures are already printed.
func (r *REPL) check(err error) {
	switch {
	case err == nil:
	case errors.Is(err, exchange.ErrRateLimited),
		errors.Is(err, exchange.ErrEmptyMessage),
		errors.Is(err, exchange.ErrExchangePending),
		errors.Is(err, exchange.ErrOptionsUsed),
		errors.Is(err, context.Canceled):
		r.logger.Debug().Err(err).Msg("input not sent")
	default:
		r.logger.Error().Err(err).Msg("exchange failed")
	}
}
