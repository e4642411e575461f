// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/jeranaias/shopchat/internal/exchange"
	"github.com/jeranaias/shopchat/internal/model"
	"github.com/jeranaias/shopchat/internal/ui/markup"
	"github.com/jeranaias/shopchat/internal/ui/plain"
)

func newSendCommand(opts *rootOptions) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "send <message...>",
		Short: "Send one message and print the reply",
		Long: `Send one message to the backend and print the reply.

The words are joined with spaces. The turns are stored in the history like any
other exchange. With --json the reply is printed as a JSON envelope.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.setup(logToStderr, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.Close()

			message := strings.Join(args, " ")
			if asJSON {
				return sendJSON(cmd, a, message)
			}

			renderer := plain.NewRenderer(cmd.OutOrStdout(), plain.WithUserEcho(true))
			err = a.controller(renderer).Submit(cmd.Context(), message)
			switch {
			case err == nil:
				return nil
			case errors.Is(err, exchange.ErrEmptyMessage):
				return errors.New("message is empty")
			default:
				// The failure turn has been printed already.
				return errSilentExit
			}
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the reply as JSON")
	return cmd
}

// sendResult is the JSON payload of send --json.
type sendResult struct {
	UserID  string     `json:"user_id"`
	Turns   []turnJSON `json:"turns"`
	Options []string   `json:"options,omitempty"`
}

type turnJSON struct {
	Role      string    `json:"role"`
	Text      string    `json:"text"`
	Markup    string    `json:"markup"`
	Timestamp time.Time `json:"timestamp"`
}

func newTurnJSON(t model.Turn) turnJSON {
	return turnJSON{
		Role:      t.Role.String(),
		Text:      markup.ToPlain(t.Content),
		Markup:    t.Content,
		Timestamp: t.Timestamp,
	}
}

func sendJSON(cmd *cobra.Command, a *app, message string) error {
	rec := &recorder{}
	err := a.controller(rec).Submit(cmd.Context(), message)

	var resp *JSONResponse
	if err != nil {
		resp = NewJSONErrorResponse("send", err)
	} else {
		result := sendResult{UserID: a.session.UserID(), Options: rec.options()}
		for _, t := range rec.turns() {
			result.Turns = append(result.Turns, newTurnJSON(t))
		}
		resp = NewJSONResponse("send", result)
	}
	if werr := resp.Write(cmd.OutOrStdout()); werr != nil {
		return werr
	}
	if err != nil {
		return errSilentExit
	}
	return nil
}

// recorder is an exchange.Renderer that keeps what it is given.
type recorder struct {
	mu    sync.Mutex
	log   []model.Turn
	group *exchange.OptionGroup
	next  exchange.PendingHandle
}

func (r *recorder) AppendTurn(turn model.Turn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.log = append(r.log, turn)
}

func (r *recorder) AppendOptionChips(group *exchange.OptionGroup) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.group = group
}

func (r *recorder) ShowPendingIndicator(string) exchange.PendingHandle {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.next++
	return r.next
}

func (r *recorder) HidePendingIndicator(exchange.PendingHandle) {}

func (r *recorder) SetInputEnabled(bool) {}

func (r *recorder) turns() []model.Turn {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]model.Turn(nil), r.log...)
}

func (r *recorder) options() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.group == nil {
		return nil
	}
	return append([]string(nil), r.group.Labels...)
}

var _ exchange.Renderer = (*recorder)(nil)

