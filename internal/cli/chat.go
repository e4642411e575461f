// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/peterh/liner"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/jeranaias/shopchat/internal/config"
	"github.com/jeranaias/shopchat/internal/ui/markup"
	"github.com/jeranaias/shopchat/internal/ui/plain"
	"github.com/jeranaias/shopchat/internal/ui/styles"
	"github.com/jeranaias/shopchat/internal/ui/widget"
)

// UI modes.
const (
	modeAuto  = "auto"
	modeTUI   = "tui"
	modePlain = "plain"
)

// inputHistoryFile holds the line-mode prompt history under the config dir.
const inputHistoryFile = "input_history"

// resolveMode picks the UI. Auto selects the TUI only when both ends are
// terminals.
func resolveMode(mode string, stdinTTY, stdoutTTY bool) string {
	switch mode {
	case modeTUI, modePlain:
		return mode
	}
	if stdinTTY && stdoutTTY {
		return modeTUI
	}
	return modePlain
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// runChat is the default command.
func runChat(cmd *cobra.Command, opts *rootOptions) error {
	mode := resolveMode(opts.cfg.UI.Mode, isTerminal(os.Stdin), isTerminal(os.Stdout))

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if mode == modeTUI {
		a, err := opts.setup(logToFile, cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		defer a.Close()
		return runTUI(ctx, a, opts.configPath)
	}

	a, err := opts.setup(logToStderr, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer a.Close()
	return runPlain(ctx, a, opts.configPath)
}

// =============================================================================
// TUI
// =============================================================================

func runTUI(ctx context.Context, a *app, configPath string) error {
	renderer := widget.NewProgramRenderer(nil)
	ctrl := a.controller(renderer)

	var format markup.Formatter = markup.PlainFormatter
	if r, err := markup.NewRenderer(a.cfg.UI.Theme, 0); err != nil {
		a.logger.Warn().Err(err).Msg("markdown renderer unavailable, using plain text")
	} else {
		format = r
	}

	m := widget.New(ctx, ctrl, format, styles.NewTheme(),
		widget.WithPlaceholder(a.cfg.Messages.Placeholder),
		widget.WithLogger(a.logger),
	)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	renderer.Attach(p.Send)

	a.startMonitor(ctx, func(online bool) {
		ctrl.NotifyConnectivity(online)
		p.Send(widget.ConnectivityMsg{Online: online})
	})
	a.watchConfig(ctx, configPath, func(cfg *config.Config) {
		ctrl.SetMessages(cfg.Messages.Exchange())
		p.Send(widget.PlaceholderMsg{Text: cfg.Messages.Placeholder})
	})

	if _, err := p.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("chat UI failed: %w", err)
	}
	return nil
}

// =============================================================================
// LINE MODE
// =============================================================================

func runPlain(ctx context.Context, a *app, configPath string) error {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)
	defer line.Close()

	historyPath := ""
	if dir, err := config.ConfigDir(); err == nil {
		historyPath = filepath.Join(dir, inputHistoryFile)
		loadInputHistory(line, historyPath)
		defer saveInputHistory(line, historyPath, a)
	}

	var format markup.Formatter = markup.PlainFormatter
	if isTerminal(os.Stdout) {
		width := markup.DefaultWrap
		if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
			width = w
		}
		if r, err := markup.NewRenderer(a.cfg.UI.Theme, width); err == nil {
			format = r
		} else {
			a.logger.Warn().Err(err).Msg("markdown renderer unavailable, using plain text")
		}
	}

	renderer := plain.NewRenderer(os.Stdout, plain.WithFormatter(format))
	ctrl := a.controller(renderer)

	a.startMonitor(ctx, ctrl.NotifyConnectivity)
	a.watchConfig(ctx, configPath, func(cfg *config.Config) {
		ctrl.SetMessages(cfg.Messages.Exchange())
	})

	return plain.NewREPL(ctrl, renderer, line, os.Stdout).
		WithLogger(a.logger).
		Run(ctx)
}

func loadInputHistory(line *liner.State, path string) {
	f, err := os.Open(path)
	if err != nil {
		return
	}
	defer f.Close()
	_, _ = line.ReadHistory(f)
}

// saveInputHistory writes the prompt history.
// SECURITY: History holds user messages; written 0600.
func saveInputHistory(line *liner.State, path string, a *app) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		a.logger.Debug().Err(err).Msg("failed to create config dir")
		return
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		a.logger.Debug().Err(err).Msg("failed to save input history")
		return
	}
	defer f.Close()
	_, _ = line.WriteHistory(f)
}
