// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jeranaias/shopchat/internal/config"
	"github.com/jeranaias/shopchat/internal/ui/styles"
)

// Version information, set at build time via ldflags.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// skipConfigAnnotation marks commands that must work without a valid config.
const skipConfigAnnotation = "shopchat/skip-config"

// rootOptions holds the global flags and the config they resolve to.
type rootOptions struct {
	configPath string
	apiURL     string
	storage    string
	plain      bool
	debug      bool

	cfg *config.Config
}

// NewRootCommand builds the command tree.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "shopchat",
		Short: "Terminal chat client for the shop assistant",
		Long: `shopchat talks to a shop assistant backend over HTTP.

Run without arguments to open the chat widget. On a terminal this is a
full-screen panel toggled with Ctrl+O; when input or output is redirected, or
with --plain, it falls back to a line-mode prompt.`,
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Annotations[skipConfigAnnotation] == "true" {
				return nil
			}
			return opts.loadConfig(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat(cmd, opts)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "config file (TOML, or JSON with a .json suffix)")
	flags.StringVar(&opts.apiURL, "api-url", "", "chat backend URL")
	flags.StringVar(&opts.storage, "storage", "", "storage backend: file, sqlite or memory")
	flags.BoolVar(&opts.plain, "plain", false, "use the line-mode prompt instead of the TUI")
	flags.BoolVar(&opts.debug, "debug", false, "enable debug logging")

	root.AddCommand(
		newSendCommand(opts),
		newHistoryCommand(opts),
		newWhoamiCommand(opts),
		newConfigCommand(opts),
		newVersionCommand(),
	)
	return root
}

// loadConfig resolves the config file, then layers the flag overrides on top.
func (o *rootOptions) loadConfig(cmd *cobra.Command) error {
	var (
		cfg *config.Config
		err error
	)
	if o.configPath != "" {
		cfg, err = config.LoadFromPath(o.configPath)
		if err != nil {
			return err
		}
	} else {
		cfg, err = config.Load()
		if cfg == nil {
			return err
		}
		if err != nil {
			fmt.Fprintln(cmd.ErrOrStderr(), styles.RenderWarning("using default config: "+err.Error()))
		}
	}

	if o.apiURL != "" {
		cfg.API.URL = o.apiURL
	}
	if o.storage != "" {
		cfg.Storage.Backend = strings.ToLower(o.storage)
	}
	if o.plain {
		cfg.UI.Mode = "plain"
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}

	o.cfg = cfg
	return nil
}

// Execute runs the command tree against os.Args and returns the exit code.
func Execute() int {
	root := NewRootCommand()
	if err := root.Execute(); err != nil {
		if !errors.Is(err, errSilentExit) {
			fmt.Fprintln(os.Stderr, styles.RenderError(err.Error()))
		}
		return 1
	}
	return 0
}

// errSilentExit is returned by commands that already reported their failure.
var errSilentExit = errors.New("exit")
