// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/jeranaias/shopchat/internal/export"
	"github.com/jeranaias/shopchat/internal/model"
	"github.com/jeranaias/shopchat/internal/ui/markup"
	"github.com/jeranaias/shopchat/internal/ui/styles"
	"github.com/jeranaias/shopchat/internal/util"
)

// historyTextWidth is the column budget for one listed turn.
const historyTextWidth = 64

var (
	historyTimeStyle = lipgloss.NewStyle().Foreground(styles.TextMuted)
	historyUserStyle = lipgloss.NewStyle().Foreground(styles.Accent).Bold(true)
	historyBotStyle  = lipgloss.NewStyle().Foreground(styles.Brand).Bold(true)
)

func newHistoryCommand(opts *rootOptions) *cobra.Command {
	var (
		limit  int
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List the stored conversation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.setup(logToStderr, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.Close()

			turns := a.history.LoadAll()
			if limit > 0 && len(turns) > limit {
				turns = turns[len(turns)-limit:]
			}

			if asJSON {
				out := make([]turnJSON, 0, len(turns))
				for _, t := range turns {
					out = append(out, newTurnJSON(t))
				}
				return NewJSONResponse("history", out).Write(cmd.OutOrStdout())
			}
			printHistory(cmd.OutOrStdout(), turns)
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "show only the last N turns")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print as JSON")

	cmd.AddCommand(newHistoryExportCommand(opts))
	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Delete the stored conversation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.setup(logToStderr, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.history.Clear(); err != nil {
				return fmt.Errorf("failed to clear history: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), styles.RenderSuccess("History cleared"))
			return nil
		},
	})
	return cmd
}

func newHistoryExportCommand(opts *rootOptions) *cobra.Command {
	var (
		format    string
		output    string
		noTimes   bool
		htmlTheme string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the stored conversation to a Markdown, JSON or HTML file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			exporter, err := export.ForFormat(format, &export.Options{
				IncludeTimestamps: !noTimes,
				Theme:             htmlTheme,
			})
			if err != nil {
				return err
			}

			a, err := opts.setup(logToStderr, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.Close()

			transcript := export.NewTranscript("shopchat conversation",
				a.identity.GetOrCreateUserID(), a.history.LoadAll())
			path, err := export.ExportToFile(transcript, exporter, output)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), styles.RenderSuccess("Exported to "+path))
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "md", "output format: md, json or html")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file or directory (default: current directory)")
	cmd.Flags().BoolVar(&noTimes, "no-timestamps", false, "omit per-turn timestamps")
	cmd.Flags().StringVar(&htmlTheme, "theme", "light", "HTML theme: light or dark")
	return cmd
}

// printHistory writes one line per turn: time, role and the flattened text.
func printHistory(w io.Writer, turns []model.Turn) {
	if len(turns) == 0 {
		fmt.Fprintln(w, historyTimeStyle.Render("No stored messages."))
		return
	}
	for _, t := range turns {
		role := historyBotStyle
		if t.IsUser() {
			role = historyUserStyle
		}
		text := util.TruncateWidth(util.SingleLine(markup.ToPlain(t.Content)), historyTextWidth)
		fmt.Fprintf(w, "%s  %s %s\n",
			historyTimeStyle.Render(t.Timestamp.Local().Format("2006-01-02 15:04")),
			role.Render(util.PadRight(t.Role.DisplayName(), 9)),
			text,
		)
	}
}
