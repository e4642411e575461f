// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newWhoamiCommand(opts *rootOptions) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Print the user identifier sent to the backend",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.setup(logToStderr, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.Close()

			id := a.identity.GetOrCreateUserID()
			if asJSON {
				return NewJSONResponse("whoami", map[string]string{
					"user_id": id,
					"storage": a.cfg.Storage.Backend,
				}).Write(cmd.OutOrStdout())
			}
			fmt.Fprintln(cmd.OutOrStdout(), id)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print as JSON")
	return cmd
}
