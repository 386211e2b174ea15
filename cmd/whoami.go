// Copyright (c) 2025 Sqlferry
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"sqlferry/cli/internal/auth"
	apperr "sqlferry/cli/internal/errors"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// whoamiCmd verifies the current token and shows where it came from.
var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the API token in use",
	Long: `The whoami command verifies the current API token with the service and shows
its id and whether it came from the environment or the OS keychain.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		out := cmd.OutOrStdout()

		svc := auth.NewService()
		_, source, err := svc.Token()
		if apperr.IsKind(err, apperr.UserError) {
			pterm.Fprintln(out, "🔒 You're not logged in yet!")
			pterm.Fprintln(out, "   Run 'sqlferry login' to get started.")
			return nil
		}
		if err != nil {
			return err
		}
		api, err := newAPI(ctx)
		if err != nil {
			return err
		}
		st, err := svc.WhoAmI(ctx, api)
		if err != nil {
			return err
		}
		if jsonOutput {
			return renderJSON(out, map[string]string{"id": st.ID, "status": st.Status, "source": string(source)})
		}
		pterm.Fprintln(out, "👤 Token "+st.ID+" ("+st.Status+", from "+string(source)+")")
		if cfg.AccountID != "" {
			heading(out, "→ Account: ", cfg.AccountID)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(whoamiCmd)
}
