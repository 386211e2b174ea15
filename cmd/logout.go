// Copyright (c) 2025 Sqlferry
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"os"

	"sqlferry/cli/internal/auth"
	"sqlferry/cli/internal/config"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// logoutCmd removes the stored API token and login state.
var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove the stored API token",
	Long: `The logout command clears the API token and login state from the OS keychain.
A token supplied through ` + config.TokenEnv + ` is not affected.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		if err := auth.NewService().Logout(); err != nil {
			return err
		}
		pterm.Fprintln(out, "✅ Stored credentials have been removed")
		if os.Getenv(config.TokenEnv) != "" {
			pterm.Fprintln(out, "   "+config.TokenEnv+" is still set and will keep being used.")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(logoutCmd)
}
