// Copyright (c) 2025 Sqlferry
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"context"
	"os"
	"time"

	"sqlferry/cli/internal/auth"
	"sqlferry/cli/internal/backend"
	"sqlferry/cli/internal/config"
	"sqlferry/cli/internal/logging"
	"sqlferry/cli/internal/terminal"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// loginCmd stores an API token in the OS keychain after verifying it.
var loginCmd = &cobra.Command{
	Use:     "login",
	Aliases: []string{"auth"},
	Short:   "Store an API token for this device",
	Long: `The login command reads an API token (without echoing it), verifies it with the
service and stores it in the OS keychain.

When ` + config.TokenEnv + ` is set it takes precedence over the stored token.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
		defer cancel()
		out := cmd.OutOrStdout()

		svc := auth.NewService()
		st, err := svc.State()
		switch {
		case err != nil:
			logging.FromContext(ctx).Debug(logging.PresentError("reading login state", err))
		case st.LoggedIn:
			pterm.Fprintln(out, "Already logged in (token "+st.TokenID+"). Logging in again replaces the stored token.")
		}

		token, err := readSecret(cmd, "API token: ")
		if err != nil {
			return err
		}
		verifier := backend.New(backend.Options{
			APIBaseURL: cfg.APIBaseURL,
			AccountID:  cfg.AccountID,
			Token:      token,
			Version:    Version,
			Logger:     logging.FromContext(ctx),
		})

		_, stop := startSpinner("Verifying token")
		status, err := svc.Login(ctx, token, verifier)
		stop()
		if err != nil {
			return err
		}
		pterm.Fprintln(out, "✅ Logged in with token "+status.ID)
		return nil
	},
}

// readSecret prompts on stderr so stdout stays clean for piped use.
func readSecret(cmd *cobra.Command, prompt string) (string, error) {
	in, ok := cmd.InOrStdin().(*os.File)
	if !ok {
		in = os.Stdin
	}
	return terminal.ReadSecret(cmd.ErrOrStderr(), in, prompt)
}

func init() {
	rootCmd.AddCommand(loginCmd)
}
