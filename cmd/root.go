// Copyright (c) 2025 Sqlferry
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package cmd provides the command-line interface for the sqlferry CLI application.
// It implements subcommands for executing SQL, importing and exporting dumps,
// time travel and migrations using the Cobra CLI framework. The package handles
// command parsing, configuration loading, and renders results, spinners and
// errors in the terminal.
package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"sqlferry/cli/internal/config"
	apperr "sqlferry/cli/internal/errors"
	"sqlferry/cli/internal/httperrors"
	"sqlferry/cli/internal/logging"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var (
	showVersion bool
	configFile  string
	jsonOutput  bool

	// cfg is loaded by the root command before any subcommand runs.
	cfg *config.Config
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "sqlferry",
	Short: "Run SQL against hosted and local databases, move dumps in and out",
	Long: `sqlferry executes SQL against a hosted database or a local replica of it,
imports large SQL files through the bulk import pipeline, exports dumps,
and rewinds databases with time travel.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(config.Options{File: configFile, Flags: cmd.Flags()})
		if err != nil {
			return apperr.Wrap(apperr.UserError, "Could not load configuration", err).WithNotes(err.Error())
		}
		cfg = loaded

		var w io.Writer = cmd.ErrOrStderr()
		if jsonOutput {
			w = io.Discard
		}
		logger := logging.NewLogger(w, cfg.Verbose)
		cmd.SetContext(logging.WithLogger(cmd.Context(), logger))
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if showVersion {
			fmt.Fprintf(cmd.OutOrStdout(), "sqlferry %s\n", Version)
			return nil
		}
		return cmd.Help()
	},
}

// Execute runs the CLI application. Interrupts cancel the command context;
// errors are printed and turn into exit status 1.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err == nil {
		return
	}
	reportError(rootCmd.OutOrStdout(), rootCmd.ErrOrStderr(), err)
	os.Exit(1)
}

// reportError prints err for the user: JSON on stdout in --json mode,
// otherwise the message and its notes on stderr.
func reportError(stdout, stderr io.Writer, err error) {
	if errors.Is(err, context.Canceled) {
		err = apperr.User("Interrupted.").WithNotes(
			"Imports, exports and restores already sent to the server keep running there.",
			"Run the same command again to pick the job back up.",
		)
	}

	p := logging.Present(err)
	if jsonOutput {
		_ = json.NewEncoder(stdout).Encode(map[string]logging.Presentation{"error": p})
		return
	}

	if apperr.IsKind(err, apperr.TransportError) {
		host := httperrors.ExtractHostFromURL(config.DefaultAPIBaseURL)
		if cfg != nil {
			host = httperrors.ExtractHostFromURL(cfg.APIBaseURL)
		}
		var e *apperr.E
		if errors.As(err, &e) && e.Err != nil {
			httperrors.Print(stderr, e.Err, "talking to the API", host)
		}
	}
	pterm.Fprintln(stderr, pterm.Red("✘ ")+p.String())
	if apperr.Reportable(err) {
		pterm.Fprintln(stderr, "  Run again with --verbose for more detail.")
	}
}

func init() {
	rootCmd.Flags().BoolVar(&showVersion, "version", false, "Show CLI version information")

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&configFile, "config", "c", "", "Path to the project file (default: search for "+config.ProjectFile+")")
	pf.BoolVar(&jsonOutput, "json", false, "Print results and errors as JSON")
	pf.BoolP("verbose", "v", false, "Log every request and statement")
	pf.String("account-id", "", "Account that owns the databases")
	pf.String("api-base-url", "", "Base URL of the database API")
}
