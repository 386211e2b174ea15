// Copyright (c) 2025 Sqlferry
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"time"

	"sqlferry/cli/internal/database"
	"sqlferry/cli/internal/logging"
	"sqlferry/cli/internal/terminal"
	"sqlferry/cli/internal/timetravel"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var (
	ttTimestamp string
	ttBookmark  string
	ttYes       bool
)

var timeTravelCmd = &cobra.Command{
	Use:   "time-travel",
	Short: "Restore a database back to a specific point in time",
}

var timeTravelInfoCmd = &cobra.Command{
	Use:   "info <database>",
	Short: "Retrieve information about a database at a point in time",
	Long: `Prints the bookmark for --timestamp, or the current bookmark when no timestamp is
given. Timestamps are Unix seconds, Unix milliseconds or ISO 8601, and must lie
within the last 30 days.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		target, api, err := resolveTarget(ctx, args[0], database.Flags{Remote: true}, database.Remote)
		if err != nil {
			return err
		}
		r := timetravel.NewResolver(api, timetravel.Options{Logger: logging.FromContext(ctx)})
		bm, err := r.Bookmark(ctx, target.Ref, ttTimestamp)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if jsonOutput {
			return renderJSON(out, map[string]string{"bookmark": bm})
		}
		label := "Current bookmark"
		if ttTimestamp != "" {
			label = "Bookmark at " + ttTimestamp
		}
		box := pterm.DefaultBox.
			WithTitle(pterm.NewStyle(pterm.FgCyan, pterm.Bold).Sprint(target.Ref.Label())).
			WithTopPadding(1).WithBottomPadding(1).WithLeftPadding(1).WithRightPadding(1).
			Sprint(label + ": " + bm)
		pterm.Fprintln(out, box)
		pterm.Fprintln(out, "To restore to this bookmark, run: sqlferry time-travel restore "+args[0]+" --bookmark="+bm)
		return nil
	},
}

var timeTravelRestoreCmd = &cobra.Command{
	Use:   "restore <database>",
	Short: "Restore a database to a bookmark or point in time",
	Long: `Rewinds the database to --bookmark, or to the bookmark nearest --timestamp.
Exactly one of the two must be given. The previous bookmark is printed so the
restore can be undone.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		out := cmd.OutOrStdout()
		req := timetravel.RestoreRequest{Timestamp: ttTimestamp, Bookmark: ttBookmark}
		if err := req.Validate(time.Now()); err != nil {
			return err
		}

		target, api, err := resolveTarget(ctx, args[0], database.Flags{Remote: true}, database.Remote)
		if err != nil {
			return err
		}
		if !ttYes && terminal.IsInteractive() && !jsonOutput {
			if !confirm(out, cmd.InOrStdin(), "⚠️  This will overwrite all data in database "+target.Ref.Label()+".\nIn-flight queries and transactions will be cancelled.") {
				pterm.Fprintln(out, "Not restoring.")
				return nil
			}
		}

		sp, stop := startSpinner("Restoring " + target.Ref.Label())
		r := timetravel.NewResolver(api, timetravel.Options{
			Logger: logging.FromContext(ctx),
			OnState: func(s timetravel.State) {
				if sp != nil {
					sp.UpdateText("Restoring " + target.Ref.Label() + ": " + s.String())
				}
			},
		})
		res, err := r.Restore(ctx, target.Ref, req)
		stop()
		if err != nil {
			return err
		}

		if jsonOutput {
			return renderJSON(out, res)
		}
		pterm.Fprintln(out, "⚡️ Time travel in progress...")
		if res.Message != "" {
			pterm.Fprintln(out, res.Message)
		}
		heading(out, "→ Bookmark:          ", res.Bookmark)
		heading(out, "→ Previous bookmark: ", res.PreviousBookmark)
		pterm.Fprintln(out, "To undo this operation, run: sqlferry time-travel restore "+args[0]+" --bookmark="+res.PreviousBookmark)
		return nil
	},
}

func init() {
	timeTravelInfoCmd.Flags().StringVar(&ttTimestamp, "timestamp", "", "Unix timestamp or ISO 8601 date to look up")
	timeTravelRestoreCmd.Flags().StringVar(&ttTimestamp, "timestamp", "", "Unix timestamp or ISO 8601 date to restore to")
	timeTravelRestoreCmd.Flags().StringVar(&ttBookmark, "bookmark", "", "Bookmark to restore to")
	timeTravelRestoreCmd.Flags().BoolVarP(&ttYes, "yes", "y", false, "Skip the confirmation prompt")

	timeTravelCmd.AddCommand(timeTravelInfoCmd, timeTravelRestoreCmd)
	rootCmd.AddCommand(timeTravelCmd)
}
