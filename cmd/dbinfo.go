// Copyright (c) 2025 Sqlferry
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"fmt"

	"sqlferry/cli/internal/database"

	"github.com/dustin/go-humanize"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// dbinfoCmd shows metadata of a hosted database.
var dbinfoCmd = &cobra.Command{
	Use:   "info <database>",
	Short: "Show information about a hosted database",
	Long: `The info command resolves a database by binding or name and shows its id,
generation, size and table count. Alpha-generation databases do not support
time travel.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		target, api, err := resolveTarget(ctx, args[0], database.Flags{Remote: true}, database.Remote)
		if err != nil {
			return err
		}
		info, err := api.DatabaseInfo(ctx, target.Ref)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if jsonOutput {
			return renderJSON(out, info)
		}
		size := string(info.FileSize)
		if n, err := info.FileSize.Int64(); err == nil {
			size = humanize.Bytes(uint64(n))
		}
		details := fmt.Sprintf("uuid:       %s\nversion:    %s\ncreated at: %s\nsize:       %s\ntables:     %d",
			info.UUID, info.Version, info.CreatedAt, size, info.NumTables)
		box := pterm.DefaultBox.
			WithTitle(pterm.NewStyle(pterm.FgCyan, pterm.Bold).Sprint(info.Name)).
			WithTopPadding(1).WithBottomPadding(1).WithLeftPadding(1).WithRightPadding(1).
			Sprint(details)
		pterm.Fprintln(out, box)
		if info.Version == database.GenerationAlpha {
			pterm.Fprintln(out, "⚠️  Time travel is not available for alpha databases.")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(dbinfoCmd)
}
