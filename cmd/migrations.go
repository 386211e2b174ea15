// Copyright (c) 2025 Sqlferry
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"sqlferry/cli/internal/database"
	"sqlferry/cli/internal/logging"
	"sqlferry/cli/internal/migrations"
	"sqlferry/cli/internal/sqlexec"
	"sqlferry/cli/internal/terminal"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var (
	migrationsTarget database.Flags
	migrationsYes    bool
)

var migrationsCmd = &cobra.Command{
	Use:   "migrations",
	Short: "Create, list and apply schema migrations",
	Long: `Migrations are .sql files named NNNN_name.sql in the database's migrations_dir
(default "` + migrations.DefaultDir + `"). Applied migrations are recorded in
migrations_table (default "` + migrations.DefaultTable + `").`,
}

var migrationsListCmd = &cobra.Command{
	Use:   "list <database>",
	Short: "List unapplied migrations",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		runner, _, err := migrationRunner(cmd, args[0])
		if err != nil {
			return err
		}
		pending, err := runner.Pending(ctx)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if jsonOutput {
			return renderJSON(out, pending)
		}
		if len(pending) == 0 {
			pterm.Fprintln(out, "✅ No migrations to apply!")
			return nil
		}
		renderMigrations(cmd, pending, nil)
		return nil
	},
}

var migrationsCreateCmd = &cobra.Command{
	Use:   "create <database> <message>",
	Short: "Create a new migration file",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		target, _, err := resolveTarget(cmd.Context(), args[0], database.Flags{Local: true}, database.Local)
		if err != nil {
			return err
		}
		m, err := migrations.Create(migrationsDir(target.Ref), strings.Join(args[1:], " "), time.Now())
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if jsonOutput {
			return renderJSON(out, m)
		}
		pterm.Fprintln(out, "✅ Successfully created Migration '"+m.Name+"'!")
		heading(out, "→ File: ", m.Path)
		return nil
	},
}

var migrationsApplyCmd = &cobra.Command{
	Use:   "apply <database>",
	Short: "Apply unapplied migrations",
	Long: `Applies pending migrations in order. Each migration runs together with its
tracking insert as one batch. The run stops at the first failure and the
remaining migrations are left pending.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		out := cmd.OutOrStdout()
		runner, target, err := migrationRunner(cmd, args[0])
		if err != nil {
			return err
		}
		pending, err := runner.Pending(ctx)
		if err != nil {
			return err
		}
		if len(pending) == 0 {
			if jsonOutput {
				return renderJSON(out, []migrations.Status{})
			}
			pterm.Fprintln(out, "✅ No migrations to apply!")
			return nil
		}
		if !jsonOutput {
			renderMigrations(cmd, pending, nil)
		}
		if !migrationsYes && terminal.IsInteractive() && !jsonOutput {
			if !confirm(out, cmd.InOrStdin(), "About to apply "+pluralMigrations(len(pending))+" to "+describeTarget(target)+".") {
				pterm.Fprintln(out, "Not applying.")
				return nil
			}
		}

		statuses, err := runner.Apply(ctx)
		if jsonOutput && err == nil {
			return renderJSON(out, statuses)
		}
		if !jsonOutput && len(statuses) > 0 {
			renderMigrations(cmd, nil, statuses)
		}
		return err
	},
}

func migrationRunner(cmd *cobra.Command, name string) (*migrations.Runner, database.Target, error) {
	ctx := cmd.Context()
	target, api, err := resolveTarget(ctx, name, migrationsTarget, database.Local)
	if err != nil {
		return nil, database.Target{}, err
	}
	logger := logging.FromContext(ctx)
	exec := sqlexec.New(target, api, sqlexec.Options{Logger: logger, Verbose: cfg.Verbose})
	return migrations.NewRunner(exec, migrationsDir(target.Ref), target.Ref.MigrationsTable, logger), target, nil
}

func migrationsDir(ref database.Ref) string {
	if ref.MigrationsDir != "" {
		return ref.MigrationsDir
	}
	return filepath.Join(cfg.ProjectRoot, migrations.DefaultDir)
}

// renderMigrations prints either pending migrations or the statuses of an apply run.
func renderMigrations(cmd *cobra.Command, pending []migrations.Migration, statuses []migrations.Status) {
	t := table.NewWriter()
	t.SetOutputMirror(cmd.OutOrStdout())
	t.SetStyle(table.StyleLight)
	if statuses == nil {
		t.AppendHeader(table.Row{"Name"})
		for _, m := range pending {
			t.AppendRow(table.Row{m.Name})
		}
	} else {
		t.AppendHeader(table.Row{"Name", "Status"})
		for _, s := range statuses {
			t.AppendRow(table.Row{s.Name, statusLabel(s.State)})
		}
	}
	t.Render()
}

func statusLabel(s migrations.State) string {
	switch s {
	case migrations.StateApplied:
		return "✅"
	case migrations.StateFailed:
		return "❌"
	default:
		return "🕒"
	}
}

func pluralMigrations(n int) string {
	if n == 1 {
		return "1 migration"
	}
	return strconv.Itoa(n) + " migrations"
}

func init() {
	for _, c := range []*cobra.Command{migrationsListCmd, migrationsApplyCmd} {
		addTargetFlags(c, &migrationsTarget)
	}
	migrationsApplyCmd.Flags().BoolVarP(&migrationsYes, "yes", "y", false, "Skip the confirmation prompt")
	migrationsCmd.AddCommand(migrationsListCmd, migrationsCreateCmd, migrationsApplyCmd)
	rootCmd.AddCommand(migrationsCmd)
}
