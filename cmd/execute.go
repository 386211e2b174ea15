// Copyright (c) 2025 Sqlferry
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"context"
	"io"
	"strings"

	"sqlferry/cli/internal/database"
	apperr "sqlferry/cli/internal/errors"
	"sqlferry/cli/internal/logging"
	"sqlferry/cli/internal/splitter"
	"sqlferry/cli/internal/sqlexec"
	"sqlferry/cli/internal/sqlfile"
	"sqlferry/cli/internal/terminal"
	"sqlferry/cli/internal/transfer"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

const importWarning = "This process may take some time, during which your database will be unavailable to serve queries."

var (
	executeCommand string
	executeFile    string
	executeYes     bool
	executeTarget  database.Flags
)

// executeCmd runs SQL against a database.
var executeCmd = &cobra.Command{
	Use:   "execute <database>",
	Short: "Execute a command or SQL file",
	Long: `The execute command runs SQL against the local replica of a database (the default)
or against the hosted database with --remote.

A --file sent to a hosted database goes through the bulk import pipeline: the file
is hashed, uploaded once to a presigned URL, ingested on the server and polled
until it completes. Everything else runs as a single batch; locally the batch
runs in one transaction.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if executeCommand != "" && executeFile != "" {
			return apperr.User("can't provide both --command and --file")
		}
		if executeCommand == "" && executeFile == "" {
			return apperr.User("must provide --command or --file")
		}

		target, api, err := resolveTarget(ctx, args[0], executeTarget, database.Local)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()

		if target.Mode.IsRemote() && executeFile != "" {
			return runImport(ctx, cmd, target, api)
		}

		script := executeCommand
		if executeFile != "" {
			if script, err = sqlfile.Read(executeFile); err != nil {
				return err
			}
		}
		if !jsonOutput {
			pterm.Fprintln(out, "🌀 Executing on "+describeTarget(target)+":")
		}
		exec := sqlexec.New(target, api, sqlexec.Options{Logger: logging.FromContext(ctx), Verbose: cfg.Verbose})
		return runScript(ctx, out, exec, script)
	},
}

// runScript executes script and prints its results. Results for statements
// that completed before a failure are still printed ahead of the error;
// in --json mode the error alone is written so stdout stays one document.
func runScript(ctx context.Context, w io.Writer, exec sqlexec.Executor, script string) error {
	results, err := exec.Execute(ctx, script)
	if err != nil {
		if len(results) > 0 && !jsonOutput {
			if perr := printResults(w, labelResults(results, script)); perr != nil {
				logging.FromContext(ctx).Debug("could not print partial results", "error", perr)
			}
		}
		return err
	}
	return printResults(w, labelResults(results, script))
}

// runImport sends executeFile through the bulk import pipeline.
func runImport(ctx context.Context, cmd *cobra.Command, target database.Target, api transfer.ImportAPI) error {
	out := cmd.OutOrStdout()
	logger := logging.FromContext(ctx)
	switch {
	case executeYes:
	case terminal.IsInteractive() && !jsonOutput:
		if !confirm(out, cmd.InOrStdin(), "⚠️  "+importWarning) {
			pterm.Fprintln(out, "Not executing.")
			return nil
		}
	default:
		logger.Warn(importWarning)
	}

	sp, stop := startSpinner("Preparing import")
	importer := transfer.NewImporter(api, newBlobs(ctx), transferOptions(ctx, progressSink(out, sp)))
	res, err := importer.ImportFile(ctx, target.Effective(), executeFile)
	stop()
	if err != nil {
		return err
	}

	if !jsonOutput {
		pterm.Fprintln(out, "🚣 Executed "+describeTarget(target)+" from "+executeFile)
	}
	summary := res.Summary()
	if jsonOutput {
		return renderJSON(out, []sqlexec.Result{summary})
	}
	renderTable(out, summary.Rows)
	heading(out, "Final bookmark: ", res.FinalBookmark)
	return nil
}

// labelResults attaches each statement's text to its result when the
// statement and result counts line up.
func labelResults(results []sqlexec.Result, script string) []sqlexec.Result {
	stmts := splitter.Strings(script)
	if len(stmts) != len(results) {
		return results
	}
	for i := range results {
		results[i].Query = strings.TrimSpace(stmts[i])
	}
	return results
}

func printResults(w io.Writer, results []sqlexec.Result) error {
	if jsonOutput {
		return renderJSON(w, results)
	}
	if err := renderResults(w, results, false); err != nil {
		return err
	}
	var total float64
	for _, r := range results {
		total += r.Meta.Duration
	}
	pterm.Fprintln(w, "🚣 "+executedLine(len(results), total))
	return nil
}

func describeTarget(t database.Target) string {
	switch t.Mode {
	case database.Local:
		return "local database " + t.Ref.Label()
	case database.Preview:
		return "preview database " + t.Ref.Label()
	default:
		return "remote database " + t.Ref.Label()
	}
}

func init() {
	executeCmd.Flags().StringVar(&executeCommand, "command", "", "The SQL query you wish to execute, or multiple queries separated by ';'")
	executeCmd.Flags().StringVar(&executeFile, "file", "", "A .sql file to execute")
	executeCmd.Flags().BoolVarP(&executeYes, "yes", "y", false, "Answer yes to any prompts")
	addTargetFlags(executeCmd, &executeTarget)
	rootCmd.AddCommand(executeCmd)
}
