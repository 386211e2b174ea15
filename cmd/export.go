// Copyright (c) 2025 Sqlferry
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"sqlferry/cli/internal/database"
	"sqlferry/cli/internal/sqlexec"
	"sqlferry/cli/internal/transfer"

	"github.com/dustin/go-humanize"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var (
	exportSpec   transfer.ExportSpec
	exportTarget database.Flags
)

// exportCmd writes a SQL dump of a database to a local file.
var exportCmd = &cobra.Command{
	Use:   "export <database>",
	Short: "Export the contents or schema of a database as a .sql file",
	Long: `The export command writes a SQL dump of a hosted database (the default) or of
its local replica (--local) to the --output path.

Remote exports are generated on the server and polled until a download URL is
ready; the database is unavailable to serve queries while the dump is taken.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if err := exportSpec.Validate(); err != nil {
			return err
		}
		target, api, err := resolveTarget(ctx, args[0], exportTarget, database.Remote)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()

		sp, stop := startSpinner("Exporting " + target.Ref.Label())
		opts := transferOptions(ctx, progressSink(out, sp))
		var res transfer.ExportResult
		if target.Mode.IsRemote() {
			res, err = transfer.NewExporter(api, newBlobs(ctx), opts).Export(ctx, target.Effective(), exportSpec)
		} else {
			local := sqlexec.NewLocal(target, sqlexec.Options{Logger: opts.Logger, Verbose: cfg.Verbose})
			res, err = transfer.NewExporter(nil, nil, opts).ExportLocal(ctx, local, exportSpec)
		}
		stop()
		if err != nil {
			return err
		}

		if jsonOutput {
			return renderJSON(out, res)
		}
		pterm.Fprintln(out, "🌀 Downloaded "+describeTarget(target)+" to "+res.Path+" ("+humanize.Bytes(uint64(res.Bytes))+")")
		if res.Bookmark != "" {
			heading(out, "Bookmark: ", res.Bookmark)
		}
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportSpec.OutputPath, "output", "o", "", "Path to the .sql file to write")
	exportCmd.Flags().StringArrayVar(&exportSpec.Tables, "table", nil, "Only export this table (repeatable)")
	exportCmd.Flags().BoolVar(&exportSpec.NoSchema, "no-schema", false, "Only output table contents, not the schema")
	exportCmd.Flags().BoolVar(&exportSpec.NoData, "no-data", false, "Only output the schema, not table contents")
	addTargetFlags(exportCmd, &exportTarget)
	rootCmd.AddCommand(exportCmd)
}
