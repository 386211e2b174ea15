// Copyright (c) 2025 Sqlferry
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"path/filepath"
	"strings"

	"sqlferry/cli/internal/config"
	"sqlferry/cli/internal/database"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var (
	listName    string
	linkBinding string
)

var databasesCmd = &cobra.Command{
	Use:     "databases",
	Aliases: []string{"db"},
	Short:   "List hosted databases and link them into the project file",
}

var databasesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List hosted databases",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		api, err := newAPI(ctx)
		if err != nil {
			return err
		}
		refs, err := api.ListDatabases(ctx, listName)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if jsonOutput {
			type entry struct {
				ID      string `json:"uuid"`
				Name    string `json:"name"`
				Version string `json:"version"`
			}
			rows := make([]entry, 0, len(refs))
			for _, r := range refs {
				rows = append(rows, entry{ID: r.ID.String(), Name: r.Name, Version: r.Version})
			}
			return renderJSON(out, rows)
		}

		t := table.NewWriter()
		t.SetOutputMirror(out)
		t.SetStyle(table.StyleLight)
		t.AppendHeader(table.Row{"uuid", "name", "version", "configured"})
		for _, r := range refs {
			t.AppendRow(table.Row{r.ID.String(), r.Name, r.Version, configuredBinding(r)})
		}
		t.Render()
		return nil
	},
}

var databasesLinkCmd = &cobra.Command{
	Use:   "link <name>",
	Short: "Add a hosted database to the project file",
	Long: `Looks the database up by name and writes a databases entry with its id to the
project file (` + config.ProjectFile + `), creating the file when needed. An existing
entry with the same binding is replaced.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		api, err := newAPI(ctx)
		if err != nil {
			return err
		}
		resolver := &database.Resolver{Remote: api}
		ref, err := resolver.Resolve(ctx, args[0], database.Remote)
		if err != nil {
			return err
		}

		binding := linkBinding
		if binding == "" {
			binding = defaultBinding(ref.Name)
		}
		path := cfg.FileUsed
		if path == "" {
			path = filepath.Join(cfg.ProjectRoot, config.ProjectFile)
		}
		if err := config.AddDatabase(path, config.Database{
			Binding:      binding,
			DatabaseName: ref.Name,
			DatabaseID:   ref.ID.String(),
		}); err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if jsonOutput {
			return renderJSON(out, map[string]string{"binding": binding, "database_name": ref.Name, "database_id": ref.ID.String(), "file": path})
		}
		pterm.Fprintln(out, "✅ Linked "+ref.Name+" as "+binding)
		heading(out, "→ File: ", path)
		return nil
	},
}

// configuredBinding returns the binding r is configured under, if any.
func configuredBinding(r database.Ref) string {
	for _, d := range cfg.Databases {
		if d.DatabaseID == r.ID.String() || (d.DatabaseID == "" && d.DatabaseName == r.Name) {
			return d.Binding
		}
	}
	return ""
}

// defaultBinding turns a database name into an upper-case identifier.
func defaultBinding(name string) string {
	b := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r - 'a' + 'A'
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			return r
		default:
			return '_'
		}
	}, name)
	if b == "" || (b[0] >= '0' && b[0] <= '9') {
		b = "DB_" + b
	}
	return b
}

func init() {
	databasesListCmd.Flags().StringVar(&listName, "name", "", "Only list databases whose name matches")
	databasesLinkCmd.Flags().StringVar(&linkBinding, "binding", "", "Binding to configure (default: derived from the name)")
	databasesCmd.AddCommand(databasesListCmd, databasesLinkCmd)
	rootCmd.AddCommand(databasesCmd)
}
