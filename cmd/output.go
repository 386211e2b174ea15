// Copyright (c) 2025 Sqlferry
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"sqlferry/cli/internal/sqlexec"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/pterm/pterm"
)

// queryPreviewLen bounds the query shown above each result table.
const queryPreviewLen = 48

// renderResults writes results as JSON or as one table per non-empty result.
func renderResults(w io.Writer, results []sqlexec.Result, asJSON bool) error {
	if asJSON {
		return renderJSON(w, results)
	}
	for _, res := range results {
		if len(res.Rows) == 0 {
			continue
		}
		if res.Query != "" {
			pterm.Fprintln(w, pterm.NewStyle(pterm.FgGray).Sprint(shortenQuery(res.Query)))
		}
		renderTable(w, res.Rows)
	}
	return nil
}

func renderJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func renderTable(w io.Writer, rows []sqlexec.Row) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)

	header := make(table.Row, len(rows[0].Columns))
	for i, col := range rows[0].Columns {
		header[i] = col
	}
	t.AppendHeader(header)

	for _, r := range rows {
		row := make(table.Row, len(r.Values))
		for i, v := range r.Values {
			row[i] = v
		}
		t.AppendRow(row)
	}
	t.Render()
}

// shortenQuery collapses whitespace and truncates q for display.
func shortenQuery(q string) string {
	q = strings.Join(strings.Fields(q), " ")
	r := []rune(q)
	if len(r) <= queryPreviewLen {
		return q
	}
	return string(r[:queryPreviewLen-3]) + "..."
}

// executedLine is the summary printed after a run.
func executedLine(n int, ms float64) string {
	noun := "commands"
	if n == 1 {
		noun = "command"
	}
	return fmt.Sprintf("Executed %d %s in %s ms", n, noun, trimFloat(ms))
}

func trimFloat(f float64) string {
	s := fmt.Sprintf("%.2f", f)
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}
