// Copyright (c) 2025 Sqlferry
// Licensed under the MIT License. See LICENSE file in the project root for details.

package sqlexec

import (
	"bufio"
	"context"
	"database/sql"
	"encoding/hex"
	"fmt"
	"io"
	"math"
	"slices"
	"strconv"
	"strings"
	"time"

	apperr "sqlferry/cli/internal/errors"
)

// DumpOptions selects what a local dump contains.
type DumpOptions struct {
	NoSchema bool
	NoData   bool
	// Tables limits the dump; empty means every user table.
	Tables []string
}

// Validate rejects option combinations that would produce an empty dump.
func (o DumpOptions) Validate() error {
	if o.NoSchema && o.NoData {
		return apperr.User("You cannot specify both --no-schema and --no-data")
	}
	return nil
}

type schemaObject struct {
	kind  string
	name  string
	table string
	ddl   string
}

// Dump writes the replica as a SQL script: table definitions, then rows, then
// indexes, triggers and views.
func (l *LocalExecutor) Dump(ctx context.Context, opts DumpOptions, w io.Writer) (err error) {
	if err := opts.Validate(); err != nil {
		return err
	}
	db, err := l.openReplica()
	if err != nil {
		return err
	}
	defer func() {
		if cerr := db.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	objects, err := listSchema(ctx, db)
	if err != nil {
		return fmt.Errorf("reading local schema: %w", err)
	}
	wanted := func(o schemaObject) bool {
		if len(opts.Tables) == 0 {
			return true
		}
		return slices.Contains(opts.Tables, o.table) || slices.Contains(opts.Tables, o.name)
	}

	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, "PRAGMA defer_foreign_keys=TRUE;")
	var rest []schemaObject
	for _, o := range objects {
		if !wanted(o) {
			continue
		}
		if o.kind != "table" {
			rest = append(rest, o)
			continue
		}
		if !opts.NoSchema {
			fmt.Fprintf(bw, "%s;\n", o.ddl)
		}
		if !opts.NoData {
			if err := dumpRows(ctx, db, o.name, bw); err != nil {
				return fmt.Errorf("dumping %s: %w", o.name, err)
			}
		}
	}
	if !opts.NoSchema {
		for _, o := range rest {
			fmt.Fprintf(bw, "%s;\n", o.ddl)
		}
	}
	return bw.Flush()
}

func listSchema(ctx context.Context, db *sql.DB) ([]schemaObject, error) {
	rows, err := db.QueryContext(ctx, `SELECT type, name, tbl_name, sql FROM sqlite_master
		WHERE sql IS NOT NULL AND name NOT GLOB 'sqlite_*' AND name NOT GLOB '_cf_*'
		ORDER BY CASE type WHEN 'table' THEN 0 WHEN 'index' THEN 1 WHEN 'trigger' THEN 2 ELSE 3 END, rowid`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []schemaObject
	for rows.Next() {
		var o schemaObject
		if err := rows.Scan(&o.kind, &o.name, &o.table, &o.ddl); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func dumpRows(ctx context.Context, db *sql.DB, table string, w io.Writer) error {
	rows, err := db.QueryContext(ctx, "SELECT * FROM "+quoteIdent(table))
	if err != nil {
		return err
	}
	defer rows.Close()
	cols, err := rows.Columns()
	if err != nil {
		return err
	}
	quoted := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = quoteIdent(c)
	}
	prefix := "INSERT INTO " + quoteIdent(table) + " (" + strings.Join(quoted, ",") + ") VALUES("
	vals := make([]any, len(cols))
	ptrs := make([]any, len(cols))
	for i := range vals {
		ptrs[i] = &vals[i]
	}
	lits := make([]string, len(cols))
	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return err
		}
		for i, v := range vals {
			lits[i] = literal(v)
		}
		if _, err := io.WriteString(w, prefix+strings.Join(lits, ",")+");\n"); err != nil {
			return err
		}
	}
	return rows.Err()
}

func quoteIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// literal renders v as a SQL literal that reads back to the same value.
func literal(v any) string {
	switch x := v.(type) {
	case nil:
		return "NULL"
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		switch {
		case math.IsInf(x, 1):
			return "9e999"
		case math.IsInf(x, -1):
			return "-9e999"
		case math.IsNaN(x):
			return "NULL"
		}
		s := strconv.FormatFloat(x, 'g', -1, 64)
		if !strings.ContainsAny(s, ".eE") {
			s += ".0"
		}
		return s
	case bool:
		if x {
			return "1"
		}
		return "0"
	case []byte:
		return "X'" + strings.ToUpper(hex.EncodeToString(x)) + "'"
	case string:
		return "'" + strings.ReplaceAll(x, "'", "''") + "'"
	case time.Time:
		return "'" + x.UTC().Format("2006-01-02 15:04:05") + "'"
	default:
		return "'" + strings.ReplaceAll(fmt.Sprint(x), "'", "''") + "'"
	}
}
