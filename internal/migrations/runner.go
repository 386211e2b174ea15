// Copyright (c) 2025 Sqlferry
// Licensed under the MIT License. See LICENSE file in the project root for details.

package migrations

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	apperr "sqlferry/cli/internal/errors"
	"sqlferry/cli/internal/logging"
	"sqlferry/cli/internal/splitter"
	"sqlferry/cli/internal/sqlexec"
)

// State is the outcome of one migration in an apply run.
type State string

const (
	StatePending State = "pending"
	StateApplied State = "applied"
	StateFailed  State = "failed"
)

// Status pairs a migration with its state.
type Status struct {
	Migration
	State State `json:"state"`
}

// Runner applies migrations through an executor.
type Runner struct {
	exec   sqlexec.Executor
	dir    string
	table  string
	logger *slog.Logger
}

// NewRunner creates a Runner for migrations in dir tracked in table.
func NewRunner(exec sqlexec.Executor, dir, table string, logger *slog.Logger) *Runner {
	if dir == "" {
		dir = DefaultDir
	}
	if table == "" {
		table = DefaultTable
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &Runner{exec: exec, dir: dir, table: table, logger: logger}
}

// Applied returns the names of migrations recorded in the tracking table,
// creating the table if needed.
func (r *Runner) Applied(ctx context.Context) (map[string]bool, error) {
	if err := checkTable(r.table); err != nil {
		return nil, err
	}
	script := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s(
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT UNIQUE,
		applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP NOT NULL
	);
	SELECT name FROM %s ORDER BY id;`, r.table, r.table)
	results, err := r.exec.Execute(ctx, script)
	if err != nil {
		return nil, err
	}
	applied := make(map[string]bool)
	if len(results) == 0 {
		return applied, nil
	}
	for _, row := range results[len(results)-1].Rows {
		if name, ok := row.Get("name"); ok {
			applied[name] = true
		}
	}
	return applied, nil
}

// Pending returns the migrations not yet recorded, in order.
func (r *Runner) Pending(ctx context.Context) ([]Migration, error) {
	all, err := List(r.dir)
	if err != nil {
		return nil, err
	}
	applied, err := r.Applied(ctx)
	if err != nil {
		return nil, err
	}
	var pending []Migration
	for _, m := range all {
		if !applied[m.Name] {
			pending = append(pending, m)
		}
	}
	return pending, nil
}

// Apply runs each pending migration together with its tracking insert as one
// batch. It stops at the first failure; later migrations stay pending.
func (r *Runner) Apply(ctx context.Context) ([]Status, error) {
	pending, err := r.Pending(ctx)
	if err != nil {
		return nil, err
	}
	statuses := make([]Status, len(pending))
	for i, m := range pending {
		statuses[i] = Status{Migration: m, State: StatePending}
	}
	for i, m := range pending {
		script, err := r.script(m)
		if err != nil {
			statuses[i].State = StateFailed
			return statuses, err
		}
		r.logger.Debug("applying migration", "name", m.Name)
		if _, err := r.exec.Execute(ctx, script); err != nil {
			statuses[i].State = StateFailed
			return statuses, withMigration(err, m)
		}
		statuses[i].State = StateApplied
	}
	return statuses, nil
}

func (r *Runner) script(m Migration) (string, error) {
	b, err := os.ReadFile(m.Path)
	if err != nil {
		return "", apperr.User("Unable to read migration %q: %v", m.Name, err)
	}
	stmts := splitter.Strings(string(b))
	stmts = append(stmts, fmt.Sprintf("INSERT INTO %s (name) VALUES ('%s')", r.table, strings.ReplaceAll(m.Name, "'", "''")))
	// Statements may end in a line comment, so each terminator starts a new line.
	return strings.Join(stmts, "\n;\n") + "\n;", nil
}

func withMigration(err error, m Migration) error {
	note := "while applying migration " + m.Name
	var e *apperr.E
	if errors.As(err, &e) {
		return &apperr.E{Kind: e.Kind, Message: e.Message, Notes: append(append([]string(nil), e.Notes...), note), Err: e.Err}
	}
	return apperr.Wrap(apperr.UserError, "Migration "+m.Name+" failed", err)
}
