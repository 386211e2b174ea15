// Copyright (c) 2025 Sqlferry
// Licensed under the MIT License. See LICENSE file in the project root for details.

package sqlexec

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"sqlferry/cli/internal/database"
	apperr "sqlferry/cli/internal/errors"
	"sqlferry/cli/internal/logging"
	"sqlferry/cli/internal/splitter"

	_ "modernc.org/sqlite"
)

// ReplicaFile is the database file inside a replica's storage directory.
const ReplicaFile = "db.sqlite"

// Opener opens the replica file at path.
type Opener func(path string) (*sql.DB, error)

// OpenSQLite opens path with the embedded SQLite driver.
func OpenSQLite(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	return db, nil
}

// LocalExecutor runs statements against the on-disk replica of one database.
// Each call opens the replica, runs the whole batch in one transaction and
// closes the handle before returning.
type LocalExecutor struct {
	target  database.Target
	open    Opener
	logger  *slog.Logger
	verbose bool
}

// NewLocal creates a LocalExecutor for t.
func NewLocal(t database.Target, opts Options) *LocalExecutor {
	open := opts.Open
	if open == nil {
		open = OpenSQLite
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	return &LocalExecutor{target: t, open: open, logger: logger, verbose: opts.Verbose}
}

// Path returns the replica file location.
func (l *LocalExecutor) Path() string {
	return filepath.Join(l.target.StorageDir(), ReplicaFile)
}

// Execute splits script and runs the statements as one batch.
func (l *LocalExecutor) Execute(ctx context.Context, script string) ([]Result, error) {
	return l.Run(ctx, splitter.Split(script))
}

// Run executes stmts atomically. Any engine failure rolls back the batch and
// is returned as a single user error carrying the engine's message.
func (l *LocalExecutor) Run(ctx context.Context, stmts []splitter.Statement) (results []Result, err error) {
	if len(stmts) == 0 {
		return []Result{}, nil
	}
	db, err := l.openReplica()
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := db.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, apperr.Wrap(apperr.UserError, "could not open a transaction on the local database", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	batchStart := time.Now()
	results = make([]Result, 0, len(stmts))
	for _, st := range stmts {
		if l.verbose {
			l.logger.Debug("executing statement", "index", st.Index, "sql", preview(st.SQL, 120))
		}
		start := time.Now()
		rows, qerr := tx.QueryContext(ctx, st.SQL)
		if qerr != nil {
			return nil, engineError(qerr, st)
		}
		res, serr := collect(rows)
		if serr != nil {
			return nil, engineError(serr, st)
		}
		res.Meta.Duration = millis(time.Since(start))
		results = append(results, res)
	}
	if err := tx.Commit(); err != nil {
		return nil, apperr.New(apperr.UserError, err.Error())
	}
	l.logger.Debug("local batch committed", "statements", len(stmts), "elapsed", time.Since(batchStart), "path", l.Path())
	return results, nil
}

func (l *LocalExecutor) openReplica() (*sql.DB, error) {
	dir := l.target.StorageDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating local storage %s: %w", dir, err)
	}
	db, err := l.open(filepath.Join(dir, ReplicaFile))
	if err != nil {
		return nil, fmt.Errorf("opening local database: %w", err)
	}
	return db, nil
}

// collect drains rows into a Result and closes them.
func collect(rows *sql.Rows) (Result, error) {
	defer rows.Close()
	res := Result{Rows: []Row{}, Success: true}
	cols, err := rows.Columns()
	if err != nil {
		return res, err
	}
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return res, err
		}
		res.Rows = append(res.Rows, normalizeRow(cols, vals))
	}
	return res, rows.Err()
}

func engineError(err error, st splitter.Statement) error {
	return apperr.New(apperr.UserError, err.Error()).
		WithNotes(fmt.Sprintf("in statement %d: %s", st.Index+1, preview(st.SQL, 80)))
}

// preview collapses whitespace and shortens s to at most n characters.
func preview(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}

func millis(d time.Duration) float64 {
	return float64(d.Microseconds()) / 1000
}
