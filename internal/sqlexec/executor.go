// Copyright (c) 2025 Sqlferry
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package sqlexec runs SQL against a local replica or the hosted service and
// returns results in one shape regardless of where the statements ran.
//
// Key features include:
//   - A local executor over an embedded SQLite file, one transaction per batch
//   - A remote executor that hands the whole script to the query endpoint
//   - Value normalization so both paths render identically
//   - Local dumps in the same format the export endpoint produces
package sqlexec

import (
	"context"
	"encoding/json"
	"log/slog"

	"sqlferry/cli/internal/backend"
	"sqlferry/cli/internal/database"
)

// Meta carries timing for one statement.
type Meta struct {
	Duration float64 `json:"duration"`
}

// Result is one statement's normalized result.
type Result struct {
	Rows    []Row  `json:"results"`
	Success bool   `json:"success"`
	Meta    Meta   `json:"meta"`
	Query   string `json:"query,omitempty"`
}

// Row is an ordered column to value mapping. Values are already normalized.
type Row struct {
	Columns []string
	Values  []string
}

// Get returns the value of column col.
func (r Row) Get(col string) (string, bool) {
	for i, c := range r.Columns {
		if c == col {
			return r.Values[i], true
		}
	}
	return "", false
}

// MarshalJSON writes the row as a JSON object in column order.
func (r Row) MarshalJSON() ([]byte, error) {
	buf := []byte{'{'}
	for i, c := range r.Columns {
		if i > 0 {
			buf = append(buf, ',')
		}
		k, err := json.Marshal(c)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(r.Values[i])
		if err != nil {
			return nil, err
		}
		buf = append(buf, k...)
		buf = append(buf, ':')
		buf = append(buf, v...)
	}
	return append(buf, '}'), nil
}

// Executor runs a SQL script and returns one Result per statement.
type Executor interface {
	Execute(ctx context.Context, script string) ([]Result, error)
}

// Querier is the part of the backend API the remote executor needs.
type Querier interface {
	Query(ctx context.Context, db database.Ref, sql string) ([]backend.QueryResult, error)
}

// Options configures executors.
type Options struct {
	Logger *slog.Logger
	// Verbose logs every statement before it runs.
	Verbose bool
	// Open opens the local replica; defaults to the embedded SQLite driver.
	Open Opener
}

// New returns the executor for t. api is only used for remote and preview targets.
func New(t database.Target, api Querier, opts Options) Executor {
	if t.Mode.IsRemote() {
		return NewRemote(api, t.Effective(), opts)
	}
	return NewLocal(t, opts)
}
