// Copyright (c) 2025 Sqlferry
// Licensed under the MIT License. See LICENSE file in the project root for details.

package sqlexec

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"sqlferry/cli/internal/backend"
	"sqlferry/cli/internal/database"
	apperr "sqlferry/cli/internal/errors"
	"sqlferry/cli/internal/logging"
)

// RemoteExecutor sends scripts to the query endpoint in a single request.
type RemoteExecutor struct {
	api     Querier
	db      database.Ref
	logger  *slog.Logger
	verbose bool
}

// NewRemote creates a RemoteExecutor for db. db.ID must already be the id to
// query (the preview id for preview targets).
func NewRemote(api Querier, db database.Ref, opts Options) *RemoteExecutor {
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	return &RemoteExecutor{api: api, db: db, logger: logger, verbose: opts.Verbose}
}

// Execute runs script on the server. When the server reports a statement as
// failed, the results it did return are handed back together with the error.
func (r *RemoteExecutor) Execute(ctx context.Context, script string) ([]Result, error) {
	if r.verbose {
		r.logger.Debug("sending query", "database", r.db.Label(), "sql", preview(script, 120))
	}
	start := time.Now()
	raw, err := r.api.Query(ctx, r.db, script)
	if err != nil {
		return nil, err
	}
	r.logger.Debug("query finished", "results", len(raw), "elapsed", time.Since(start))

	out := make([]Result, 0, len(raw))
	for i, qr := range raw {
		res := Result{Rows: make([]Row, 0, len(qr.Results)), Success: qr.Success, Meta: Meta{Duration: qr.Meta.Duration}}
		for _, row := range qr.Results {
			res.Rows = append(res.Rows, normalizeRow(row.Columns, row.Values))
		}
		out = append(out, res)
		if !qr.Success {
			return out, apperr.API(fmt.Sprintf("statement %d did not complete", i+1))
		}
	}
	return out, nil
}

var _ Querier = (*backend.HTTP)(nil)
