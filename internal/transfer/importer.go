// Copyright (c) 2025 Sqlferry
// Licensed under the MIT License. See LICENSE file in the project root for details.

package transfer

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"time"

	"sqlferry/cli/internal/backend"
	"sqlferry/cli/internal/database"
	apperr "sqlferry/cli/internal/errors"
	"sqlferry/cli/internal/etag"
	"sqlferry/cli/internal/progress"
	"sqlferry/cli/internal/sqlexec"
	"sqlferry/cli/internal/sqlfile"
)

// ImportAPI is the part of the RPC client the importer needs.
type ImportAPI interface {
	Import(ctx context.Context, db database.Ref, req backend.ImportRequest) (backend.ImportResponse, error)
}

// Uploader stores a local file at a presigned URL and returns the ETag it echoed.
type Uploader interface {
	Upload(ctx context.Context, url, path string) (string, error)
}

// ImportResult aggregates a completed import.
type ImportResult struct {
	NumQueries        int64   `json:"num_queries"`
	RowsRead          int64   `json:"rows_read"`
	RowsWritten       int64   `json:"rows_written"`
	DatabaseSizeAfter int64   `json:"database_size_after"`
	FinalBookmark     string  `json:"final_bookmark"`
	Duration          float64 `json:"duration"`
	// Parts is the number of uploaded parts the server reported.
	Parts int `json:"parts"`
}

// Summary renders r as a single-row result for display next to query output.
func (r ImportResult) Summary() sqlexec.Result {
	return sqlexec.Result{
		Rows: []sqlexec.Row{{
			Columns: []string{"Total queries executed", "Rows read", "Rows written", "Database size (MB)"},
			Values: []string{
				strconv.FormatInt(r.NumQueries, 10),
				strconv.FormatInt(r.RowsRead, 10),
				strconv.FormatInt(r.RowsWritten, 10),
				strconv.FormatFloat(float64(r.DatabaseSizeAfter)/1e6, 'f', 2, 64),
			},
		}},
		Success: true,
		Meta:    sqlexec.Meta{Duration: r.Duration},
	}
}

// Importer runs SQL files against a remote database through the bulk import protocol.
type Importer struct {
	api   ImportAPI
	blobs Uploader
	opts  Options
}

// NewImporter creates an Importer.
func NewImporter(api ImportAPI, blobs Uploader, opts Options) *Importer {
	return &Importer{api: api, blobs: blobs, opts: opts.withDefaults()}
}

// ImportFile hashes path, uploads it unless the server already holds the same
// content, asks the server to ingest it and polls until the job completes.
func (i *Importer) ImportFile(ctx context.Context, db database.Ref, path string) (ImportResult, error) {
	release, err := i.opts.Guard.Acquire(db.ID, "import")
	if err != nil {
		return ImportResult{}, err
	}
	defer release()

	if err := sqlfile.CheckNotBinary(path); err != nil {
		return ImportResult{}, err
	}
	reporter := progress.NewReporter(i.opts.Sink)
	start := i.opts.Now()

	reporter.Step(progress.StepHash, "Checking if file needs uploading")
	sum, err := etag.File(path)
	if err != nil {
		return ImportResult{}, apperr.Wrap(apperr.UserError, fmt.Sprintf("Unable to read SQL text file %q. Please check the file path and try again.", path), err)
	}
	i.opts.Logger.Debug("computed file etag", "path", path, "etag", sum)

	reporter.Step(progress.StepInit, "")
	initResp, err := i.api.Import(ctx, db, backend.NewInit(sum))
	if err != nil {
		return ImportResult{}, err
	}

	state := initResp.PollingResponse
	if initResp.UploadRequired() {
		reporter.Step(progress.StepUpload, "Uploading "+filepath.Base(path))
		echoed, err := i.blobs.Upload(ctx, initResp.UploadURL, path)
		if err != nil {
			return ImportResult{}, err
		}
		if !etag.Equal(echoed, sum) {
			return ImportResult{}, apperr.Integrity("File contents did not upload successfully. Please retry.")
		}
		reporter.Step(progress.StepIngest, "Uploading complete.")
		ingest, err := i.api.Import(ctx, db, backend.NewIngest(initResp.Filename, sum))
		if err != nil {
			return ImportResult{}, err
		}
		state = ingest.PollingResponse
	} else {
		reporter.Step(progress.StepIngest, "File already uploaded. Processing.")
	}

	reporter.Step(progress.StepPoll, "")
	p := i.opts.poller(reporter)
	final, err := p.run(ctx, state, func(ctx context.Context, bookmark string) (backend.PollingResponse, error) {
		resp, err := i.api.Import(ctx, db, backend.NewPoll(bookmark))
		return resp.PollingResponse, err
	})
	if err != nil {
		return ImportResult{}, err
	}
	if final.Result == nil || !final.Result.Success {
		return ImportResult{}, apperr.API("The database was reset before execute completed.")
	}

	res := final.Result
	out := ImportResult{
		NumQueries:        res.NumQueries,
		RowsRead:          res.Meta.RowsRead,
		RowsWritten:       res.Meta.RowsWritten,
		DatabaseSizeAfter: res.Meta.SizeAfter,
		FinalBookmark:     res.FinalBookmark,
		Duration:          res.Meta.Duration,
		Parts:             reporter.Parts(),
	}
	reporter.Step(progress.StepDone, "")
	i.opts.Logger.Info("import finished",
		"database", db.Label(),
		"queries", out.NumQueries,
		"bookmark", out.FinalBookmark,
		"elapsed", i.opts.Now().Sub(start).Round(time.Millisecond),
	)
	return out, nil
}
