// Copyright (c) 2025 Sqlferry
// Licensed under the MIT License. See LICENSE file in the project root for details.

package transfer

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"sqlferry/cli/internal/backend"
	"sqlferry/cli/internal/database"
	apperr "sqlferry/cli/internal/errors"
	"sqlferry/cli/internal/progress"
	"sqlferry/cli/internal/sqlexec"
)

// ExportAPI is the part of the RPC client the exporter needs.
type ExportAPI interface {
	Export(ctx context.Context, db database.Ref, req backend.ExportRequest) (backend.PollingResponse, error)
}

// Downloader fetches a presigned URL into a local file.
type Downloader interface {
	Download(ctx context.Context, url, outPath string) (int64, error)
}

// Dumper writes a local replica as a SQL script.
type Dumper interface {
	Dump(ctx context.Context, opts sqlexec.DumpOptions, w io.Writer) error
}

// ExportSpec selects what to export and where to write it.
type ExportSpec struct {
	Tables     []string
	NoSchema   bool
	NoData     bool
	OutputPath string
}

// Validate rejects specs that cannot produce a dump.
func (s ExportSpec) Validate() error {
	if s.OutputPath == "" {
		return apperr.User("Missing required --output path")
	}
	return s.dumpOptions().Validate()
}

func (s ExportSpec) dumpOptions() sqlexec.DumpOptions {
	return sqlexec.DumpOptions{NoSchema: s.NoSchema, NoData: s.NoData, Tables: s.Tables}
}

// ExportResult describes a written dump.
type ExportResult struct {
	Path     string `json:"path"`
	Bytes    int64  `json:"bytes"`
	Bookmark string `json:"bookmark,omitempty"`
	Parts    int    `json:"parts,omitempty"`
}

// Exporter writes database dumps to local files.
type Exporter struct {
	api   ExportAPI
	blobs Downloader
	opts  Options
}

// NewExporter creates an Exporter.
func NewExporter(api ExportAPI, blobs Downloader, opts Options) *Exporter {
	return &Exporter{api: api, blobs: blobs, opts: opts.withDefaults()}
}

// Export asks the server to generate a dump of db, polls until it is ready and
// downloads it to spec.OutputPath.
func (e *Exporter) Export(ctx context.Context, db database.Ref, spec ExportSpec) (ExportResult, error) {
	if err := spec.Validate(); err != nil {
		return ExportResult{}, err
	}
	release, err := e.opts.Guard.Acquire(db.ID, "export")
	if err != nil {
		return ExportResult{}, err
	}
	defer release()

	reporter := progress.NewReporter(e.opts.Sink)
	req := backend.ExportRequest{
		OutputFormat: backend.OutputFormatPolling,
		DumpOptions: backend.DumpOptions{
			NoSchema: spec.NoSchema,
			NoData:   spec.NoData,
			Tables:   spec.Tables,
		},
	}
	next := func(ctx context.Context, bookmark string) (backend.PollingResponse, error) {
		r := req
		r.CurrentBookmark = bookmark
		return e.api.Export(ctx, db, r)
	}

	reporter.Step(progress.StepExport, "Creating export")
	first, err := next(ctx, "")
	if err != nil {
		return ExportResult{}, err
	}
	p := e.opts.poller(reporter)
	p.requests = 1
	final, err := p.run(ctx, first, next)
	if err != nil {
		return ExportResult{}, err
	}
	if final.Result == nil || final.Result.SignedURL == "" {
		return ExportResult{}, apperr.API("The export finished without a download URL.")
	}

	reporter.Step(progress.StepDownload, "Downloading SQL to "+spec.OutputPath)
	n, err := e.blobs.Download(ctx, final.Result.SignedURL, spec.OutputPath)
	if err != nil {
		return ExportResult{}, err
	}
	reporter.Step(progress.StepDone, "")
	e.opts.Logger.Info("export finished", "database", db.Label(), "path", spec.OutputPath, "bytes", n)
	return ExportResult{Path: spec.OutputPath, Bytes: n, Bookmark: final.AtBookmark, Parts: reporter.Parts()}, nil
}

// ExportLocal writes a dump of the local replica to spec.OutputPath. The file
// is replaced only once the dump is complete.
func (e *Exporter) ExportLocal(ctx context.Context, local Dumper, spec ExportSpec) (res ExportResult, err error) {
	if err := spec.Validate(); err != nil {
		return ExportResult{}, err
	}
	dir := filepath.Dir(spec.OutputPath)
	tmp, err := os.CreateTemp(dir, ".sqlferry-export-*")
	if err != nil {
		return ExportResult{}, apperr.User("Unable to write export to %q: %v", spec.OutputPath, err)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	cw := &countingWriter{w: tmp}
	if err = local.Dump(ctx, spec.dumpOptions(), cw); err != nil {
		return ExportResult{}, err
	}
	if err = tmp.Chmod(0o644); err != nil {
		return ExportResult{}, fmt.Errorf("setting export file mode: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return ExportResult{}, fmt.Errorf("closing export file: %w", err)
	}
	if err = os.Rename(tmp.Name(), spec.OutputPath); err != nil {
		return ExportResult{}, fmt.Errorf("moving export into place: %w", err)
	}
	e.opts.Logger.Info("local export finished", "path", spec.OutputPath, "bytes", cw.n)
	return ExportResult{Path: spec.OutputPath, Bytes: cw.n}, nil
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
