// Copyright (c) 2025 Sqlferry
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package timetravel resolves points in a database's history to bookmarks and
// restores databases to them.
package timetravel

import (
	"context"
	"log/slog"
	"time"

	"sqlferry/cli/internal/backend"
	"sqlferry/cli/internal/database"
	apperr "sqlferry/cli/internal/errors"
	"sqlferry/cli/internal/logging"
)

// API is the part of the RPC client time travel needs.
type API interface {
	DatabaseInfo(ctx context.Context, db database.Ref) (backend.DatabaseInfo, error)
	Bookmark(ctx context.Context, db database.Ref, timestamp string) (string, error)
	Restore(ctx context.Context, db database.Ref, bookmark string) (backend.RestoreResponse, error)
}

// State is the progress of a restore.
type State int

const (
	Requested State = iota
	Restoring
	Done
)

func (s State) String() string {
	switch s {
	case Requested:
		return "requested"
	case Restoring:
		return "restoring"
	case Done:
		return "done"
	default:
		return "unknown"
	}
}

// RestoreRequest names the restore target; exactly one field must be set.
type RestoreRequest struct {
	Timestamp string
	Bookmark  string
}

// Validate checks that exactly one of Timestamp and Bookmark is set and that
// Timestamp lies inside the restore window.
func (req RestoreRequest) Validate(now time.Time) error {
	switch {
	case req.Timestamp != "" && req.Bookmark != "":
		return apperr.User("Provide either a timestamp, or a bookmark - not both.")
	case req.Timestamp == "" && req.Bookmark == "":
		return apperr.User("Please provide a timestamp or a bookmark")
	}
	if req.Timestamp != "" {
		if _, err := ConvertTimestamp(req.Timestamp, now); err != nil {
			return err
		}
	}
	return nil
}

// RestoreResult is the outcome of a restore.
type RestoreResult struct {
	Bookmark         string `json:"bookmark"`
	PreviousBookmark string `json:"previous_bookmark"`
	Message          string `json:"message,omitempty"`
}

// Options configures a Resolver.
type Options struct {
	Logger *slog.Logger
	// Now is the clock the restore window is checked against; nil uses time.Now.
	Now func() time.Time
	// Guard serializes restores with imports and exports; nil uses database.InFlight.
	Guard *database.Guard
	// OnState observes restore state transitions.
	OnState func(State)
}

// Resolver resolves bookmarks and performs restores.
type Resolver struct {
	api  API
	opts Options
}

// NewResolver creates a Resolver.
func NewResolver(api API, opts Options) *Resolver {
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Guard == nil {
		opts.Guard = database.InFlight
	}
	if opts.OnState == nil {
		opts.OnState = func(State) {}
	}
	return &Resolver{api: api, opts: opts}
}

// Bookmark returns the bookmark for timestamp, or the current bookmark when
// timestamp is empty.
func (r *Resolver) Bookmark(ctx context.Context, db database.Ref, timestamp string) (string, error) {
	if err := r.checkGeneration(ctx, db); err != nil {
		return "", err
	}
	return r.bookmark(ctx, db, timestamp)
}

func (r *Resolver) bookmark(ctx context.Context, db database.Ref, timestamp string) (string, error) {
	var iso string
	if timestamp != "" {
		var err error
		if iso, err = ConvertTimestamp(timestamp, r.opts.Now()); err != nil {
			return "", err
		}
	}
	bm, err := r.api.Bookmark(ctx, db, iso)
	if err != nil {
		return "", err
	}
	r.opts.Logger.Debug("resolved bookmark", "database", db.Label(), "timestamp", iso, "bookmark", bm)
	return bm, nil
}

// Restore rewinds db to the point named by req.
func (r *Resolver) Restore(ctx context.Context, db database.Ref, req RestoreRequest) (RestoreResult, error) {
	if err := req.Validate(r.opts.Now()); err != nil {
		return RestoreResult{}, err
	}
	if err := r.checkGeneration(ctx, db); err != nil {
		return RestoreResult{}, err
	}

	release, err := r.opts.Guard.Acquire(db.ID, "restore")
	if err != nil {
		return RestoreResult{}, err
	}
	defer release()

	r.opts.OnState(Requested)
	bm := req.Bookmark
	if bm == "" {
		if bm, err = r.bookmark(ctx, db, req.Timestamp); err != nil {
			return RestoreResult{}, err
		}
	}

	r.opts.OnState(Restoring)
	resp, err := r.api.Restore(ctx, db, bm)
	if err != nil {
		return RestoreResult{}, err
	}
	r.opts.OnState(Done)
	r.opts.Logger.Info("database restored", "database", db.Label(), "bookmark", resp.Bookmark, "previous", resp.PreviousBookmark)
	return RestoreResult{Bookmark: resp.Bookmark, PreviousBookmark: resp.PreviousBookmark, Message: resp.Message}, nil
}

// checkGeneration rejects databases whose generation predates time travel.
func (r *Resolver) checkGeneration(ctx context.Context, db database.Ref) error {
	version := db.Version
	if version == "" {
		info, err := r.api.DatabaseInfo(ctx, db)
		if err != nil {
			return err
		}
		version = info.Version
	}
	if version == database.GenerationAlpha {
		return apperr.User("Time travel is not available for alpha databases. You will need to migrate to a new database for access to this feature.")
	}
	return nil
}
