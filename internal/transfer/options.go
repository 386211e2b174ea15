// Copyright (c) 2025 Sqlferry
// Licensed under the MIT License. See LICENSE file in the project root for details.

package transfer

import (
	"log/slog"
	"time"

	"sqlferry/cli/internal/database"
	"sqlferry/cli/internal/logging"
	"sqlferry/cli/internal/progress"
)

// Options configures the import and export pipelines.
type Options struct {
	Logger *slog.Logger
	// Verbose adds per-request debug lines.
	Verbose bool
	Poll    PollConfig
	// Sink receives progress events; nil discards them.
	Sink progress.Sink
	// Guard serializes operations per database; nil uses database.InFlight.
	Guard *database.Guard
	// Now is the clock used to bound polling; nil uses time.Now.
	Now func() time.Time
}

func (o Options) withDefaults() Options {
	if o.Logger == nil {
		o.Logger = logging.Discard()
	}
	if o.Poll == (PollConfig{}) {
		o.Poll = DefaultPollConfig()
	}
	if o.Guard == nil {
		o.Guard = database.InFlight
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

func (o Options) poller(r *progress.Reporter) *poller {
	logger := o.Logger
	if !o.Verbose {
		logger = logging.Discard()
	}
	return &poller{cfg: o.Poll, reporter: r, logger: logger, now: o.Now}
}
