// Copyright (c) 2025 Sqlferry
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package transfer drives the server-side import and export jobs of a remote
// database: it uploads or downloads dump files through presigned URLs and
// polls the job until the server reports it complete.
package transfer

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"sqlferry/cli/internal/backend"
	apperr "sqlferry/cli/internal/errors"
	"sqlferry/cli/internal/progress"
)

// PollConfig bounds a poll loop.
type PollConfig struct {
	// Interval is the wait between two poll requests.
	Interval time.Duration
	// Timeout caps the time spent polling; zero disables it.
	Timeout time.Duration
	// MaxAttempts caps the number of poll requests; zero disables it.
	MaxAttempts int
}

// DefaultPollConfig returns the configuration used when none is given.
func DefaultPollConfig() PollConfig {
	return PollConfig{Interval: time.Second, Timeout: 30 * time.Minute}
}

// pollFunc issues one poll request resuming from bookmark.
type pollFunc func(ctx context.Context, bookmark string) (backend.PollingResponse, error)

type poller struct {
	cfg      PollConfig
	reporter *progress.Reporter
	logger   *slog.Logger
	now      func() time.Time
	// requests counts the poll requests issued, including the first one.
	requests int
}

// run follows a job from state until it completes. Every response's messages
// are reported once before its status is inspected.
func (p *poller) run(ctx context.Context, state backend.PollingResponse, next pollFunc) (backend.PollingResponse, error) {
	started := p.now()
	for {
		if state.Failed() {
			return state, apperr.User("%s", state.FailureText())
		}
		p.reporter.Observe(state.AtBookmark, state.Messages)

		switch state.Status {
		case backend.StatusComplete:
			return state, nil
		case backend.StatusError:
			return state, apperr.API(strings.Join(state.Errors, "\n"), state.Messages...)
		case backend.StatusActive:
		default:
			return state, apperr.API(fmt.Sprintf("The server reported an unknown job status %q.", state.Status), state.Messages...)
		}

		if p.cfg.MaxAttempts > 0 && p.requests >= p.cfg.MaxAttempts {
			return state, p.gaveUp(state, fmt.Sprintf("after %d requests", p.requests))
		}
		if p.cfg.Timeout > 0 && p.now().Sub(started) >= p.cfg.Timeout {
			return state, p.gaveUp(state, "after "+p.cfg.Timeout.String())
		}
		if err := wait(ctx, p.cfg.Interval); err != nil {
			return state, err
		}

		bookmark := state.AtBookmark
		p.requests++
		p.logger.Debug("polling job", "bookmark", bookmark, "request", p.requests)
		resp, err := next(ctx, bookmark)
		if err != nil {
			return state, err
		}
		state = resp
	}
}

func (p *poller) gaveUp(state backend.PollingResponse, after string) error {
	return apperr.Transport(
		fmt.Sprintf("Stopped waiting for the job %s. It keeps running on the server; last bookmark: %s", after, state.AtBookmark),
		nil,
	)
}

// wait sleeps for d unless ctx ends first.
func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
