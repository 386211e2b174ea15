// Copyright (c) 2025 Sqlferry
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"context"
	"net/http"

	"sqlferry/cli/internal/auth"
	"sqlferry/cli/internal/backend"
	"sqlferry/cli/internal/blob"
	"sqlferry/cli/internal/database"
	"sqlferry/cli/internal/logging"
	"sqlferry/cli/internal/progress"
	"sqlferry/cli/internal/transfer"

	"github.com/spf13/cobra"
)

// newAPI builds an authenticated client for the database API.
func newAPI(ctx context.Context) (*backend.HTTP, error) {
	token, _, err := auth.NewService().Token()
	if err != nil {
		return nil, err
	}
	return backend.New(backend.Options{
		APIBaseURL: cfg.APIBaseURL,
		AccountID:  cfg.AccountID,
		Token:      token,
		Version:    Version,
		Logger:     logging.FromContext(ctx),
	}), nil
}

// newBlobs builds the client for presigned upload and download URLs.
func newBlobs(ctx context.Context) *blob.Client {
	return blob.New(http.DefaultClient, logging.FromContext(ctx))
}

// addTargetFlags registers --local, --remote, --preview and --persist-to.
func addTargetFlags(cmd *cobra.Command, f *database.Flags) {
	cmd.Flags().BoolVar(&f.Local, "local", false, "Run against the local replica")
	cmd.Flags().BoolVar(&f.Remote, "remote", false, "Run against the hosted database")
	cmd.Flags().BoolVar(&f.Preview, "preview", false, "Run against the preview database (requires --remote)")
	cmd.Flags().StringVar(&f.PersistTo, "persist-to", "", "Directory holding local replicas (requires --local)")
}

// resolveTarget validates the target flags and resolves name to a database.
// The returned client is nil for local targets.
func resolveTarget(ctx context.Context, name string, f database.Flags, fallback database.Mode) (database.Target, *backend.HTTP, error) {
	mode, err := database.SelectMode(f, fallback)
	if err != nil {
		return database.Target{}, nil, err
	}
	refs, err := cfg.Refs()
	if err != nil {
		return database.Target{}, nil, err
	}
	resolver := &database.Resolver{Configured: refs}

	var api *backend.HTTP
	if mode.IsRemote() {
		if api, err = newAPI(ctx); err != nil {
			return database.Target{}, nil, err
		}
		resolver.Remote = api
	}
	ref, err := resolver.Resolve(ctx, name, mode)
	if err != nil {
		return database.Target{}, nil, err
	}
	logging.FromContext(ctx).Debug("resolved database", "database", ref.Label(), "mode", mode.String())
	return database.Target{Mode: mode, Ref: ref, PersistRoot: cfg.PersistTo}, api, nil
}

// transferOptions configures the import and export pipelines from cfg.
func transferOptions(ctx context.Context, sink progress.Sink) transfer.Options {
	return transfer.Options{
		Logger:  logging.FromContext(ctx),
		Verbose: cfg.Verbose,
		Poll: transfer.PollConfig{
			Interval:    cfg.Poll.Interval,
			Timeout:     cfg.Poll.Timeout,
			MaxAttempts: cfg.Poll.MaxAttempts,
		},
		Sink: sink,
	}
}
