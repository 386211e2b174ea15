// Copyright (c) 2025 Sqlferry
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package backend provides the client for the hosted database service API.
// It defines the API contract used by executors and transfer pipelines and an
// HTTP implementation that signs requests and decodes the service envelope.
package backend

import (
	"context"

	"sqlferry/cli/internal/database"
)

// API defines the remote operations the CLI depends on.
// Implementations may call real HTTP endpoints or provide fakes for tests.
type API interface {
	// ListDatabases returns databases whose name matches name.
	ListDatabases(ctx context.Context, name string) ([]database.Ref, error)
	// DatabaseInfo fetches metadata for db, including its generation tag.
	DatabaseInfo(ctx context.Context, db database.Ref) (DatabaseInfo, error)
	// Query runs sql (possibly several statements) on the server.
	Query(ctx context.Context, db database.Ref, sql string) ([]QueryResult, error)
	// Import performs one step of the init/ingest/poll import protocol.
	Import(ctx context.Context, db database.Ref, req ImportRequest) (ImportResponse, error)
	// Export performs one step of the polling export protocol.
	Export(ctx context.Context, db database.Ref, req ExportRequest) (PollingResponse, error)
	// Bookmark resolves timestamp (RFC 3339, empty for now) to a bookmark.
	Bookmark(ctx context.Context, db database.Ref, timestamp string) (string, error)
	// Restore rewinds db to bookmark.
	Restore(ctx context.Context, db database.Ref, bookmark string) (RestoreResponse, error)
	// VerifyToken checks the configured API token.
	VerifyToken(ctx context.Context) (TokenStatus, error)
}
