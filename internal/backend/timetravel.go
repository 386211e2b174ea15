// Copyright (c) 2025 Sqlferry
// Licensed under the MIT License. See LICENSE file in the project root for details.

package backend

import (
	"context"
	"net/http"
	"net/url"

	"sqlferry/cli/internal/database"
)

// Bookmark calls GET /database/{id}/time_travel/bookmark. An empty timestamp
// asks for the current bookmark.
func (h *HTTP) Bookmark(ctx context.Context, db database.Ref, timestamp string) (string, error) {
	q := url.Values{}
	if timestamp != "" {
		q.Set("timestamp", timestamp)
	}
	var out struct {
		Bookmark string `json:"bookmark"`
	}
	if err := h.call(ctx, http.MethodGet, h.databaseURL(db, "/time_travel/bookmark"), q, &db, nil, &out); err != nil {
		return "", err
	}
	return out.Bookmark, nil
}

// Restore calls POST /database/{id}/time_travel/restore?bookmark=.
func (h *HTTP) Restore(ctx context.Context, db database.Ref, bookmark string) (RestoreResponse, error) {
	q := url.Values{}
	q.Set("bookmark", bookmark)
	var out RestoreResponse
	if err := h.call(ctx, http.MethodPost, h.databaseURL(db, "/time_travel/restore"), q, &db, nil, &out); err != nil {
		return RestoreResponse{}, err
	}
	return out, nil
}
