// Copyright (c) 2025 Sqlferry
// Licensed under the MIT License. See LICENSE file in the project root for details.

package backend

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"sqlferry/cli/internal/database"

	"github.com/google/uuid"
)

// ListDatabases calls GET /database?name= and returns the matching databases.
func (h *HTTP) ListDatabases(ctx context.Context, name string) ([]database.Ref, error) {
	q := url.Values{}
	q.Set("name", name)
	q.Set("per_page", "100")
	var out []DatabaseInfo
	if err := h.call(ctx, http.MethodGet, h.baseURL+"/database", q, nil, nil, &out); err != nil {
		return nil, err
	}
	refs := make([]database.Ref, 0, len(out))
	for _, info := range out {
		id, err := uuid.Parse(info.UUID)
		if err != nil {
			h.logger.Debug("skipping database with malformed id", "name", info.Name, "uuid", info.UUID)
			continue
		}
		refs = append(refs, database.Ref{ID: id, Name: info.Name, Version: info.Version})
	}
	return refs, nil
}

// DatabaseInfo calls GET /database/{id}. Answers are cached for a few minutes.
func (h *HTTP) DatabaseInfo(ctx context.Context, db database.Ref) (DatabaseInfo, error) {
	key := db.ID.String()
	h.mu.Lock()
	if c, ok := h.infoCache[key]; ok && time.Since(c.at) < infoTTL {
		h.mu.Unlock()
		return c.info, nil
	}
	h.mu.Unlock()

	var info DatabaseInfo
	if err := h.call(ctx, http.MethodGet, h.databaseURL(db, ""), nil, &db, nil, &info); err != nil {
		return DatabaseInfo{}, err
	}

	h.mu.Lock()
	h.infoCache[key] = cachedInfo{info: info, at: time.Now()}
	h.mu.Unlock()
	return info, nil
}
