// Copyright (c) 2025 Sqlferry
// Licensed under the MIT License. See LICENSE file in the project root for details.

package backend

import (
	"context"
	"net/http"

	"sqlferry/cli/internal/database"
)

// Query calls POST /database/{id}/query. The server splits and runs the
// statements itself; results for statements that completed before a failure
// are not returned when the envelope reports an error.
func (h *HTTP) Query(ctx context.Context, db database.Ref, sql string) ([]QueryResult, error) {
	var out []QueryResult
	body := map[string]string{"sql": sql}
	if err := h.call(ctx, http.MethodPost, h.databaseURL(db, "/query"), nil, &db, body, &out); err != nil {
		return nil, err
	}
	return out, nil
}
