// Copyright (c) 2025 Sqlferry
// Licensed under the MIT License. See LICENSE file in the project root for details.

package backend

import (
	"context"
	"net/http"

	"sqlferry/cli/internal/database"
)

// OutputFormatPolling asks the export endpoint for an incremental job.
const OutputFormatPolling = "polling"

// Import calls POST /database/{id}/import with one protocol step.
func (h *HTTP) Import(ctx context.Context, db database.Ref, req ImportRequest) (ImportResponse, error) {
	var out ImportResponse
	if err := h.call(ctx, http.MethodPost, h.databaseURL(db, "/import"), nil, &db, req, &out); err != nil {
		return ImportResponse{}, err
	}
	return out, nil
}

// Export calls POST /database/{id}/export with one protocol step.
func (h *HTTP) Export(ctx context.Context, db database.Ref, req ExportRequest) (PollingResponse, error) {
	if req.OutputFormat == "" {
		req.OutputFormat = OutputFormatPolling
	}
	var out PollingResponse
	if err := h.call(ctx, http.MethodPost, h.databaseURL(db, "/export"), nil, &db, req, &out); err != nil {
		return PollingResponse{}, err
	}
	return out, nil
}
