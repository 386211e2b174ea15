// Copyright (c) 2025 Sqlferry
// Licensed under the MIT License. See LICENSE file in the project root for details.

package backend

import (
	"context"
	"net/http"
)

// VerifyToken calls GET /user/tokens/verify with the configured token.
func (h *HTTP) VerifyToken(ctx context.Context) (TokenStatus, error) {
	var out TokenStatus
	if err := h.call(ctx, http.MethodGet, h.apiBase+"/user/tokens/verify", nil, nil, nil, &out); err != nil {
		return TokenStatus{}, err
	}
	return out, nil
}
