// Copyright (c) 2025 Sqlferry
// Licensed under the MIT License. See LICENSE file in the project root for details.

package backend

import (
	"log/slog"
	"net/http"
	"time"
)

// Options configures the HTTP client.
type Options struct {
	APIBaseURL string
	AccountID  string
	Token      string
	// Version is appended to the User-Agent.
	Version    string
	Timeout    time.Duration
	Logger     *slog.Logger
	HTTPClient *http.Client
}

// New creates a backend API implementation for opts.
func New(opts Options) *HTTP {
	return newHTTP(opts)
}
