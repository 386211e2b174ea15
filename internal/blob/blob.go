// Copyright (c) 2025 Sqlferry
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package blob moves dump files to and from presigned object-store URLs.
// Requests carry no credentials; the URL itself authorizes them.
package blob

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	apperr "sqlferry/cli/internal/errors"
	"sqlferry/cli/internal/etag"
	"sqlferry/cli/internal/logging"
)

// Client uploads and downloads blobs.
type Client struct {
	http   *http.Client
	logger *slog.Logger
}

// New returns a Client. A nil hc uses a client without an overall timeout,
// since dumps can be arbitrarily large.
func New(hc *http.Client, logger *slog.Logger) *Client {
	if hc == nil {
		hc = &http.Client{}
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &Client{http: hc, logger: logger}
}

// Upload PUTs the file at path to url and returns the ETag the store echoed,
// without quotes. A missing ETag is an integrity failure.
func (c *Client) Upload(ctx context.Context, url, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", apperr.Wrap(apperr.UserError, fmt.Sprintf("Unable to read SQL text file %q. Please check the file path and try again.", path), err)
	}
	defer f.Close()
	fi, err := f.Stat()
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, f)
	if err != nil {
		return "", err
	}
	req.ContentLength = fi.Size()

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", apperr.Transport("uploading file", err)
	}
	defer resp.Body.Close()
	c.logger.Debug("blob upload", "url", logging.Mask(url), "bytes", fi.Size(), "status", resp.StatusCode, "elapsed", time.Since(start))

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", apperr.New(apperr.TransportError, "File could not be uploaded. Please retry.").
			WithNotes(fmt.Sprintf("Got response: %d %s", resp.StatusCode, strings.TrimSpace(string(b))))
	}
	got := etag.Normalize(resp.Header.Get("ETag"))
	if got == "" {
		return "", apperr.Integrity("File did not upload successfully. Please retry.")
	}
	return got, nil
}

// Download GETs url and writes the body to outPath, replacing it only once the
// transfer has completed. It returns the number of bytes written.
func (c *Client) Download(ctx context.Context, url, outPath string) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return 0, ctx.Err()
		}
		return 0, apperr.Transport("downloading export", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return 0, apperr.Transport("downloading export",
			fmt.Errorf("GET %s failed: %d %s", logging.Mask(url), resp.StatusCode, http.StatusText(resp.StatusCode)))
	}

	dir := filepath.Dir(outPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, err
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(outPath)+".*")
	if err != nil {
		return 0, err
	}
	defer os.Remove(tmp.Name())

	n, err := io.Copy(tmp, resp.Body)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		if ctx.Err() != nil {
			return n, ctx.Err()
		}
		return n, apperr.Transport("downloading export", err)
	}
	if err := os.Rename(tmp.Name(), outPath); err != nil {
		return n, err
	}
	c.logger.Debug("blob download", "url", logging.Mask(url), "bytes", n, "path", outPath)
	return n, nil
}
