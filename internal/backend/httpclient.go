// Copyright (c) 2025 Sqlferry
// Licensed under the MIT License. See LICENSE file in the project root for details.

package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"sqlferry/cli/internal/database"
	apperr "sqlferry/cli/internal/errors"
	"sqlferry/cli/internal/logging"
)

// InternalEnvHeader routes a request to a non-production service environment.
const InternalEnvHeader = "x-d1-internal-env"

// HTTP implements API over the REST endpoints of the hosted service.
// Database metadata is cached in memory to avoid repeated lookups within one run.
type HTTP struct {
	// apiBase is the service root (e.g., "https://api.cloudflare.com/client/v4")
	apiBase string
	// baseURL is apiBase scoped to the account's databases
	baseURL string
	token   string
	agent   string
	client  *http.Client
	logger  *slog.Logger

	mu        sync.Mutex
	infoCache map[string]cachedInfo
}

type cachedInfo struct {
	info DatabaseInfo
	at   time.Time
}

// infoTTL bounds how long DatabaseInfo answers are reused.
const infoTTL = 10 * time.Minute

// newHTTP creates a client from opts. Requests time out after opts.Timeout
// (30 seconds when unset).
func newHTTP(opts Options) *HTTP {
	client := opts.HTTPClient
	if client == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	apiBase := strings.TrimRight(opts.APIBaseURL, "/")
	agent := "sqlferry"
	if opts.Version != "" {
		agent += "/" + opts.Version
	}
	return &HTTP{
		apiBase:   apiBase,
		baseURL:   apiBase + "/accounts/" + url.PathEscape(opts.AccountID) + "/d1",
		token:     opts.Token,
		agent:     agent,
		client:    client,
		logger:    logger,
		infoCache: map[string]cachedInfo{},
	}
}

// envelope is the wrapper every service response uses.
type envelope struct {
	Success  bool            `json:"success"`
	Result   json.RawMessage `json:"result"`
	Errors   []Message       `json:"errors"`
	Messages []Message       `json:"messages"`
}

// Message is one entry of an envelope's errors or messages list. The service
// sends either objects or bare strings.
type Message struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (m *Message) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		m.Message = s
		return nil
	}
	type alias Message
	var a alias
	if err := json.Unmarshal(b, &a); err != nil {
		return err
	}
	*m = Message(a)
	return nil
}

func (m Message) String() string {
	if m.Code != 0 {
		return fmt.Sprintf("%s [code: %d]", m.Message, m.Code)
	}
	return m.Message
}

// call sends one request and decodes the envelope's result into out.
// db may be nil for account-level endpoints.
func (h *HTTP) call(ctx context.Context, method, endpoint string, query url.Values, db *database.Ref, body, out any) error {
	u := endpoint
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rdr = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, rdr)
	if err != nil {
		return err
	}
	h.setStandardHeaders(req)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if db != nil && db.InternalEnv != "" {
		req.Header.Set(InternalEnvHeader, db.InternalEnv)
	}

	start := time.Now()
	resp, err := h.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return apperr.Transport("contacting the database service", err)
	}
	defer resp.Body.Close()
	h.logger.Debug("api request", "method", method, "url", logging.Mask(u), "status", resp.StatusCode, "elapsed", time.Since(start))

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return apperr.Transport("reading the database service response", err)
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		if resp.StatusCode >= http.StatusBadRequest {
			return apperr.Transport("contacting the database service",
				fmt.Errorf("%s %s failed: %d %s", method, h.relative(endpoint), resp.StatusCode, strings.TrimSpace(string(raw))))
		}
		return fmt.Errorf("decoding response from %s: %w", h.relative(endpoint), err)
	}
	if !env.Success {
		notes := make([]string, 0, len(env.Errors))
		for _, m := range env.Errors {
			notes = append(notes, m.String())
		}
		if len(notes) == 0 {
			notes = append(notes, fmt.Sprintf("HTTP %d", resp.StatusCode))
		}
		return apperr.API(fmt.Sprintf("A request to the database service (%s) failed.", h.relative(endpoint)), notes...)
	}
	if out == nil || len(env.Result) == 0 {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(env.Result))
	dec.UseNumber()
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("decoding result from %s: %w", h.relative(endpoint), err)
	}
	return nil
}

// setStandardHeaders applies authentication and identification headers.
func (h *HTTP) setStandardHeaders(req *http.Request) {
	req.Header.Set("User-Agent", h.agent)
	req.Header.Set("Accept", "application/json")
	if h.token != "" {
		req.Header.Set("Authorization", "Bearer "+h.token)
	}
}

// relative trims the service root from u for error messages.
func (h *HTTP) relative(u string) string {
	return strings.TrimPrefix(u, h.apiBase)
}

func (h *HTTP) databaseURL(db database.Ref, suffix string) string {
	return h.baseURL + "/database/" + db.ID.String() + suffix
}
