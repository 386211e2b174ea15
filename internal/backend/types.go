// Copyright (c) 2025 Sqlferry
// Licensed under the MIT License. See LICENSE file in the project root for details.

package backend

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Status is the state of a server-side import or export job.
type Status string

const (
	StatusActive   Status = "active"
	StatusComplete Status = "complete"
	StatusError    Status = "error"
)

// QueryMeta is the per-statement metadata returned by the query endpoint.
type QueryMeta struct {
	Duration    float64 `json:"duration"`
	ChangedDB   bool    `json:"changed_db"`
	Changes     int64   `json:"changes"`
	LastRowID   int64   `json:"last_row_id"`
	RowsRead    int64   `json:"rows_read"`
	RowsWritten int64   `json:"rows_written"`
	SizeAfter   int64   `json:"size_after"`
}

// QueryResult is one statement's raw result. Numbers in Results decode as
// json.Number so their literal text survives normalization.
type QueryResult struct {
	Results []Row     `json:"results"`
	Success bool      `json:"success"`
	Meta    QueryMeta `json:"meta"`
}

// ImportRequest is the body of POST /database/{id}/import.
type ImportRequest struct {
	Action          string `json:"action"`
	Etag            string `json:"etag,omitempty"`
	Filename        string `json:"filename,omitempty"`
	CurrentBookmark string `json:"current_bookmark,omitempty"`
}

// Import actions.
const (
	ActionInit   = "init"
	ActionIngest = "ingest"
	ActionPoll   = "poll"
)

// NewInit starts an import of content with the given etag.
func NewInit(etag string) ImportRequest { return ImportRequest{Action: ActionInit, Etag: etag} }

// NewIngest asks the server to ingest an uploaded file.
func NewIngest(filename, etag string) ImportRequest {
	return ImportRequest{Action: ActionIngest, Filename: filename, Etag: etag}
}

// NewPoll asks for progress since bookmark.
func NewPoll(bookmark string) ImportRequest {
	return ImportRequest{Action: ActionPoll, CurrentBookmark: bookmark}
}

// OperationMeta aggregates an import's effect on the database.
type OperationMeta struct {
	Duration    float64 `json:"duration"`
	RowsRead    int64   `json:"rows_read"`
	RowsWritten int64   `json:"rows_written"`
	SizeAfter   int64   `json:"size_after"`
}

// OperationResult is present on a completed polling response.
type OperationResult struct {
	Success       bool          `json:"success"`
	FinalBookmark string        `json:"final_bookmark"`
	NumQueries    int64         `json:"num_queries"`
	Meta          OperationMeta `json:"meta"`
	// SignedURL and Filename are set for exports.
	SignedURL string `json:"signed_url"`
	Filename  string `json:"filename"`
}

// PollingResponse reports the state of a long-running import or export.
// A response with Success false is a polling failure.
type PollingResponse struct {
	Success    bool             `json:"success"`
	Type       string           `json:"type"`
	AtBookmark string           `json:"at_bookmark"`
	Status     Status           `json:"status"`
	Errors     []string         `json:"errors"`
	Messages   []string         `json:"messages"`
	Error      string           `json:"error"`
	Result     *OperationResult `json:"result"`
}

// Failed reports whether the server rejected the poll itself.
func (p PollingResponse) Failed() bool { return !p.Success }

// FailureText is the server's reason for a failed poll.
func (p PollingResponse) FailureText() string {
	if p.Error != "" {
		return p.Error
	}
	return "The server rejected the request without giving a reason."
}

// ImportResponse answers any import action. An init answer carries either an
// upload URL or, when the content is already known, the job's polling state.
type ImportResponse struct {
	Filename  string `json:"filename"`
	UploadURL string `json:"upload_url"`
	PollingResponse
}

// UploadRequired reports whether the file must be uploaded before ingest.
func (r ImportResponse) UploadRequired() bool { return r.UploadURL != "" }

// DumpOptions selects what an export contains.
type DumpOptions struct {
	NoSchema bool     `json:"no_schema,omitempty"`
	NoData   bool     `json:"no_data,omitempty"`
	Tables   []string `json:"tables,omitempty"`
}

// ExportRequest is the body of POST /database/{id}/export.
type ExportRequest struct {
	OutputFormat    string      `json:"output_format"`
	DumpOptions     DumpOptions `json:"dump_options"`
	CurrentBookmark string      `json:"current_bookmark,omitempty"`
}

// RestoreResponse answers a time-travel restore.
type RestoreResponse struct {
	Bookmark         string `json:"bookmark"`
	PreviousBookmark string `json:"previous_bookmark"`
	Message          string `json:"message"`
}

// DatabaseInfo is the metadata of one database.
type DatabaseInfo struct {
	UUID      string      `json:"uuid"`
	Name      string      `json:"name"`
	Version   string      `json:"version"`
	CreatedAt string      `json:"created_at"`
	FileSize  json.Number `json:"file_size"`
	NumTables int         `json:"num_tables"`
}

// TokenStatus answers a token verification.
type TokenStatus struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// Row is one result row with its column order preserved.
type Row struct {
	Columns []string
	Values  []any
}

func (r *Row) UnmarshalJSON(b []byte) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("row: expected object, got %v", tok)
	}
	r.Columns, r.Values = nil, nil
	for dec.More() {
		kt, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := kt.(string)
		if !ok {
			return fmt.Errorf("row: expected column name, got %v", kt)
		}
		var v any
		if err := dec.Decode(&v); err != nil {
			return err
		}
		r.Columns = append(r.Columns, key)
		r.Values = append(r.Values, v)
	}
	_, err = dec.Token()
	return err
}

// Get returns the value of column col.
func (r Row) Get(col string) (any, bool) {
	for i, c := range r.Columns {
		if c == col {
			return r.Values[i], true
		}
	}
	return nil, false
}
