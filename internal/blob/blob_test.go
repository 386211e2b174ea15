package blob

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	apperr "sqlferry/cli/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tempSQL(t *testing.T, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "in.sql")
	require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
	return p
}

func TestUpload(t *testing.T) {
	const content = "INSERT INTO t VALUES (1);"
	tests := []struct {
		name     string
		status   int
		etag     string
		want     string
		wantKind apperr.Kind
	}{
		{name: "ok quoted", status: http.StatusOK, etag: `"abc123"`, want: "abc123"},
		{name: "missing etag", status: http.StatusOK, wantKind: apperr.IntegrityError},
		{name: "bad status", status: http.StatusForbidden, etag: `"abc"`, wantKind: apperr.TransportError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPut, r.Method)
				assert.Equal(t, int64(len(content)), r.ContentLength)
				assert.Empty(t, r.Header.Get("Authorization"))
				body, _ := io.ReadAll(r.Body)
				assert.Equal(t, content, string(body))
				if tt.etag != "" {
					w.Header().Set("ETag", tt.etag)
				}
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			got, err := New(nil, nil).Upload(context.Background(), srv.URL+"/put?X-Amz-Signature=s", tempSQL(t, content))
			if tt.wantKind != "" {
				require.Error(t, err)
				assert.Equal(t, tt.wantKind, apperr.KindOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestUploadMissingFile(t *testing.T) {
	_, err := New(nil, nil).Upload(context.Background(), "http://127.0.0.1:1/x", filepath.Join(t.TempDir(), "none.sql"))
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.UserError))
}

func TestDownload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = io.WriteString(w, "CREATE TABLE t (x);\n")
	}))
	defer srv.Close()

	out := filepath.Join(t.TempDir(), "nested", "dump.sql")
	n, err := New(nil, nil).Download(context.Background(), srv.URL+"/dump", out)
	require.NoError(t, err)
	assert.Equal(t, int64(20), n)
	b, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "CREATE TABLE t (x);\n", string(b))

	other := filepath.Join(t.TempDir(), "keep.sql")
	require.NoError(t, os.WriteFile(other, []byte("old"), 0o600))
	_, err = New(nil, nil).Download(context.Background(), srv.URL+"/missing", other)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.TransportError))
	b, _ = os.ReadFile(other)
	assert.Equal(t, "old", string(b))
}
