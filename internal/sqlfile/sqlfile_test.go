package sqlfile

import (
	"os"
	"path/filepath"
	"testing"

	apperr "sqlferry/cli/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, data, 0o600))
	return p
}

func TestCheckNotBinary(t *testing.T) {
	tests := []struct {
		name    string
		data    []byte
		wantErr bool
	}{
		{"sql text", []byte("CREATE TABLE t (x);"), false},
		{"empty file", nil, false},
		{"shorter than header", []byte("SQLite"), false},
		{"sqlite database", append([]byte("SQLite format 3\x00"), make([]byte, 84)...), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckNotBinary(writeFile(t, "in.sql", tt.data))
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, apperr.IsKind(err, apperr.UserError))
			assert.Contains(t, err.Error(), "binary SQLite database file")
		})
	}
}

func TestReadMissingFile(t *testing.T) {
	_, err := Read(filepath.Join(t.TempDir(), "nope.sql"))
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.UserError))
	assert.Contains(t, err.Error(), "Unable to read SQL text file")
}

func TestRead(t *testing.T) {
	got, err := Read(writeFile(t, "ok.sql", []byte("SELECT 1;")))
	require.NoError(t, err)
	assert.Equal(t, "SELECT 1;", got)
}
