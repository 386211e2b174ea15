package etag

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSumKnownValue(t *testing.T) {
	assert.Equal(t, "d41d8cd98f00b204e9800998ecf8427e", Sum(nil))
	assert.Equal(t, "5d41402abc4b2a76b9719d911017c592", Sum([]byte("hello")))
}

func TestSumDeterministic(t *testing.T) {
	data := []byte("INSERT INTO t VALUES (1);")
	assert.Equal(t, Sum(data), Sum(append([]byte(nil), data...)))

	flipped := append([]byte(nil), data...)
	flipped[0] ^= 0x01
	assert.NotEqual(t, Sum(data), Sum(flipped))
}

func TestFileMatchesSum(t *testing.T) {
	content := strings.Repeat("SELECT 1;\n", 10000)
	path := filepath.Join(t.TempDir(), "dump.sql")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	got, err := File(path)
	require.NoError(t, err)
	assert.Equal(t, Sum([]byte(content)), got)
}

func TestFileMissing(t *testing.T) {
	_, err := File(filepath.Join(t.TempDir(), "missing.sql"))
	assert.Error(t, err)
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{`"abc"`, "abc"},
		{`W/"abc"`, "abc"},
		{" abc ", "abc"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
	assert.True(t, Equal(`"ABC"`, "abc"))
	assert.False(t, Equal(`"abd"`, "abc"))
}
