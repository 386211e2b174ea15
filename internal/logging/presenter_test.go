package logging

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"

	apperr "sqlferry/cli/internal/errors"

	"github.com/stretchr/testify/assert"
)

func TestPresent(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Presentation
	}{
		{
			name: "plain error",
			err:  errors.New("boom token=abc"),
			want: Presentation{Text: "boom token=***"},
		},
		{
			name: "api error with notes",
			err:  fmt.Errorf("import: %w", apperr.API("import failed", "near x: syntax error")),
			want: Presentation{Text: "import failed", Notes: []string{"near x: syntax error"}, Kind: "api_error"},
		},
		{
			name: "transport error shows cause",
			err:  apperr.Transport("uploading file", errors.New("connection reset")),
			want: Presentation{Text: "uploading file", Notes: []string{"connection reset"}, Kind: "transport_error"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Present(tt.err))
		})
	}
}

func TestPresentationString(t *testing.T) {
	p := Presentation{Text: "failed", Notes: []string{"a", "b"}}
	assert.Equal(t, "failed\n  a\n  b", p.String())
}

func TestPresentErrorMasks(t *testing.T) {
	assert.Equal(t, "", PresentError("ctx", nil))
	assert.Equal(t, "upload: bad password=***", PresentError("upload", errors.New("bad password=hunter2")))
}

func TestLoggerLevels(t *testing.T) {
	var quiet, loud bytes.Buffer
	NewLogger(&quiet, false).Debug("hidden detail")
	NewLogger(&loud, true).Debug("visible detail")

	assert.NotContains(t, quiet.String(), "hidden detail")
	assert.Contains(t, loud.String(), "visible detail")
}

func TestLoggerContext(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&buf, true)
	ctx := WithLogger(context.Background(), l)
	assert.Same(t, l, FromContext(ctx))
	assert.NotNil(t, FromContext(context.Background()))
}
