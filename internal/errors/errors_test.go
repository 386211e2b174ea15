package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindSurvivesWrapping(t *testing.T) {
	base := User("bad flag %q", "--x")
	wrapped := fmt.Errorf("running command: %w", base)

	assert.Equal(t, UserError, KindOf(wrapped))
	assert.True(t, IsKind(wrapped, UserError))

	var e *E
	assert.True(t, stderrors.As(wrapped, &e))
	assert.Equal(t, `bad flag "--x"`, e.Message)
}

func TestReportable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"user", User("nope"), false},
		{"api", API("syntax error", "near SELEC"), false},
		{"transport", Transport("polling import", stderrors.New("reset")), true},
		{"integrity", Integrity("mismatch"), true},
		{"plain", stderrors.New("boom"), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Reportable(tt.err))
		})
	}
}

func TestUnwrapReachesCause(t *testing.T) {
	cause := stderrors.New("connection reset")
	err := Transport("uploading file", cause)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "connection reset")
}

func TestWithNotes(t *testing.T) {
	err := API("import failed").WithNotes("a", "b")
	assert.Equal(t, []string{"a", "b"}, err.Notes)
}
