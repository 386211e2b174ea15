package splitter

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplit(t *testing.T) {
	tests := []struct {
		name   string
		script string
		want   []string
	}{
		{
			name:   "semicolon inside string literal",
			script: "SELECT ';' ; SELECT 2",
			want:   []string{"SELECT ';' ", " SELECT 2"},
		},
		{
			name:   "trailing statement without semicolon",
			script: "CREATE TABLE a (x INT);INSERT INTO a VALUES (1)",
			want:   []string{"CREATE TABLE a (x INT)", "INSERT INTO a VALUES (1)"},
		},
		{
			name:   "trailing whitespace after last semicolon",
			script: "SELECT 1;\n\n",
			want:   []string{"SELECT 1"},
		},
		{
			name:   "double quoted identifier",
			script: `SELECT "a;b" FROM t; SELECT 1`,
			want:   []string{`SELECT "a;b" FROM t`, " SELECT 1"},
		},
		{
			name:   "backtick and bracket identifiers",
			script: "SELECT `x;y`, [p;q] FROM t;SELECT 2",
			want:   []string{"SELECT `x;y`, [p;q] FROM t", "SELECT 2"},
		},
		{
			name:   "escaped quote inside literal",
			script: "INSERT INTO t VALUES ('it''s; fine');SELECT 1",
			want:   []string{"INSERT INTO t VALUES ('it''s; fine')", "SELECT 1"},
		},
		{
			name:   "line comment hides semicolon",
			script: "SELECT 1 -- not; a split\n;SELECT 2",
			want:   []string{"SELECT 1 -- not; a split\n", "SELECT 2"},
		},
		{
			name:   "block comment hides semicolon",
			script: "SELECT /* a;b */ 1;SELECT 2",
			want:   []string{"SELECT /* a;b */ 1", "SELECT 2"},
		},
		{
			name:   "comment only fragments dropped",
			script: "-- header\n;SELECT 1;/* trailer */",
			want:   []string{"SELECT 1"},
		},
		{
			name: "trigger body kept whole",
			script: "CREATE TRIGGER trg AFTER INSERT ON t BEGIN\n" +
				"  UPDATE c SET n = n + 1;\n" +
				"  INSERT INTO log VALUES (CASE WHEN 1 THEN 'a' ELSE 'b' END);\n" +
				"END;SELECT 1",
			want: []string{
				"CREATE TRIGGER trg AFTER INSERT ON t BEGIN\n" +
					"  UPDATE c SET n = n + 1;\n" +
					"  INSERT INTO log VALUES (CASE WHEN 1 THEN 'a' ELSE 'b' END);\n" +
					"END",
				"SELECT 1",
			},
		},
		{
			name:   "temp trigger",
			script: "create temp trigger x before delete on t begin select 1; end; select 2",
			want:   []string{"create temp trigger x before delete on t begin select 1; end", " select 2"},
		},
		{
			name:   "transaction keywords do not nest",
			script: "BEGIN;INSERT INTO t VALUES (1);END",
			want:   []string{"BEGIN", "INSERT INTO t VALUES (1)", "END"},
		},
		{
			name:   "unterminated quote swallows the rest",
			script: "SELECT 1; SELECT 'oops; SELECT 3",
			want:   []string{"SELECT 1", " SELECT 'oops; SELECT 3"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Strings(tt.script))
		})
	}
}

func TestSplitEmpty(t *testing.T) {
	for _, in := range []string{"", "   \n\t", ";;;", "-- only a comment", "/* c */ ; -- d"} {
		assert.Empty(t, Split(in), "input %q", in)
	}
}

func TestSplitIndexes(t *testing.T) {
	stmts := Split("SELECT 1; ; SELECT 2; SELECT 3")
	require.Len(t, stmts, 3)
	for i, st := range stmts {
		assert.Equal(t, i, st.Index)
	}
}

func TestSplitPreservesLiterals(t *testing.T) {
	script := "INSERT INTO t VALUES ('a;b', \"c;d\"); -- x;y\nSELECT '/* ; */'"
	joined := strings.Join(Strings(script), ";")
	assert.Equal(t, script, joined)
}
