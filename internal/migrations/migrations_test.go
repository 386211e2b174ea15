package migrations

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"sqlferry/cli/internal/database"
	apperr "sqlferry/cli/internal/errors"
	"sqlferry/cli/internal/sqlexec"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeMigration(t *testing.T, dir, name, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
}

func TestListOrdersByNumber(t *testing.T) {
	dir := t.TempDir()
	writeMigration(t, dir, "0010_later.sql", "")
	writeMigration(t, dir, "0002_second.sql", "")
	writeMigration(t, dir, "notes.txt", "")
	writeMigration(t, dir, "0001_first.sql", "")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "0003_dir.sql"), 0o755))

	got, err := List(dir)
	require.NoError(t, err)
	var names []string
	for _, m := range got {
		names = append(names, m.Name)
	}
	assert.Equal(t, []string{"0001_first.sql", "0002_second.sql", "0010_later.sql"}, names)

	missing, err := List(filepath.Join(dir, "absent"))
	require.NoError(t, err)
	assert.Empty(t, missing)
}

func TestCreateNumbersSequentially(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "migrations")
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	first, err := Create(dir, "Add Users table", now)
	require.NoError(t, err)
	assert.Equal(t, "0001_add_users_table.sql", first.Name)

	second, err := Create(dir, "posts", now)
	require.NoError(t, err)
	assert.Equal(t, 2, second.Number)

	b, err := os.ReadFile(first.Path)
	require.NoError(t, err)
	assert.Equal(t, "-- Migration number: 0001 \t 2025-03-01T10:00:00Z\n", string(b))

	_, err = Create(dir, "!!!", now)
	assert.True(t, apperr.IsKind(err, apperr.UserError))
}

func localExec(t *testing.T) sqlexec.Executor {
	t.Helper()
	return sqlexec.NewLocal(database.Target{
		Mode:        database.Local,
		Ref:         database.Ref{ID: uuid.New()},
		PersistRoot: t.TempDir(),
	}, sqlexec.Options{})
}

func TestApplyRecordsAndSkipsApplied(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	writeMigration(t, dir, "0001_users.sql", "CREATE TABLE users (id INTEGER PRIMARY KEY, name TEXT);\n")
	writeMigration(t, dir, "0002_seed.sql", "INSERT INTO users (name) VALUES ('ada')")
	exec := localExec(t)
	r := NewRunner(exec, dir, "", nil)

	statuses, err := r.Apply(ctx)
	require.NoError(t, err)
	require.Len(t, statuses, 2)
	assert.Equal(t, StateApplied, statuses[0].State)
	assert.Equal(t, StateApplied, statuses[1].State)

	again, err := r.Apply(ctx)
	require.NoError(t, err)
	assert.Empty(t, again)

	res, err := exec.Execute(ctx, "SELECT name FROM d1_migrations ORDER BY id")
	require.NoError(t, err)
	require.Len(t, res[0].Rows, 2)
	assert.Equal(t, "0002_seed.sql", res[0].Rows[1].Values[0])
}

func TestApplyTrailingLineComment(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	writeMigration(t, dir, "0001_users.sql", "CREATE TABLE users (name TEXT);\nINSERT INTO users (name) VALUES ('ada') -- first user")
	exec := localExec(t)

	statuses, err := NewRunner(exec, dir, "", nil).Apply(ctx)
	require.NoError(t, err)
	require.Len(t, statuses, 1)
	assert.Equal(t, StateApplied, statuses[0].State)

	res, err := exec.Execute(ctx, "SELECT name FROM d1_migrations")
	require.NoError(t, err)
	require.Len(t, res[0].Rows, 1)
	assert.Equal(t, "0001_users.sql", res[0].Rows[0].Values[0])
}

func TestApplyStopsAtFirstFailure(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	writeMigration(t, dir, "0001_ok.sql", "CREATE TABLE a (x);")
	writeMigration(t, dir, "0002_bad.sql", "CREATE TABLE b (x); INSERT INTO missing VALUES (1);")
	writeMigration(t, dir, "0003_never.sql", "CREATE TABLE c (x);")
	exec := localExec(t)
	r := NewRunner(exec, dir, "tracked", nil)

	statuses, err := r.Apply(ctx)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.UserError))
	assert.Contains(t, err.Error(), "no such table")
	assert.Equal(t, []State{StateApplied, StateFailed, StatePending}, []State{statuses[0].State, statuses[1].State, statuses[2].State})

	var e *apperr.E
	require.ErrorAs(t, err, &e)
	assert.Contains(t, e.Notes, "while applying migration 0002_bad.sql")

	pending, err := r.Pending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, "0002_bad.sql", pending[0].Name)

	res, err := exec.Execute(ctx, "SELECT name FROM sqlite_master WHERE name = 'b'")
	require.NoError(t, err)
	assert.Empty(t, res[0].Rows)
}

func TestRejectsUnsafeTableName(t *testing.T) {
	_, err := NewRunner(localExec(t), t.TempDir(), "x; DROP TABLE y", nil).Applied(context.Background())
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.UserError))
}
