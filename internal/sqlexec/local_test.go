package sqlexec

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"regexp"
	"testing"

	"sqlferry/cli/internal/database"
	apperr "sqlferry/cli/internal/errors"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func localTarget(t *testing.T) database.Target {
	t.Helper()
	return database.Target{
		Mode:        database.Local,
		Ref:         database.Ref{ID: uuid.MustParse("aaaaaaaa-0000-4000-8000-000000000001"), Binding: "DB"},
		PersistRoot: t.TempDir(),
	}
}

func TestLocalExecuteRoundTrip(t *testing.T) {
	ctx := context.Background()
	exec := NewLocal(localTarget(t), Options{})

	_, err := exec.Execute(ctx, `
		CREATE TABLE users (id INTEGER PRIMARY KEY, name TEXT, score REAL, avatar BLOB);
		INSERT INTO users VALUES (1, 'ada', 9.5, x'0102'), (2, NULL, 3, NULL);`)
	require.NoError(t, err)

	results, err := exec.Execute(ctx, "SELECT id, name, score, avatar FROM users ORDER BY id; SELECT count(*) AS n FROM users")
	require.NoError(t, err)
	require.Len(t, results, 2)

	first := results[0]
	assert.True(t, first.Success)
	require.Len(t, first.Rows, 2)
	assert.Equal(t, []string{"id", "name", "score", "avatar"}, first.Rows[0].Columns)
	assert.Equal(t, []string{"1", "ada", "9.5", "[1, 2]"}, first.Rows[0].Values)
	assert.Equal(t, []string{"2", "null", "3", "null"}, first.Rows[1].Values)

	n, ok := results[1].Rows[0].Get("n")
	require.True(t, ok)
	assert.Equal(t, "2", n)

	_, err = os.Stat(exec.Path())
	assert.NoError(t, err)
}

func TestLocalBatchIsAtomic(t *testing.T) {
	ctx := context.Background()
	exec := NewLocal(localTarget(t), Options{})

	_, err := exec.Execute(ctx, "CREATE TABLE t (x INTEGER UNIQUE); INSERT INTO t VALUES (1)")
	require.NoError(t, err)

	_, err = exec.Execute(ctx, "INSERT INTO t VALUES (2); INSERT INTO t VALUES (1); INSERT INTO t VALUES (3)")
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.UserError))
	assert.Contains(t, err.Error(), "UNIQUE")

	results, err := exec.Execute(ctx, "SELECT x FROM t ORDER BY x")
	require.NoError(t, err)
	require.Len(t, results[0].Rows, 1)
	assert.Equal(t, "1", results[0].Rows[0].Values[0])
}

func TestLocalEmptyScript(t *testing.T) {
	results, err := NewLocal(localTarget(t), Options{}).Execute(context.Background(), "-- nothing\n")
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestLocalReleasesHandleOnEngineError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1")).WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(int64(1)))
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO t VALUES (1)")).WillReturnError(errors.New("UNIQUE constraint failed: t.x"))
	mock.ExpectRollback()
	mock.ExpectClose()

	exec := NewLocal(localTarget(t), Options{Open: func(string) (*sql.DB, error) { return db, nil }})
	_, err = exec.Execute(context.Background(), "SELECT 1; INSERT INTO t VALUES (1)")
	require.Error(t, err)

	var e *apperr.E
	require.ErrorAs(t, err, &e)
	assert.Equal(t, "UNIQUE constraint failed: t.x", e.Message)
	assert.Equal(t, []string{"in statement 2: INSERT INTO t VALUES (1)"}, e.Notes)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLocalReleasesHandleOnSuccess(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1")).WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(int64(1)))
	mock.ExpectCommit()
	mock.ExpectClose()

	exec := NewLocal(localTarget(t), Options{Open: func(string) (*sql.DB, error) { return db, nil }})
	results, err := exec.Execute(context.Background(), "SELECT 1")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLocalPrefersPreviewStorage(t *testing.T) {
	tgt := localTarget(t)
	tgt.Ref.PreviewID = uuid.MustParse("bbbbbbbb-0000-4000-8000-000000000002")
	exec := NewLocal(tgt, Options{})
	assert.Contains(t, exec.Path(), tgt.Ref.PreviewID.String())
}
