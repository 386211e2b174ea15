package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const projectYAML = `# project settings
account_id: acc-from-file
poll:
  interval: 250ms
databases:
  - binding: DB
    database_name: main
    database_id: 11111111-1111-4111-8111-111111111111
    preview_database_id: 22222222-2222-4222-8222-222222222222
    migrations_dir: db/migrations
`

func writeProject(t *testing.T, dir, content string) string {
	t.Helper()
	p := filepath.Join(dir, ProjectFile)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func isolatedOptions(t *testing.T, dir string) Options {
	t.Helper()
	return Options{Dir: dir, UserFile: filepath.Join(t.TempDir(), "absent.yaml")}
}

func TestLoadDefaults(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load(isolatedOptions(t, dir))
	require.NoError(t, err)

	assert.Equal(t, DefaultAPIBaseURL, cfg.APIBaseURL)
	assert.Equal(t, filepath.Join(dir, DefaultPersistTo), cfg.PersistTo)
	assert.Equal(t, time.Second, cfg.Poll.Interval)
	assert.Equal(t, 30*time.Minute, cfg.Poll.Timeout)
	assert.Zero(t, cfg.Poll.MaxAttempts)
	assert.Empty(t, cfg.FileUsed)
	assert.Equal(t, dir, cfg.ProjectRoot)
}

func TestLoadFindsProjectFileUpward(t *testing.T) {
	root := t.TempDir()
	writeProject(t, root, projectYAML)
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	cfg, err := Load(isolatedOptions(t, nested))
	require.NoError(t, err)
	assert.Equal(t, root, cfg.ProjectRoot)
	assert.Equal(t, "acc-from-file", cfg.AccountID)
	assert.Equal(t, 250*time.Millisecond, cfg.Poll.Interval)
	require.Len(t, cfg.Databases, 1)
	assert.Equal(t, filepath.Join(root, "db", "migrations"), cfg.Databases[0].MigrationsDir)

	refs, err := cfg.Refs()
	require.NoError(t, err)
	assert.Equal(t, "main", refs[0].Name)
	assert.True(t, refs[0].HasPreview())
}

func TestLoadPrecedence(t *testing.T) {
	root := t.TempDir()
	writeProject(t, root, projectYAML)
	user := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(user, []byte("account_id: acc-from-user\napi_base_url: https://user.example\n"), 0o600))

	t.Setenv("SQLFERRY_ACCOUNT_ID", "acc-from-env")
	t.Setenv("SQLFERRY_POLL__MAX_ATTEMPTS", "7")
	t.Setenv(TokenEnv, "secret")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("persist-to", "", "")
	flags.Bool("verbose", false, "")
	flags.Bool("local", false, "")
	require.NoError(t, flags.Parse([]string{"--verbose", "--persist-to", "state-dir"}))

	cfg, err := Load(Options{Dir: root, UserFile: user, Flags: flags})
	require.NoError(t, err)

	assert.Equal(t, "acc-from-env", cfg.AccountID)
	assert.Equal(t, "https://user.example", cfg.APIBaseURL)
	assert.Equal(t, 7, cfg.Poll.MaxAttempts)
	assert.True(t, cfg.Verbose)
	wd, _ := os.Getwd()
	assert.Equal(t, filepath.Join(wd, "state-dir"), cfg.PersistTo)
}

func TestLoadRejectsBadIDs(t *testing.T) {
	dir := t.TempDir()
	writeProject(t, dir, "databases:\n  - binding: DB\n    database_id: not-a-uuid\n")
	_, err := Load(isolatedOptions(t, dir))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid database_id")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{name: "ok", cfg: Config{Databases: []Database{{Binding: "A"}, {DatabaseName: "b"}}}},
		{name: "unnamed", cfg: Config{Databases: []Database{{}}}, wantErr: "binding or a database_name"},
		{name: "duplicate", cfg: Config{Databases: []Database{{Binding: "A"}, {Binding: "A"}}}, wantErr: "duplicate"},
		{name: "negative poll", cfg: Config{Poll: PollConfig{Timeout: -1}}, wantErr: "negative"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestAddDatabaseKeepsExistingContent(t *testing.T) {
	dir := t.TempDir()
	path := writeProject(t, dir, projectYAML)

	require.NoError(t, AddDatabase(path, Database{Binding: "ANALYTICS", DatabaseName: "analytics", DatabaseID: "33333333-3333-4333-8333-333333333333"}))
	require.NoError(t, AddDatabase(path, Database{Binding: "ANALYTICS", DatabaseName: "analytics-v2", DatabaseID: "44444444-4444-4444-8444-444444444444"}))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), "# project settings")

	cfg, err := Load(isolatedOptions(t, dir))
	require.NoError(t, err)
	require.Len(t, cfg.Databases, 2)
	assert.Equal(t, "main", cfg.Databases[0].DatabaseName)
	assert.Equal(t, "analytics-v2", cfg.Databases[1].DatabaseName)
}

func TestAddDatabaseCreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ProjectFile)
	require.NoError(t, AddDatabase(path, Database{Binding: "DB", DatabaseName: "main"}))

	cfg, err := Load(Options{File: path, UserFile: filepath.Join(t.TempDir(), "none.yaml")})
	require.NoError(t, err)
	require.Len(t, cfg.Databases, 1)
	assert.Equal(t, "DB", cfg.Databases[0].Binding)
}
