// Copyright (c) 2025 Sqlferry
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package config loads CLI configuration from defaults, the user config file,
// the project file, SQLFERRY_* environment variables and explicitly set flags.
// Only non-secret settings live here; the API token goes to the OS keychain.
package config

import (
	"fmt"
	"time"

	"sqlferry/cli/internal/database"

	"github.com/google/uuid"
)

// Default configuration values.
const (
	DefaultAPIBaseURL   = "https://api.cloudflare.com/client/v4"
	DefaultPersistTo    = ".sqlferry/state"
	DefaultPollInterval = time.Second
	DefaultPollTimeout  = 30 * time.Minute
	ProjectFile         = "sqlferry.yaml"
	UserFile            = "config.yaml"
)

// Config holds all CLI configuration options.
type Config struct {
	AccountID  string     `koanf:"account_id"`
	APIBaseURL string     `koanf:"api_base_url"`
	PersistTo  string     `koanf:"persist_to"`
	Verbose    bool       `koanf:"verbose"`
	Poll       PollConfig `koanf:"poll"`
	Databases  []Database `koanf:"databases"`

	// ProjectRoot is the directory holding the project file, or the CWD.
	ProjectRoot string `koanf:"-"`
	// FileUsed is the project file that was loaded, if any.
	FileUsed string `koanf:"-"`
}

// PollConfig bounds the import and export poll loops.
type PollConfig struct {
	Interval    time.Duration `koanf:"interval"`
	Timeout     time.Duration `koanf:"timeout"`
	MaxAttempts int           `koanf:"max_attempts"`
}

// Database is one configured database.
type Database struct {
	Binding           string `koanf:"binding" yaml:"binding"`
	DatabaseName      string `koanf:"database_name" yaml:"database_name"`
	DatabaseID        string `koanf:"database_id" yaml:"database_id,omitempty"`
	PreviewDatabaseID string `koanf:"preview_database_id" yaml:"preview_database_id,omitempty"`
	InternalEnv       string `koanf:"internal_env" yaml:"internal_env,omitempty"`
	MigrationsDir     string `koanf:"migrations_dir" yaml:"migrations_dir,omitempty"`
	MigrationsTable   string `koanf:"migrations_table" yaml:"migrations_table,omitempty"`
}

// Ref converts d into a database reference.
func (d Database) Ref() (database.Ref, error) {
	ref := database.Ref{
		Name:            d.DatabaseName,
		Binding:         d.Binding,
		InternalEnv:     d.InternalEnv,
		MigrationsDir:   d.MigrationsDir,
		MigrationsTable: d.MigrationsTable,
	}
	var err error
	if d.DatabaseID != "" {
		if ref.ID, err = uuid.Parse(d.DatabaseID); err != nil {
			return database.Ref{}, fmt.Errorf("database %q: invalid database_id: %w", d.label(), err)
		}
	}
	if d.PreviewDatabaseID != "" {
		if ref.PreviewID, err = uuid.Parse(d.PreviewDatabaseID); err != nil {
			return database.Ref{}, fmt.Errorf("database %q: invalid preview_database_id: %w", d.label(), err)
		}
	}
	return ref, nil
}

func (d Database) label() string {
	if d.Binding != "" {
		return d.Binding
	}
	return d.DatabaseName
}

// Refs converts every configured database.
func (c *Config) Refs() ([]database.Ref, error) {
	refs := make([]database.Ref, 0, len(c.Databases))
	for _, d := range c.Databases {
		ref, err := d.Ref()
		if err != nil {
			return nil, err
		}
		refs = append(refs, ref)
	}
	return refs, nil
}

// Validate checks values that would otherwise fail deep inside a command.
func (c *Config) Validate() error {
	if c.Poll.Interval < 0 || c.Poll.Timeout < 0 || c.Poll.MaxAttempts < 0 {
		return fmt.Errorf("poll settings must not be negative")
	}
	seen := make(map[string]bool)
	for _, d := range c.Databases {
		if d.Binding == "" && d.DatabaseName == "" {
			return fmt.Errorf("every database needs a binding or a database_name")
		}
		if d.Binding != "" {
			if seen[d.Binding] {
				return fmt.Errorf("duplicate database binding %q", d.Binding)
			}
			seen[d.Binding] = true
		}
		if _, err := d.Ref(); err != nil {
			return err
		}
	}
	return nil
}
