// Copyright (c) 2025 Sqlferry
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package migrations manages numbered .sql migration files and applies the
// pending ones in order, recording each in a tracking table.
package migrations

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	apperr "sqlferry/cli/internal/errors"
)

const (
	// DefaultDir is used when a database has no migrations_dir configured.
	DefaultDir = "migrations"
	// DefaultTable is used when a database has no migrations_table configured.
	DefaultTable = "d1_migrations"
)

var (
	fileRe = regexp.MustCompile(`^(\d+)_[^/\\]*\.sql$`)
	slugRe = regexp.MustCompile(`[^a-z0-9]+`)
	// identRe limits table names interpolated into tracking statements.
	identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
)

// Migration is one migration file.
type Migration struct {
	Number int    `json:"number"`
	Name   string `json:"name"`
	Path   string `json:"-"`
}

// List returns the migration files in dir ordered by number. A missing
// directory holds no migrations.
func List(dir string) ([]Migration, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading migrations directory: %w", err)
	}
	var out []Migration
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		m := fileRe.FindStringSubmatch(e.Name())
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		out = append(out, Migration{Number: n, Name: e.Name(), Path: filepath.Join(dir, e.Name())})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Number != out[j].Number {
			return out[i].Number < out[j].Number
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

// Create writes an empty migration named after message with the next free number.
func Create(dir, message string, now time.Time) (Migration, error) {
	slug := strings.Trim(slugRe.ReplaceAllString(strings.ToLower(message), "_"), "_")
	if slug == "" {
		return Migration{}, apperr.User("Migration name %q has no usable characters", message)
	}
	existing, err := List(dir)
	if err != nil {
		return Migration{}, err
	}
	next := 1
	if len(existing) > 0 {
		next = existing[len(existing)-1].Number + 1
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Migration{}, fmt.Errorf("creating migrations directory: %w", err)
	}

	name := fmt.Sprintf("%04d_%s.sql", next, slug)
	path := filepath.Join(dir, name)
	header := fmt.Sprintf("-- Migration number: %04d \t %s\n", next, now.UTC().Format(time.RFC3339))
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return Migration{}, fmt.Errorf("creating migration file: %w", err)
	}
	defer f.Close()
	if _, err := f.WriteString(header); err != nil {
		return Migration{}, fmt.Errorf("writing migration file: %w", err)
	}
	return Migration{Number: next, Name: name, Path: path}, nil
}

func checkTable(table string) error {
	if !identRe.MatchString(table) {
		return apperr.User("Invalid migrations table name %q", table)
	}
	return nil
}
