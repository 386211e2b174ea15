// Copyright (c) 2025 Sqlferry
// Licensed under the MIT License. See LICENSE file in the project root for details.

package database

import (
	"context"

	apperr "sqlferry/cli/internal/errors"

	"github.com/google/uuid"
)

// Flags are the target-selection switches shared by execute, export and migrations.
type Flags struct {
	Local     bool
	Remote    bool
	Preview   bool
	PersistTo string
}

// SelectMode validates f and returns the mode it asks for. fallback applies
// when neither --local nor --remote is given.
func SelectMode(f Flags, fallback Mode) (Mode, error) {
	if f.Local && f.Remote {
		return 0, apperr.User("can't use --local and --remote at the same time")
	}
	if f.Preview && !f.Remote {
		return 0, apperr.User("can't use --preview without --remote")
	}
	mode := fallback
	switch {
	case f.Remote && f.Preview:
		mode = Preview
	case f.Remote:
		mode = Remote
	case f.Local:
		mode = Local
	}
	if f.PersistTo != "" && mode != Local {
		return 0, apperr.User("can't use --persist-to without --local")
	}
	return mode, nil
}

// Lister finds databases on the hosted service by name.
type Lister interface {
	ListDatabases(ctx context.Context, name string) ([]Ref, error)
}

// Resolver maps a name or binding to a Ref using configuration first and the
// remote listing second.
type Resolver struct {
	Configured []Ref
	// Remote may be nil when no credentials are available.
	Remote Lister
}

// Resolve finds the database called nameOrBinding for the given mode.
func (r *Resolver) Resolve(ctx context.Context, nameOrBinding string, mode Mode) (Ref, error) {
	if nameOrBinding == "" {
		return Ref{}, apperr.User("a database name or binding is required")
	}
	ref, ok := r.configured(nameOrBinding)
	switch {
	case ok && mode == Preview:
		if !ref.HasPreview() {
			return Ref{}, apperr.User("Please define a `preview_database_id` for %q in your configuration to execute against a preview database.", ref.Label())
		}
		return ref, nil
	case ok && mode == Local:
		return ref, nil
	case ok && ref.ID != uuid.Nil:
		return ref, nil
	case !ok && !mode.IsRemote():
		return Ref{}, apperr.User("Couldn't find a database with the name or binding %q in your configuration.", nameOrBinding)
	case !ok && mode == Preview:
		return Ref{}, apperr.User("Couldn't find a database with the name or binding %q in your configuration. Preview databases must be configured.", nameOrBinding)
	}

	// Remote target without a configured id: look it up by name.
	name := nameOrBinding
	if ok && ref.Name != "" {
		name = ref.Name
	}
	remote, err := r.lookup(ctx, name)
	if err != nil {
		return Ref{}, err
	}
	if ok {
		remote.Binding = ref.Binding
		remote.InternalEnv = ref.InternalEnv
		remote.MigrationsDir = ref.MigrationsDir
		remote.MigrationsTable = ref.MigrationsTable
	}
	return remote, nil
}

func (r *Resolver) configured(s string) (Ref, bool) {
	for _, ref := range r.Configured {
		if ref.Binding == s {
			return ref, true
		}
	}
	for _, ref := range r.Configured {
		if ref.Name == s {
			return ref, true
		}
	}
	return Ref{}, false
}

func (r *Resolver) lookup(ctx context.Context, name string) (Ref, error) {
	if r.Remote == nil {
		return Ref{}, apperr.User("Couldn't find database %q: no database_id configured and not logged in.", name)
	}
	found, err := r.Remote.ListDatabases(ctx, name)
	if err != nil {
		return Ref{}, err
	}
	for _, ref := range found {
		if ref.Name == name {
			return ref, nil
		}
	}
	return Ref{}, apperr.User("Couldn't find DB with name '%s'", name)
}
