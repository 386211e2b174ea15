// Copyright (c) 2025 Sqlferry
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package database identifies the database an operation targets and where it runs.
//
// A Ref names a database as it appears in configuration or in the remote listing.
// A Target pairs a Ref with a Mode (local replica, remote primary, remote preview)
// and is chosen once per command; executors and pipelines never branch on flags.
package database

import (
	"path/filepath"

	"github.com/google/uuid"
)

// GenerationAlpha tags databases created before point-in-time recovery existed.
const GenerationAlpha = "alpha"

// Ref identifies a database.
type Ref struct {
	ID        uuid.UUID
	PreviewID uuid.UUID
	Name      string
	Binding   string
	// InternalEnv selects a non-production service environment; sent as a header.
	InternalEnv string
	// Version is the backend generation tag when known ("alpha", "production").
	Version         string
	MigrationsDir   string
	MigrationsTable string
}

// HasPreview reports whether a preview database is configured.
func (r Ref) HasPreview() bool { return r.PreviewID != uuid.Nil }

// Label is the most human-friendly name available.
func (r Ref) Label() string {
	switch {
	case r.Name != "":
		return r.Name
	case r.Binding != "":
		return r.Binding
	default:
		return r.ID.String()
	}
}

// Mode selects where statements execute.
type Mode int

const (
	Local Mode = iota
	Remote
	Preview
)

func (m Mode) String() string {
	switch m {
	case Local:
		return "local"
	case Remote:
		return "remote"
	case Preview:
		return "preview"
	default:
		return "unknown"
	}
}

// IsRemote reports whether m talks to the hosted service.
func (m Mode) IsRemote() bool { return m == Remote || m == Preview }

// Target is a resolved database plus execution mode, fixed for one operation.
type Target struct {
	Mode Mode
	Ref  Ref
	// PersistRoot is the root of local replica storage; only used in Local mode.
	PersistRoot string
}

// ID returns the database id the operation acts on. Preview targets use the
// preview id; local targets prefer it when one is configured.
func (t Target) ID() uuid.UUID {
	switch t.Mode {
	case Preview:
		return t.Ref.PreviewID
	case Local:
		if t.Ref.HasPreview() {
			return t.Ref.PreviewID
		}
		if t.Ref.ID == uuid.Nil {
			return LocalID(t.Ref)
		}
	}
	return t.Ref.ID
}

// Effective returns Ref with ID replaced by the id the operation acts on.
func (t Target) Effective() Ref {
	r := t.Ref
	r.ID = t.ID()
	return r
}

// StorageDir is where the local replica of t lives.
func (t Target) StorageDir() string {
	return StorageDir(t.PersistRoot, t.ID())
}

// StorageDir lays out replica storage as <root>/v3/d1/<id>.
func StorageDir(root string, id uuid.UUID) string {
	return filepath.Join(root, "v3", "d1", id.String())
}

// localNamespace seeds ids for databases only ever used locally.
var localNamespace = uuid.MustParse("6ba7b811-9dad-11d1-80b4-00c04fd430c8")

// LocalID derives a stable id for a configured database that has no remote id.
func LocalID(r Ref) uuid.UUID {
	key := r.Binding
	if key == "" {
		key = r.Name
	}
	return uuid.NewSHA1(localNamespace, []byte("sqlferry:"+key))
}
