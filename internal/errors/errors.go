// Copyright (c) 2025 Sqlferry
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package errors defines typed errors with categories for user-friendly reporting.
// Every failure that reaches the command layer carries a Kind so the CLI can decide
// how to present it and whether it belongs in diagnostics at all.
//
// Notes hold supplementary lines (server messages, hints) shown under the main text.
package errors

import (
	stderrors "errors"
	"fmt"
)

// Kind is a machine-readable error category.
type Kind string

const (
	// UserError indicates bad input: paths, flags, timestamps, binary files.
	UserError Kind = "user_error"
	// APIError indicates the remote service rejected the request.
	APIError Kind = "api_error"
	// TransportError indicates a network failure talking to the service or blob store.
	TransportError Kind = "transport_error"
	// IntegrityError indicates uploaded content did not match the local digest.
	IntegrityError Kind = "integrity_error"
)

// E wraps an error with kind and human-friendly message.
type E struct {
	Kind    Kind
	Message string
	Notes   []string
	Err     error
}

func (e *E) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *E) Unwrap() error { return e.Err }

// WithNotes returns e with supplementary lines appended.
func (e *E) WithNotes(notes ...string) *E {
	e.Notes = append(e.Notes, notes...)
	return e
}

func Wrap(kind Kind, msg string, err error) *E { return &E{Kind: kind, Message: msg, Err: err} }
func New(kind Kind, msg string) *E             { return &E{Kind: kind, Message: msg} }

// User is shorthand for New(UserError, fmt.Sprintf(format, args...)).
func User(format string, args ...any) *E {
	return New(UserError, fmt.Sprintf(format, args...))
}

// API builds an APIError with the given notes.
func API(msg string, notes ...string) *E {
	return &E{Kind: APIError, Message: msg, Notes: notes}
}

// Transport wraps a network failure.
func Transport(msg string, err error) *E { return Wrap(TransportError, msg, err) }

// Integrity builds an IntegrityError.
func Integrity(msg string) *E { return New(IntegrityError, msg) }

// KindOf returns the Kind of the first *E in err's chain, or "" when there is none.
func KindOf(err error) Kind {
	var e *E
	if stderrors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool { return KindOf(err) == kind }

// Reportable reports whether err should reach internal diagnostics.
// User mistakes and remote rejections are not defects of the tool.
func Reportable(err error) bool {
	if err == nil {
		return false
	}
	switch KindOf(err) {
	case UserError, APIError:
		return false
	}
	return true
}
