// Copyright (c) 2025 Sqlferry
// Licensed under the MIT License. See LICENSE file in the project root for details.

package logging

import (
	"errors"
	"fmt"
	"strings"

	apperr "sqlferry/cli/internal/errors"
)

// PresentError formats an error for user display with masking.
func PresentError(context string, err error) string {
	if err == nil {
		return ""
	}
	if context == "" {
		return Mask(err.Error())
	}
	return fmt.Sprintf("%s: %s", context, Mask(err.Error()))
}

// Presentation is an error split into its headline and supplementary notes.
type Presentation struct {
	Text  string   `json:"text"`
	Notes []string `json:"notes,omitempty"`
	Kind  string   `json:"kind,omitempty"`
}

// Present extracts the user-facing parts of err. Typed errors show their
// message without the kind prefix; everything else shows its full text.
func Present(err error) Presentation {
	if err == nil {
		return Presentation{}
	}
	var e *apperr.E
	if !errors.As(err, &e) {
		return Presentation{Text: Mask(err.Error())}
	}
	p := Presentation{Text: Mask(e.Message), Kind: string(e.Kind)}
	for _, n := range e.Notes {
		p.Notes = append(p.Notes, Mask(n))
	}
	if e.Err != nil && e.Kind == apperr.TransportError {
		p.Notes = append(p.Notes, Mask(e.Err.Error()))
	}
	return p
}

// String renders p with each note on its own indented line.
func (p Presentation) String() string {
	var b strings.Builder
	b.WriteString(p.Text)
	for _, n := range p.Notes {
		b.WriteString("\n  ")
		b.WriteString(n)
	}
	return b.String()
}
