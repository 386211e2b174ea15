// Copyright (c) 2025 Sqlferry
// Licensed under the MIT License. See LICENSE file in the project root for details.

package progress

import (
	"io"

	"github.com/pterm/pterm"
)

// Renderer prints transfer events to the console.
type Renderer struct {
	w io.Writer
	// spinner, when set, shows part counts in place instead of one line each.
	spinner *pterm.SpinnerPrinter
}

// NewRenderer creates a renderer writing to w.
func NewRenderer(w io.Writer) *Renderer { return &Renderer{w: w} }

// WithSpinner routes step and part updates through sp.
func (r *Renderer) WithSpinner(sp *pterm.SpinnerPrinter) *Renderer {
	r.spinner = sp
	return r
}

// Render processes a single event.
func (r *Renderer) Render(ev Event) {
	switch ev.Type {
	case EventStep:
		if ev.Message == "" {
			return
		}
		if r.spinner != nil {
			r.spinner.UpdateText(ev.Message)
			return
		}
		pterm.Fprintln(r.w, "🌀 "+ev.Message)
	case EventPart:
		if r.spinner != nil {
			r.spinner.UpdateText(ev.Message)
			return
		}
		pterm.Fprintln(r.w, "🌀 "+ev.Message)
	case EventMessage:
		pterm.Fprintln(r.w, "🌀 "+ev.Message)
	case EventBookmark:
		// Suppressed to keep UI clean
	}
}
