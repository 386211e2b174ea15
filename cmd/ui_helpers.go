// Copyright (c) 2025 Sqlferry
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"bufio"
	"io"
	"strings"

	"sqlferry/cli/internal/progress"
	"sqlferry/cli/internal/terminal"

	"atomicgo.dev/cursor"
	"github.com/pterm/pterm"
)

// startSpinner shows an in-place spinner with text while a long operation
// runs. It is a no-op in --json mode and when stdout is not a terminal.
// The returned function stops the spinner and restores the cursor.
func startSpinner(text string) (*pterm.SpinnerPrinter, func()) {
	if jsonOutput || !terminal.IsInteractive() {
		return nil, func() {}
	}
	cursor.Hide()
	sp, err := pterm.DefaultSpinner.WithRemoveWhenDone(true).Start(text)
	if err != nil {
		cursor.Show()
		return nil, func() {}
	}
	return sp, func() {
		_ = sp.Stop()
		cursor.Show()
	}
}

// progressSink picks where transfer progress goes: nowhere in --json mode,
// the spinner when there is one, plain lines otherwise.
func progressSink(w io.Writer, sp *pterm.SpinnerPrinter) progress.Sink {
	if jsonOutput {
		return progress.Discard
	}
	r := progress.NewRenderer(w)
	if sp != nil {
		r = r.WithSpinner(sp)
	}
	return r
}

// confirm asks a yes/no question on w and reads the answer from in, then
// clears the prompt. Empty input counts as no. Only call it on a terminal.
func confirm(w io.Writer, in io.Reader, question string) bool {
	pterm.Fprintln(w, pterm.NewStyle(pterm.FgYellow, pterm.Bold).Sprint(question))
	pterm.Fprint(w, "Continue? "+pterm.NewStyle(pterm.FgGray).Sprint("[y/N] "))
	line, _ := bufio.NewReader(in).ReadString('\n')
	terminal.ClearPreviousLines(w, len(question)+terminal.Width())
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}

// heading prints a cyan label and a bold value on one line.
func heading(w io.Writer, label, value string) {
	pterm.Fprintln(w, pterm.NewStyle(pterm.FgLightCyan).Sprint(label)+pterm.NewStyle(pterm.FgCyan, pterm.Bold).Sprint(value))
}
