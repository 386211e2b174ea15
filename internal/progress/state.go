// Copyright (c) 2025 Sqlferry
// Licensed under the MIT License. See LICENSE file in the project root for details.

package progress

import (
	"fmt"
	"strings"
	"sync"
)

// partPrefix starts the messages that report an uploaded part.
const partPrefix = "Uploaded part"

// State tracks what a transfer has surfaced so far.
type State struct {
	// Parts is the number of uploaded parts reported
	Parts int
	// Bookmark is the last cursor the server reported
	Bookmark string
	// Steps preserves the stages in the order they started
	Steps []Step
	// Lines holds every surfaced message after renumbering
	Lines []string
	mu    sync.Mutex
}

// Reporter turns pipeline progress into events for a Sink.
type Reporter struct {
	sink  Sink
	state State
}

// NewReporter creates a reporter writing to sink; nil discards events.
func NewReporter(sink Sink) *Reporter {
	if sink == nil {
		sink = Discard
	}
	return &Reporter{sink: sink}
}

// Step announces a pipeline stage.
func (r *Reporter) Step(s Step, msg string) {
	r.state.mu.Lock()
	r.state.Steps = append(r.state.Steps, s)
	r.state.mu.Unlock()
	r.sink.Render(Event{Type: EventStep, Step: s, Message: msg})
}

// Observe surfaces the messages of one poll response and records its bookmark.
func (r *Reporter) Observe(bookmark string, messages []string) {
	var events []Event
	r.state.mu.Lock()
	if bookmark != "" && bookmark != r.state.Bookmark {
		r.state.Bookmark = bookmark
		events = append(events, Event{Type: EventBookmark, Bookmark: bookmark})
	}
	for _, m := range messages {
		if strings.HasPrefix(m, partPrefix) {
			r.state.Parts++
			line := fmt.Sprintf("%s %d", partPrefix, r.state.Parts)
			r.state.Lines = append(r.state.Lines, line)
			events = append(events, Event{Type: EventPart, Part: r.state.Parts, Message: line})
			continue
		}
		r.state.Lines = append(r.state.Lines, m)
		events = append(events, Event{Type: EventMessage, Message: m})
	}
	r.state.mu.Unlock()
	for _, ev := range events {
		r.sink.Render(ev)
	}
}

// Parts returns the number of uploaded parts reported so far.
func (r *Reporter) Parts() int {
	r.state.mu.Lock()
	defer r.state.mu.Unlock()
	return r.state.Parts
}

// Bookmark returns the last cursor observed.
func (r *Reporter) Bookmark() string {
	r.state.mu.Lock()
	defer r.state.mu.Unlock()
	return r.state.Bookmark
}

// Lines returns a copy of every surfaced message.
func (r *Reporter) Lines() []string {
	r.state.mu.Lock()
	defer r.state.mu.Unlock()
	return append([]string(nil), r.state.Lines...)
}
