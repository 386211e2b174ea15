// Copyright (c) 2025 Sqlferry
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package progress defines the events a transfer emits while it runs and the
// utilities that surface them in the terminal. Server messages are surfaced
// once each, in order; "Uploaded part" messages are renumbered with a client
// side counter because the server's part ids can arrive out of order.
package progress

// EventType enumerates known progress event kinds.
type EventType string

const (
	// EventStep marks the start of a pipeline stage.
	EventStep EventType = "step"
	// EventMessage carries one server message line.
	EventMessage EventType = "message"
	// EventPart reports the running count of uploaded parts.
	EventPart EventType = "part"
	// EventBookmark reports that the job cursor moved.
	EventBookmark EventType = "bookmark"
)

// Step names a pipeline stage.
type Step string

const (
	StepHash     Step = "hash"
	StepInit     Step = "init"
	StepUpload   Step = "upload"
	StepIngest   Step = "ingest"
	StepPoll     Step = "poll"
	StepExport   Step = "export"
	StepDownload Step = "download"
	StepDone     Step = "done"
)

// Event is a generic container for transfer UI events.
// Only a subset of fields is set depending on Type.
type Event struct {
	Type     EventType `json:"type"`
	Step     Step      `json:"step,omitempty"`
	Message  string    `json:"message,omitempty"`
	Part     int       `json:"part,omitempty"`
	Bookmark string    `json:"bookmark,omitempty"`
}

// Sink receives events in emission order.
type Sink interface {
	Render(Event)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(Event)

func (f SinkFunc) Render(ev Event) { f(ev) }

// Discard drops every event.
var Discard Sink = SinkFunc(func(Event) {})

// Recorder keeps every event it receives.
type Recorder struct {
	Events []Event
}

func (r *Recorder) Render(ev Event) { r.Events = append(r.Events, ev) }

// Messages returns the text of recorded message and part events.
func (r *Recorder) Messages() []string {
	var out []string
	for _, ev := range r.Events {
		if ev.Type == EventMessage || ev.Type == EventPart {
			out = append(out, ev.Message)
		}
	}
	return out
}
