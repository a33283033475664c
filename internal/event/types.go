// Package event defines the unified tool-event record and its JSONL codec.
//
// Events are emitted by three client conventions: Claude Code hooks write
// paired PreToolUse/PostToolUse records, while Codex CLI and OpenClaw
// transcripts collapse to a single ToolUse record per call. The IsCall and
// IsError predicates keep those conventions comparable without double
// counting.
package event

import (
	"encoding/json"
	"time"
)

// SchemaVersion is the unified event schema version written to events.jsonl.
const SchemaVersion = 1

// Kind is the event type discriminator carried in the "event" field.
type Kind string

const (
	// KindPreToolUse announces a tool call before it runs (Claude Code hooks).
	KindPreToolUse Kind = "PreToolUse"

	// KindPostToolUse reports a tool call result, carrying any error.
	KindPostToolUse Kind = "PostToolUse"

	// KindToolUse is a combined call+result record (Codex CLI, OpenClaw).
	KindToolUse Kind = "ToolUse"

	// KindSessionStart and KindSessionEnd are session boundary markers.
	KindSessionStart Kind = "SessionStart"
	KindSessionEnd   Kind = "SessionEnd"
)

// Event is one immutable record from the append-only event log.
type Event struct {
	// Version is the schema version ("v" on the wire).
	Version int

	// ID has the form <session-identity>-<sequence>.
	ID string

	// Time is the normalized UTC instant parsed from the wire "ts" field,
	// which may be an RFC 3339 string or an epoch-millisecond number.
	Time time.Time

	// Kind discriminates announcement, result, combined, and boundary records.
	Kind Kind

	// Tool is the raw tool name as the client reported it. Empty for
	// boundary events.
	Tool string

	// Project is the working directory the event was recorded in.
	Project string

	// Source identifies the originating client. Normalized to "unknown"
	// when absent.
	Source string

	// Error is non-nil only on result-carrying records that failed.
	Error *string

	// File is the target path for file-addressable tools, nil otherwise.
	File *string

	// Skill is the invoked skill name when Tool is a skill dispatcher.
	Skill string

	// Model is the model identifier when the client reports one.
	Model string
}

// IsCall reports whether the event represents a tool invocation.
// PreToolUse and ToolUse count; PostToolUse never does, so a paired
// announce/result convention contributes exactly one call.
func (e Event) IsCall() bool {
	return e.Kind == KindPreToolUse || e.Kind == KindToolUse
}

// IsError reports whether the event carries a tool failure.
// Only result-carrying kinds (PostToolUse, ToolUse) qualify, so the call
// and error predicates never both fire on the same record of a pair.
func (e Event) IsError() bool {
	return (e.Kind == KindPostToolUse || e.Kind == KindToolUse) && e.Error != nil
}

// wireEvent is the JSONL representation of an Event.
type wireEvent struct {
	V       int             `json:"v"`
	ID      string          `json:"id"`
	TS      json.RawMessage `json:"ts"`
	Event   string          `json:"event"`
	Tool    string          `json:"tool"`
	Project string          `json:"project,omitempty"`
	Error   *string         `json:"error"`
	Source  string          `json:"source,omitempty"`
	File    *string         `json:"file,omitempty"`
	Skill   string          `json:"skill,omitempty"`
	Model   string          `json:"model,omitempty"`
}

// MarshalJSON writes the wire form with the timestamp as a UTC RFC 3339 string.
func (e Event) MarshalJSON() ([]byte, error) {
	ts, err := json.Marshal(e.Time.UTC().Format("2006-01-02T15:04:05Z"))
	if err != nil {
		return nil, err
	}
	return json.Marshal(wireEvent{
		V:       e.Version,
		ID:      e.ID,
		TS:      ts,
		Event:   string(e.Kind),
		Tool:    e.Tool,
		Project: e.Project,
		Error:   e.Error,
		Source:  e.Source,
		File:    e.File,
		Skill:   e.Skill,
		Model:   e.Model,
	})
}

// UnmarshalJSON decodes the wire form, tolerating both timestamp encodings.
// A missing or unparseable timestamp leaves Time zero; the loader drops
// such records.
func (e *Event) UnmarshalJSON(data []byte) error {
	var w wireEvent
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*e = Event{
		Version: w.V,
		ID:      w.ID,
		Kind:    Kind(w.Event),
		Tool:    w.Tool,
		Project: w.Project,
		Source:  w.Source,
		Error:   w.Error,
		File:    w.File,
		Skill:   w.Skill,
		Model:   w.Model,
	}
	if ts, ok := ParseTimestamp(w.TS); ok {
		e.Time = ts
	}
	return nil
}
