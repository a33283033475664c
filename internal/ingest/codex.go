package ingest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/blackwell-systems/tooltime/internal/event"
)

// codexEntry is one line of a Codex CLI rollout transcript.
type codexEntry struct {
	Timestamp json.RawMessage `json:"timestamp"`
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload"`
}

// Codex entry and payload type discriminators.
const (
	codexEntrySessionMeta  = "session_meta"
	codexEntryResponseItem = "response_item"

	codexPayloadFunctionCall       = "function_call"
	codexPayloadFunctionCallOutput = "function_call_output"
)

// codexPayload covers the payload fields of session_meta and response_item
// entries. Arguments is a JSON string in Codex transcripts, not an object.
type codexPayload struct {
	Type      string          `json:"type"`
	CWD       string          `json:"cwd"`
	Name      string          `json:"name"`
	CallID    string          `json:"call_id"`
	Arguments string          `json:"arguments"`
	Output    json.RawMessage `json:"output"`
}

// ParseCodex parses one Codex CLI rollout transcript into unified events.
// function_call opens a pending call keyed by call_id; function_call_output
// closes it. Shell outputs embed "Exit code: N"; any non-zero code marks
// the call as failed.
func ParseCodex(path string) ([]event.Event, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open transcript: %w", err)
	}
	defer f.Close()

	// rollout-<timestamp>-<uuid>
	sessionID := strings.TrimSuffix(filepath.Base(path), ".jsonl")
	cwd := ""
	seq := 0
	pending := newPendingCalls()
	var events []event.Event

	scanner := newScanner(f)
	for scanner.Scan() {
		var entry codexEntry
		if err := json.Unmarshal(scanner.Bytes(), &entry); err != nil {
			continue
		}
		var payload codexPayload
		if err := json.Unmarshal(entry.Payload, &payload); err != nil {
			continue
		}

		if entry.Type == codexEntrySessionMeta {
			cwd = payload.CWD
			continue
		}
		if entry.Type != codexEntryResponseItem {
			continue
		}

		switch payload.Type {
		case codexPayloadFunctionCall:
			seq++
			ts, _ := event.ParseTimestamp(entry.Timestamp)
			e := event.Event{
				Version: event.SchemaVersion,
				ID:      fmt.Sprintf("%s-%d", sessionID, seq),
				Time:    ts,
				Kind:    event.KindToolUse,
				Tool:    payload.Name,
				Project: cwd,
				Source:  SourceCodex,
			}
			var args toolInput
			if err := json.Unmarshal([]byte(payload.Arguments), &args); err == nil {
				if fp := firstNonEmpty(args.FilePath, args.Path); fp != "" {
					e.File = &fp
				}
				if payload.Name == "Skill" {
					e.Skill = args.Skill
				}
			}
			pending.add(payload.CallID, e)

		case codexPayloadFunctionCallOutput:
			e := pending.pop(payload.CallID)
			if e == nil {
				continue
			}
			output := textOf(payload.Output)
			if code, ok := exitCode(output); ok && code != "0" {
				errText := excerpt(output)
				e.Error = &errText
			}
			events = append(events, *e)
		}
	}
	if err := scanner.Err(); err != nil {
		return events, fmt.Errorf("scan transcript: %w", err)
	}

	events = append(events, pending.flush()...)
	return events, nil
}

// exitCode extracts the N from an "Exit code: N" marker in shell output.
func exitCode(output string) (string, bool) {
	_, rest, found := strings.Cut(output, "Exit code: ")
	if !found {
		return "", false
	}
	code, _, _ := strings.Cut(rest, "\n")
	return strings.TrimSpace(code), true
}
