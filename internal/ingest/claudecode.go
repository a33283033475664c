package ingest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/blackwell-systems/tooltime/internal/event"
)

// transcriptEntry is one line of a Claude Code session transcript.
type transcriptEntry struct {
	Type      string          `json:"type"`
	Timestamp json.RawMessage `json:"timestamp"`
	SessionID string          `json:"sessionId"`
	CWD       string          `json:"cwd"`
	Message   json.RawMessage `json:"message"`
}

// transcriptMessage is the message body of an assistant or user entry.
type transcriptMessage struct {
	Role    string            `json:"role"`
	Model   string            `json:"model"`
	Content []transcriptBlock `json:"content"`
}

// transcriptBlock is a single content block (tool_use, tool_result, text).
type transcriptBlock struct {
	Type      string          `json:"type"`
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Input     json.RawMessage `json:"input"`
	ToolUseID string          `json:"tool_use_id"`
	Content   json.RawMessage `json:"content"`
	IsError   bool            `json:"is_error"`
}

// toolInput covers the input fields the event schema cares about.
type toolInput struct {
	FilePath string `json:"file_path"`
	Path     string `json:"path"`
	Skill    string `json:"skill"`
}

// ParseClaudeCode parses one Claude Code session transcript into unified
// events. Tool calls appear in assistant messages as tool_use blocks;
// results come back in user messages as tool_result blocks matched by
// tool_use_id. Calls without a matching result are still emitted.
func ParseClaudeCode(path string) ([]event.Event, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open transcript: %w", err)
	}
	defer f.Close()

	// Session identity latches on the first parsed record: its sessionId if
	// present, the filename stem otherwise. Later records never re-latch, so
	// one transcript always yields one session.
	sessionID := strings.TrimSuffix(filepath.Base(path), ".jsonl")
	latched := false
	cwd := ""
	seq := 0
	pending := newPendingCalls()
	var events []event.Event

	scanner := newScanner(f)
	for scanner.Scan() {
		var entry transcriptEntry
		if err := json.Unmarshal(scanner.Bytes(), &entry); err != nil {
			continue
		}

		if cwd == "" {
			cwd = entry.CWD
		}
		if !latched {
			if entry.SessionID != "" {
				sessionID = entry.SessionID
			}
			latched = true
		}

		if entry.Type != "assistant" && entry.Type != "user" {
			continue
		}
		var msg transcriptMessage
		if err := json.Unmarshal(entry.Message, &msg); err != nil {
			continue
		}

		ts, _ := event.ParseTimestamp(entry.Timestamp)

		switch entry.Type {
		case "assistant":
			for _, block := range msg.Content {
				if block.Type != "tool_use" {
					continue
				}
				seq++
				e := event.Event{
					Version: event.SchemaVersion,
					ID:      fmt.Sprintf("%s-%d", sessionID, seq),
					Time:    ts,
					Kind:    event.KindToolUse,
					Tool:    block.Name,
					Project: cwd,
					Source:  SourceClaudeCode,
					Model:   msg.Model,
				}
				var input toolInput
				_ = json.Unmarshal(block.Input, &input)
				if fp := firstNonEmpty(input.FilePath, input.Path); fp != "" {
					e.File = &fp
				}
				if block.Name == "Skill" {
					e.Skill = input.Skill
				}
				pending.add(block.ID, e)
			}

		case "user":
			for _, block := range msg.Content {
				if block.Type != "tool_result" {
					continue
				}
				e := pending.pop(block.ToolUseID)
				if e == nil {
					continue
				}
				if block.IsError {
					errText := excerpt(textOf(block.Content))
					e.Error = &errText
				}
				events = append(events, *e)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return events, fmt.Errorf("scan transcript: %w", err)
	}

	// Calls that never saw a result.
	events = append(events, pending.flush()...)
	return events, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
