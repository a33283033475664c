package ingest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/blackwell-systems/tooltime/internal/event"
)

// openclawEntry is one line of an OpenClaw (Moltbot/Clawdbot) session
// transcript.
type openclawEntry struct {
	Type      string          `json:"type"`
	Timestamp json.RawMessage `json:"timestamp"`
	ID        string          `json:"id"`
	CWD       string          `json:"cwd"`
	ModelID   string          `json:"modelId"`
	Message   json.RawMessage `json:"message"`
}

// openclawMessage is the message body of a message entry. Tool calls are
// toolCall content blocks on assistant messages; results are separate
// messages with role "toolResult".
type openclawMessage struct {
	Role       string          `json:"role"`
	ToolCallID string          `json:"toolCallId"`
	IsError    bool            `json:"isError"`
	Content    []openclawBlock `json:"content"`
}

type openclawBlock struct {
	Type      string          `json:"type"`
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
	Text      string          `json:"text"`
}

// ParseOpenClaw parses one OpenClaw session transcript into unified events.
func ParseOpenClaw(path string) ([]event.Event, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open transcript: %w", err)
	}
	defer f.Close()

	sessionID := strings.TrimSuffix(filepath.Base(path), ".jsonl")
	cwd := ""
	model := ""
	seq := 0
	pending := newPendingCalls()
	var events []event.Event

	scanner := newScanner(f)
	for scanner.Scan() {
		var entry openclawEntry
		if err := json.Unmarshal(scanner.Bytes(), &entry); err != nil {
			continue
		}

		switch entry.Type {
		case "session":
			cwd = entry.CWD
			if entry.ID != "" {
				sessionID = entry.ID
			}
			continue
		case "model_change":
			model = entry.ModelID
			continue
		case "message":
		default:
			continue
		}

		var msg openclawMessage
		if err := json.Unmarshal(entry.Message, &msg); err != nil {
			continue
		}

		switch msg.Role {
		case "assistant":
			ts, _ := event.ParseTimestamp(entry.Timestamp)
			for _, block := range msg.Content {
				if block.Type != "toolCall" {
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
					Source:  SourceOpenClaw,
					Model:   model,
				}
				var args toolInput
				_ = json.Unmarshal(block.Arguments, &args)
				if fp := firstNonEmpty(args.Path, args.FilePath); fp != "" {
					e.File = &fp
				}
				pending.add(block.ID, e)
			}

		case "toolResult":
			e := pending.pop(msg.ToolCallID)
			if e == nil {
				continue
			}
			if msg.IsError {
				text := ""
				for _, block := range msg.Content {
					text += block.Text
				}
				if text == "" {
					text = "error"
				}
				errText := excerpt(text)
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
