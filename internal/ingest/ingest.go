// Package ingest parses Claude Code, Codex CLI, and OpenClaw session
// transcripts into unified events for the append-only log.
//
// Each client stores transcripts in a different shape, but all of them pair
// a tool call with a later result via an opaque call ID. The parsers open a
// pending call when the invocation appears, attach error detail when the
// result arrives, and still emit calls whose result never showed up.
package ingest

import (
	"bufio"
	"encoding/json"
	"io"

	"github.com/blackwell-systems/tooltime/internal/event"
)

// Source tags written into emitted events.
const (
	SourceClaudeCode = "claude-code"
	SourceCodex      = "codex"
	SourceOpenClaw   = "openclaw"
)

// errorExcerptLen caps the error text carried into an event.
const errorExcerptLen = 200

// newScanner returns a line scanner sized for long transcript lines
// (up to 10MB).
func newScanner(r io.Reader) *bufio.Scanner {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 10*1024*1024)
	return scanner
}

// pendingCalls tracks open tool calls keyed by the client's call ID,
// preserving insertion order so unmatched calls flush deterministically.
type pendingCalls struct {
	byID  map[string]*event.Event
	order []string
}

func newPendingCalls() *pendingCalls {
	return &pendingCalls{byID: make(map[string]*event.Event)}
}

func (p *pendingCalls) add(callID string, e event.Event) {
	if _, ok := p.byID[callID]; !ok {
		p.order = append(p.order, callID)
	}
	p.byID[callID] = &e
}

func (p *pendingCalls) pop(callID string) *event.Event {
	e, ok := p.byID[callID]
	if !ok {
		return nil
	}
	delete(p.byID, callID)
	return e
}

// flush returns the still-pending calls in insertion order.
func (p *pendingCalls) flush() []event.Event {
	var events []event.Event
	for _, id := range p.order {
		if e, ok := p.byID[id]; ok {
			events = append(events, *e)
		}
	}
	return events
}

// excerpt truncates error text to the stored limit.
func excerpt(s string) string {
	if len(s) > errorExcerptLen {
		return s[:errorExcerptLen]
	}
	return s
}

// textOf flattens a content value that may be a plain string or a list of
// {"text": ...} blocks.
func textOf(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var blocks []struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(raw, &blocks); err == nil {
		out := ""
		for i, b := range blocks {
			if i > 0 {
				out += " "
			}
			out += b.Text
		}
		return out
	}
	return ""
}
