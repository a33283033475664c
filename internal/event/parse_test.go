package event

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionID(t *testing.T) {
	cases := map[string]string{
		"abc123-42":          "abc123",
		"a-b-c-7":            "a-b-c",
		"550e8400-e29b-41d4-a716-446655440000-3": "550e8400-e29b-41d4-a716-446655440000",
		"no-digit-suffix":                        "no-digit-suffix",
		"plainid":                                "plainid",
		"-5":                                     "-5",
	}
	for id, want := range cases {
		assert.Equal(t, want, SessionID(id), "id %q", id)
	}
}

func TestParseTimestamp_EpochMillis(t *testing.T) {
	ts, ok := ParseTimestamp(json.RawMessage("1767225600000"))
	require.True(t, ok)
	assert.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), ts)
}

func TestParseTimestamp_Strings(t *testing.T) {
	cases := map[string]time.Time{
		`"2026-03-10T14:30:00Z"`:          time.Date(2026, 3, 10, 14, 30, 0, 0, time.UTC),
		`"2026-03-10T14:30:00.250Z"`:      time.Date(2026, 3, 10, 14, 30, 0, 250_000_000, time.UTC),
		`"2026-03-10T14:30:00+02:00"`:     time.Date(2026, 3, 10, 12, 30, 0, 0, time.UTC),
		`"2026-03-10T14:30:00"`:           time.Date(2026, 3, 10, 14, 30, 0, 0, time.UTC),
		`"2026-03-10"`:                    time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
	}
	for raw, want := range cases {
		ts, ok := ParseTimestamp(json.RawMessage(raw))
		require.True(t, ok, "raw %s", raw)
		assert.True(t, want.Equal(ts), "raw %s: got %v", raw, ts)
	}
}

func TestParseTimestamp_Invalid(t *testing.T) {
	for _, raw := range []string{``, `null`, `""`, `"yesterday"`, `{}`, `[1,2]`} {
		_, ok := ParseTimestamp(json.RawMessage(raw))
		assert.False(t, ok, "raw %s", raw)
	}
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "Bash", Normalize("shell"))
	assert.Equal(t, "Bash", Normalize("exec_command"))
	assert.Equal(t, "Write", Normalize("write_stdin"))
	assert.Equal(t, "Read", Normalize("read"))
	assert.Equal(t, "TaskUpdate", Normalize("update_plan"))
	// Canonical and unknown names pass through.
	assert.Equal(t, "Bash", Normalize("Bash"))
	assert.Equal(t, "CustomTool", Normalize("CustomTool"))
}

func TestEventPredicates(t *testing.T) {
	msg := "failed"

	pre := Event{Kind: KindPreToolUse, Tool: "Read"}
	assert.True(t, pre.IsCall())
	assert.False(t, pre.IsError())

	post := Event{Kind: KindPostToolUse, Tool: "Read", Error: &msg}
	assert.False(t, post.IsCall())
	assert.True(t, post.IsError())

	combined := Event{Kind: KindToolUse, Tool: "shell", Error: &msg}
	assert.True(t, combined.IsCall())
	assert.True(t, combined.IsError())

	ok := Event{Kind: KindPostToolUse, Tool: "Read"}
	assert.False(t, ok.IsError())

	boundary := Event{Kind: KindSessionStart}
	assert.False(t, boundary.IsCall())
	assert.False(t, boundary.IsError())
}

func TestEventCodec_NumericTimestamp(t *testing.T) {
	line := `{"v":1,"id":"s1-0","ts":1767225600000,"event":"ToolUse","tool":"shell","source":"codex","error":null}`
	var e Event
	require.NoError(t, json.Unmarshal([]byte(line), &e))
	assert.Equal(t, "s1-0", e.ID)
	assert.Equal(t, KindToolUse, e.Kind)
	assert.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), e.Time)
	assert.Nil(t, e.Error)
}

func TestEventCodec_MarshalWritesUTCString(t *testing.T) {
	e := Event{
		Version: SchemaVersion,
		ID:      "s1-0",
		Time:    time.Date(2026, 3, 10, 16, 30, 0, 0, time.FixedZone("CEST", 2*3600)),
		Kind:    KindPreToolUse,
		Tool:    "Read",
	}
	doc, err := json.Marshal(e)
	require.NoError(t, err)
	assert.Contains(t, string(doc), `"ts":"2026-03-10T14:30:00Z"`)

	var back Event
	require.NoError(t, json.Unmarshal(doc, &back))
	assert.True(t, e.Time.Equal(back.Time))
}
