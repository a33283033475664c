package event

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeLog(t *testing.T, lines string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "events.jsonl")
	require.NoError(t, os.WriteFile(path, []byte(lines), 0o644))
	return path
}

func TestLoad_MissingFile(t *testing.T) {
	events, err := Load(filepath.Join(t.TempDir(), "absent.jsonl"), Filter{})
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestLoad_SkipsBadLines(t *testing.T) {
	path := writeLog(t, `{"v":1,"id":"s1-0","ts":"2026-03-10T10:00:00Z","event":"ToolUse","tool":"Read","error":null}

not json at all
{"v":1,"ts":"2026-03-10T10:01:00Z","event":"ToolUse","tool":"Edit","error":null}
{"v":1,"id":"s1-1","ts":"garbage","event":"ToolUse","tool":"Edit","error":null}
{"v":1,"id":"s1-2","ts":"2026-03-10T10:02:00Z","event":"ToolUse","tool":"Write","error":null}
`)
	events, err := Load(path, Filter{})
	require.NoError(t, err)
	// Only the first and last lines survive: blank, malformed, missing-ID,
	// and bad-timestamp records are dropped without error.
	require.Len(t, events, 2)
	assert.Equal(t, "s1-0", events[0].ID)
	assert.Equal(t, "s1-2", events[1].ID)
}

func TestLoad_NormalizesMissingSource(t *testing.T) {
	path := writeLog(t, `{"v":1,"id":"s1-0","ts":"2026-03-10T10:00:00Z","event":"ToolUse","tool":"Read","error":null}
`)
	events, err := Load(path, Filter{})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "unknown", events[0].Source)

	// The normalized value is what source filtering sees.
	events, err = Load(path, Filter{Source: "unknown"})
	require.NoError(t, err)
	assert.Len(t, events, 1)

	events, err = Load(path, Filter{Source: "codex"})
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestLoad_TimeWindowAndProjectFilter(t *testing.T) {
	path := writeLog(t, `{"v":1,"id":"s1-0","ts":"2026-03-01T10:00:00Z","event":"ToolUse","tool":"Read","project":"/p/a","error":null}
{"v":1,"id":"s1-1","ts":"2026-03-10T10:00:00Z","event":"ToolUse","tool":"Edit","project":"/p/a","error":null}
{"v":1,"id":"s2-0","ts":"2026-03-10T11:00:00Z","event":"ToolUse","tool":"Read","project":"/p/b","error":null}
`)
	events, err := Load(path, Filter{
		Since:   time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC),
		Project: "/p/a",
	})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "s1-1", events[0].ID)
}

func TestAppendThenLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "events.jsonl")
	msg := "exit 1"
	batch := []Event{
		{
			Version: SchemaVersion,
			ID:      "s1-0",
			Time:    time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC),
			Kind:    KindToolUse,
			Tool:    "shell",
			Source:  "codex",
			Error:   &msg,
		},
	}
	require.NoError(t, Append(path, batch))
	require.NoError(t, Append(path, []Event{{
		Version: SchemaVersion,
		ID:      "s1-1",
		Time:    time.Date(2026, 3, 10, 10, 1, 0, 0, time.UTC),
		Kind:    KindToolUse,
		Tool:    "read",
		Source:  "codex",
	}}))

	events, err := Load(path, Filter{})
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "s1-0", events[0].ID)
	require.NotNil(t, events[0].Error)
	assert.Equal(t, "exit 1", *events[0].Error)
	assert.Nil(t, events[1].Error)
}

func TestLoadIDs(t *testing.T) {
	path := writeLog(t, `{"v":1,"id":"s1-0","ts":"2026-03-10T10:00:00Z","event":"ToolUse","tool":"Read","error":null}
bad line
{"v":1,"id":"s1-1","ts":"2026-03-10T10:01:00Z","event":"ToolUse","tool":"Edit","error":null}
`)
	ids, err := LoadIDs(path)
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"s1-0": true, "s1-1": true}, ids)

	ids, err = LoadIDs(filepath.Join(t.TempDir(), "absent.jsonl"))
	require.NoError(t, err)
	assert.Empty(t, ids)
}
