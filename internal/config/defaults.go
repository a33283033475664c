// Package config provides configuration loading and defaults for tooltime.
package config

// DefaultDataDir is where the collector writes the event log and where all
// output documents land.
const DefaultDataDir = "~/.claude/tool-time"

// DefaultConfigDir is the default location for tooltime configuration.
const DefaultConfigDir = "~/.config/tooltime"

// DefaultDBName is the filename for the snapshot SQLite database.
const DefaultDBName = "tooltime.db"

// File names inside the data directory.
const (
	EventsFileName      = "events.jsonl"
	AnalysisFileName    = "analysis.json"
	StatsFileName       = "stats.json"
	SuggestionsFileName = "pending-suggestions.json"
)

// DefaultLookbackDays is the trailing analysis window when no --since is
// given.
const DefaultLookbackDays = 90

// DefaultStatsLookbackDays is the rolling window for stats and suggestions.
const DefaultStatsLookbackDays = 7

// DefaultBigramMinCount is the occurrence floor for reported transitions.
const DefaultBigramMinCount = 5

// Default transcript locations for backfill.
const (
	DefaultClaudeProjects = "~/.claude/projects"
	DefaultCodexSessions  = "~/.codex/sessions"
)

// DefaultOpenClawAgents lists the OpenClaw-compatible agent directories.
var DefaultOpenClawAgents = []string{
	"~/.openclaw/agents",
	"~/.moltbot/agents",
	"~/.clawdbot/agents",
}

// DefaultOutput holds the default output preferences.
var DefaultOutput = Output{
	Color: true,
	Width: 80,
}
