package ingest

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// FindClaudeCodeSessions lists Claude Code session transcripts under
// base/<project-slug>/<session-id>.jsonl. Missing base yields an empty list.
func FindClaudeCodeSessions(base string) []string {
	matches, err := filepath.Glob(filepath.Join(base, "*", "*.jsonl"))
	if err != nil {
		return nil
	}
	sort.Strings(matches)
	return matches
}

// FindCodexSessions lists Codex CLI rollout transcripts anywhere under base
// (the layout nests by date: YYYY/MM/DD/rollout-*.jsonl).
func FindCodexSessions(base string) []string {
	var matches []string
	err := filepath.WalkDir(base, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return filepath.SkipAll
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		name := d.Name()
		if strings.HasPrefix(name, "rollout-") && strings.HasSuffix(name, ".jsonl") {
			matches = append(matches, path)
		}
		return nil
	})
	if err != nil {
		return nil
	}
	sort.Strings(matches)
	return matches
}

// FindOpenClawSessions lists OpenClaw-family session transcripts under each
// base's <agentId>/sessions/ directory, deduplicating by filename since the
// same session may exist under more than one compatibility directory.
func FindOpenClawSessions(bases []string) []string {
	var matches []string
	seen := make(map[string]bool)

	for _, base := range bases {
		found, err := filepath.Glob(filepath.Join(base, "*", "sessions", "*.jsonl"))
		if err != nil {
			continue
		}
		sort.Strings(found)
		for _, path := range found {
			name := filepath.Base(path)
			if seen[name] {
				continue
			}
			seen[name] = true
			matches = append(matches, path)
		}
	}
	sort.Strings(matches)
	return matches
}
