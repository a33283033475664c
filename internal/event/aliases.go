package event

// toolAliases maps client-specific tool names onto canonical names so that
// cross-source aggregates compare like with like. Raw names are preserved
// everywhere a breakdown is single-origin (project and session views).
var toolAliases = map[string]string{
	// Codex CLI
	"shell":         "Bash",
	"shell_command": "Bash",
	"exec_command":  "Bash",
	"write_stdin":   "Write",
	"update_plan":   "TaskUpdate",
	// OpenClaw
	"exec":       "Bash",
	"process":    "Bash",
	"edit":       "Edit",
	"write":      "Write",
	"read":       "Read",
	"web_fetch":  "WebFetch",
	"web_search": "WebSearch",
}

// Normalize resolves a raw tool name to its canonical form. Unknown names
// pass through unchanged.
func Normalize(tool string) string {
	if canonical, ok := toolAliases[tool]; ok {
		return canonical
	}
	return tool
}
