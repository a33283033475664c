// Package analyzer turns the flat event stream into the structured analysis
// report: session reconstruction and classification, tool-chain analysis,
// calendar trends, time-of-day patterns, and source/project comparison.
package analyzer

// Report is the top-level analysis document written to analysis.json.
// Every section is always present; empty input produces zero-valued
// sections, never missing keys.
type Report struct {
	Generated    string                  `json:"generated"`
	Period       Period                  `json:"period"`
	Filters      Filters                 `json:"filters"`
	EventCount   int                     `json:"event_count"`
	Sessions     SessionSummary          `json:"sessions"`
	ToolChains   ToolChains              `json:"tool_chains"`
	Trends       []WeekBucket            `json:"trends"`
	TimePatterns TimePatterns            `json:"time_patterns"`
	BySource     map[string]SourceStats  `json:"by_source"`
	Projects     map[string]ProjectStats `json:"projects"`
}

// Period is the resolved date range of the analyzed events.
type Period struct {
	Start *string `json:"start"`
	End   *string `json:"end"`
}

// Filters echoes the project/source filters the report was computed under.
type Filters struct {
	Project *string `json:"project"`
	Source  *string `json:"source"`
}

// SessionSummary aggregates per-session statistics.
type SessionSummary struct {
	// Total is the number of reconstructed sessions.
	Total int `json:"total"`

	// AvgDurationMinutes is the mean first-to-last-event span. Sessions
	// with fewer than two timestamps contribute nothing.
	AvgDurationMinutes float64 `json:"avg_duration_minutes"`

	// AvgToolsPerSession and MedianToolsPerSession cover call events only.
	// Sessions with fewer than two calls are excluded as noise.
	AvgToolsPerSession    float64 `json:"avg_tools_per_session"`
	MedianToolsPerSession float64 `json:"median_tools_per_session"`

	// Classifications maps classification label to session count. Every
	// session contributes here, including sub-two-call ones.
	Classifications map[string]int `json:"classifications"`
}

// ToolChains groups the transition and retry analyses.
type ToolChains struct {
	Bigrams       []Bigram       `json:"bigrams"`
	Trigrams      []Trigram      `json:"trigrams"`
	RetryPatterns []RetryPattern `json:"retry_patterns"`
}

// Bigram is one tool-to-tool transition with its global occurrence count.
type Bigram struct {
	From  string  `json:"from"`
	To    string  `json:"to"`
	Count int     `json:"count"`
	Pct   float64 `json:"pct"`
}

// Trigram is an ordered three-tool subsequence with its occurrence count.
type Trigram struct {
	Sequence []string `json:"sequence"`
	Count    int      `json:"count"`
}

// RetryPattern aggregates error-then-same-tool-same-file sequences per tool.
type RetryPattern struct {
	Tool                string  `json:"tool"`
	TotalRetries        int     `json:"total_retries"`
	AvgRetries          float64 `json:"avg_retries"`
	MaxRetries          int     `json:"max_retries"`
	SessionsWithRetries int     `json:"sessions_with_retries"`
}

// WeekBucket is one (ISO year, ISO week) trend bucket. The compound key is
// deliberate: week numbers alone merge late-December and early-January weeks
// across different years.
type WeekBucket struct {
	Week      string         `json:"week"`
	ISOYear   int            `json:"iso_year"`
	ISOWeek   int            `json:"iso_week"`
	Events    int            `json:"events"`
	Sessions  int            `json:"sessions"`
	ErrorRate float64        `json:"error_rate"`
	Tools     map[string]int `json:"tools"`

	// Classifications counts the sessions active in this week by their
	// whole-session classification. A session spanning weeks contributes
	// to each week it has events in.
	Classifications map[string]int `json:"classifications"`
}

// TimePatterns buckets events by local hour and weekday.
type TimePatterns struct {
	ByHour             []HourBucket `json:"by_hour"`
	ByDayOfWeek        []DayBucket  `json:"by_day_of_week"`
	PeakHour           int          `json:"peak_hour"`
	PeakDay            string       `json:"peak_day"`
	MostErrorProneHour int          `json:"most_error_prone_hour"`

	// Timezone names the zone the buckets were computed in, so downstream
	// presentation can label them.
	Timezone string `json:"timezone"`
}

// HourBucket is one hour-of-day (0-23) bucket.
type HourBucket struct {
	Hour      int     `json:"hour"`
	Events    int     `json:"events"`
	ErrorRate float64 `json:"error_rate"`
}

// DayBucket is one weekday bucket (Monday-first).
type DayBucket struct {
	Day       string  `json:"day"`
	Events    int     `json:"events"`
	Sessions  int     `json:"sessions"`
	ErrorRate float64 `json:"error_rate"`
}

// SourceStats compares one originating client against the others, using
// canonical tool names.
type SourceStats struct {
	Events             int            `json:"events"`
	Sessions           int            `json:"sessions"`
	AvgToolsPerSession float64        `json:"avg_tools_per_session"`
	ErrorRate          float64        `json:"error_rate"`
	TopTools           []string       `json:"top_tools"`
	ClassificationMix  map[string]int `json:"classification_mix"`
}

// ProjectStats summarizes one project. Tool names are kept raw so users see
// exactly what was invoked there.
type ProjectStats struct {
	Path                  string   `json:"path"`
	Events                int      `json:"events"`
	Sessions              int      `json:"sessions"`
	TopTools              []string `json:"top_tools"`
	PrimaryClassification string   `json:"primary_classification"`
	ErrorRate             float64  `json:"error_rate"`
}
