package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/blackwell-systems/tooltime/internal/analyzer"
)

// Config is the top-level tooltime configuration.
type Config struct {
	DataDir           string              `mapstructure:"data_dir"`
	LookbackDays      int                 `mapstructure:"lookback_days"`
	StatsLookbackDays int                 `mapstructure:"stats_lookback_days"`
	Timezone          string              `mapstructure:"timezone"`
	BigramMinCount    int                 `mapstructure:"bigram_min_count"`
	Classifier        analyzer.Thresholds `mapstructure:"classifier"`
	Transcripts       Transcripts         `mapstructure:"transcripts"`
	Output            Output              `mapstructure:"output"`
}

// Transcripts locates the client transcript trees backfill reads.
type Transcripts struct {
	ClaudeProjects string   `mapstructure:"claude_projects"`
	CodexSessions  string   `mapstructure:"codex_sessions"`
	OpenClawAgents []string `mapstructure:"openclaw_agents"`
}

// Output defines output preferences.
type Output struct {
	Color bool `mapstructure:"color"`
	Width int  `mapstructure:"width"`
}

// expandPath replaces a leading ~ with the user's home directory.
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}

// Load reads configuration from the given path (or the default location)
// and returns a Config with all defaults applied.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()

	// Set defaults.
	v.SetDefault("data_dir", DefaultDataDir)
	v.SetDefault("lookback_days", DefaultLookbackDays)
	v.SetDefault("stats_lookback_days", DefaultStatsLookbackDays)
	v.SetDefault("timezone", "")
	v.SetDefault("bigram_min_count", DefaultBigramMinCount)
	defaults := analyzer.DefaultThresholds()
	v.SetDefault("classifier.planning_signal_share", defaults.PlanningSignalShare)
	v.SetDefault("classifier.debug_error_rate", defaults.DebugErrorRate)
	v.SetDefault("classifier.debug_min_errors", defaults.DebugMinErrors)
	v.SetDefault("classifier.debug_shell_share", defaults.DebugShellShare)
	v.SetDefault("classifier.build_edit_share", defaults.BuildEditShare)
	v.SetDefault("classifier.review_read_share", defaults.ReviewReadShare)
	v.SetDefault("classifier.explore_read_share", defaults.ExploreReadShare)
	v.SetDefault("classifier.explore_max_edit_share", defaults.ExploreMaxEditShare)
	v.SetDefault("transcripts.claude_projects", DefaultClaudeProjects)
	v.SetDefault("transcripts.codex_sessions", DefaultCodexSessions)
	v.SetDefault("transcripts.openclaw_agents", DefaultOpenClawAgents)
	v.SetDefault("output.color", DefaultOutput.Color)
	v.SetDefault("output.width", DefaultOutput.Width)

	if cfgFile != "" {
		v.SetConfigFile(expandPath(cfgFile))
	} else {
		configDir := expandPath(DefaultConfigDir)
		v.AddConfigPath(configDir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	// Read config file if it exists; missing file is not an error.
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			if !os.IsNotExist(err) {
				return nil, err
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	// Expand paths.
	cfg.DataDir = expandPath(cfg.DataDir)
	cfg.Transcripts.ClaudeProjects = expandPath(cfg.Transcripts.ClaudeProjects)
	cfg.Transcripts.CodexSessions = expandPath(cfg.Transcripts.CodexSessions)
	for i, p := range cfg.Transcripts.OpenClawAgents {
		cfg.Transcripts.OpenClawAgents[i] = expandPath(p)
	}

	return &cfg, nil
}

// EventsPath returns the full path to the append-only event log.
func (c *Config) EventsPath() string {
	return filepath.Join(c.DataDir, EventsFileName)
}

// AnalysisPath returns the full path to the analysis output document.
func (c *Config) AnalysisPath() string {
	return filepath.Join(c.DataDir, AnalysisFileName)
}

// StatsPath returns the full path to the rolling stats document.
func (c *Config) StatsPath() string {
	return filepath.Join(c.DataDir, StatsFileName)
}

// SuggestionsPath returns the full path to the pending suggestions file.
func (c *Config) SuggestionsPath() string {
	return filepath.Join(c.DataDir, SuggestionsFileName)
}

// DBPath returns the full path to the SQLite snapshot database.
func DBPath() string {
	return filepath.Join(expandPath(DefaultConfigDir), DefaultDBName)
}
