package config

import "time"

const (
	// ConfigFileName is the name of the config file within the data directory.
	ConfigFileName = "config.yml"
	// StateFileName is the name of the persisted snapshot file.
	StateFileName = "state.json"
	// LockFileName is the advisory lock file guarding snapshot writes.
	LockFileName = ".lock"
	// LogFileName is the activity log file.
	LogFileName = "activity.jsonl"

	// CurrentVersion is the current config schema version.
	CurrentVersion = 1

	// DefaultAgentBaseURL is the fixed local automation agent address.
	DefaultAgentBaseURL = "https://localhost:8443"
	// DefaultAgentTimeout bounds a single agent HTTP request.
	DefaultAgentTimeout = 10 * time.Second

	// DefaultModel is the generator model identifier.
	DefaultModel = "gemini-flash-latest"
	// DefaultAPIKeyEnv is the environment variable holding the generator API key.
	DefaultAPIKeyEnv = "GEMINI_API_KEY"

	// DefaultTitleLines is the default number of title lines in TUI cards.
	DefaultTitleLines = 2
)
