package config

import "time"

// GlobalConfig represents the main configuration file at ~/.unitygraph/config.yaml
type GlobalConfig struct {
	Version       string              `yaml:"version"`
	ActiveProfile string              `yaml:"active_profile"`
	Profiles      map[string]*Profile `yaml:"profiles"`
}

// Profile represents a single configuration profile with all settings
type Profile struct {
	// Directory under the project root holding tracked assets
	AssetRoot string `yaml:"asset_root"`

	// Path-level filtering (doublestar globs on project-relative paths)
	Include []string `yaml:"include"` // Files to collect; empty collects everything
	Exclude []string `yaml:"exclude"` // Directories or files to skip

	// File-level filtering (regex on project-relative paths)
	Blacklist []string `yaml:"blacklist"` // Reject patterns (applied first)
	Whitelist []string `yaml:"whitelist"` // Exception patterns (override blacklist)

	// Analysis settings
	Workers     int   `yaml:"workers"`       // Content-pass parallelism (0 = GOMAXPROCS)
	MaxFileSize int64 `yaml:"max_file_size"` // Bytes; larger files are skipped (0 = no limit)

	Store *StoreConfig `yaml:"store,omitempty"`
	Watch *WatchConfig `yaml:"watch,omitempty"`
}

// StoreConfig selects the analysis cache backend
type StoreConfig struct {
	Driver string `yaml:"driver"`        // "sqlite3" or "postgres"
	Path   string `yaml:"path"`          // SQLite database file
	DSN    string `yaml:"dsn,omitempty"` // Postgres connection string
}

// WatchConfig tunes watch mode
type WatchConfig struct {
	Debounce   time.Duration `yaml:"debounce"`
	MaxRetries int           `yaml:"max_retries"`
}

// LocalConfig represents a project-local .unitygraph.yaml file
// Only exclude and blacklist are allowed
type LocalConfig struct {
	Exclude   []string `yaml:"exclude,omitempty"`   // Additional paths to skip
	Blacklist []string `yaml:"blacklist,omitempty"` // Additional file patterns to reject
}

// MergedConfig represents the final runtime configuration after merging global + local
type MergedConfig struct {
	AssetRoot string

	// Merged filters
	Include   []string
	Exclude   []string
	Blacklist []string
	Whitelist []string // Global only, never modified by local

	Workers     int
	MaxFileSize int64
	Store       StoreConfig
	Watch       WatchConfig

	// Metadata for tracking
	LocalConfigPath string // Path to the .unitygraph.yaml that was used (empty if none)
	ProfileName     string // Name of the active profile
}
