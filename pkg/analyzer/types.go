package analyzer

import (
	"log/slog"
	"runtime"
	"time"

	"github.com/wouteroostervld/unitygraph/pkg/unity"
)

// Config holds analyzer configuration
type Config struct {
	Workers int          // Content-pass parallelism; 0 or less uses GOMAXPROCS
	Logger  *slog.Logger // Defaults to slog.Default()
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Workers: runtime.GOMAXPROCS(0),
	}
}

// Input is the file set of one project
type Input struct {
	ProjectID string
	Files     []unity.FileContent
}

// Report lists what the analysis could not use
type Report struct {
	Skipped        []FileError     `json:"skipped" yaml:"skipped"`
	DuplicateGUIDs []DuplicateGUID `json:"duplicateGuids" yaml:"duplicateGuids"`
	Orphans        []string        `json:"orphans" yaml:"orphans"`
}

// SkippedCount is the number of files dropped by either pass
func (r *Report) SkippedCount() int {
	return len(r.Skipped)
}

// Result contains the output of one analysis pass
type Result struct {
	ProjectID   string                  `json:"projectId" yaml:"projectId"`
	Fingerprint string                  `json:"fingerprint" yaml:"fingerprint"`
	Structure   *unity.ProjectStructure `json:"structure" yaml:"structure"`
	Report      Report                  `json:"report" yaml:"report"`
	Duration    time.Duration           `json:"duration" yaml:"duration"`
}
