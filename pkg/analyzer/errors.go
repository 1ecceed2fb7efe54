package analyzer

import (
	"errors"
	"fmt"
)

// ErrInvalidArgument is matched by every precondition failure that aborts an analysis
var ErrInvalidArgument = errors.New("invalid argument")

// ConfigurationError reports a missing or malformed required input
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s: %s", e.Field, e.Reason)
}

// Is makes errors.Is(err, ErrInvalidArgument) hold for configuration errors
func (e *ConfigurationError) Is(target error) bool {
	return target == ErrInvalidArgument
}

// Stage names the pass in which a file was skipped
type Stage string

const (
	StageMeta     Stage = "meta"
	StageScript   Stage = "script"
	StageScene    Stage = "scene"
	StagePrefab   Stage = "prefab"
	StageMaterial Stage = "material"
	StageCollect  Stage = "collect"
)

// FileError records a file that was skipped. It is reported, never returned.
type FileError struct {
	Path   string `json:"path" yaml:"path"`
	Stage  Stage  `json:"stage" yaml:"stage"`
	Reason string `json:"reason" yaml:"reason"`
}

func (e *FileError) Error() string {
	return fmt.Sprintf("%s: %s: %s", e.Stage, e.Path, e.Reason)
}

// DuplicateGUID records a guid claimed by two .meta files
type DuplicateGUID struct {
	GUID    string `json:"guid" yaml:"guid"`
	Kept    string `json:"kept" yaml:"kept"`
	Dropped string `json:"dropped" yaml:"dropped"`
}
