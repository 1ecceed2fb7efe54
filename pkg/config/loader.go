package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	configDirName    = ".unitygraph"
	globalConfigName = "config.yaml"
	localConfigName  = ".unitygraph.yaml"

	DefaultProfileName = "default"
	DefaultAssetRoot   = "Assets"
	DefaultStoreDriver = "sqlite3"
	DefaultStoreFile   = "unitygraph.db"
	DefaultDebounce    = 500 * time.Millisecond
	DefaultMaxRetries  = 3
	DefaultMaxFileSize = 32 << 20
)

// Default returns the configuration used when no config file exists
func Default() *GlobalConfig {
	return &GlobalConfig{
		Version:       "1",
		ActiveProfile: DefaultProfileName,
		Profiles: map[string]*Profile{
			DefaultProfileName: applyDefaults(&Profile{
				// Unity ignores hidden files and anything ending in ~
				Blacklist:   []string{`(^|/)\.`, `~(/|$)`},
				MaxFileSize: DefaultMaxFileSize,
			}),
		},
	}
}

func applyDefaults(p *Profile) *Profile {
	if p.AssetRoot == "" {
		p.AssetRoot = DefaultAssetRoot
	}
	if p.Store == nil {
		p.Store = &StoreConfig{}
	}
	if p.Store.Driver == "" {
		p.Store.Driver = DefaultStoreDriver
	}
	if p.Store.Path == "" && p.Store.Driver == DefaultStoreDriver {
		p.Store.Path = DefaultStoreFile
	}
	if p.Watch == nil {
		p.Watch = &WatchConfig{}
	}
	if p.Watch.Debounce <= 0 {
		p.Watch.Debounce = DefaultDebounce
	}
	if p.Watch.MaxRetries <= 0 {
		p.Watch.MaxRetries = DefaultMaxRetries
	}
	return p
}

// LoadGlobalConfigFromPath loads global config from a specific path using provided FileSystem
func LoadGlobalConfigFromPath(path string, fs FileSystem) (*GlobalConfig, error) {
	data, err := fs.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config GlobalConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Validate active profile exists
	if config.ActiveProfile == "" {
		return nil, fmt.Errorf("active_profile not specified in config")
	}

	if _, ok := config.Profiles[config.ActiveProfile]; !ok {
		return nil, fmt.Errorf("active profile %s not found in config", config.ActiveProfile)
	}

	for name, p := range config.Profiles {
		if p == nil {
			p = &Profile{}
			config.Profiles[name] = p
		}
		applyDefaults(p)
		if p.Store.Driver != "sqlite3" && p.Store.Driver != "postgres" {
			return nil, fmt.Errorf("profile %s: unsupported store driver %q", name, p.Store.Driver)
		}
		if p.Store.Driver == "postgres" && p.Store.DSN == "" {
			return nil, fmt.Errorf("profile %s: postgres store requires dsn", name)
		}
	}

	return &config, nil
}

// FindLocalConfigWithFS walks up from startDir to find the nearest .unitygraph.yaml file
// Returns the path to the config file, or empty string if not found
func FindLocalConfigWithFS(startDir string, fs FileSystem) (string, error) {
	absDir, err := fs.Abs(startDir)
	if err != nil {
		return "", fmt.Errorf("failed to get absolute path: %w", err)
	}

	currentDir := filepath.Clean(absDir)
	for {
		configPath := filepath.Join(currentDir, localConfigName)
		if _, err := fs.Stat(configPath); err == nil {
			return configPath, nil
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			break
		}
		currentDir = parentDir
	}

	return "", nil
}

// LoadLocalConfigWithFS loads and validates a local .unitygraph.yaml file
func LoadLocalConfigWithFS(path string, fs FileSystem) (*LocalConfig, error) {
	data, err := fs.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read local config: %w", err)
	}

	var config LocalConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse local config: %w", err)
	}

	return &config, nil
}

// MergeConfig merges the active profile with a local config.
// Local config can only ADD to exclude and blacklist.
func MergeConfig(global *GlobalConfig, local *LocalConfig) (*MergedConfig, error) {
	profile, ok := global.Profiles[global.ActiveProfile]
	if !ok {
		return nil, fmt.Errorf("active profile %s not found", global.ActiveProfile)
	}
	applyDefaults(profile)

	merged := &MergedConfig{
		AssetRoot:   profile.AssetRoot,
		Include:     append([]string{}, profile.Include...),
		Whitelist:   append([]string{}, profile.Whitelist...),
		Workers:     profile.Workers,
		MaxFileSize: profile.MaxFileSize,
		Store:       *profile.Store,
		Watch:       *profile.Watch,
		ProfileName: global.ActiveProfile,
	}

	merged.Exclude = append([]string{}, profile.Exclude...)
	merged.Blacklist = append([]string{}, profile.Blacklist...)
	if local != nil {
		merged.Exclude = append(merged.Exclude, local.Exclude...)
		merged.Blacklist = append(merged.Blacklist, local.Blacklist...)
	}

	return merged, nil
}

// GetConfigForProjectWithFS finds the local config for projectDir, merges it
// with the active profile and resolves the store path against ~/.unitygraph
func GetConfigForProjectWithFS(projectDir string, global *GlobalConfig, fs FileSystem) (*MergedConfig, error) {
	localConfigPath, err := FindLocalConfigWithFS(projectDir, fs)
	if err != nil {
		return nil, fmt.Errorf("failed to find local config: %w", err)
	}

	var local *LocalConfig
	if localConfigPath != "" {
		local, err = LoadLocalConfigWithFS(localConfigPath, fs)
		if err != nil {
			return nil, fmt.Errorf("failed to load local config: %w", err)
		}
	}

	merged, err := MergeConfig(global, local)
	if err != nil {
		return nil, err
	}
	merged.LocalConfigPath = localConfigPath

	if merged.Store.Path != "" {
		home, err := fs.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		merged.Store.Path, err = ResolveRelativePath(filepath.Join(home, configDirName), merged.Store.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve store path: %w", err)
		}
	}

	return merged, nil
}
