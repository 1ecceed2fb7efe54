package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// expandHome replaces a leading ~/ with the user's home directory
func expandHome(path string) (string, error) {
	if !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, path[2:]), nil
}

// ResolveRelativePath resolves a path relative to the config file's directory
// Handles relative paths, absolute paths, and tilde expansion
func ResolveRelativePath(configDir, path string) (string, error) {
	path, err := expandHome(path)
	if err != nil {
		return "", err
	}
	if filepath.IsAbs(path) {
		return filepath.Clean(path), nil
	}
	return filepath.Clean(filepath.Join(configDir, path)), nil
}

// NormalizePath cleans and normalizes a path
func NormalizePath(path string) (string, error) {
	path, err := expandHome(path)
	if err != nil {
		return "", err
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to get absolute path: %w", err)
	}
	return filepath.Clean(absPath), nil
}

// ValidatePathSecurity checks if a path is within allowed roots
// Prevents path traversal attacks
func ValidatePathSecurity(path string, allowedRoots []string) error {
	normalizedPath, err := NormalizePath(path)
	if err != nil {
		return fmt.Errorf("failed to normalize path: %w", err)
	}

	for _, root := range allowedRoots {
		normalizedRoot, err := NormalizePath(root)
		if err != nil {
			continue // Skip invalid roots
		}
		if strings.HasPrefix(normalizedPath, normalizedRoot+string(filepath.Separator)) ||
			normalizedPath == normalizedRoot {
			return nil
		}
	}

	return fmt.Errorf("path %s is not within any allowed root", path)
}

// AssetRootPath returns the slash-separated asset root relative to the
// project directory, rejecting roots that escape it
func AssetRootPath(projectDir, assetRoot string) (string, error) {
	if assetRoot == "" {
		assetRoot = DefaultAssetRoot
	}
	if filepath.IsAbs(assetRoot) || strings.HasPrefix(assetRoot, "~/") {
		return "", fmt.Errorf("asset_root %s must be relative to the project", assetRoot)
	}

	full := filepath.Join(projectDir, assetRoot)
	if err := ValidatePathSecurity(full, []string{projectDir}); err != nil {
		return "", fmt.Errorf("invalid asset_root: %w", err)
	}
	return filepath.ToSlash(filepath.Clean(assetRoot)), nil
}
