package filter

import (
	"log/slog"
	"regexp"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Rules decides which project files are collected. Paths are slash-separated
// and relative to the project root.
type Rules struct {
	include   []string
	exclude   []string
	blacklist []*regexp.Regexp
	whitelist []*regexp.Regexp
}

// New compiles filter rules. Include and exclude are doublestar globs;
// blacklist and whitelist are regular expressions. Invalid entries are
// logged and ignored.
func New(include, exclude, blacklist, whitelist []string) *Rules {
	return &Rules{
		include:   validGlobs(include),
		exclude:   validGlobs(exclude),
		blacklist: compileAll(blacklist),
		whitelist: compileAll(whitelist),
	}
}

func validGlobs(patterns []string) []string {
	valid := make([]string, 0, len(patterns))
	for _, p := range patterns {
		if !doublestar.ValidatePattern(p) {
			slog.Warn("Invalid glob pattern", "pattern", p)
			continue
		}
		valid = append(valid, p)
	}
	return valid
}

func compileAll(patterns []string) []*regexp.Regexp {
	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			slog.Warn("Invalid regex pattern", "pattern", p, "error", err)
			continue
		}
		compiled = append(compiled, re)
	}
	return compiled
}

// ShouldVisitDirectory reports whether a directory walk descends into dir.
// Only exclude globs apply; include globs describe files.
func (r *Rules) ShouldVisitDirectory(dir string) bool {
	dir = strings.TrimSuffix(dir, "/")
	if dir == "" || dir == "." {
		return true
	}
	return !r.excluded(dir)
}

// ShouldCollectFile checks if a file should be collected
// Returns: included AND NOT excluded AND (NOT matches_blacklist OR matches_whitelist)
func (r *Rules) ShouldCollectFile(file string) bool {
	if r.excluded(file) {
		slog.Debug("Excluded by glob", "path", file)
		return false
	}
	if !r.included(file) {
		return false
	}

	blacklisted := ""
	for _, re := range r.blacklist {
		if re.MatchString(file) {
			blacklisted = re.String()
			break
		}
	}
	if blacklisted == "" {
		return true
	}

	// Matches blacklist - check if whitelist provides exception
	for _, re := range r.whitelist {
		if re.MatchString(file) {
			slog.Debug("Whitelist exception matched - allowing file", "pattern", re.String(), "path", file)
			return true
		}
	}

	slog.Debug("Rejecting file", "path", file, "blacklist_pattern", blacklisted)
	return false
}

func (r *Rules) included(file string) bool {
	if len(r.include) == 0 {
		return true
	}
	return matchAny(r.include, file)
}

// excluded matches the path itself and, for a pattern naming a directory,
// anything below it.
func (r *Rules) excluded(p string) bool {
	if matchAny(r.exclude, p) {
		return true
	}
	for _, pattern := range r.exclude {
		if ok, _ := doublestar.Match(strings.TrimSuffix(pattern, "/")+"/**", p); ok {
			return true
		}
	}
	return false
}

func matchAny(patterns []string, p string) bool {
	for _, pattern := range patterns {
		if ok, _ := doublestar.Match(pattern, p); ok {
			return true
		}
	}
	return false
}
