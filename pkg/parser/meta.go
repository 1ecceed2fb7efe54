package parser

import (
	"regexp"
	"strconv"
)

// DefaultFileFormatVersion is assumed when a .meta file omits fileFormatVersion
const DefaultFileFormatVersion = 2

var (
	guidPattern          = regexp.MustCompile(`(?i)guid:\s*([0-9a-f]+)`)
	fileFormatVersionPat = regexp.MustCompile(`fileFormatVersion:\s*(\d+)`)
)

// MetaInfo is what a .meta sidecar tells us about its asset
type MetaInfo struct {
	GUID              string
	FileFormatVersion int
}

// ParseMeta extracts the guid and format version from .meta text.
// It returns false when no guid label is present.
func ParseMeta(content string) (MetaInfo, bool) {
	m := guidPattern.FindStringSubmatch(content)
	if m == nil {
		return MetaInfo{}, false
	}

	info := MetaInfo{GUID: m[1], FileFormatVersion: DefaultFileFormatVersion}
	if v := fileFormatVersionPat.FindStringSubmatch(content); v != nil {
		if n, err := strconv.Atoi(v[1]); err == nil {
			info.FileFormatVersion = n
		}
	}
	return info, true
}

// findGUIDs returns every guid token in s, deduplicated in first-seen order
func findGUIDs(s string, into []string, seen map[string]bool) []string {
	for _, m := range guidPattern.FindAllStringSubmatch(s, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			into = append(into, m[1])
		}
	}
	return into
}
