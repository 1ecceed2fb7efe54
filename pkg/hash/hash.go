// Package hash computes change-detection digests for project files.
package hash

import (
	"fmt"
	"sort"

	"github.com/cespare/xxhash/v2"

	"github.com/wouteroostervld/unitygraph/pkg/unity"
)

// Content returns the 16-digit hex xxhash64 of content
func Content(content string) string {
	return fmt.Sprintf("%016x", xxhash.Sum64String(content))
}

// Fingerprint digests a whole file set independent of input order.
// Two sets with the same (path, content) pairs always share a fingerprint.
func Fingerprint(files []unity.FileContent) string {
	sorted := make([]unity.FileContent, len(files))
	copy(sorted, files)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Path < sorted[j].Path })

	d := xxhash.New()
	for _, f := range sorted {
		// NUL separators keep ("ab","c") distinct from ("a","bc")
		_, _ = d.WriteString(f.Path)
		_, _ = d.Write([]byte{0})
		_, _ = d.WriteString(Content(f.Content))
		_, _ = d.Write([]byte{0})
	}
	return fmt.Sprintf("%016x", d.Sum64())
}
