// Package source gathers the (path, content) pairs of a project tree.
package source

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"strings"

	"github.com/wouteroostervld/unitygraph/pkg/analyzer"
	"github.com/wouteroostervld/unitygraph/pkg/filter"
	"github.com/wouteroostervld/unitygraph/pkg/unity"
)

// sniffLen is how many leading bytes decide whether a file is binary
const sniffLen = 512

// Collection is the result of one walk
type Collection struct {
	Files   []unity.FileContent
	Skipped []analyzer.FileError
}

// Collector walks a project tree and reads every file the rules accept
type Collector struct {
	rules       *filter.Rules
	maxFileSize int64
}

// NewCollector creates a collector. maxFileSize <= 0 disables the size limit.
func NewCollector(rules *filter.Rules, maxFileSize int64) *Collector {
	if rules == nil {
		rules = filter.New(nil, nil, nil, nil)
	}
	return &Collector{rules: rules, maxFileSize: maxFileSize}
}

// Collect walks root inside fsys. Returned paths are slash-separated and
// relative to the fsys root, so "Assets/..." when fsys is the project dir.
func (c *Collector) Collect(ctx context.Context, fsys fs.FS, root string) (*Collection, error) {
	out := &Collection{
		Files:   []unity.FileContent{},
		Skipped: []analyzer.FileError{},
	}

	err := fs.WalkDir(fsys, root, func(p string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			if p == root {
				return err
			}
			out.Skipped = append(out.Skipped, analyzer.FileError{Path: p, Stage: analyzer.StageCollect, Reason: err.Error()})
			return nil
		}

		if d.IsDir() {
			if p != root && !c.rules.ShouldVisitDirectory(p) {
				return fs.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() || !c.rules.ShouldCollectFile(p) {
			return nil
		}

		f, skip := c.read(fsys, p, d)
		if skip != nil {
			if needsContent(p) {
				out.Skipped = append(out.Skipped, *skip)
			}
			return nil
		}
		if f != nil {
			out.Files = append(out.Files, *f)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}

	slog.Debug("Collected project files", "root", root, "files", len(out.Files), "skipped", len(out.Skipped))
	return out, nil
}

// read loads one file. Textures are listed for their .meta only and not read.
func (c *Collector) read(fsys fs.FS, p string, d fs.DirEntry) (*unity.FileContent, *analyzer.FileError) {
	if !strings.HasSuffix(p, ".meta") && unity.AssetTypeForPath(p) == unity.AssetTexture {
		return nil, nil
	}

	if c.maxFileSize > 0 {
		info, err := d.Info()
		if err != nil {
			return nil, &analyzer.FileError{Path: p, Stage: analyzer.StageCollect, Reason: err.Error()}
		}
		if info.Size() > c.maxFileSize {
			slog.Debug("Skipping oversized file", "path", p, "size", info.Size())
			return nil, &analyzer.FileError{
				Path:   p,
				Stage:  analyzer.StageCollect,
				Reason: fmt.Sprintf("file size %d exceeds limit %d", info.Size(), c.maxFileSize),
			}
		}
	}

	content, err := fs.ReadFile(fsys, p)
	if err != nil {
		return nil, &analyzer.FileError{Path: p, Stage: analyzer.StageCollect, Reason: err.Error()}
	}
	if isBinary(content) {
		slog.Debug("Skipping binary file", "path", p)
		return nil, &analyzer.FileError{Path: p, Stage: analyzer.StageCollect, Reason: "binary content"}
	}
	return &unity.FileContent{Path: p, Content: string(content)}, nil
}

// needsContent reports whether losing p leaves a registered asset unparsed
func needsContent(p string) bool {
	if strings.HasSuffix(p, ".meta") {
		return true
	}
	switch unity.AssetTypeForPath(p) {
	case unity.AssetScript, unity.AssetScene, unity.AssetPrefab, unity.AssetMaterial:
		return true
	}
	return false
}

// isBinary checks if content is binary by sniffing its first 512 bytes
func isBinary(content []byte) bool {
	if len(content) == 0 {
		return false
	}
	contentType := http.DetectContentType(content[:min(len(content), sniffLen)])

	// Skip binary types but allow text-based application formats
	if strings.HasPrefix(contentType, "application/") {
		for _, a := range []string{"json", "xml", "javascript"} {
			if strings.Contains(contentType, a) {
				return false
			}
		}
		return true
	}

	return !strings.HasPrefix(contentType, "text/")
}
