// Package analyzer turns a flat set of project files into a Unity project
// structure: assets keyed by guid, parsed scripts, scenes, prefabs and
// materials, and the dependency records between them.
package analyzer

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/wouteroostervld/unitygraph/pkg/hash"
	"github.com/wouteroostervld/unitygraph/pkg/parser"
	"github.com/wouteroostervld/unitygraph/pkg/unity"
)

const metaSuffix = ".meta"

// ProjectAnalyzer runs registration and content passes over a file set.
// It holds no per-run state, so one analyzer may serve concurrent runs.
type ProjectAnalyzer struct {
	config *Config
	csharp *parser.CSharpParser
	logger *slog.Logger
}

// New creates a new analyzer
func New(cfg *Config) *ProjectAnalyzer {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &ProjectAnalyzer{
		config: cfg,
		csharp: parser.NewCSharpParser(),
		logger: logger,
	}
}

// parsed is the content-pass output for one asset
type parsed struct {
	script   *unity.Script
	scene    *unity.Scene
	prefab   *unity.Prefab
	material *unity.Material
	deps     []unity.AssetDependency
	failure  *FileError
}

// Analyze builds the project structure for in. Malformed files are skipped
// and listed in the report; only a missing project id, an empty file set or
// a cancelled context abort the run.
func (a *ProjectAnalyzer) Analyze(ctx context.Context, in Input) (*Result, error) {
	if strings.TrimSpace(in.ProjectID) == "" {
		return nil, &ConfigurationError{Field: "project_id", Reason: "must not be empty"}
	}
	if len(in.Files) == 0 {
		return nil, &ConfigurationError{Field: "files", Reason: "no content supplied"}
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("analysis cancelled: %w", err)
	}

	startTime := time.Now()
	result := &Result{
		ProjectID:   in.ProjectID,
		Fingerprint: hash.Fingerprint(in.Files),
		Report: Report{
			Skipped:        []FileError{},
			DuplicateGUIDs: []DuplicateGUID{},
			Orphans:        []string{},
		},
	}

	metas, contents := splitFiles(in.Files)
	registry := a.register(metas, &result.Report)
	a.logger.Debug("Registration pass complete", "project", in.ProjectID, "assets", registry.Len())

	for p := range contents {
		if _, ok := registry.ByPath(p); !ok {
			result.Report.Orphans = append(result.Report.Orphans, p)
		}
	}
	sort.Strings(result.Report.Orphans)

	structure, err := a.parseContent(ctx, registry, contents, &result.Report)
	if err != nil {
		return nil, err
	}
	result.Structure = structure
	result.Duration = time.Since(startTime)

	a.logger.Info("Analysis complete",
		"project", in.ProjectID,
		"assets", len(structure.Assets),
		"dependencies", len(structure.Dependencies),
		"skipped", result.Report.SkippedCount(),
		"duration", result.Duration)
	return result, nil
}

// splitFiles separates .meta sidecars from asset content, keyed by clean path
func splitFiles(files []unity.FileContent) (metas []unity.FileContent, contents map[string]string) {
	contents = make(map[string]string)
	for _, f := range files {
		p := normalizePath(f.Path)
		if strings.HasSuffix(p, metaSuffix) {
			metas = append(metas, unity.FileContent{Path: p, Content: f.Content})
			continue
		}
		contents[p] = f.Content
	}
	sort.SliceStable(metas, func(i, j int) bool { return metas[i].Path < metas[j].Path })
	return metas, contents
}

// register is the registration pass. Metas must be sorted by path so that
// duplicate guids resolve the same way for any input order.
func (a *ProjectAnalyzer) register(metas []unity.FileContent, report *Report) *AssetRegistry {
	registry := NewAssetRegistry()
	for _, m := range metas {
		info, ok := parser.ParseMeta(m.Content)
		if !ok {
			a.logger.Debug("Skipping meta file without guid", "path", m.Path)
			report.Skipped = append(report.Skipped, FileError{Path: m.Path, Stage: StageMeta, Reason: "no guid found"})
			continue
		}

		assetPath := strings.TrimSuffix(m.Path, metaSuffix)
		_, dup := registry.Register(assetPath, info, hash.Content(m.Content))
		if dup != nil {
			a.logger.Warn("Duplicate guid", "guid", dup.GUID, "kept", dup.Kept, "dropped", dup.Dropped)
			report.DuplicateGUIDs = append(report.DuplicateGUIDs, *dup)
		}
	}
	return registry
}

// parseContent is the content pass. Files are parsed in parallel into
// per-asset slots and merged in registration order.
func (a *ProjectAnalyzer) parseContent(ctx context.Context, registry *AssetRegistry, contents map[string]string, report *Report) (*unity.ProjectStructure, error) {
	assets := registry.Assets()
	slots := make([]parsed, len(assets))

	g, gctx := errgroup.WithContext(ctx)
	workers := a.config.Workers
	if workers <= 0 {
		workers = DefaultConfig().Workers
	}
	g.SetLimit(workers)

	for i, asset := range assets {
		content, ok := contents[asset.Path]
		if !ok || !hasContentPass(asset.Type) {
			continue
		}
		i, asset, content := i, asset, content // per-iteration copies (go directive < 1.22)
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			slots[i] = a.parseAsset(asset, content)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("content pass cancelled: %w", err)
	}

	structure := &unity.ProjectStructure{
		Assets:       assets,
		Scripts:      []*unity.Script{},
		Scenes:       []*unity.Scene{},
		Prefabs:      []*unity.Prefab{},
		Materials:    []*unity.Material{},
		Dependencies: []unity.AssetDependency{},
	}
	for _, s := range slots {
		if s.failure != nil {
			a.logger.Debug("Skipping unparsable file", "path", s.failure.Path, "stage", s.failure.Stage, "reason", s.failure.Reason)
			report.Skipped = append(report.Skipped, *s.failure)
		}
		if s.script != nil {
			structure.Scripts = append(structure.Scripts, s.script)
		}
		if s.scene != nil {
			structure.Scenes = append(structure.Scenes, s.scene)
		}
		if s.prefab != nil {
			structure.Prefabs = append(structure.Prefabs, s.prefab)
		}
		if s.material != nil {
			structure.Materials = append(structure.Materials, s.material)
		}
		structure.Dependencies = append(structure.Dependencies, s.deps...)
	}

	unresolved := 0
	for _, d := range structure.Dependencies {
		if _, ok := registry.Lookup(d.TargetGUID); !ok {
			unresolved++
		}
	}
	a.logger.Debug("Content pass complete", "dependencies", len(structure.Dependencies), "unresolved", unresolved)
	return structure, nil
}

func hasContentPass(t unity.AssetType) bool {
	switch t {
	case unity.AssetScript, unity.AssetScene, unity.AssetPrefab, unity.AssetMaterial:
		return true
	}
	return false
}

// parseAsset dispatches one asset to its parser and derives its outgoing edges
func (a *ProjectAnalyzer) parseAsset(asset *unity.Asset, content string) parsed {
	var out parsed
	switch asset.Type {
	case unity.AssetScript:
		script, ok := a.csharp.Parse(content, asset.Path)
		if !ok {
			out.failure = &FileError{Path: asset.Path, Stage: StageScript, Reason: "no class declaration found"}
			return out
		}
		script.AssetID = asset.ID
		out.script = script

	case unity.AssetScene:
		scene, ok := parser.ParseScene(content, asset.Path)
		if !ok {
			out.failure = &FileError{Path: asset.Path, Stage: StageScene, Reason: "empty document"}
			return out
		}
		scene.AssetID = asset.ID
		out.scene = scene
		out.deps = documentDependencies(asset.GUID, &scene.Document)

	case unity.AssetPrefab:
		prefab, ok := parser.ParsePrefab(content, asset.Path)
		if !ok {
			out.failure = &FileError{Path: asset.Path, Stage: StagePrefab, Reason: "empty document"}
			return out
		}
		prefab.AssetID = asset.ID
		out.prefab = prefab
		out.deps = documentDependencies(asset.GUID, &prefab.Document)

	case unity.AssetMaterial:
		mat, ok := parser.ParseMaterial(content, asset.Path)
		if !ok {
			out.failure = &FileError{Path: asset.Path, Stage: StageMaterial, Reason: "empty document"}
			return out
		}
		mat.AssetID = asset.ID
		out.material = mat
		out.deps = edges(asset.GUID, mat.TextureReferences, unity.DependencyTextureReference, nil)
	}
	return out
}

// documentDependencies emits script, prefab and material edges in that order
func documentDependencies(source string, doc *unity.Document) []unity.AssetDependency {
	deps := edges(source, doc.ScriptReferences, unity.DependencyScriptUsage, nil)
	deps = edges(source, doc.PrefabReferences, unity.DependencyPrefabInstance, deps)
	return edges(source, doc.MaterialReferences, unity.DependencyMaterialReference, deps)
}

func edges(source string, targets []string, depType unity.DependencyType, into []unity.AssetDependency) []unity.AssetDependency {
	for _, t := range targets {
		into = append(into, unity.AssetDependency{SourceGUID: source, TargetGUID: t, Type: depType})
	}
	return into
}

func normalizePath(p string) string {
	return path.Clean(strings.ReplaceAll(p, "\\", "/"))
}
