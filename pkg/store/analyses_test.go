package store

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/wouteroostervld/unitygraph/pkg/analyzer"
	"github.com/wouteroostervld/unitygraph/pkg/graph"
	"github.com/wouteroostervld/unitygraph/pkg/unity"
)

func samplePayload() *Payload {
	structure := &unity.ProjectStructure{
		Assets: []*unity.Asset{
			{ID: "1", Path: "Assets/Player.cs", Type: unity.AssetScript, GUID: "abc123"},
			{ID: "2", Path: "Assets/Level.unity", Type: unity.AssetScene, GUID: "def456"},
			{ID: "3", Path: "Assets/Hero.prefab", Type: unity.AssetPrefab, GUID: "fed987"},
		},
		Scripts:   []*unity.Script{{AssetID: "1", ClassName: "Player", BaseTypes: []string{"MonoBehaviour"}}},
		Scenes:    []*unity.Scene{},
		Prefabs:   []*unity.Prefab{},
		Materials: []*unity.Material{},
		Dependencies: []unity.AssetDependency{
			{SourceGUID: "def456", TargetGUID: "abc123", Type: unity.DependencyScriptUsage},
			{SourceGUID: "def456", TargetGUID: "fed987", Type: unity.DependencyPrefabInstance},
			{SourceGUID: "fed987", TargetGUID: "abc123", Type: unity.DependencyScriptUsage},
		},
	}
	return &Payload{
		Structure: structure,
		Summary:   graph.Summarize(structure),
		Report:    analyzer.Report{Orphans: []string{"Assets/Readme.txt"}},
	}
}

func TestSaveAndLoadAnalysis(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.SaveAnalysis(ctx, "game", "fp-1", samplePayload()); err != nil {
		t.Fatalf("SaveAnalysis failed: %v", err)
	}

	a, err := s.LoadAnalysis(ctx, "game")
	if err != nil {
		t.Fatalf("LoadAnalysis failed: %v", err)
	}
	if a.Fingerprint != "fp-1" {
		t.Errorf("Expected fingerprint fp-1, got %s", a.Fingerprint)
	}
	if a.Type != AnalysisType || a.Version != PayloadVersion {
		t.Errorf("Unexpected key (%s, %d)", a.Type, a.Version)
	}
	if a.CreatedAt.IsZero() {
		t.Error("Expected created_at to be set")
	}
	if len(a.Payload.Structure.Assets) != 3 {
		t.Errorf("Expected 3 assets, got %d", len(a.Payload.Structure.Assets))
	}
	if len(a.Payload.Structure.Dependencies) != 3 {
		t.Errorf("Expected 3 dependencies, got %d", len(a.Payload.Structure.Dependencies))
	}
	if a.Payload.Summary.TotalAssets != 3 {
		t.Errorf("Expected summary total 3, got %d", a.Payload.Summary.TotalAssets)
	}
	if len(a.Payload.Report.Orphans) != 1 {
		t.Errorf("Expected 1 orphan, got %v", a.Payload.Report.Orphans)
	}
}

func TestSaveAnalysis_Replaces(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.SaveAnalysis(ctx, "game", "fp-1", samplePayload()); err != nil {
		t.Fatalf("SaveAnalysis failed: %v", err)
	}

	smaller := samplePayload()
	smaller.Structure.Dependencies = smaller.Structure.Dependencies[:1]
	if err := s.SaveAnalysis(ctx, "game", "fp-2", smaller); err != nil {
		t.Fatalf("SaveAnalysis failed: %v", err)
	}

	fp, err := s.Fingerprint(ctx, "game")
	if err != nil {
		t.Fatalf("Fingerprint failed: %v", err)
	}
	if fp != "fp-2" {
		t.Errorf("Expected fp-2, got %s", fp)
	}

	edges, err := s.CountEdges(ctx, "game")
	if err != nil {
		t.Fatalf("CountEdges failed: %v", err)
	}
	if edges != 1 {
		t.Errorf("Expected 1 edge after replace, got %d", edges)
	}
}

func TestSaveAnalysis_InvalidInput(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.SaveAnalysis(ctx, "", "fp", samplePayload()); err == nil {
		t.Error("Expected error for empty project id")
	}
	if err := s.SaveAnalysis(ctx, "game", "fp", &Payload{}); err == nil {
		t.Error("Expected error for nil structure")
	}
}

func TestLoadAnalysis_NotFound(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if _, err := s.LoadAnalysis(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
	if _, err := s.Fingerprint(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestLoadAnalysis_StaleVersion(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.SaveAnalysis(ctx, "game", "fp-1", samplePayload()); err != nil {
		t.Fatalf("SaveAnalysis failed: %v", err)
	}
	if _, err := s.conn.Exec("UPDATE analyses SET version = ?", PayloadVersion+1); err != nil {
		t.Fatalf("Failed to age row: %v", err)
	}

	if _, err := s.LoadAnalysis(ctx, "game"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound for stale version, got %v", err)
	}
}

func TestDeleteAndListProjects(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for _, id := range []string{"zeta", "alpha"} {
		if err := s.SaveAnalysis(ctx, id, "fp-"+id, samplePayload()); err != nil {
			t.Fatalf("SaveAnalysis(%s) failed: %v", id, err)
		}
	}

	projects, err := s.ListProjects(ctx)
	if err != nil {
		t.Fatalf("ListProjects failed: %v", err)
	}
	if len(projects) != 2 || projects[0].ProjectID != "alpha" || projects[1].ProjectID != "zeta" {
		t.Fatalf("Unexpected project list: %+v", projects)
	}

	if err := s.DeleteAnalysis(ctx, "alpha"); err != nil {
		t.Fatalf("DeleteAnalysis failed: %v", err)
	}
	if _, err := s.LoadAnalysis(ctx, "alpha"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected alpha to be gone, got %v", err)
	}
	if n, _ := s.CountAssets(ctx, "alpha"); n != 0 {
		t.Errorf("Expected alpha index cleared, got %d assets", n)
	}
	if n, _ := s.CountAssets(ctx, "zeta"); n != 3 {
		t.Errorf("Expected zeta untouched, got %d assets", n)
	}
}

func TestPostgres(t *testing.T) {
	dsn := os.Getenv("UNITYGRAPH_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("UNITYGRAPH_TEST_POSTGRES_DSN not set")
	}

	s, err := Open(Config{Driver: DriverPostgres, DSN: dsn})
	if err != nil {
		t.Fatalf("Failed to open postgres: %v", err)
	}
	defer s.Close()
	ctx := context.Background()

	if err := s.HealthCheck(ctx); err != nil {
		t.Fatalf("Health check failed: %v", err)
	}
	if err := s.SaveAnalysis(ctx, "pg-test", "fp", samplePayload()); err != nil {
		t.Fatalf("SaveAnalysis failed: %v", err)
	}
	defer s.DeleteAnalysis(ctx, "pg-test")

	dependents, err := s.Dependents(ctx, "pg-test", "abc123")
	if err != nil {
		t.Fatalf("Dependents failed: %v", err)
	}
	if len(dependents) != 2 {
		t.Errorf("Expected 2 dependents, got %d", len(dependents))
	}
}
