package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wouteroostervld/unitygraph/pkg/graph"
	"github.com/wouteroostervld/unitygraph/pkg/unity"
)

const levelScene = `%YAML 1.1
--- !u!1 &100
GameObject:
  m_Name: Player
--- !u!114 &200
MonoBehaviour:
  m_Script: {fileID: 11500000, guid: abc123, type: 3}
`

// writeProject lays out a two-asset Unity project under a temp dir
func writeProject(t *testing.T) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "Game")
	files := map[string]string{
		"Assets/Scripts/Player.cs":      "public class Player : MonoBehaviour { void Update() {} }",
		"Assets/Scripts/Player.cs.meta": "fileFormatVersion: 2\nguid: abc123\n",
		"Assets/Level.unity":            levelScene,
		"Assets/Level.unity.meta":       "fileFormatVersion: 2\nguid: def456\n",
		"Assets/.hidden.cs":             "class Hidden {}",
	}
	for name, content := range files {
		p := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0700))
		require.NoError(t, os.WriteFile(p, []byte(content), 0600))
	}
	return dir
}

// run executes the CLI with a private home directory
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	color.NoColor = true
	opts = globalOptions{}

	var out bytes.Buffer
	app := newApp()
	app.SetOut(&out)
	app.SetErr(&bytes.Buffer{})
	app.SetArgs(append([]string{"--no-color", "--log-level", "error"}, args...))
	err := app.Execute()
	return out.String(), err
}

func TestSummary_JSON(t *testing.T) {
	dir := writeProject(t)

	out, err := run(t, "summary", "--no-cache", "--format", "json", dir)
	require.NoError(t, err)

	var sum graph.ProjectSummary
	require.NoError(t, json.Unmarshal([]byte(out), &sum))
	assert.Equal(t, 2, sum.TotalAssets)
	assert.Equal(t, 1, sum.TotalDependencies)
	assert.Equal(t, 1, sum.ScriptCategories[graph.CategoryMonoBehaviour])
	require.Len(t, sum.MostReferenced, 1)
	assert.Equal(t, "abc123", sum.MostReferenced[0].GUID)
	assert.Equal(t, "Player.cs", sum.MostReferenced[0].Name)
}

func TestGraph_JSONHasColors(t *testing.T) {
	dir := writeProject(t)

	out, err := run(t, "graph", "--no-cache", "-f", "json", dir)
	require.NoError(t, err)

	var g struct {
		Nodes []struct {
			GUID  string `json:"guid"`
			Type  string `json:"type"`
			Color string `json:"color"`
		} `json:"nodes"`
		Edges []graph.Edge `json:"edges"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &g))
	require.Len(t, g.Nodes, 2)
	for _, n := range g.Nodes {
		assert.Equal(t, graph.ColorFor(unity.AssetType(n.Type)), n.Color)
	}
	require.Len(t, g.Edges, 1)
	assert.Equal(t, "def456", g.Edges[0].Source)
	assert.Equal(t, "abc123", g.Edges[0].Target)
}

func TestAnalyze_TextThenCached(t *testing.T) {
	dir := writeProject(t)
	t.Setenv("HOME", t.TempDir())
	home := os.Getenv("HOME")

	run := func(args ...string) string {
		t.Helper()
		color.NoColor = true
		opts = globalOptions{}
		var out bytes.Buffer
		app := newApp()
		app.SetOut(&out)
		app.SetErr(&bytes.Buffer{})
		app.SetArgs(append([]string{"--no-color", "--log-level", "error"}, args...))
		require.NoError(t, app.Execute())
		return out.String()
	}

	first := run("analyze", dir)
	assert.Contains(t, first, "Project Game")
	assert.Contains(t, first, "analyzed in")

	second := run("analyze", dir)
	assert.Contains(t, second, "unchanged (cached)")

	_, err := os.Stat(filepath.Join(home, ".unitygraph", "unitygraph.db"))
	assert.NoError(t, err)

	refs := run("refs", "abc123", dir)
	assert.Contains(t, refs, "1 references to Assets/Scripts/Player.cs")
	assert.Contains(t, refs, "Assets/Level.unity")

	status := run("status", dir)
	assert.Contains(t, status, "* Game")
}

func TestUnknownFormat(t *testing.T) {
	_, err := run(t, "summary", "--format", "xml", t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown format")
}

func TestRefs_RequiresStore(t *testing.T) {
	_, err := run(t, "refs", "abc123", "--no-cache", t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--no-cache")
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "unitygraph "))
}

func TestParseHex(t *testing.T) {
	r, g, b, ok := parseHex("#4CAF50")
	require.True(t, ok)
	assert.Equal(t, []int{0x4c, 0xaf, 0x50}, []int{r, g, b})

	_, _, _, ok = parseHex("#fff")
	assert.False(t, ok)
	_, _, _, ok = parseHex("#zzzzzz")
	assert.False(t, ok)
}

func TestWriteGraph_MarksMissingTargets(t *testing.T) {
	color.NoColor = true
	g := &graph.Graph{
		Nodes: []graph.Node{{GUID: "a", Name: "A.prefab", Type: unity.AssetPrefab, Path: "Assets/A.prefab"}},
		Edges: []graph.Edge{{Source: "a", Target: "gone", Type: unity.DependencyScriptUsage}},
	}

	var buf bytes.Buffer
	writeGraph(&buf, g)
	assert.Contains(t, buf.String(), "Assets/A.prefab")
	assert.Contains(t, buf.String(), "gone (missing)")
	assert.Contains(t, buf.String(), "1 dangling edges")
}

func TestWriteGraph_ListsEdgesFromUnknownSource(t *testing.T) {
	color.NoColor = true
	g := &graph.Graph{
		Nodes: []graph.Node{{GUID: "a", Name: "A.prefab", Type: unity.AssetPrefab, Path: "Assets/A.prefab"}},
		Edges: []graph.Edge{
			{Source: "a", Target: "a", Type: unity.DependencyPrefabInstance},
			{Source: "ghost", Target: "a", Type: unity.DependencyScriptUsage},
		},
	}

	var buf bytes.Buffer
	writeGraph(&buf, g)
	out := buf.String()
	assert.Contains(t, out, "1 dangling edges")
	assert.Contains(t, out, "ghost (missing) -> a")
}

func TestWriteGraph_NoDanglingFooter(t *testing.T) {
	color.NoColor = true
	g := &graph.Graph{
		Nodes: []graph.Node{{GUID: "a", Name: "A.prefab", Type: unity.AssetPrefab, Path: "Assets/A.prefab"}},
		Edges: []graph.Edge{},
	}

	var buf bytes.Buffer
	writeGraph(&buf, g)
	assert.NotContains(t, buf.String(), "dangling")
}
