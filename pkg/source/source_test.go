package source

import (
	"context"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wouteroostervld/unitygraph/pkg/analyzer"
	"github.com/wouteroostervld/unitygraph/pkg/filter"
)

func projectFS() fstest.MapFS {
	return fstest.MapFS{
		"Assets/Scripts/Player.cs":         {Data: []byte("public class Player : MonoBehaviour {}")},
		"Assets/Scripts/Player.cs.meta":    {Data: []byte("guid: abc123\n")},
		"Assets/Scenes/Level1.unity":       {Data: []byte("%YAML 1.1\n--- !u!1 &1\nGameObject:\n  m_Name: A\n")},
		"Assets/Scenes/Level1.unity.meta":  {Data: []byte("guid: def456\n")},
		"Assets/Textures/Stone.png":        {Data: []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")},
		"Assets/Textures/Stone.png.meta":   {Data: []byte("guid: fff000\n")},
		"Assets/Plugins/Vendor.cs":         {Data: []byte("public class Vendor {}")},
		"Assets/Binary.prefab":             {Data: []byte("\x00\x01\x02\x03binary serialized")},
		"Assets/Binary.prefab.meta":        {Data: []byte("guid: 0b0b0b\n")},
		"Library/ScriptAssemblies/x.cs":    {Data: []byte("public class X {}")},
		"ProjectSettings/ProjectVersion.t": {Data: []byte("m_EditorVersion: 2022.3")},
	}
}

func paths(c *Collection) []string {
	out := []string{}
	for _, f := range c.Files {
		out = append(out, f.Path)
	}
	return out
}

func TestCollect(t *testing.T) {
	rules := filter.New(nil, []string{"Assets/Plugins"}, nil, nil)

	got, err := NewCollector(rules, 0).Collect(context.Background(), projectFS(), "Assets")
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{
		"Assets/Binary.prefab.meta",
		"Assets/Scenes/Level1.unity",
		"Assets/Scenes/Level1.unity.meta",
		"Assets/Scripts/Player.cs",
		"Assets/Scripts/Player.cs.meta",
		"Assets/Textures/Stone.png.meta",
	}, paths(got))

	require.Len(t, got.Skipped, 1)
	assert.Equal(t, analyzer.FileError{Path: "Assets/Binary.prefab", Stage: analyzer.StageCollect, Reason: "binary content"}, got.Skipped[0])
}

func TestCollect_MaxFileSize(t *testing.T) {
	fsys := fstest.MapFS{
		"Assets/Big.unity":      {Data: []byte("%YAML 1.1\n--- !u!1 &1\nGameObject:\n  m_Name: Big\n")},
		"Assets/Big.unity.meta": {Data: []byte("guid: 1\n")},
		"Assets/Notes.txt":      {Data: []byte("this text file is long enough to be dropped")},
	}

	got, err := NewCollector(nil, 20).Collect(context.Background(), fsys, "Assets")
	require.NoError(t, err)

	assert.Equal(t, []string{"Assets/Big.unity.meta"}, paths(got))
	require.Len(t, got.Skipped, 1, "only content-pass files are reported")
	assert.Equal(t, "Assets/Big.unity", got.Skipped[0].Path)
	assert.Contains(t, got.Skipped[0].Reason, "exceeds limit")
}

func TestCollect_MissingRoot(t *testing.T) {
	_, err := NewCollector(nil, 0).Collect(context.Background(), projectFS(), "Missing")
	assert.Error(t, err)
}

func TestCollect_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewCollector(nil, 0).Collect(ctx, projectFS(), "Assets")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCollect_WholeProject(t *testing.T) {
	rules := filter.New([]string{"Assets/**", "ProjectSettings/**"}, []string{"Library"}, nil, nil)

	got, err := NewCollector(rules, 0).Collect(context.Background(), projectFS(), ".")
	require.NoError(t, err)
	assert.Contains(t, paths(got), "ProjectSettings/ProjectVersion.t")
	assert.Contains(t, paths(got), "Assets/Plugins/Vendor.cs")
	assert.NotContains(t, paths(got), "Library/ScriptAssemblies/x.cs")
}

func TestIsBinary(t *testing.T) {
	assert.False(t, isBinary(nil))
	assert.False(t, isBinary([]byte("%YAML 1.1\n%TAG !u! tag:unity3d.com,2011:\n")))
	assert.False(t, isBinary([]byte(`{"name": "com.unity.package"}`)))
	assert.True(t, isBinary([]byte("\x89PNG\r\n\x1a\n")))
	assert.True(t, isBinary([]byte{0, 1, 2, 3, 4}))
}
