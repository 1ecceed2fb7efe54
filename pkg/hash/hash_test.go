package hash

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wouteroostervld/unitygraph/pkg/unity"
)

func TestContent(t *testing.T) {
	a := Content("guid: abc123\n")
	assert.Len(t, a, 16)
	assert.Equal(t, a, Content("guid: abc123\n"))
	assert.NotEqual(t, a, Content("guid: abc124\n"))
	assert.Len(t, Content(""), 16)
}

func TestFingerprint_OrderIndependent(t *testing.T) {
	files := []unity.FileContent{
		{Path: "Assets/A.cs", Content: "class A {}"},
		{Path: "Assets/A.cs.meta", Content: "guid: aaa"},
		{Path: "Assets/B.unity", Content: "%YAML 1.1"},
	}
	reversed := []unity.FileContent{files[2], files[1], files[0]}

	assert.Equal(t, Fingerprint(files), Fingerprint(reversed))
	assert.Equal(t, "Assets/A.cs", files[0].Path, "input must not be reordered")
}

func TestFingerprint_Changes(t *testing.T) {
	base := []unity.FileContent{{Path: "Assets/A.cs", Content: "class A {}"}}
	edited := []unity.FileContent{{Path: "Assets/A.cs", Content: "class A { }"}}
	moved := []unity.FileContent{{Path: "Assets/B.cs", Content: "class A {}"}}
	split := []unity.FileContent{
		{Path: "ab", Content: "c"},
	}
	joined := []unity.FileContent{
		{Path: "a", Content: "bc"},
	}

	assert.NotEqual(t, Fingerprint(base), Fingerprint(edited))
	assert.NotEqual(t, Fingerprint(base), Fingerprint(moved))
	assert.NotEqual(t, Fingerprint(split), Fingerprint(joined))
	assert.Equal(t, Fingerprint(nil), Fingerprint([]unity.FileContent{}))
}
