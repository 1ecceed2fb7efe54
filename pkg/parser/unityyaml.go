package parser

import (
	"path"
	"regexp"
	"strings"

	"github.com/wouteroostervld/unitygraph/pkg/unity"
)

// gameObjectClassID is the Unity class id carried by GameObject documents
const gameObjectClassID = "1"

var (
	sectionPattern   = regexp.MustCompile(`(?m)^--- !u!(\d+) &(-?\d+)`)
	namePattern      = regexp.MustCompile(`(?m)^[ \t]*m_Name:[ \t]*(.*)$`)
	scriptRefPattern = regexp.MustCompile(`m_Script:\s*\{([^}]*)\}`)
	prefabRefPattern = regexp.MustCompile(`(?:m_PrefabAsset|m_SourcePrefab):\s*\{([^}]*)\}`)
	materialsPattern = regexp.MustCompile(`m_Materials:[ \t]*\r?\n((?:[ \t]*- \{[^}]*\}[ \t]*(?:\r?\n|$))+)`)
	shaderRefPattern = regexp.MustCompile(`m_Shader:\s*\{([^}]*)\}`)
	textureRefPat    = regexp.MustCompile(`m_Texture:\s*\{([^}]*)\}`)
)

// ParseDocument extracts game objects and guid references from Unity YAML
// text. Components and children are not populated. Game objects come only
// from `--- !u!` sections, while references are matched anywhere in the
// body. It returns false for empty or whitespace-only input.
func ParseDocument(content string) (*unity.Document, bool) {
	if isBlank(content) {
		return nil, false
	}

	doc := &unity.Document{
		GameObjects:        parseGameObjects(content),
		ScriptReferences:   collectRefs(scriptRefPattern, content),
		PrefabReferences:   collectRefs(prefabRefPattern, content),
		MaterialReferences: collectRefs(materialsPattern, content),
	}
	return doc, true
}

// ParseScene parses a .unity document
func ParseScene(content, filePath string) (*unity.Scene, bool) {
	doc, ok := ParseDocument(content)
	if !ok {
		return nil, false
	}
	return &unity.Scene{Name: baseName(filePath), Document: *doc}, true
}

// ParsePrefab parses a .prefab document. The root is the first game object,
// or a placeholder named after the file when none is declared.
func ParsePrefab(content, filePath string) (*unity.Prefab, bool) {
	doc, ok := ParseDocument(content)
	if !ok {
		return nil, false
	}

	root := &unity.GameObject{
		Name:       baseName(filePath),
		FileID:     "0",
		Components: []unity.Component{},
		Children:   []*unity.GameObject{},
	}
	if len(doc.GameObjects) > 0 {
		root = doc.GameObjects[0]
	}

	return &unity.Prefab{
		Name:       baseName(filePath),
		Root:       root,
		Components: root.Components,
		Document:   *doc,
	}, true
}

// ParseMaterial parses a .mat document for its shader and texture guids
func ParseMaterial(content, filePath string) (*unity.Material, bool) {
	if isBlank(content) {
		return nil, false
	}

	mat := &unity.Material{
		Name:              baseName(filePath),
		TextureReferences: collectRefs(textureRefPat, content),
	}
	if m := namePattern.FindStringSubmatch(content); m != nil && strings.TrimSpace(m[1]) != "" {
		mat.Name = strings.TrimSpace(m[1])
	}
	if shader := collectRefs(shaderRefPattern, content); len(shader) > 0 {
		mat.ShaderGUID = shader[0]
	}
	return mat, true
}

func parseGameObjects(content string) []*unity.GameObject {
	objects := []*unity.GameObject{}
	locs := sectionPattern.FindAllStringSubmatchIndex(content, -1)
	for i, loc := range locs {
		end := len(content)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		body := content[loc[1]:end]

		classID := content[loc[2]:loc[3]]
		if classID != gameObjectClassID && !strings.HasPrefix(strings.TrimLeft(firstBodyLine(body), " \t"), "GameObject:") {
			continue
		}

		m := namePattern.FindStringSubmatch(body)
		if m == nil {
			continue
		}
		objects = append(objects, &unity.GameObject{
			Name:       strings.TrimSpace(m[1]),
			FileID:     content[loc[4]:loc[5]],
			Components: []unity.Component{},
			Children:   []*unity.GameObject{},
		})
	}
	return objects
}

// collectRefs gathers deduplicated guids from every block matched by pattern
func collectRefs(pattern *regexp.Regexp, content string) []string {
	refs := []string{}
	seen := make(map[string]bool)
	for _, m := range pattern.FindAllStringSubmatch(content, -1) {
		refs = findGUIDs(m[1], refs, seen)
	}
	return refs
}

func isBlank(content string) bool {
	return strings.TrimSpace(content) == ""
}

// firstBodyLine returns the first non-empty line after a section tag
func firstBodyLine(body string) string {
	for _, line := range strings.Split(body, "\n") {
		if strings.TrimSpace(line) != "" && !strings.HasPrefix(strings.TrimSpace(line), "stripped") {
			return line
		}
	}
	return ""
}

func baseName(filePath string) string {
	name := path.Base(strings.ReplaceAll(filePath, "\\", "/"))
	return strings.TrimSuffix(name, path.Ext(name))
}
