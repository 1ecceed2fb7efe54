package unity

import (
	"path"
	"strings"
)

// AssetType classifies a project file by extension
type AssetType string

const (
	AssetScript   AssetType = "script"
	AssetScene    AssetType = "scene"
	AssetPrefab   AssetType = "prefab"
	AssetShader   AssetType = "shader"
	AssetMaterial AssetType = "material"
	AssetTexture  AssetType = "texture"
	AssetOther    AssetType = "other"
)

// AssetTypes lists every asset type in display order
var AssetTypes = []AssetType{
	AssetScript, AssetScene, AssetPrefab, AssetShader, AssetMaterial, AssetTexture, AssetOther,
}

// AssetTypeForPath infers the asset type from the file extension of p
func AssetTypeForPath(p string) AssetType {
	switch strings.ToLower(strings.TrimPrefix(path.Ext(p), ".")) {
	case "cs":
		return AssetScript
	case "unity":
		return AssetScene
	case "prefab":
		return AssetPrefab
	case "shader":
		return AssetShader
	case "mat":
		return AssetMaterial
	case "png", "jpg", "jpeg", "tga":
		return AssetTexture
	default:
		return AssetOther
	}
}

// DependencyType is the kind of a directed asset reference
type DependencyType string

const (
	DependencyScriptUsage       DependencyType = "script_usage"
	DependencyPrefabInstance    DependencyType = "prefab_instance"
	DependencySceneReference    DependencyType = "scene_reference"
	DependencyMaterialReference DependencyType = "material_reference"
	DependencyTextureReference  DependencyType = "texture_reference"
)

// Asset is one tracked file in the project tree.
// GUID comes from the sibling .meta file and is the cross-reference key.
type Asset struct {
	ID            string            `json:"id" yaml:"id"`
	Path          string            `json:"path" yaml:"path"`
	Type          AssetType         `json:"type" yaml:"type"`
	GUID          string            `json:"guid" yaml:"guid"`
	ContentHash   string            `json:"contentHash" yaml:"contentHash"`
	ParseMetadata map[string]string `json:"parseMetadata,omitempty" yaml:"parseMetadata,omitempty"`
}

// Name returns the last path segment
func (a *Asset) Name() string {
	return path.Base(a.Path)
}

// Parameter is one entry of a method's parameter list
type Parameter struct {
	Type string `json:"type" yaml:"type"`
	Name string `json:"name" yaml:"name"`
}

// Method is a method declaration found in a script
type Method struct {
	Name           string      `json:"name" yaml:"name"`
	ReturnType     string      `json:"returnType" yaml:"returnType"`
	Parameters     []Parameter `json:"parameters" yaml:"parameters"`
	Attributes     []string    `json:"attributes" yaml:"attributes"`
	IsUnityMessage bool        `json:"isUnityMessage" yaml:"isUnityMessage"`
}

// Field is a field declaration found in a script
type Field struct {
	Name              string   `json:"name" yaml:"name"`
	Type              string   `json:"type" yaml:"type"`
	Attributes        []string `json:"attributes" yaml:"attributes"`
	IsSerializedField bool     `json:"isSerializedField" yaml:"isSerializedField"`
}

// Script is the structural record of one C# class.
// AssetID is a lookup key into the owning analysis, valid only for that pass.
type Script struct {
	AssetID         string   `json:"assetId" yaml:"assetId"`
	Namespace       string   `json:"namespace" yaml:"namespace"`
	ClassName       string   `json:"className" yaml:"className"`
	BaseTypes       []string `json:"baseTypes" yaml:"baseTypes"`
	Methods         []Method `json:"methods" yaml:"methods"`
	Fields          []Field  `json:"fields" yaml:"fields"`
	UnityMessages   []string `json:"unityMessages" yaml:"unityMessages"`
	ComponentUsages []string `json:"componentUsages" yaml:"componentUsages"`
}

// HasBaseType reports whether any base type contains name
func (s *Script) HasBaseType(name string) bool {
	for _, b := range s.BaseTypes {
		if strings.Contains(b, name) {
			return true
		}
	}
	return false
}

// Component is a component attached to a game object
type Component struct {
	Type   string `json:"type" yaml:"type"`
	GUID   string `json:"guid,omitempty" yaml:"guid,omitempty"`
	FileID string `json:"fileId" yaml:"fileId"`
}

// GameObject is a GameObject document inside a scene or prefab.
// FileID is local to its document, not a project-wide guid.
type GameObject struct {
	Name       string        `json:"name" yaml:"name"`
	FileID     string        `json:"fileId" yaml:"fileId"`
	Components []Component   `json:"components" yaml:"components"`
	Children   []*GameObject `json:"children" yaml:"children"`
}

// Document holds what the YAML pass extracts from a scene or prefab
type Document struct {
	GameObjects        []*GameObject `json:"gameObjects" yaml:"gameObjects"`
	ScriptReferences   []string      `json:"scriptReferences" yaml:"scriptReferences"`
	PrefabReferences   []string      `json:"prefabReferences" yaml:"prefabReferences"`
	MaterialReferences []string      `json:"materialReferences" yaml:"materialReferences"`
}

// Scene is a parsed .unity document
type Scene struct {
	AssetID  string `json:"assetId" yaml:"assetId"`
	Name     string `json:"name" yaml:"name"`
	Document `yaml:",inline"`
}

// Prefab is a parsed .prefab document. Root is the first game object found.
type Prefab struct {
	AssetID    string      `json:"assetId" yaml:"assetId"`
	Name       string      `json:"name" yaml:"name"`
	Root       *GameObject `json:"root" yaml:"root"`
	Components []Component `json:"components" yaml:"components"`
	Document   `yaml:",inline"`
}

// Material is a parsed .mat document
type Material struct {
	AssetID           string   `json:"assetId" yaml:"assetId"`
	Name              string   `json:"name" yaml:"name"`
	ShaderGUID        string   `json:"shaderGuid,omitempty" yaml:"shaderGuid,omitempty"`
	TextureReferences []string `json:"textureReferences" yaml:"textureReferences"`
}

// AssetDependency is one directed edge between two guids
type AssetDependency struct {
	SourceGUID string         `json:"source" yaml:"source"`
	TargetGUID string         `json:"target" yaml:"target"`
	Type       DependencyType `json:"type" yaml:"type"`
}

// ProjectStructure is the assembled output of one analysis pass
type ProjectStructure struct {
	Assets       []*Asset          `json:"assets" yaml:"assets"`
	Scripts      []*Script         `json:"scripts" yaml:"scripts"`
	Scenes       []*Scene          `json:"scenes" yaml:"scenes"`
	Prefabs      []*Prefab         `json:"prefabs" yaml:"prefabs"`
	Materials    []*Material       `json:"materials" yaml:"materials"`
	Dependencies []AssetDependency `json:"dependencies" yaml:"dependencies"`
}

// FileContent is one (path, content) input pair
type FileContent struct {
	Path    string
	Content string
}
