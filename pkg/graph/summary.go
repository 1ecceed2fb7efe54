package graph

import (
	"sort"

	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"

	"github.com/wouteroostervld/unitygraph/pkg/unity"
)

// MaxMostReferenced caps the most-referenced ranking
const MaxMostReferenced = 10

// UnknownAssetName names referenced guids with no registered asset
const UnknownAssetName = "Unknown"

// Script categories
const (
	CategoryMonoBehaviour    = "MonoBehaviour"
	CategoryScriptableObject = "ScriptableObject"
	CategoryOther            = "Other"
)

// ReferencedAsset is one entry of the most-referenced ranking
type ReferencedAsset struct {
	GUID  string          `json:"guid" yaml:"guid"`
	Name  string          `json:"name" yaml:"name"`
	Type  unity.AssetType `json:"type,omitempty" yaml:"type,omitempty"`
	Count int             `json:"count" yaml:"count"`
}

// ProjectSummary aggregates an analyzed project
type ProjectSummary struct {
	TotalAssets       int                     `json:"totalAssets" yaml:"totalAssets"`
	TotalScripts      int                     `json:"totalScripts" yaml:"totalScripts"`
	TotalScenes       int                     `json:"totalScenes" yaml:"totalScenes"`
	TotalPrefabs      int                     `json:"totalPrefabs" yaml:"totalPrefabs"`
	TotalMaterials    int                     `json:"totalMaterials" yaml:"totalMaterials"`
	TotalDependencies int                     `json:"totalDependencies" yaml:"totalDependencies"`
	AssetTypeCounts   map[unity.AssetType]int `json:"assetTypeCounts" yaml:"assetTypeCounts"`
	ScriptCategories  map[string]int          `json:"scriptCategories" yaml:"scriptCategories"`
	MostReferenced    []ReferencedAsset       `json:"mostReferencedAssets" yaml:"mostReferencedAssets"`
	DependencyDepth   int                     `json:"dependencyDepth" yaml:"dependencyDepth"`
	BrokenBackEdges   int                     `json:"brokenBackEdges" yaml:"brokenBackEdges"`
	Cycles            [][]string              `json:"cycles" yaml:"cycles"`
}

// Summarize computes the project summary of s
func Summarize(s *unity.ProjectStructure) *ProjectSummary {
	sum := &ProjectSummary{
		TotalAssets:       len(s.Assets),
		TotalScripts:      len(s.Scripts),
		TotalScenes:       len(s.Scenes),
		TotalPrefabs:      len(s.Prefabs),
		TotalMaterials:    len(s.Materials),
		TotalDependencies: len(s.Dependencies),
		AssetTypeCounts:   make(map[unity.AssetType]int, len(unity.AssetTypes)),
		ScriptCategories:  CategorizeScripts(s.Scripts),
		MostReferenced:    MostReferenced(s.Assets, s.Dependencies, MaxMostReferenced),
		Cycles:            Cycles(s.Dependencies),
	}
	for _, t := range unity.AssetTypes {
		sum.AssetTypeCounts[t] = 0
	}
	for _, a := range s.Assets {
		sum.AssetTypeCounts[a.Type]++
	}
	sum.DependencyDepth, sum.BrokenBackEdges = DependencyDepth(s.Assets, s.Dependencies)
	return sum
}

// CategorizeScripts counts scripts by base type. MonoBehaviour is checked
// before ScriptableObject, by substring.
func CategorizeScripts(scripts []*unity.Script) map[string]int {
	cats := map[string]int{
		CategoryMonoBehaviour:    0,
		CategoryScriptableObject: 0,
		CategoryOther:            0,
	}
	for _, s := range scripts {
		switch {
		case s.HasBaseType(CategoryMonoBehaviour):
			cats[CategoryMonoBehaviour]++
		case s.HasBaseType(CategoryScriptableObject):
			cats[CategoryScriptableObject]++
		default:
			cats[CategoryOther]++
		}
	}
	return cats
}

// MostReferenced ranks target guids by inbound edge count, highest first.
// Ties keep the order in which targets first appear in deps.
func MostReferenced(assets []*unity.Asset, deps []unity.AssetDependency, limit int) []ReferencedAsset {
	byGUID := make(map[string]*unity.Asset, len(assets))
	for _, a := range assets {
		byGUID[a.GUID] = a
	}

	counts := make(map[string]int)
	order := []string{}
	for _, d := range deps {
		if _, seen := counts[d.TargetGUID]; !seen {
			order = append(order, d.TargetGUID)
		}
		counts[d.TargetGUID]++
	}

	ranked := make([]ReferencedAsset, 0, len(order))
	for _, guid := range order {
		ref := ReferencedAsset{GUID: guid, Name: UnknownAssetName, Count: counts[guid]}
		if a, ok := byGUID[guid]; ok {
			ref.Name = a.Name()
			ref.Type = a.Type
		}
		ranked = append(ranked, ref)
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Count > ranked[j].Count })

	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

// DependencyDepth returns the longest edge count found by a depth-first walk
// started once from every unvisited asset, and the number of back edges the
// walk refused to follow. Visited marks are global, so a node reached a
// second time contributes its edge but not its subtree. An edge into the
// current path is a back edge: it is skipped so cycles terminate.
func DependencyDepth(assets []*unity.Asset, deps []unity.AssetDependency) (depth, backEdges int) {
	adj := make(map[string][]string)
	for _, d := range deps {
		adj[d.SourceGUID] = append(adj[d.SourceGUID], d.TargetGUID)
	}

	visited := make(map[string]bool)
	onPath := make(map[string]bool)

	var visit func(guid string) int
	visit = func(guid string) int {
		visited[guid] = true
		onPath[guid] = true
		best := 0
		for _, t := range adj[guid] {
			switch {
			case onPath[t]:
				backEdges++
			case visited[t]:
				best = max(best, 1)
			default:
				best = max(best, 1+visit(t))
			}
		}
		onPath[guid] = false
		return best
	}

	for _, a := range assets {
		if a.GUID == "" || visited[a.GUID] {
			continue
		}
		depth = max(depth, visit(a.GUID))
	}
	return depth, backEdges
}

// Cycles returns every dependency cycle as a sorted guid list: strongly
// connected components of more than one node, and self-references.
func Cycles(deps []unity.AssetDependency) [][]string {
	ids := make(map[string]int64)
	guids := []string{}
	idOf := func(guid string) int64 {
		if id, ok := ids[guid]; ok {
			return id
		}
		id := int64(len(guids))
		ids[guid] = id
		guids = append(guids, guid)
		return id
	}

	g := simple.NewDirectedGraph()
	selfLoops := make(map[string]bool)
	for _, d := range deps {
		from, to := idOf(d.SourceGUID), idOf(d.TargetGUID)
		if g.Node(from) == nil {
			g.AddNode(simple.Node(from))
		}
		if g.Node(to) == nil {
			g.AddNode(simple.Node(to))
		}
		// simple graphs reject self edges
		if from == to {
			selfLoops[d.SourceGUID] = true
			continue
		}
		g.SetEdge(simple.Edge{F: simple.Node(from), T: simple.Node(to)})
	}

	cycles := [][]string{}
	for _, component := range topo.TarjanSCC(g) {
		if len(component) < 2 {
			continue
		}
		members := make([]string, 0, len(component))
		for _, n := range component {
			members = append(members, guids[n.ID()])
		}
		sort.Strings(members)
		cycles = append(cycles, members)
	}
	for guid := range selfLoops {
		cycles = append(cycles, []string{guid})
	}
	sort.Slice(cycles, func(i, j int) bool {
		if cycles[i][0] != cycles[j][0] {
			return cycles[i][0] < cycles[j][0]
		}
		return len(cycles[i]) < len(cycles[j])
	})
	return cycles
}
