// Package graph derives read-only views over an analyzed project: the
// guid-keyed dependency graph, the project summary and display colors.
package graph

import (
	"github.com/wouteroostervld/unitygraph/pkg/unity"
)

// Node is one asset in the dependency graph
type Node struct {
	GUID string          `json:"guid" yaml:"guid"`
	Name string          `json:"name" yaml:"name"`
	Type unity.AssetType `json:"type" yaml:"type"`
	Path string          `json:"path" yaml:"path"`
}

// Edge is one dependency record. Target may name a guid with no node.
type Edge struct {
	Source string               `json:"source" yaml:"source"`
	Target string               `json:"target" yaml:"target"`
	Type   unity.DependencyType `json:"type" yaml:"type"`
}

// Graph is the node/edge view of a project structure
type Graph struct {
	Nodes []Node `json:"nodes" yaml:"nodes"`
	Edges []Edge `json:"edges" yaml:"edges"`
}

// Build creates one node per asset and one edge per dependency.
// Referential integrity is not checked; see Resolved.
func Build(assets []*unity.Asset, deps []unity.AssetDependency) *Graph {
	g := &Graph{
		Nodes: make([]Node, 0, len(assets)),
		Edges: make([]Edge, 0, len(deps)),
	}
	for _, a := range assets {
		g.Nodes = append(g.Nodes, Node{GUID: a.GUID, Name: a.Name(), Type: a.Type, Path: a.Path})
	}
	for _, d := range deps {
		g.Edges = append(g.Edges, Edge{Source: d.SourceGUID, Target: d.TargetGUID, Type: d.Type})
	}
	return g
}

// FromStructure builds the graph of an analyzed project
func FromStructure(s *unity.ProjectStructure) *Graph {
	return Build(s.Assets, s.Dependencies)
}

// Resolved returns a copy without edges whose endpoints are not nodes
func (g *Graph) Resolved() *Graph {
	known := g.nodeSet()
	out := &Graph{
		Nodes: append([]Node{}, g.Nodes...),
		Edges: []Edge{},
	}
	for _, e := range g.Edges {
		if known[e.Source] && known[e.Target] {
			out.Edges = append(out.Edges, e)
		}
	}
	return out
}

// Dangling returns the edges Resolved would drop
func (g *Graph) Dangling() []Edge {
	known := g.nodeSet()
	out := []Edge{}
	for _, e := range g.Edges {
		if !known[e.Source] || !known[e.Target] {
			out = append(out, e)
		}
	}
	return out
}

// Node returns the node for guid
func (g *Graph) Node(guid string) (Node, bool) {
	for _, n := range g.Nodes {
		if n.GUID == guid {
			return n, true
		}
	}
	return Node{}, false
}

// Dependents returns the edges pointing at guid in edge order
func (g *Graph) Dependents(guid string) []Edge {
	out := []Edge{}
	for _, e := range g.Edges {
		if e.Target == guid {
			out = append(out, e)
		}
	}
	return out
}

func (g *Graph) nodeSet() map[string]bool {
	known := make(map[string]bool, len(g.Nodes))
	for _, n := range g.Nodes {
		if n.GUID != "" {
			known[n.GUID] = true
		}
	}
	return known
}
