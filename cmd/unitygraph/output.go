package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"gopkg.in/yaml.v3"

	"github.com/wouteroostervld/unitygraph/pkg/graph"
	"github.com/wouteroostervld/unitygraph/pkg/unity"
)

// Output formats
const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
)

// encode writes v as JSON or YAML. Text output is rendered by each command.
func encode(w io.Writer, format string, v any) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("format %q cannot encode structured output", format)
	}
}

// typeColor returns the terminal color of an asset type's display color
func typeColor(t unity.AssetType) *color.Color {
	r, g, b, ok := parseHex(graph.ColorFor(t))
	if !ok {
		return color.New(color.Reset)
	}
	return color.RGB(r, g, b)
}

// parseHex splits a #RRGGBB color into components
func parseHex(hex string) (r, g, b int, ok bool) {
	hex = strings.TrimPrefix(hex, "#")
	if len(hex) != 6 {
		return 0, 0, 0, false
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return 0, 0, 0, false
	}
	return int(v >> 16 & 0xff), int(v >> 8 & 0xff), int(v & 0xff), true
}

var (
	headingColor = color.New(color.Bold)
	faintColor   = color.New(color.Faint)
	warnColor    = color.New(color.FgYellow)
)

func writeSummary(w io.Writer, projectID string, sum *graph.ProjectSummary) {
	headingColor.Fprintf(w, "Project %s\n", projectID)
	fmt.Fprintf(w, "  assets        %d\n", sum.TotalAssets)
	fmt.Fprintf(w, "  scripts       %d\n", sum.TotalScripts)
	fmt.Fprintf(w, "  scenes        %d\n", sum.TotalScenes)
	fmt.Fprintf(w, "  prefabs       %d\n", sum.TotalPrefabs)
	fmt.Fprintf(w, "  materials     %d\n", sum.TotalMaterials)
	fmt.Fprintf(w, "  dependencies  %d\n", sum.TotalDependencies)
	fmt.Fprintf(w, "  max depth     %d\n", sum.DependencyDepth)

	headingColor.Fprintln(w, "Asset types")
	for _, t := range unity.AssetTypes {
		if n := sum.AssetTypeCounts[t]; n > 0 {
			fmt.Fprintf(w, "  %s %d\n", typeColor(t).Sprintf("%-10s", t), n)
		}
	}

	headingColor.Fprintln(w, "Script categories")
	for _, c := range []string{graph.CategoryMonoBehaviour, graph.CategoryScriptableObject, graph.CategoryOther} {
		fmt.Fprintf(w, "  %-17s %d\n", c, sum.ScriptCategories[c])
	}

	if len(sum.MostReferenced) > 0 {
		headingColor.Fprintln(w, "Most referenced")
		for _, r := range sum.MostReferenced {
			fmt.Fprintf(w, "  %3d  %s %s\n", r.Count, typeColor(r.Type).Sprint(r.Name), faintColor.Sprint(r.GUID))
		}
	}

	if len(sum.Cycles) > 0 {
		warnColor.Fprintf(w, "Cycles (%d back edges ignored for depth)\n", sum.BrokenBackEdges)
		for _, c := range sum.Cycles {
			fmt.Fprintf(w, "  %s\n", strings.Join(c, " -> "))
		}
	}
}

func writeGraph(w io.Writer, g *graph.Graph) {
	byGUID := make(map[string]graph.Node, len(g.Nodes))
	for _, n := range g.Nodes {
		byGUID[n.GUID] = n
	}

	for _, n := range g.Nodes {
		fmt.Fprintf(w, "%s %s %s\n", typeColor(n.Type).Sprint("●"), n.Path, faintColor.Sprint(n.GUID))
		for _, e := range g.Edges {
			if e.Source != n.GUID {
				continue
			}
			var target string
			if t, ok := byGUID[e.Target]; ok {
				target = typeColor(t.Type).Sprint(t.Path)
			} else {
				target = warnColor.Sprintf("%s (missing)", e.Target)
			}
			fmt.Fprintf(w, "    %s %s\n", faintColor.Sprintf("%-18s", e.Type), target)
		}
	}

	dangling := g.Dangling()
	if len(dangling) == 0 {
		return
	}
	warnColor.Fprintf(w, "%d dangling edges\n", len(dangling))
	// Edges from an unknown source have no node to be listed under
	for _, e := range dangling {
		if _, ok := byGUID[e.Source]; !ok {
			fmt.Fprintf(w, "  %s -> %s %s\n", warnColor.Sprintf("%s (missing)", e.Source), e.Target, faintColor.Sprint(e.Type))
		}
	}
}

// coloredGraph adds each node's display color to structured output
type coloredGraph struct {
	Nodes []coloredNode `json:"nodes" yaml:"nodes"`
	Edges []graph.Edge  `json:"edges" yaml:"edges"`
}

type coloredNode struct {
	graph.Node `yaml:",inline"`
	Color      string `json:"color" yaml:"color"`
}

func withColors(g *graph.Graph) coloredGraph {
	out := coloredGraph{Nodes: make([]coloredNode, 0, len(g.Nodes)), Edges: g.Edges}
	for _, n := range g.Nodes {
		out.Nodes = append(out.Nodes, coloredNode{Node: n, Color: graph.ColorFor(n.Type)})
	}
	return out
}
