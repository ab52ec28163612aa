package main

import (
	"errors"
	"io"
	"slices"
	"strings"

	"github.com/dominikbraun/graph"
	"github.com/dominikbraun/graph/draw"
)

var categoryColors = map[AssetCategory]string{
	CategoryUserExcluded:         "gray",
	CategoryExcludedByPath:       "gray",
	CategoryExcludedByClass:      "gray",
	CategoryPrimary:              "palegreen",
	CategoryBlacklisted:          "khaki",
	CategoryIndirect:             "lightblue",
	CategoryExternallyReferenced: "plum",
	CategoryPlain:                "white",
}

const unusedColor = "tomato"

func assetHash(id AssetId) AssetId {
	return id
}

// ToDirectedGraph copies the asset graph into a dependency graph (edge from asset to its dependency).
// Vertex attributes carry the asset category, unused assets are marked separately.
func ToDirectedGraph(assets *AssetGraph, categories map[AssetId]AssetCategory, unused AssetSet) (graph.Graph[AssetId, AssetId], error) {
	g := graph.New(assetHash, graph.Directed())

	for _, id := range assets.SortedIds() {
		category := categories[id]
		color := categoryColors[category]
		label := string(category)
		if unused.Has(id) {
			color = unusedColor
			label = "Unused"
		}
		if color == "" {
			color = "white"
		}
		err := g.AddVertex(id,
			graph.VertexAttribute("style", "filled"),
			graph.VertexAttribute("fillcolor", color),
			graph.VertexAttribute("tooltip", label),
		)
		if err != nil && !errors.Is(err, graph.ErrVertexAlreadyExists) {
			return g, err
		}
	}

	for _, id := range assets.SortedIds() {
		for _, dep := range assets.GetDependencies(id).Sorted() {
			if err := g.AddEdge(id, dep); err != nil && !errors.Is(err, graph.ErrEdgeAlreadyExists) {
				return g, err
			}
		}
	}

	return g, nil
}

// WriteDOT renders the asset graph in graphviz DOT format
func WriteDOT(w io.Writer, result *ScanResult) error {
	categories := map[AssetId]AssetCategory{}
	if result.Usage != nil {
		categories = result.Usage.Categories
	}
	g, err := ToDirectedGraph(result.Graph, categories, result.Unused)
	if err != nil {
		return err
	}
	return draw.DOT(g, w, draw.GraphAttribute("rankdir", "LR"))
}

// FindReferenceCycles groups assets that reference each other, directly or through other assets.
// Every group holds at least two assets; groups and their members are sorted.
func FindReferenceCycles(assets *AssetGraph, within AssetSet) ([][]AssetId, error) {
	g := graph.New(assetHash, graph.Directed())
	for _, id := range within.Sorted() {
		if err := g.AddVertex(id); err != nil && !errors.Is(err, graph.ErrVertexAlreadyExists) {
			return nil, err
		}
	}
	for _, id := range within.Sorted() {
		for dep := range assets.GetDependencies(id) {
			if !within.Has(dep) {
				continue
			}
			if err := g.AddEdge(id, dep); err != nil && !errors.Is(err, graph.ErrEdgeAlreadyExists) {
				return nil, err
			}
		}
	}

	components, err := graph.StronglyConnectedComponents(g)
	if err != nil {
		return nil, err
	}

	cycles := [][]AssetId{}
	for _, component := range components {
		if len(component) < 2 {
			continue
		}
		slices.Sort(component)
		cycles = append(cycles, component)
	}
	slices.SortFunc(cycles, func(a []AssetId, b []AssetId) int {
		return strings.Compare(string(a[0]), string(b[0]))
	})
	return cycles, nil
}
