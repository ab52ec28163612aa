package main

import (
	"fmt"
	"strings"
)

// FindCircularAssets returns assets that have a referencer which is also one of their dependencies
func FindCircularAssets(graph *AssetGraph) AssetSet {
	circular := AssetSet{}
	for _, id := range graph.SortedIds() {
		deps := graph.GetDependencies(id)
		for ref := range graph.GetReferencers(id) {
			if deps.Has(ref) {
				circular.Add(id)
				break
			}
		}
	}
	return circular
}

// CircularPartners lists ids that id both depends on and is referenced by
func CircularPartners(graph *AssetGraph, id AssetId) []AssetId {
	deps := graph.GetDependencies(id)
	partners := AssetSet{}
	for ref := range graph.GetReferencers(id) {
		if deps.Has(ref) {
			partners.Add(ref)
		}
	}
	return partners.Sorted()
}

func FormatCircularAssets(graph *AssetGraph, circular AssetSet, unused AssetSet) string {
	if circular.Len() == 0 {
		return fmt.Sprintln("No circular assets found! ✅")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d circular assets:\n\n", circular.Len())
	for _, id := range circular.Sorted() {
		suffix := ""
		if unused.Has(id) {
			suffix = " (unused)"
		}
		fmt.Fprintf(&b, "%s%s\n", id, suffix)
		for _, partner := range CircularPartners(graph, id) {
			fmt.Fprintf(&b, "  ⇄ %s\n", partner)
		}
	}
	return b.String()
}
