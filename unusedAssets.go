package main

// ResolveUnused returns every graph asset that is neither used nor ignored.
// Neither graph nor used is modified.
func ResolveUnused(graph *AssetGraph, used AssetSet, ignore func(AssetId) bool) AssetSet {
	unused := AssetSet{}
	for id := range graph.AllIds() {
		if used.Has(id) {
			continue
		}
		if ignore != nil && ignore(id) {
			continue
		}
		unused.Add(id)
	}
	return unused
}

// ResolveIgnored lists assets that would be unused but are hidden by the ignore predicate
func ResolveIgnored(graph *AssetGraph, used AssetSet, ignore func(AssetId) bool) AssetSet {
	ignored := AssetSet{}
	if ignore == nil {
		return ignored
	}
	for id := range graph.AllIds() {
		if !used.Has(id) && ignore(id) {
			ignored.Add(id)
		}
	}
	return ignored
}

// IgnoreAssetsMatching builds an ignore predicate out of glob matchers
func IgnoreAssetsMatching(matchers []GlobMatcher) func(AssetId) bool {
	if len(matchers) == 0 {
		return nil
	}
	return func(id AssetId) bool {
		return MatchesAnyGlobMatcher(string(id), matchers, false)
	}
}
