package main

import (
	"context"
	"slices"
)

// IndirectReference is an asset path found in non-asset text (source code, config files).
// File and Line are kept for reporting only.
type IndirectReference struct {
	ID   AssetId `json:"id" yaml:"id"`
	File string  `json:"file" yaml:"file"`
	Line int     `json:"line" yaml:"line"`
}

// UsageSignals are the independent reasons for an asset to be kept
type UsageSignals struct {
	Primary              AssetSet
	Indirect             []IndirectReference
	ExternallyReferenced AssetSet
	UserExcluded         AssetSet
	ExcludedByPath       AssetSet
	ExcludedByClass      AssetSet
	Blacklisted          AssetSet
}

func (s UsageSignals) IndirectIds() AssetSet {
	ids := make(AssetSet, len(s.Indirect))
	for _, ref := range s.Indirect {
		ids.Add(ref.ID)
	}
	return ids
}

// Seeds is the union of every signal. Overlapping signals are harmless.
func (s UsageSignals) Seeds() AssetSet {
	seeds := AssetSet{}
	for _, set := range []AssetSet{
		s.Primary,
		s.IndirectIds(),
		s.ExternallyReferenced,
		s.UserExcluded,
		s.ExcludedByPath,
		s.ExcludedByClass,
		s.Blacklisted,
	} {
		seeds.AddAll(set)
	}
	return seeds
}

type UsageClassification struct {
	Seeds       AssetSet
	UsedClosure AssetSet
	// category of every used asset, first match wins
	Categories         map[AssetId]AssetCategory
	IndirectReferences map[AssetId][]IndirectReference
}

// CountByCategory returns the number of used assets per category
func (c *UsageClassification) CountByCategory() map[AssetCategory]int {
	counts := make(map[AssetCategory]int)
	for _, category := range c.Categories {
		counts[category]++
	}
	return counts
}

// ClassifyUsage expands all usage signals into the set of assets that must not be touched.
// Categories are informational: the used/unused split only depends on closure membership.
func ClassifyUsage(ctx context.Context, graph *AssetGraph, signals UsageSignals) (*UsageClassification, error) {
	graph.ResetCategories()

	seeds := signals.Seeds()
	externallyReferenced := AssetSet{}
	externallyReferenced.AddAll(signals.ExternallyReferenced)
	for id := range graph.AllIds() {
		if graph.HasExternalReferencer(id) {
			externallyReferenced.Add(id)
			seeds.Add(id)
		}
	}

	usedClosure, err := ComputeReachable(ctx, graph, seeds)

	indirectIds := signals.IndirectIds()
	categoryOrder := []struct {
		category AssetCategory
		ids      AssetSet
	}{
		{CategoryUserExcluded, signals.UserExcluded},
		{CategoryExcludedByPath, signals.ExcludedByPath},
		{CategoryExcludedByClass, signals.ExcludedByClass},
		{CategoryPrimary, signals.Primary},
		{CategoryBlacklisted, signals.Blacklisted},
		{CategoryIndirect, indirectIds},
		{CategoryExternallyReferenced, externallyReferenced},
	}

	categories := make(map[AssetId]AssetCategory, len(usedClosure))
	for id := range usedClosure {
		category := CategoryPlain
		for _, candidate := range categoryOrder {
			if candidate.ids.Has(id) {
				category = candidate.category
				break
			}
		}
		categories[id] = category
		if node, ok := graph.Node(id); ok {
			node.Category = category
		}
	}

	indirectById := make(map[AssetId][]IndirectReference)
	for _, ref := range signals.Indirect {
		indirectById[ref.ID] = append(indirectById[ref.ID], ref)
	}
	for id := range indirectById {
		slices.SortFunc(indirectById[id], compareIndirectReferences)
	}

	return &UsageClassification{
		Seeds:              seeds,
		UsedClosure:        usedClosure,
		Categories:         categories,
		IndirectReferences: indirectById,
	}, err
}

func compareIndirectReferences(a IndirectReference, b IndirectReference) int {
	if a.File != b.File {
		if a.File < b.File {
			return -1
		}
		return 1
	}
	return a.Line - b.Line
}
