package main

import (
	"context"
	"slices"
)

// DeletionBatch is a group of assets that can be removed together once all
// previous batches are gone. Forced batches break a referencer cycle and hold a single asset.
type DeletionBatch struct {
	Assets []AssetId `json:"assets" yaml:"assets"`
	Forced bool      `json:"forced,omitempty" yaml:"forced,omitempty"`
}

// PlanDeletion orders unused assets into batches. An asset joins the current batch
// once none of its referencers is still waiting for deletion. When every remaining
// asset is still referenced (cycles), the lexicographically smallest one is forced
// into a batch of its own. All unused assets end up in exactly one batch.
func PlanDeletion(ctx context.Context, graph *AssetGraph, unused AssetSet) ([]DeletionBatch, error) {
	batches := []DeletionBatch{}
	if unused.Len() == 0 {
		return batches, nil
	}

	// number of referencers of each asset that are still waiting for deletion
	pendingReferencers := make(map[AssetId]int, unused.Len())
	eligible := []AssetId{}
	for id := range unused {
		count := 0
		for ref := range graph.GetReferencers(id) {
			if ref != id && unused.Has(ref) {
				count++
			}
		}
		pendingReferencers[id] = count
		if count == 0 {
			eligible = append(eligible, id)
		}
	}

	sortedUnused := unused.Sorted()
	nextForcedCandidate := 0
	remaining := unused.Clone()

	release := func(batch []AssetId) []AssetId {
		released := []AssetId{}
		for _, id := range batch {
			delete(remaining, id)
		}
		for _, id := range batch {
			for dep := range graph.GetDependencies(id) {
				if !remaining.Has(dep) {
					continue
				}
				pendingReferencers[dep]--
				if pendingReferencers[dep] == 0 {
					released = append(released, dep)
				}
			}
		}
		return released
	}

	for remaining.Len() > 0 {
		if ctx.Err() != nil {
			return batches, abortedError(ctx, "deletion planning")
		}

		if len(eligible) > 0 {
			slices.Sort(eligible)
			batch := slices.Clone(eligible)
			batches = append(batches, DeletionBatch{Assets: batch})
			eligible = release(batch)
			continue
		}

		// every remaining asset is still referenced from inside the unused set
		for nextForcedCandidate < len(sortedUnused) && !remaining.Has(sortedUnused[nextForcedCandidate]) {
			nextForcedCandidate++
		}
		forced := sortedUnused[nextForcedCandidate]
		batches = append(batches, DeletionBatch{Assets: []AssetId{forced}, Forced: true})
		eligible = release([]AssetId{forced})
	}

	return batches, nil
}

// FlattenDeletionPlan returns all assets of a plan in deletion order
func FlattenDeletionPlan(batches []DeletionBatch) []AssetId {
	result := []AssetId{}
	for _, batch := range batches {
		result = append(result, batch.Assets...)
	}
	return result
}
