package main

import (
	"context"
	"errors"
	"fmt"
)

var ErrScanAborted = errors.New("scan aborted")

func abortedError(ctx context.Context, stage string) error {
	return fmt.Errorf("%s: %w: %w", stage, ErrScanAborted, ctx.Err())
}

// ComputeReachable collects seeds and everything they transitively depend on.
// Seeds unknown to the graph are kept as leaves. When ctx is cancelled the
// closure gathered so far is returned together with ErrScanAborted.
func ComputeReachable(ctx context.Context, graph *AssetGraph, seeds AssetSet) (AssetSet, error) {
	reachable := make(AssetSet, len(seeds))
	stack := make([]AssetId, 0, len(seeds))
	for _, seed := range seeds.Sorted() {
		stack = append(stack, seed)
	}

	for len(stack) > 0 {
		if ctx.Err() != nil {
			return reachable, abortedError(ctx, "reachability")
		}

		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if reachable.Has(current) {
			continue
		}
		reachable.Add(current)

		for dep := range graph.GetDependencies(current) {
			if !reachable.Has(dep) {
				stack = append(stack, dep)
			}
		}
	}

	return reachable, nil
}
