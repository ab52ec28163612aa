package main

import (
	"context"
	"errors"
	"reflect"
	"testing"
)

func buildTestGraph(t *testing.T, edges map[AssetId][]AssetId, extra ...AssetId) *AssetGraph {
	t.Helper()
	records := []AssetRecord{}
	for id, deps := range edges {
		records = append(records, AssetRecord{ID: id, Dependencies: deps})
	}
	for _, id := range extra {
		records = append(records, AssetRecord{ID: id})
	}
	graph, err := BuildAssetGraph("/Game", records)
	if err != nil {
		t.Fatalf("failed to build graph: %v", err)
	}
	return graph
}

func TestComputeReachable(t *testing.T) {
	tests := []struct {
		name     string
		edges    map[AssetId][]AssetId
		extra    []AssetId
		seeds    AssetSet
		expected []AssetId
	}{
		{
			name: "chain",
			edges: map[AssetId][]AssetId{
				"/Game/A": {"/Game/B"},
				"/Game/B": {"/Game/C"},
			},
			extra:    []AssetId{"/Game/C"},
			seeds:    NewAssetSet("/Game/A"),
			expected: []AssetId{"/Game/A", "/Game/B", "/Game/C"},
		},
		{
			name: "only dependencies are followed",
			edges: map[AssetId][]AssetId{
				"/Game/A": {"/Game/B"},
			},
			extra:    []AssetId{"/Game/B"},
			seeds:    NewAssetSet("/Game/B"),
			expected: []AssetId{"/Game/B"},
		},
		{
			name: "cycle terminates",
			edges: map[AssetId][]AssetId{
				"/Game/X": {"/Game/Y"},
				"/Game/Y": {"/Game/Z"},
				"/Game/Z": {"/Game/X"},
			},
			seeds:    NewAssetSet("/Game/Y"),
			expected: []AssetId{"/Game/X", "/Game/Y", "/Game/Z"},
		},
		{
			name: "branching graph with shared dependencies",
			edges: map[AssetId][]AssetId{
				"/Game/Maps/Main":      {"/Game/Props/Chair", "/Game/Props/Table"},
				"/Game/Props/Chair":    {"/Game/Materials/Wood", "/Game/Textures/Oak"},
				"/Game/Props/Table":    {"/Game/Materials/Wood"},
				"/Game/Materials/Wood": {"/Game/Textures/Oak"},
				"/Game/Old/Lamp":       {"/Game/Materials/Wood"},
			},
			extra:    []AssetId{"/Game/Textures/Oak"},
			seeds:    NewAssetSet("/Game/Maps/Main"),
			expected: []AssetId{"/Game/Maps/Main", "/Game/Materials/Wood", "/Game/Props/Chair", "/Game/Props/Table", "/Game/Textures/Oak"},
		},
		{
			name: "unknown seed is kept as a leaf",
			edges: map[AssetId][]AssetId{
				"/Game/A": {},
			},
			seeds:    NewAssetSet("/Game/Missing"),
			expected: []AssetId{"/Game/Missing"},
		},
		{
			name:     "no seeds",
			edges:    map[AssetId][]AssetId{"/Game/A": {}},
			seeds:    AssetSet{},
			expected: []AssetId{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			graph := buildTestGraph(t, tt.edges, tt.extra...)

			reachable, err := ComputeReachable(context.Background(), graph, tt.seeds)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := reachable.Sorted(); !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("expected %v, got %v", tt.expected, got)
			}
			for seed := range tt.seeds {
				if !reachable.Has(seed) {
					t.Errorf("expected seed %s to be reachable", seed)
				}
			}
			for id := range reachable {
				for dep := range graph.GetDependencies(id) {
					if !reachable.Has(dep) {
						t.Errorf("closure is not forward closed: %s depends on %s", id, dep)
					}
				}
			}
		})
	}
}

func TestComputeReachable_Cancelled(t *testing.T) {
	graph := buildTestGraph(t, map[AssetId][]AssetId{
		"/Game/A": {"/Game/B"},
	}, "/Game/B")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	reachable, err := ComputeReachable(ctx, graph, NewAssetSet("/Game/A"))
	if !errors.Is(err, ErrScanAborted) {
		t.Fatalf("expected ErrScanAborted, got %v", err)
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected error to wrap context.Canceled, got %v", err)
	}
	if reachable == nil {
		t.Errorf("expected partial result to be returned")
	}
}
