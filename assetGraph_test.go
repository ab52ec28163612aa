package main

import (
	"errors"
	"reflect"
	"testing"
)

func TestAssetGraph_AddNode(t *testing.T) {
	graph := NewAssetGraph("/Game")

	if !graph.AddNode("/Game/Props/Chair") {
		t.Fatalf("expected first AddNode to create a node")
	}
	if graph.AddNode("/Game/Props/Chair") {
		t.Errorf("expected second AddNode of the same id to be a no-op")
	}
	if graph.AddNode("/Engine/BasicShapes/Cube") {
		t.Errorf("expected asset outside of namespace to be skipped")
	}
	if graph.AddNode("/GameExtra/Chair") {
		t.Errorf("expected sibling namespace with shared prefix to be skipped")
	}
	if graph.Len() != 1 {
		t.Errorf("expected 1 node, got %d", graph.Len())
	}
}

func TestAssetGraph_AddDependencyUnknownNode(t *testing.T) {
	graph := NewAssetGraph("/Game")
	graph.AddNode("/Game/X")

	err := graph.AddDependency("/Game/Unknown", "/Game/X")
	if err == nil {
		t.Fatalf("expected error for unknown node")
	}
	if !errors.Is(err, ErrUnknownNode) {
		t.Errorf("expected ErrUnknownNode, got %v", err)
	}

	var graphErr *GraphError
	if !errors.As(err, &graphErr) {
		t.Fatalf("expected GraphError, got %T", err)
	}
	if graphErr.ID != "/Game/Unknown" {
		t.Errorf("expected error about '/Game/Unknown', got '%s'", graphErr.ID)
	}
	if len(graph.GetReferencers("/Game/X")) != 0 {
		t.Errorf("expected failed AddDependency to leave the graph untouched")
	}
}

func TestAssetGraph_Edges(t *testing.T) {
	t.Run("dependency is mirrored as referencer", func(t *testing.T) {
		graph := NewAssetGraph("/Game")
		graph.AddNode("/Game/A")
		graph.AddNode("/Game/B")

		if err := graph.AddDependency("/Game/A", "/Game/B"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !graph.GetDependencies("/Game/A").Has("/Game/B") {
			t.Errorf("expected A to depend on B")
		}
		if !graph.GetReferencers("/Game/B").Has("/Game/A") {
			t.Errorf("expected B to be referenced by A")
		}
	})

	t.Run("dependency registered before its target", func(t *testing.T) {
		graph := NewAssetGraph("/Game")
		graph.AddNode("/Game/A")

		if err := graph.AddDependency("/Game/A", "/Game/B"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(graph.GetDependencies("/Game/A")) != 0 {
			t.Errorf("expected dangling dependency to be hidden")
		}

		graph.AddNode("/Game/B")
		if !graph.GetDependencies("/Game/A").Has("/Game/B") {
			t.Errorf("expected dependency to show up once B is registered")
		}
		if !graph.GetReferencers("/Game/B").Has("/Game/A") {
			t.Errorf("expected pending referencer to be attached to B")
		}
	})

	t.Run("out of namespace edges", func(t *testing.T) {
		graph := NewAssetGraph("/Game")
		graph.AddNode("/Game/A")

		if err := graph.AddDependency("/Game/A", "/Engine/Cube"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(graph.GetDependencies("/Game/A")) != 0 {
			t.Errorf("expected out of namespace dependency to be dropped")
		}

		if err := graph.AddReferencer("/Game/A", "/MyPlugin/Map"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !graph.HasExternalReferencer("/Game/A") {
			t.Errorf("expected A to be externally referenced")
		}
		if len(graph.GetReferencers("/Game/A")) != 0 {
			t.Errorf("expected external referencer not to become a node edge")
		}
	})

	t.Run("self edges are dropped", func(t *testing.T) {
		graph := NewAssetGraph("/Game")
		graph.AddNode("/Game/A")

		_ = graph.AddDependency("/Game/A", "/Game/A")
		_ = graph.AddReferencer("/Game/A", "/Game/A")
		if len(graph.GetDependencies("/Game/A")) != 0 || len(graph.GetReferencers("/Game/A")) != 0 {
			t.Errorf("expected no self edges")
		}
	})

	t.Run("unregistered in-namespace referencer is dropped", func(t *testing.T) {
		graph := NewAssetGraph("/Game")
		graph.AddNode("/Game/A")

		if err := graph.AddReferencer("/Game/A", "/Game/Ghost"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(graph.GetReferencers("/Game/A")) != 0 {
			t.Errorf("expected dangling referencer to be hidden")
		}
		if graph.HasExternalReferencer("/Game/A") {
			t.Errorf("expected in-namespace referencer not to count as external")
		}
	})

	t.Run("referencer of unknown node", func(t *testing.T) {
		graph := NewAssetGraph("/Game")
		err := graph.AddReferencer("/Game/Missing", "/Game/A")
		if !errors.Is(err, ErrUnknownNode) {
			t.Errorf("expected ErrUnknownNode, got %v", err)
		}
	})
}

func TestBuildAssetGraph(t *testing.T) {
	records := []AssetRecord{
		{ID: "/Game/Maps/Main", Dependencies: []AssetId{"/Game/Props/Chair", "/Engine/Cube"}},
		{ID: "/Game/Props/Chair", Dependencies: []AssetId{"/Game/Materials/Wood"}},
		{ID: "/Game/Materials/Wood", Referencers: []AssetId{"/Game/Props/Table", "/OtherPlugin/Level"}},
		{ID: "/Game/Props/Table"},
		{ID: "/Engine/Cube"},
	}

	graph, err := BuildAssetGraph("/Game/", records)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if graph.Namespace() != "/Game" {
		t.Errorf("expected namespace '/Game', got '%s'", graph.Namespace())
	}

	expectedIds := []AssetId{"/Game/Maps/Main", "/Game/Materials/Wood", "/Game/Props/Chair", "/Game/Props/Table"}
	if !reflect.DeepEqual(graph.SortedIds(), expectedIds) {
		t.Errorf("expected ids %v, got %v", expectedIds, graph.SortedIds())
	}

	expectedReferencers := []AssetId{"/Game/Props/Chair", "/Game/Props/Table"}
	if got := graph.GetReferencers("/Game/Materials/Wood").Sorted(); !reflect.DeepEqual(got, expectedReferencers) {
		t.Errorf("expected referencers %v, got %v", expectedReferencers, got)
	}
	if !graph.GetDependencies("/Game/Props/Table").Has("/Game/Materials/Wood") {
		t.Errorf("expected referencer record to add the reverse dependency")
	}
	if !graph.HasExternalReferencer("/Game/Materials/Wood") {
		t.Errorf("expected Wood to be externally referenced")
	}
}

func TestAssetSet(t *testing.T) {
	set := NewAssetSet("/Game/B", "/Game/A")
	set.Add("/Game/C")

	clone := set.Clone()
	clone.Add("/Game/D")

	if set.Has("/Game/D") {
		t.Errorf("expected clone to be independent")
	}
	expected := []AssetId{"/Game/A", "/Game/B", "/Game/C"}
	if !reflect.DeepEqual(set.Sorted(), expected) {
		t.Errorf("expected %v, got %v", expected, set.Sorted())
	}
}
