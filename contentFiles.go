package main

import (
	"path"
	"slices"
	"strings"
)

var engineFileExtensions = []string{".uasset", ".umap"}

// ContentFileSource lists the non-asset files found in the content tree
type ContentFileSource interface {
	ContentFiles() []string
}

// ContentFiles are files of the content tree the asset registry does not account for
type ContentFiles struct {
	// engine files (.uasset, .umap) that never made it into the graph
	Corrupted []string `json:"corrupted" yaml:"corrupted"`
	// anything else, these are invisible in the editor but keep folders from being empty
	NonEngine []string `json:"nonEngine" yaml:"nonEngine"`
}

func isEngineFile(file string) bool {
	return slices.Contains(engineFileExtensions, strings.ToLower(path.Ext(file)))
}

// ClassifyContentFiles splits files into corrupted engine files and non-engine files.
// An engine file is fine when the id it maps to ("/Game/A/B.uasset" -> "/Game/A/B") is a graph node.
func ClassifyContentFiles(graph *AssetGraph, files []string) ContentFiles {
	result := ContentFiles{Corrupted: []string{}, NonEngine: []string{}}
	for _, file := range files {
		if !isEngineFile(file) {
			result.NonEngine = append(result.NonEngine, file)
			continue
		}
		id := AssetId(strings.TrimSuffix(file, path.Ext(file)))
		if graph != nil && graph.Has(id) {
			continue
		}
		result.Corrupted = append(result.Corrupted, file)
	}
	slices.Sort(result.Corrupted)
	result.Corrupted = slices.Compact(result.Corrupted)
	slices.Sort(result.NonEngine)
	result.NonEngine = slices.Compact(result.NonEngine)
	return result
}
