package main

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"github.com/rs/zerolog/log"
)

const defaultNamespace = "/Game"

const maxTextSourceLine = 4 * 1024 * 1024

// text files that may hold hard coded asset paths
var indirectReferenceExtensions = []string{".cpp", ".h", ".hpp", ".cs", ".ini"}

func indirectReferencePattern(namespace string) *regexp.Regexp {
	namespace = strings.TrimSuffix(namespace, "/")
	if namespace == "" {
		namespace = defaultNamespace
	}
	return regexp.MustCompile(regexp.QuoteMeta(namespace) + `(/[A-Za-z0-9_./]+)\b`)
}

// normalizeReferencedPath turns object paths ("/Game/UI/Hud.Hud_C") into package ids ("/Game/UI/Hud")
func normalizeReferencedPath(match string) AssetId {
	lastSlash := strings.LastIndex(match, "/")
	if dot := strings.Index(match[lastSlash+1:], "."); dot >= 0 {
		match = match[:lastSlash+1+dot]
	}
	return AssetId(strings.TrimRight(match, "/."))
}

// FindIndirectReferences extracts asset paths mentioned in text content.
// Lines are 1-based, a path mentioned twice on the same line is reported once.
// Lines longer than maxTextSourceLine stop the search with an error.
func FindIndirectReferences(file string, content []byte, namespace string) ([]IndirectReference, error) {
	pattern := indirectReferencePattern(namespace)
	refs := []IndirectReference{}

	scanner := bufio.NewScanner(bytes.NewReader(content))
	scanner.Buffer(make([]byte, 0, 64*1024), maxTextSourceLine)
	lineNumber := 0
	for scanner.Scan() {
		lineNumber++
		line := scanner.Bytes()
		seen := AssetSet{}
		for _, match := range pattern.FindAll(line, -1) {
			id := normalizeReferencedPath(string(match))
			if seen.Has(id) {
				continue
			}
			seen.Add(id)
			refs = append(refs, IndirectReference{ID: id, File: file, Line: lineNumber})
		}
	}
	if err := scanner.Err(); err != nil {
		return refs, fmt.Errorf("failed to scan '%s' after line %d: %w", file, lineNumber, err)
	}

	return refs, nil
}

// ResolveIndirectReferences keeps references that point at assets known to the graph
func ResolveIndirectReferences(graph *AssetGraph, refs []IndirectReference) []IndirectReference {
	resolved := make([]IndirectReference, 0, len(refs))
	for _, ref := range refs {
		if graph.Has(ref.ID) {
			resolved = append(resolved, ref)
		}
	}
	slices.SortFunc(resolved, func(a IndirectReference, b IndirectReference) int {
		if a.ID != b.ID {
			return strings.Compare(string(a.ID), string(b.ID))
		}
		return compareIndirectReferences(a, b)
	})
	return slices.CompactFunc(resolved, func(a IndirectReference, b IndirectReference) bool {
		return a == b
	})
}

func isIndirectReferenceSource(file string) bool {
	return slices.Contains(indirectReferenceExtensions, strings.ToLower(filepath.Ext(file)))
}

// StripTextSourceComments blanks comments of a text source, keeping line numbers intact
func StripTextSourceComments(file string, content []byte) []byte {
	if strings.ToLower(filepath.Ext(file)) == ".ini" {
		return RemoveIniComments(content)
	}
	return RemoveCommentsFromCode(content)
}

// ReadIndirectReferences reads every listed text source (relative to baseDir) and extracts references.
// Files with other extensions are skipped.
func ReadIndirectReferences(baseDir string, files []string, namespace string, skipComments bool) ([]IndirectReference, error) {
	refs := []IndirectReference{}
	for _, file := range files {
		if !isIndirectReferenceSource(file) {
			log.Debug().Str("file", file).Msg("skipping text source with unsupported extension")
			continue
		}
		fullPath := file
		if !filepath.IsAbs(fullPath) {
			fullPath = filepath.Join(baseDir, DenormalizePathForOS(file))
		}
		content, err := os.ReadFile(fullPath)
		if err != nil {
			return refs, fmt.Errorf("failed to read text source '%s': %w", file, err)
		}
		if skipComments {
			content = StripTextSourceComments(file, content)
		}
		found, err := FindIndirectReferences(NormalizePathForInternal(file), content, namespace)
		if err != nil {
			return refs, err
		}
		log.Debug().Str("file", file).Int("references", len(found)).Msg("text source scanned")
		refs = append(refs, found...)
	}
	return refs, nil
}
