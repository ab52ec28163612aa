package main

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// AssetId is a path-like asset key, eg. "/Game/Props/Chair"
type AssetId string

// AssetSet is an unordered set of asset ids
type AssetSet map[AssetId]struct{}

func NewAssetSet(ids ...AssetId) AssetSet {
	set := make(AssetSet, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

func (s AssetSet) Add(id AssetId) {
	s[id] = struct{}{}
}

func (s AssetSet) Has(id AssetId) bool {
	_, ok := s[id]
	return ok
}

func (s AssetSet) Len() int {
	return len(s)
}

func (s AssetSet) AddAll(other AssetSet) {
	for id := range other {
		s[id] = struct{}{}
	}
}

func (s AssetSet) Clone() AssetSet {
	clone := make(AssetSet, len(s))
	clone.AddAll(s)
	return clone
}

// Sorted returns set members in lexicographic order
func (s AssetSet) Sorted() []AssetId {
	ids := make([]AssetId, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

type AssetCategory string

const (
	CategoryNone                 AssetCategory = ""
	CategoryUserExcluded         AssetCategory = "UserExcluded"
	CategoryExcludedByPath       AssetCategory = "ExcludedByPath"
	CategoryExcludedByClass      AssetCategory = "ExcludedByClass"
	CategoryPrimary              AssetCategory = "Primary"
	CategoryBlacklisted          AssetCategory = "Blacklisted"
	CategoryIndirect             AssetCategory = "Indirect"
	CategoryExternallyReferenced AssetCategory = "ExternallyReferenced"
	CategoryPlain                AssetCategory = "Plain"
)

// AssetNode is a single in-namespace asset with its edges.
// Category is informational and rewritten by every classification pass.
type AssetNode struct {
	ID                    AssetId
	Category              AssetCategory
	Dependencies          AssetSet
	Referencers           AssetSet
	HasExternalReferencer bool
}

var ErrUnknownNode = errors.New("unknown asset node")

// GraphError describes a failed graph mutation
type GraphError struct {
	Op  string
	ID  AssetId
	Err error
}

func (e *GraphError) Error() string {
	return fmt.Sprintf("%s '%s': %v", e.Op, e.ID, e.Err)
}

func (e *GraphError) Unwrap() error {
	return e.Err
}

// AssetGraph owns every asset under a namespace root and the dependency edges between them.
// Ids outside of the namespace are never nodes; an empty namespace owns everything.
type AssetGraph struct {
	namespace string
	nodes     map[AssetId]*AssetNode
	// referencer links waiting for their target to be registered
	pendingReferencers map[AssetId]AssetSet
}

func NewAssetGraph(namespace string) *AssetGraph {
	return &AssetGraph{
		namespace:          strings.TrimSuffix(namespace, "/"),
		nodes:              make(map[AssetId]*AssetNode),
		pendingReferencers: make(map[AssetId]AssetSet),
	}
}

func (g *AssetGraph) Namespace() string {
	return g.namespace
}

// InNamespace reports whether id lives under the graph namespace root
func (g *AssetGraph) InNamespace(id AssetId) bool {
	if g.namespace == "" {
		return id != ""
	}
	s := string(id)
	return s == g.namespace || strings.HasPrefix(s, g.namespace+"/")
}

// AddNode registers id and returns true when a new node was created
func (g *AssetGraph) AddNode(id AssetId) bool {
	if !g.InNamespace(id) {
		return false
	}
	if _, exists := g.nodes[id]; exists {
		return false
	}

	node := &AssetNode{
		ID:           id,
		Dependencies: AssetSet{},
		Referencers:  AssetSet{},
	}
	if pending, ok := g.pendingReferencers[id]; ok {
		node.Referencers = pending
		delete(g.pendingReferencers, id)
	}
	g.nodes[id] = node
	return true
}

func (g *AssetGraph) AddDependency(from AssetId, to AssetId) error {
	fromNode, exists := g.nodes[from]
	if !exists {
		return &GraphError{Op: "add dependency", ID: from, Err: ErrUnknownNode}
	}
	// out of namespace dependencies never decide whether something is unused
	if from == to || !g.InNamespace(to) {
		return nil
	}

	fromNode.Dependencies.Add(to)

	if toNode, ok := g.nodes[to]; ok {
		toNode.Referencers.Add(from)
		return nil
	}
	pending, ok := g.pendingReferencers[to]
	if !ok {
		pending = AssetSet{}
		g.pendingReferencers[to] = pending
	}
	pending.Add(from)
	return nil
}

// AddReferencer records that referencer needs id. Referencers outside of the
// namespace only flag id as externally referenced.
func (g *AssetGraph) AddReferencer(id AssetId, referencer AssetId) error {
	if _, exists := g.nodes[id]; !exists {
		return &GraphError{Op: "add referencer", ID: id, Err: ErrUnknownNode}
	}
	if id == referencer {
		return nil
	}
	if !g.InNamespace(referencer) {
		g.AddExternalReferencer(id)
		return nil
	}

	// in-namespace referencer that was never registered is a dangling edge
	refNode, ok := g.nodes[referencer]
	if !ok {
		return nil
	}
	refNode.Dependencies.Add(id)
	g.nodes[id].Referencers.Add(referencer)
	return nil
}

func (g *AssetGraph) AddExternalReferencer(id AssetId) {
	if node, ok := g.nodes[id]; ok {
		node.HasExternalReferencer = true
	}
}

func (g *AssetGraph) HasExternalReferencer(id AssetId) bool {
	node, ok := g.nodes[id]
	return ok && node.HasExternalReferencer
}

func (g *AssetGraph) Node(id AssetId) (*AssetNode, bool) {
	node, ok := g.nodes[id]
	return node, ok
}

func (g *AssetGraph) Has(id AssetId) bool {
	_, ok := g.nodes[id]
	return ok
}

func (g *AssetGraph) Len() int {
	return len(g.nodes)
}

// GetDependencies returns registered dependencies of id; dangling edges are skipped
func (g *AssetGraph) GetDependencies(id AssetId) AssetSet {
	node, ok := g.nodes[id]
	if !ok {
		return AssetSet{}
	}
	return g.knownOnly(node.Dependencies)
}

// GetReferencers returns registered referencers of id; dangling edges are skipped
func (g *AssetGraph) GetReferencers(id AssetId) AssetSet {
	node, ok := g.nodes[id]
	if !ok {
		return AssetSet{}
	}
	return g.knownOnly(node.Referencers)
}

func (g *AssetGraph) knownOnly(ids AssetSet) AssetSet {
	result := make(AssetSet, len(ids))
	for id := range ids {
		if _, ok := g.nodes[id]; ok {
			result.Add(id)
		}
	}
	return result
}

func (g *AssetGraph) AllIds() AssetSet {
	ids := make(AssetSet, len(g.nodes))
	for id := range g.nodes {
		ids.Add(id)
	}
	return ids
}

func (g *AssetGraph) SortedIds() []AssetId {
	return g.AllIds().Sorted()
}

func (g *AssetGraph) ResetCategories() {
	for _, node := range g.nodes {
		node.Category = CategoryNone
	}
}

// AssetRecord is one entry supplied by an asset enumeration collaborator
type AssetRecord struct {
	ID           AssetId
	Dependencies []AssetId
	Referencers  []AssetId
}

// BuildAssetGraph registers all records first and then wires their edges,
// so records may come in any order.
func BuildAssetGraph(namespace string, records []AssetRecord) (*AssetGraph, error) {
	graph := NewAssetGraph(namespace)

	for _, record := range records {
		graph.AddNode(record.ID)
	}

	for _, record := range records {
		if !graph.Has(record.ID) {
			continue
		}
		for _, dep := range record.Dependencies {
			if err := graph.AddDependency(record.ID, dep); err != nil {
				return graph, err
			}
		}
		for _, ref := range record.Referencers {
			if err := graph.AddReferencer(record.ID, ref); err != nil {
				return graph, err
			}
		}
	}

	return graph, nil
}
