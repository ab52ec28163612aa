package main

import (
	"path"
	"slices"
	"strings"
)

// FolderNode is one folder of a content tree snapshot. The tree is rebuilt for every
// query, file state may change between calls.
type FolderNode struct {
	Path     string        `json:"path" yaml:"path"`
	Files    []string      `json:"files,omitempty" yaml:"files,omitempty"`
	Children []*FolderNode `json:"children,omitempty" yaml:"children,omitempty"`
}

// ComputeEmptyFolders returns every folder (root included) that holds no files, directly
// or in any subfolder. Ignored folders and everything below them are never returned,
// they still count when deciding whether their parent is empty.
func ComputeEmptyFolders(root *FolderNode, ignoreFolders map[string]bool) map[string]bool {
	return computeEmptyFolders(root, ignoreFolders, nil)
}

// computeEmptyFolders treats kept folders as non-empty, so their parents are never reported
func computeEmptyFolders(root *FolderNode, ignoreFolders map[string]bool, keepFolders map[string]bool) map[string]bool {
	emptyFolders := map[string]bool{}
	if root == nil {
		return emptyFolders
	}

	type frame struct {
		node     *FolderNode
		ignored  bool
		expanded bool
	}

	isEmpty := map[*FolderNode]bool{}
	stack := []frame{{node: root, ignored: ignoreFolders[root.Path]}}

	for len(stack) > 0 {
		top := stack[len(stack)-1]

		if !top.expanded {
			stack[len(stack)-1].expanded = true
			for _, child := range top.node.Children {
				if child == nil {
					continue
				}
				stack = append(stack, frame{node: child, ignored: top.ignored || ignoreFolders[child.Path]})
			}
			continue
		}

		stack = stack[:len(stack)-1]

		empty := len(top.node.Files) == 0
		for _, child := range top.node.Children {
			if child != nil && !isEmpty[child] {
				empty = false
				break
			}
		}
		if keepFolders[top.node.Path] {
			empty = false
		}
		isEmpty[top.node] = empty

		if empty && !top.ignored {
			emptyFolders[top.node.Path] = true
		}
	}

	return emptyFolders
}

// BuildFolderTree assembles a folder tree under root out of file paths and folder paths.
// Paths outside of root are skipped.
func BuildFolderTree(root string, files []string, folders []string) *FolderNode {
	root = strings.TrimSuffix(root, "/")
	if root == "" {
		root = "/"
	}
	rootNode := &FolderNode{Path: root}
	byPath := map[string]*FolderNode{root: rootNode}

	ensureFolder := func(folderPath string) *FolderNode {
		// walk up until a known folder, then create the missing chain top-down
		missing := []string{}
		current := folderPath
		for {
			if _, ok := byPath[current]; ok {
				break
			}
			parentPath := path.Dir(current)
			if parentPath == current {
				current = root
				break
			}
			missing = append(missing, current)
			current = parentPath
		}
		parent := byPath[current]
		for i := len(missing) - 1; i >= 0; i-- {
			node := &FolderNode{Path: missing[i]}
			parent.Children = append(parent.Children, node)
			byPath[missing[i]] = node
			parent = node
		}
		return parent
	}

	isUnderRoot := func(p string) bool {
		if root == "/" {
			return strings.HasPrefix(p, "/") && p != "/"
		}
		return strings.HasPrefix(p, root+"/")
	}

	for _, folder := range folders {
		folder = strings.TrimSuffix(folder, "/")
		if !isUnderRoot(folder) {
			continue
		}
		ensureFolder(folder)
	}

	for _, file := range files {
		if !isUnderRoot(file) {
			continue
		}
		parent := ensureFolder(path.Dir(file))
		parent.Files = append(parent.Files, path.Base(file))
	}

	for _, node := range byPath {
		slices.Sort(node.Files)
		slices.SortFunc(node.Children, func(a *FolderNode, b *FolderNode) int {
			return strings.Compare(a.Path, b.Path)
		})
	}

	return rootNode
}

// EditorFolderExclusions returns the folders the editor manages on its own.
// ignored folders hide their whole subtree, protected folders are only hidden themselves.
func EditorFolderExclusions(root string, developerName string, scanDevelopersContent bool) (ignored []string, protected []string) {
	root = strings.TrimSuffix(root, "/")
	collections := root + "/Collections"
	developers := root + "/Developers"

	protected = []string{collections, developers}
	if developerName != "" {
		userDir := developers + "/" + developerName
		protected = append(protected, userDir, userDir+"/Collections")
	}
	if !scanDevelopersContent {
		ignored = []string{collections, developers}
	}
	return ignored, protected
}

// IgnoredFolderSet expands folder patterns (relative to the namespace root) against the folders present in the tree
func IgnoredFolderSet(root *FolderNode, namespace string, patterns []string) map[string]bool {
	ignored := map[string]bool{}
	if root == nil || len(patterns) == 0 {
		return ignored
	}
	matchers := CreateGlobMatchers(patterns, namespace)

	stack := []*FolderNode{root}
	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		// trailing slash lets "Folder/" patterns match the folder itself
		if MatchesAnyGlobMatcher(node.Path, matchers, false) || MatchesAnyGlobMatcher(node.Path+"/", matchers, false) {
			ignored[node.Path] = true
		}
		for _, child := range node.Children {
			if child != nil {
				stack = append(stack, child)
			}
		}
	}
	return ignored
}

// SortFoldersDeepestFirst orders folders so that nested folders come before their parents
func SortFoldersDeepestFirst(folders map[string]bool) []string {
	result := make([]string, 0, len(folders))
	for folder := range folders {
		result = append(result, folder)
	}
	slices.SortFunc(result, func(a string, b string) int {
		depthA := strings.Count(a, "/")
		depthB := strings.Count(b, "/")
		if depthA != depthB {
			return depthB - depthA
		}
		return strings.Compare(a, b)
	})
	return result
}

type EmptyFolderOptions struct {
	// folder patterns relative to the namespace root
	IgnoredFolders        []string
	DeveloperName         string
	ScanDevelopersContent bool
}

// FindEmptyFolders applies the editor folder policy on top of ComputeEmptyFolders.
// Folders matching IgnoredFolders are kept, so their parents are never reported as empty.
// The namespace root itself is never reported.
func FindEmptyFolders(tree *FolderNode, namespace string, opts EmptyFolderOptions) map[string]bool {
	if tree == nil {
		return map[string]bool{}
	}
	ignoredSubtrees, protected := EditorFolderExclusions(namespace, opts.DeveloperName, opts.ScanDevelopersContent)

	keep := IgnoredFolderSet(tree, namespace, opts.IgnoredFolders)
	ignore := map[string]bool{}
	for folder := range keep {
		ignore[folder] = true
	}
	for _, folder := range ignoredSubtrees {
		ignore[folder] = true
	}

	emptyFolders := computeEmptyFolders(tree, ignore, keep)
	for _, folder := range protected {
		delete(emptyFolders, folder)
	}
	delete(emptyFolders, tree.Path)
	return emptyFolders
}
