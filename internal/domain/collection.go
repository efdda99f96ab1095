package domain

import (
	"fmt"
	"sort"
	"strings"
)

// PathSeparator splits a request id into directory levels.
const PathSeparator = "/"

// Preview is the lightweight per-request metadata used to render the tree
// without loading full payloads.
type Preview struct {
	Kind    Kind   `json:"kind"`
	SubKind string `json:"sub_kind"`
}

// Badge returns the label shown next to a request in the tree.
func (p Preview) Badge() string {
	if p.SubKind != "" && (p.Kind == KindHTTP || p.Kind == KindSQL) {
		return strings.ToUpper(p.SubKind)
	}
	return p.Kind.Label()
}

// Tree is the hierarchical view over the flat id set. IDs holds the full ids
// of leaves at this level; Dirs is keyed by path segment.
type Tree struct {
	IDs  []string        `json:"ids"`
	Dirs map[string]Tree `json:"dirs"`
}

// BuildTree derives the tree from a flat id set. The result is deterministic:
// leaves are sorted and directories are keyed by segment.
func BuildTree(ids []string) Tree {
	root := Tree{Dirs: map[string]Tree{}}
	sorted := append([]string(nil), ids...)
	sort.Strings(sorted)
	for _, id := range sorted {
		root = root.insert(id, strings.Split(id, PathSeparator))
	}
	return root
}

func (t Tree) insert(id string, segments []string) Tree {
	if t.Dirs == nil {
		t.Dirs = map[string]Tree{}
	}
	if len(segments) <= 1 {
		t.IDs = append(t.IDs, id)
		return t
	}
	t.Dirs[segments[0]] = t.Dirs[segments[0]].insert(id, segments[1:])
	return t
}

// Contains reports whether id is a leaf anywhere in the tree.
func (t Tree) Contains(id string) bool {
	node := t
	segments := strings.Split(id, PathSeparator)
	for _, seg := range segments[:len(segments)-1] {
		child, ok := node.Dirs[seg]
		if !ok {
			return false
		}
		node = child
	}
	for _, leaf := range node.IDs {
		if leaf == id {
			return true
		}
	}
	return false
}

// Subtree returns the directory at dir ("" is the root).
func (t Tree) Subtree(dir string) (Tree, bool) {
	if dir == "" {
		return t, true
	}
	node := t
	for _, seg := range strings.Split(dir, PathSeparator) {
		child, ok := node.Dirs[seg]
		if !ok {
			return Tree{}, false
		}
		node = child
	}
	return node, true
}

// DirNames returns the directory segments at this level, sorted.
func (t Tree) DirNames() []string {
	names := make([]string, 0, len(t.Dirs))
	for name := range t.Dirs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Leaves returns every id in the tree, depth first.
func (t Tree) Leaves() []string {
	out := append([]string(nil), t.IDs...)
	for _, name := range t.DirNames() {
		out = append(out, t.Dirs[name].Leaves()...)
	}
	return out
}

// DirPaths returns the full path of every directory in the tree, depth
// first.
func (t Tree) DirPaths() []string {
	var out []string
	var walk func(prefix string, node Tree)
	walk = func(prefix string, node Tree) {
		for _, name := range node.DirNames() {
			path := JoinPath(prefix, name)
			out = append(out, path)
			walk(path, node.Dirs[name])
		}
	}
	walk("", t)
	return out
}

// Dirname returns everything before the last separator.
func Dirname(id string) string {
	i := strings.LastIndex(id, PathSeparator)
	if i < 0 {
		return ""
	}
	return id[:i]
}

// Basename returns the leaf label of id.
func Basename(id string) string {
	return id[strings.LastIndex(id, PathSeparator)+1:]
}

// JoinPath joins a directory and a leaf name.
func JoinPath(dir, name string) string {
	if dir == "" {
		return name
	}
	return dir + PathSeparator + name
}

// DropPosition is where a dragged node lands relative to the target node.
type DropPosition string

const (
	DropBefore DropPosition = "before"
	DropAfter  DropPosition = "after"
	DropInside DropPosition = "inside"
)

// ReparentTarget computes the id a dragged node gets when dropped on target.
// Before/after moves it next to target; inside moves it under target.
func ReparentTarget(dragID, targetID string, pos DropPosition) (string, error) {
	switch pos {
	case DropBefore, DropAfter:
		return JoinPath(Dirname(targetID), Basename(dragID)), nil
	case DropInside:
		if targetID == dragID || strings.HasPrefix(targetID, dragID+PathSeparator) {
			return "", fmt.Errorf("cannot move %q inside itself", dragID)
		}
		return JoinPath(targetID, Basename(dragID)), nil
	default:
		return "", fmt.Errorf("unknown drop position %q", pos)
	}
}
