// Package layout turns outline rows into presentation structures: a
// collapsible tree for interactive browsing and boxes with pixel coordinates
// for drawing.
//
// Both are computed from the row contract alone, so they work on rows read
// back from JSON as well as on a fresh build.
package layout

import (
	"github.com/matzehuels/kintree/pkg/outline"
)

// Node is one row in the collapsible tree.
type Node struct {
	Row       outline.Row
	Index     int // position in the source rows
	Depth     int // nesting level within the tree
	Children  []*Node
	Collapsed bool
}

// IsSection reports whether n is a section header.
func (n *Node) IsSection() bool { return n.Row.IsHeader() }

// Tree is the forest of nodes built from outline rows.
type Tree struct {
	Roots []*Node
}

// BuildTree nests rows by column: each row becomes a child of the nearest
// preceding row with a smaller column. Separators are dropped. A section
// header starts a new top-level node and the rows after it are listed flat
// beneath it, since those rows are not connected to each other.
func BuildTree(rows []outline.Row) *Tree {
	t := &Tree{}
	var stack []*Node
	var section *Node

	for i, r := range rows {
		switch {
		case r.IsSeparator():
			stack = stack[:0]
			continue
		case r.IsHeader():
			section = &Node{Row: r, Index: i}
			t.Roots = append(t.Roots, section)
			stack = stack[:0]
			continue
		}

		n := &Node{Row: r, Index: i}
		if section != nil {
			n.Depth = 1
			section.Children = append(section.Children, n)
			continue
		}

		for len(stack) > 0 && stack[len(stack)-1].Row.Column >= r.Column {
			stack = stack[:len(stack)-1]
		}
		if len(stack) == 0 {
			t.Roots = append(t.Roots, n)
		} else {
			parent := stack[len(stack)-1]
			n.Depth = parent.Depth + 1
			parent.Children = append(parent.Children, n)
		}
		stack = append(stack, n)
	}
	return t
}

// Visible returns the nodes shown when collapsed nodes hide their subtrees,
// in display order.
func (t *Tree) Visible() []*Node {
	var out []*Node
	var walk func(ns []*Node)
	walk = func(ns []*Node) {
		for _, n := range ns {
			out = append(out, n)
			if !n.Collapsed {
				walk(n.Children)
			}
		}
	}
	walk(t.Roots)
	return out
}

// Walk calls fn for every node in depth-first order.
func (t *Tree) Walk(fn func(*Node)) {
	var walk func(ns []*Node)
	walk = func(ns []*Node) {
		for _, n := range ns {
			fn(n)
			walk(n.Children)
		}
	}
	walk(t.Roots)
}

// Toggle flips n between collapsed and expanded. Leaves stay expanded.
func (t *Tree) Toggle(n *Node) {
	if len(n.Children) > 0 {
		n.Collapsed = !n.Collapsed
	}
}

// CollapseBelow collapses every node at depth >= depth that has children and
// expands the rest.
func (t *Tree) CollapseBelow(depth int) {
	t.Walk(func(n *Node) {
		n.Collapsed = len(n.Children) > 0 && n.Depth >= depth
	})
}

// ExpandAll expands every node.
func (t *Tree) ExpandAll() {
	t.Walk(func(n *Node) { n.Collapsed = false })
}

// Size returns the number of nodes in the tree.
func (t *Tree) Size() int {
	n := 0
	t.Walk(func(*Node) { n++ })
	return n
}
