package transform

import (
	"slices"

	"github.com/matzehuels/kintree/pkg/family"
)

// Index holds the parent/child relationships of a working set in both
// directions. Lists are deduplicated and keep first-seen order.
type Index struct {
	parentToChildren map[string][]string
	childToParents   map[string][]string
}

// BuildIndex scans every member's Children and Parents lists and records each
// edge whose endpoints are both in s. Edges found from either side are merged,
// so a child listed only on the parent (or only a parent listed on the child)
// is still indexed in both directions.
func BuildIndex(s *family.Set) *Index {
	idx := &Index{
		parentToChildren: make(map[string][]string),
		childToParents:   make(map[string][]string),
	}
	for _, m := range s.Members() {
		for _, c := range m.Children {
			if s.Has(c.ID) {
				idx.addEdge(m.ID, c.ID)
			}
		}
		for _, p := range m.Parents {
			if s.Has(p.ID) {
				idx.addEdge(p.ID, m.ID)
			}
		}
	}
	return idx
}

func (idx *Index) addEdge(parent, child string) {
	if !slices.Contains(idx.parentToChildren[parent], child) {
		idx.parentToChildren[parent] = append(idx.parentToChildren[parent], child)
	}
	if !slices.Contains(idx.childToParents[child], parent) {
		idx.childToParents[child] = append(idx.childToParents[child], parent)
	}
}

// Children returns the indexed children of id. The slice must not be modified.
func (idx *Index) Children(id string) []string { return idx.parentToChildren[id] }

// Parents returns the indexed parents of id. The slice must not be modified.
func (idx *Index) Parents(id string) []string { return idx.childToParents[id] }

// HasParents reports whether id has at least one indexed parent.
func (idx *Index) HasParents(id string) bool { return len(idx.childToParents[id]) > 0 }

// HasChildren reports whether id has at least one indexed child.
func (idx *Index) HasChildren(id string) bool { return len(idx.parentToChildren[id]) > 0 }

// EdgeCount returns the number of distinct parent→child edges.
func (idx *Index) EdgeCount() int {
	n := 0
	for _, children := range idx.parentToChildren {
		n += len(children)
	}
	return n
}
