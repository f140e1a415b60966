package transform

import (
	"maps"

	"github.com/matzehuels/kintree/pkg/family"
)

// Generations maps member ids to their generation below the nearest root.
// Ids never reached from a root are absent.
type Generations map[string]int

// Of returns the generation of id, defaulting to 0 for unreached members.
func (g Generations) Of(id string) int { return g[id] }

// Reached reports whether id was reached from at least one root.
func (g Generations) Reached(id string) bool {
	_, ok := g[id]
	return ok
}

// Apply writes the generations onto the members of s. Unreached members get 0.
func (g Generations) Apply(s *family.Set) {
	for _, m := range s.Members() {
		m.Generation = g[m.ID]
	}
}

// AssignGenerations computes, for every member reachable from roots through
// idx, the minimum number of parent→child edges from any root.
//
// Each root starts at 0. A later visit with a smaller generation overwrites an
// earlier one and is propagated again; an equal or larger one is ignored. The
// visited set is path-local: it is copied for every child, so a member reached
// through two independent routes is still explored for the shorter one, while
// a cycle back to an ancestor on the same path ends that branch.
func AssignGenerations(roots []*family.Member, idx *Index) Generations {
	gens := make(Generations)

	var walk func(id string, gen int, path map[string]bool)
	walk = func(id string, gen int, path map[string]bool) {
		if path[id] {
			return
		}
		if prev, ok := gens[id]; ok && prev <= gen {
			return
		}
		gens[id] = gen

		next := maps.Clone(path)
		next[id] = true
		for _, child := range idx.Children(id) {
			walk(child, gen+1, next)
		}
	}

	for _, r := range roots {
		walk(r.ID, 0, map[string]bool{})
	}
	return gens
}
