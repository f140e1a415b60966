// Package transform implements the analysis passes that turn a flat,
// denormalized member list into the structures the outline builder walks.
//
// # Overview
//
// Member records arrive from stores with asymmetric and partially dangling
// relationship lists. The passes in this package run in a fixed order over a
// [family.Set]:
//
//  1. [NormalizeSpouses] makes every in-set spouse link bidirectional
//  2. [AssignColors] gives each member a color token and records parent colors
//  3. [BuildIndex] derives parent→children and child→parents indices
//  4. [ResolveRoots] picks the root ancestors and merges root couples
//  5. [AssignGenerations] computes the minimum generation below the roots
//  6. [IdentifyCouples] groups spouses into undirected couples with shared children
//
// Steps 4–5 and step 6 read the same index and are independent of each other.
//
// # Working Sets
//
// Every pass is restricted to the working set: relationship stubs pointing at
// ids outside the set are kept on the member records but never indexed,
// traversed or colored from.
//
// # Cycles
//
// Genealogy data is not guaranteed to be acyclic (data entry mistakes produce
// members who are their own ancestors). [AssignGenerations] carries a
// path-local visited set, so a member reachable through two different routes
// is still explored for the shorter one while a loop back to an ancestor on
// the same path terminates. This is deliberately different from the global
// visit-once set used by the outline walker.
//
// # Usage
//
//	set := family.NewSet(members)
//	transform.NormalizeSpouses(set)
//	transform.AssignColors(set, nil)
//	idx := transform.BuildIndex(set)
//	roots := transform.ResolveRoots(set, idx, transform.RootOptions{})
//	gens := transform.AssignGenerations(roots, idx)
//	gens.Apply(set)
//	couples := transform.IdentifyCouples(set, idx)
package transform
