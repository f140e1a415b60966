// Package family defines the genealogy data model shared by every kintree
// component.
//
// # Members and Stubs
//
// A [Member] is a working record assembled from a data store before any tree
// computation runs. Its relationships are held as [Stub] values: shallow
// references carrying only an identifier, a name and a gender. Stubs may be
// incomplete or asymmetric as received (A lists B as spouse but B does not
// list A); the transform package repairs what it needs to.
//
// # Ordered Sets
//
// Tree reconstruction must be reproducible, so members are never iterated in
// Go map order. A [Set] keeps the insertion order of its members next to an
// id index:
//
//	s := family.NewSet(members)
//	for _, m := range s.Members() {
//	    // always the order members were added in
//	}
//
// # Families
//
// A [Family] owns its members through [Membership] entries carrying a role.
// Families may be branches of a parent family (ParentID), which is how
// sub-family trees are grouped.
package family
