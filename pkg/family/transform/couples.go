package transform

import (
	"slices"

	"github.com/matzehuels/kintree/pkg/family"
)

// Couple is an undirected spousal pair.
//
// Partners keeps the order the pair was first encountered in; Key is
// independent of that order so the same pair always has the same key.
type Couple struct {
	Partners [2]string
	Spouse   family.Stub // the stub through which the pair was found
	Shared   []string    // children of both partners, in Partners[0]'s order
}

// Key returns the canonical "lo_hi" key of the pair.
func (c *Couple) Key() string { return CoupleKey(c.Partners[0], c.Partners[1]) }

// LedBy reports whether id is the partner the pair was first found through.
func (c *Couple) LedBy(id string) bool { return c.Partners[0] == id }

// Partner returns the other partner of id. It returns "" when id is not in c.
func (c *Couple) Partner(id string) string {
	switch id {
	case c.Partners[0]:
		return c.Partners[1]
	case c.Partners[1]:
		return c.Partners[0]
	}
	return ""
}

// CoupleKey returns the order-independent key for the pair (a, b).
func CoupleKey(a, b string) string {
	p := pairOf(a, b)
	return p[0] + "_" + p[1]
}

// pair is the lookup key. Unlike CoupleKey it stays unambiguous for ids
// containing "_".
type pair [2]string

func pairOf(a, b string) pair {
	if b < a {
		a, b = b, a
	}
	return pair{a, b}
}

// Couples is the ordered set of couples found in a working set.
type Couples struct {
	all   []*Couple
	byKey map[pair]*Couple
}

// IdentifyCouples scans every member's spouse list and records each pair of
// in-set members once. Self-references and spouses outside the set are
// ignored. Shared children are the intersection of both partners' indexed
// children.
func IdentifyCouples(s *family.Set, idx *Index) *Couples {
	cs := &Couples{byKey: make(map[pair]*Couple)}
	for _, m := range s.Members() {
		for _, sp := range m.Spouses {
			if sp.ID == m.ID || !s.Has(sp.ID) {
				continue
			}
			key := pairOf(m.ID, sp.ID)
			if _, seen := cs.byKey[key]; seen {
				continue
			}

			other := idx.Children(sp.ID)
			var shared []string
			for _, child := range idx.Children(m.ID) {
				if slices.Contains(other, child) {
					shared = append(shared, child)
				}
			}

			c := &Couple{Partners: [2]string{m.ID, sp.ID}, Spouse: sp, Shared: shared}
			cs.all = append(cs.all, c)
			cs.byKey[key] = c
		}
	}
	return cs
}

// All returns every couple in discovery order.
func (cs *Couples) All() []*Couple { return cs.all }

// WithChildren returns the couples that share at least one child, in
// discovery order.
func (cs *Couples) WithChildren() []*Couple {
	var out []*Couple
	for _, c := range cs.all {
		if len(c.Shared) > 0 {
			out = append(out, c)
		}
	}
	return out
}

// Lookup returns the couple formed by a and b, in either order.
func (cs *Couples) Lookup(a, b string) (*Couple, bool) {
	c, ok := cs.byKey[pairOf(a, b)]
	return c, ok
}

// Keys returns the canonical keys in discovery order.
func (cs *Couples) Keys() []string {
	keys := make([]string, len(cs.all))
	for i, c := range cs.all {
		keys[i] = c.Key()
	}
	return keys
}

// Len returns the number of couples.
func (cs *Couples) Len() int { return len(cs.all) }
