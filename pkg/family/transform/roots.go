package transform

import (
	"slices"
	"strings"

	"github.com/matzehuels/kintree/pkg/family"
)

// RepresentativePolicy selects which partner of a root couple stands for the
// couple in the root list.
type RepresentativePolicy int

const (
	// PreferMale picks the MALE partner, falling back to the first partner
	// encountered when neither or both are MALE.
	PreferMale RepresentativePolicy = iota
	// PreferFirst always picks the first partner encountered.
	PreferFirst
)

// String returns the config name of p: "male" or "first".
func (p RepresentativePolicy) String() string {
	if p == PreferFirst {
		return "first"
	}
	return "male"
}

// ParsePolicy parses a config name. The empty string selects PreferMale.
func ParsePolicy(s string) (RepresentativePolicy, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "male":
		return PreferMale, true
	case "first":
		return PreferFirst, true
	}
	return PreferMale, false
}

// RootOptions configures ResolveRoots.
type RootOptions struct {
	Policy   RepresentativePolicy
	Collator *Collator // nil uses the root collation order
}

// ResolveRoots returns the root ancestors of s, one representative per root
// couple, sorted by name.
//
// A member is a potential root when it has no indexed parents and is not
// isolated (it has an in-set child or an in-set spouse). Isolated members are
// never roots; the outline lists them with the other leftovers. A potential
// root is dropped when one of its spouses has indexed parents, since that
// spouse's lineage places the couple. Remaining roots that are married to
// each other collapse to a single representative chosen by opts.Policy.
//
// An empty result means no hierarchy could be detected.
func ResolveRoots(s *family.Set, idx *Index, opts RootOptions) []*family.Member {
	var potential []*family.Member
	for _, m := range s.Members() {
		if idx.HasParents(m.ID) {
			continue
		}
		if !idx.HasChildren(m.ID) && !hasSpouseIn(s, m) {
			continue
		}
		potential = append(potential, m)
	}

	var trueRoots []*family.Member
	isTrueRoot := make(map[string]bool)
	for _, m := range potential {
		if marriedIntoLineage(s, idx, m) {
			continue
		}
		trueRoots = append(trueRoots, m)
		isTrueRoot[m.ID] = true
	}

	processed := make(map[string]bool, len(trueRoots))
	var roots []*family.Member
	for _, m := range trueRoots {
		if processed[m.ID] {
			continue
		}
		processed[m.ID] = true

		var partners []*family.Member
		for _, sp := range m.Spouses {
			if !isTrueRoot[sp.ID] || processed[sp.ID] {
				continue
			}
			partner, _ := s.Get(sp.ID)
			partners = append(partners, partner)
			processed[sp.ID] = true
		}
		roots = append(roots, representative(m, partners, opts.Policy))
	}

	c := collatorOrDefault(opts.Collator)
	slices.SortStableFunc(roots, c.CompareMembers)
	return roots
}

func representative(first *family.Member, partners []*family.Member, policy RepresentativePolicy) *family.Member {
	if policy == PreferFirst || first.Gender.IsMale() {
		return first
	}
	for _, p := range partners {
		if p.Gender.IsMale() {
			return p
		}
	}
	return first
}

func hasSpouseIn(s *family.Set, m *family.Member) bool {
	for _, sp := range m.Spouses {
		if sp.ID != m.ID && s.Has(sp.ID) {
			return true
		}
	}
	return false
}

func marriedIntoLineage(s *family.Set, idx *Index, m *family.Member) bool {
	for _, sp := range m.Spouses {
		if sp.ID == m.ID || !s.Has(sp.ID) {
			continue
		}
		if idx.HasParents(sp.ID) {
			return true
		}
	}
	return false
}
