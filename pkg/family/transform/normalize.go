package transform

import "github.com/matzehuels/kintree/pkg/family"

// NormalizeSpouses makes spouse relationships symmetric within s.
//
// For every member A listing B as spouse, where B is in the set and does not
// list A back, a minimal stub {ID, Name, Gender} of A is appended to B's
// spouse list. Spouse stubs referencing ids outside the set are skipped. No
// other field is touched. The set is modified in place; it returns the number
// of stubs added.
func NormalizeSpouses(s *family.Set) int {
	added := 0
	for _, m := range s.Members() {
		for _, sp := range m.Spouses {
			if sp.ID == m.ID {
				continue
			}
			target, ok := s.Get(sp.ID)
			if !ok || target.HasSpouse(m.ID) {
				continue
			}
			target.Spouses = append(target.Spouses, family.Stub{
				ID:     m.ID,
				Name:   m.Name,
				Gender: m.Gender,
			})
			added++
		}
	}
	return added
}
