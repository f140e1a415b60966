// Package folders expands families into per-family member lists.
//
// A folder holds a family's own members plus the people its members married
// from other families and those spouses' children, each tagged with a
// generation computed from parent chains across every family. Folders are
// the usual input of a single-family outline.
package folders

import (
	"cmp"
	"maps"
	"slices"

	"github.com/matzehuels/kintree/pkg/family"
	"github.com/matzehuels/kintree/pkg/family/transform"
)

// Kind says how an entry got into a folder.
type Kind string

const (
	KindDirect      Kind = "direct"       // enrolled in the family
	KindSpouse      Kind = "spouse"       // married to a direct member, enrolled elsewhere
	KindSpouseChild Kind = "spouse-child" // child of such a spouse
)

// Entry is one member of a folder.
type Entry struct {
	Member *family.Member `json:"member"`
	Role   string         `json:"role,omitempty"`
	Kind   Kind           `json:"kind"`
	Source string         `json:"source"` // id of the family the record was taken from
}

// Folder is the expanded member list of one family.
type Folder struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	ParentID string   `json:"parentId,omitempty"`
	Entries  []Entry  `json:"members"`
	Linked   []string `json:"linked,omitempty"` // families reached through marriages
}

// Members returns the folder's member records in folder order.
func (f *Folder) Members() []*family.Member {
	out := make([]*family.Member, len(f.Entries))
	for i, e := range f.Entries {
		out[i] = e.Member
	}
	return out
}

// Entry returns the entry for id.
func (f *Folder) Entry(id string) (Entry, bool) {
	for _, e := range f.Entries {
		if e.Member.ID == id {
			return e, true
		}
	}
	return Entry{}, false
}

// Transform builds one folder per family, in input order.
//
// Each direct member gets generation 1 + the largest generation among its
// parents, where parents are looked up across all families. A member without
// parents is generation 0, and so is a parent that cannot be located. The
// recursion carries a path-local visited set; a parent already on the path
// counts as generation 0, which ends cycles.
//
// Spouses enrolled only in other families join the folder at their partner's
// generation, and their locatable children one generation below. Entries are
// sorted by generation, then name. Records in the result are copies; the
// input families are not modified.
func Transform(families []*family.Family) []Folder {
	t := newTransformer(families)
	out := make([]Folder, 0, len(families))
	for _, f := range families {
		if f == nil {
			continue
		}
		out = append(out, t.folder(f))
	}
	return out
}

type located struct {
	member *family.Member
	source string
}

type transformer struct {
	lookup   map[string]located
	memo     map[string]int
	collator *transform.Collator
}

func newTransformer(families []*family.Family) *transformer {
	t := &transformer{
		lookup:   make(map[string]located),
		memo:     make(map[string]int),
		collator: transform.ParseCollator(""),
	}
	for _, f := range families {
		if f == nil {
			continue
		}
		for _, m := range f.Members() {
			if _, seen := t.lookup[m.ID]; !seen {
				t.lookup[m.ID] = located{member: m, source: f.ID}
			}
		}
	}
	return t
}

// generation returns the parent-chain generation of id.
func (t *transformer) generation(id string) int {
	gen, _ := t.chain(id, map[string]bool{})
	return gen
}

// chain computes the generation of id along path. It reports false when a
// parent was cut off because it already lies on path; such a value depends
// on where the walk started and is not memoised.
func (t *transformer) chain(id string, path map[string]bool) (int, bool) {
	if gen, ok := t.memo[id]; ok {
		return gen, true
	}
	if path[id] {
		return 0, false
	}
	loc, ok := t.lookup[id]
	if !ok || len(loc.member.Parents) == 0 {
		t.memo[id] = 0
		return 0, true
	}

	next := maps.Clone(path)
	next[id] = true

	gen, complete := 0, true
	for _, p := range loc.member.Parents {
		pg, ok := t.chain(p.ID, next)
		gen = max(gen, pg+1)
		complete = complete && ok
	}
	if complete {
		t.memo[id] = gen
	}
	return gen, complete
}

func (t *transformer) folder(f *family.Family) Folder {
	out := Folder{ID: f.ID, Name: f.Name, ParentID: f.ParentID}
	included := make(map[string]bool)

	add := func(m *family.Member, gen int, e Entry) {
		c := m.Clone()
		c.Generation = gen
		e.Member = c
		out.Entries = append(out.Entries, e)
		included[m.ID] = true
	}

	for _, ms := range f.Memberships {
		if ms.Member == nil || included[ms.Member.ID] {
			continue
		}
		gen := t.generation(ms.Member.ID)
		add(ms.Member, gen, Entry{Role: ms.Role, Kind: KindDirect, Source: f.ID})
	}

	direct := len(out.Entries)
	for i := 0; i < direct; i++ {
		m := out.Entries[i].Member
		for _, sp := range m.Spouses {
			if included[sp.ID] || sp.ID == m.ID {
				continue
			}
			loc, ok := t.lookup[sp.ID]
			if !ok {
				continue
			}
			add(loc.member, m.Generation, Entry{Kind: KindSpouse, Source: loc.source})
			if loc.source != f.ID && !slices.Contains(out.Linked, loc.source) {
				out.Linked = append(out.Linked, loc.source)
			}

			for _, ch := range loc.member.Children {
				if included[ch.ID] {
					continue
				}
				if kid, ok := t.lookup[ch.ID]; ok {
					add(kid.member, m.Generation+1, Entry{Kind: KindSpouseChild, Source: kid.source})
				}
			}
		}
	}

	slices.SortStableFunc(out.Entries, func(a, b Entry) int {
		if r := cmp.Compare(a.Member.Generation, b.Member.Generation); r != 0 {
			return r
		}
		return t.collator.CompareMembers(a.Member, b.Member)
	})
	return out
}
