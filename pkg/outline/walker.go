package outline

import (
	"cmp"
	"slices"
	"strings"

	"github.com/matzehuels/kintree/pkg/family"
	"github.com/matzehuels/kintree/pkg/family/transform"
)

// walker holds the shared state of one outline traversal.
//
// visited is global to the walk: once a member is placed on a row it is never
// placed again, whichever path reaches it next. This differs on purpose from
// transform.AssignGenerations, whose visited set is path-local.
type walker struct {
	set      *family.Set
	idx      *transform.Index
	couples  *transform.Couples
	collator *transform.Collator
	maxDepth int
	label    string

	visited map[string]bool
}

func newWalker(set *family.Set, idx *transform.Index, couples *transform.Couples, c *transform.Collator, maxDepth int, label string) *walker {
	return &walker{
		set:      set,
		idx:      idx,
		couples:  couples,
		collator: c,
		maxDepth: maxDepth,
		label:    label,
		visited:  make(map[string]bool, set.Len()),
	}
}

// visit emits the row for id and the rows of its descendants.
func (w *walker) visit(id string, generation, depth int) []Row {
	if w.visited[id] || depth > w.maxDepth {
		return nil
	}
	m, ok := w.set.Get(id)
	if !ok {
		return nil
	}

	// Couples are led by the partner found first; the other partner reaches
	// them only through a group row.
	if c := w.ledCouple(m.ID, w.couples.WithChildren()); c != nil {
		spouse, _ := w.set.Get(c.Partners[1])
		return w.coupleRow(m, spouse, c.Shared, generation, depth)
	}
	if c := w.ledCouple(m.ID, w.couples.All()); c != nil {
		spouse, _ := w.set.Get(c.Partners[1])
		return w.coupleRow(m, spouse, w.union(m.ID, spouse.ID), generation, depth)
	}
	if spouses := w.pendingSpouses(m); len(spouses) > 0 {
		return w.groupRow(m, spouses, generation, depth)
	}
	return w.individualRow(m, generation, depth, true)
}

// ledCouple returns the first couple in cs led by id whose other partner is
// still unplaced.
func (w *walker) ledCouple(id string, cs []*transform.Couple) *transform.Couple {
	for _, c := range cs {
		if c.LedBy(id) && !w.visited[c.Partners[1]] {
			return c
		}
	}
	return nil
}

// pendingSpouses returns m's unplaced spouses within the working set, in
// spouse-list order.
func (w *walker) pendingSpouses(m *family.Member) []*family.Member {
	var out []*family.Member
	for _, sp := range m.Spouses {
		if sp.ID == m.ID || w.visited[sp.ID] {
			continue
		}
		if s, ok := w.set.Get(sp.ID); ok && !slices.Contains(out, s) {
			out = append(out, s)
		}
	}
	return out
}

func (w *walker) coupleRow(m, spouse *family.Member, kids []string, generation, depth int) []Row {
	w.visited[m.ID] = true
	w.visited[spouse.ID] = true

	value := memberDisplay(m, true) + CoupleJoin + memberDisplay(spouse, false)
	row := Row{
		Column:    generation,
		Value:     withLabel(value, w.label, generation),
		MemberIDs: []MemberRef{refOf(m), refOf(spouse)},
	}
	return append([]Row{row}, w.descend(kids, generation, depth)...)
}

func (w *walker) groupRow(m *family.Member, spouses []*family.Member, generation, depth int) []Row {
	w.visited[m.ID] = true
	parts := []string{memberDisplay(m, true)}
	refs := []MemberRef{refOf(m)}
	ids := []string{m.ID}
	for _, s := range spouses {
		w.visited[s.ID] = true
		parts = append(parts, memberDisplay(s, false))
		refs = append(refs, refOf(s))
		ids = append(ids, s.ID)
	}
	row := Row{
		Column:    generation,
		Value:     withLabel(strings.Join(parts, GroupJoin), w.label, generation),
		MemberIDs: refs,
	}
	return append([]Row{row}, w.descend(w.union(ids...), generation, depth)...)
}

// individualRow places m alone. Spouses already placed are named for context
// only. Children are visited when recurse is set.
func (w *walker) individualRow(m *family.Member, generation, depth int, recurse bool) []Row {
	w.visited[m.ID] = true

	value := memberDisplay(m, true)
	var placed []string
	for _, sp := range m.Spouses {
		if sp.ID == m.ID || !w.visited[sp.ID] {
			continue
		}
		if s, ok := w.set.Get(sp.ID); ok {
			placed = append(placed, s.Name)
		}
	}
	if len(placed) > 0 {
		value += CoupleJoin + strings.Join(placed, ", ")
	}

	rows := []Row{{
		Column:    generation,
		Value:     withLabel(value, w.label, generation),
		MemberIDs: []MemberRef{refOf(m)},
	}}
	if recurse {
		rows = append(rows, w.descend(w.idx.Children(m.ID), generation, depth)...)
	}
	return rows
}

// descend visits the unplaced ids in child order one generation down.
func (w *walker) descend(ids []string, generation, depth int) []Row {
	var rows []Row
	for _, child := range w.sortChildren(ids) {
		rows = append(rows, w.visit(child.ID, generation+1, depth+1)...)
	}
	return rows
}

// union returns the indexed children of every id, deduplicated in first-seen
// order.
func (w *walker) union(ids ...string) []string {
	var out []string
	for _, id := range ids {
		for _, c := range w.idx.Children(id) {
			if !slices.Contains(out, c) {
				out = append(out, c)
			}
		}
	}
	return out
}

// sortChildren resolves the unplaced ids and orders them by generation, then
// name.
func (w *walker) sortChildren(ids []string) []*family.Member {
	var kids []*family.Member
	for _, id := range ids {
		if w.visited[id] {
			continue
		}
		if m, ok := w.set.Get(id); ok {
			kids = append(kids, m)
		}
	}
	slices.SortStableFunc(kids, w.compareByGeneration)
	return kids
}

func (w *walker) compareByGeneration(a, b *family.Member) int {
	if r := cmp.Compare(a.Generation, b.Generation); r != 0 {
		return r
	}
	return w.collator.CompareMembers(a, b)
}

// unplaced returns the members never placed, in set order.
func (w *walker) unplaced() []*family.Member {
	var out []*family.Member
	for _, m := range w.set.Members() {
		if !w.visited[m.ID] {
			out = append(out, m)
		}
	}
	return out
}
