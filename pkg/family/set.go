package family

// Set is an ordered collection of members indexed by id.
//
// Iteration order is the order members were added in, which is what makes
// every tree computation over a Set reproducible. The zero value is not
// usable; create sets with NewSet.
type Set struct {
	order []string
	byID  map[string]*Member
}

// NewSet builds a set from members. Nil members and members with an empty id
// are skipped; when ids repeat, the first occurrence wins.
func NewSet(members []*Member) *Set {
	s := &Set{byID: make(map[string]*Member, len(members))}
	for _, m := range members {
		s.Add(m)
	}
	return s
}

// Add appends m unless it is nil, has no id, or its id is already present.
// It reports whether m was added.
func (s *Set) Add(m *Member) bool {
	if m == nil || m.ID == "" {
		return false
	}
	if _, ok := s.byID[m.ID]; ok {
		return false
	}
	s.order = append(s.order, m.ID)
	s.byID[m.ID] = m
	return true
}

// Get returns the member with the given id.
func (s *Set) Get(id string) (*Member, bool) {
	m, ok := s.byID[id]
	return m, ok
}

// Has reports whether id is in the set.
func (s *Set) Has(id string) bool {
	_, ok := s.byID[id]
	return ok
}

// Len returns the number of members.
func (s *Set) Len() int { return len(s.order) }

// IDs returns member ids in insertion order. The slice is a copy.
func (s *Set) IDs() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Members returns members in insertion order. The pointers are shared with
// the set, so modifications are visible through it.
func (s *Set) Members() []*Member {
	out := make([]*Member, len(s.order))
	for i, id := range s.order {
		out[i] = s.byID[id]
	}
	return out
}

// Clone returns a set holding deep copies of every member, in the same order.
func (s *Set) Clone() *Set {
	c := &Set{
		order: make([]string, 0, len(s.order)),
		byID:  make(map[string]*Member, len(s.order)),
	}
	for _, id := range s.order {
		c.Add(s.byID[id].Clone())
	}
	return c
}
