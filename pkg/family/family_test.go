package family

import "testing"

func TestParseGender(t *testing.T) {
	tests := []struct {
		in   string
		want Gender
	}{
		{"MALE", GenderMale},
		{"male", GenderMale},
		{"F", GenderFemale},
		{" Female ", GenderFemale},
		{"other", GenderOther},
		{"", GenderUnknown},
		{"unknown", GenderUnknown},
		{"x", GenderUnknown},
	}
	for _, tt := range tests {
		if got := ParseGender(tt.in); got != tt.want {
			t.Errorf("ParseGender(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSetOrderAndDuplicates(t *testing.T) {
	s := NewSet([]*Member{
		{ID: "b", Name: "Bea"},
		{ID: "a", Name: "Al"},
		nil,
		{ID: ""},
		{ID: "b", Name: "Duplicate"},
	})

	if s.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", s.Len())
	}
	ids := s.IDs()
	if ids[0] != "b" || ids[1] != "a" {
		t.Errorf("IDs() = %v, want [b a]", ids)
	}
	m, ok := s.Get("b")
	if !ok || m.Name != "Bea" {
		t.Errorf("Get(b) = %v, want first occurrence", m)
	}
	if s.Has("c") {
		t.Error("Has(c) = true, want false")
	}
}

func TestSetCloneIsDeep(t *testing.T) {
	s := NewSet([]*Member{{ID: "a", Spouses: []Stub{{ID: "b"}}}})
	c := s.Clone()

	m, _ := c.Get("a")
	m.Spouses = append(m.Spouses, Stub{ID: "c"})
	m.Name = "changed"

	orig, _ := s.Get("a")
	if len(orig.Spouses) != 1 || orig.Name != "" {
		t.Errorf("Clone shares state with original: %+v", orig)
	}
}

func TestFamilyMembersAndRoles(t *testing.T) {
	f := &Family{
		ID: "f1",
		Memberships: []Membership{
			{Member: &Member{ID: "a"}, Role: RoleAdmin},
			{Member: nil},
			{Member: &Member{ID: "b"}, Role: RoleMember},
		},
	}

	if got := len(f.Members()); got != 2 {
		t.Errorf("Members() len = %d, want 2", got)
	}
	if role, ok := f.Role("a"); !ok || role != RoleAdmin {
		t.Errorf("Role(a) = %q, %v", role, ok)
	}
	if f.IsMember("z") {
		t.Error("IsMember(z) = true, want false")
	}
}

func TestFamilyBranches(t *testing.T) {
	root := &Family{ID: "root"}
	all := []*Family{root, {ID: "b1", ParentID: "root"}, {ID: "x"}, {ID: "b2", ParentID: "root"}}

	branches := root.Branches(all)
	if len(branches) != 2 || branches[0].ID != "b1" || branches[1].ID != "b2" {
		t.Errorf("Branches() = %v", branches)
	}
}
