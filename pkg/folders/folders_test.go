package folders

import (
	"slices"
	"testing"

	"github.com/matzehuels/kintree/pkg/family"
)

func member(id string, parents ...string) *family.Member {
	m := &family.Member{ID: id, Name: id}
	for _, p := range parents {
		m.Parents = append(m.Parents, family.Stub{ID: p, Name: p})
	}
	return m
}

func enroll(id string, ms ...*family.Member) *family.Family {
	f := &family.Family{ID: id, Name: id}
	for _, m := range ms {
		f.Memberships = append(f.Memberships, family.Membership{Member: m, Role: family.RoleMember})
	}
	return f
}

func generations(f Folder) map[string]int {
	out := make(map[string]int)
	for _, e := range f.Entries {
		out[e.Member.ID] = e.Member.Generation
	}
	return out
}

func TestTransform_GenerationFromParents(t *testing.T) {
	fam := enroll("smith",
		member("carl", "anna", "bert"),
		member("anna"),
		member("bert"),
		member("dora", "carl"),
	)
	got := generations(Transform([]*family.Family{fam})[0])
	want := map[string]int{"anna": 0, "bert": 0, "carl": 1, "dora": 2}
	for id, g := range want {
		if got[id] != g {
			t.Errorf("generation(%s) = %d, want %d", id, got[id], g)
		}
	}
}

func TestTransform_TakesLongestParentChain(t *testing.T) {
	fam := enroll("f",
		member("root"),
		member("mid", "root"),
		member("kid", "root", "mid"),
	)
	if got := generations(Transform([]*family.Family{fam})[0])["kid"]; got != 2 {
		t.Errorf("generation(kid) = %d, want 2", got)
	}
}

func TestTransform_ParentsAcrossFamilies(t *testing.T) {
	elders := enroll("elders", member("gp"))
	young := enroll("young", member("kid", "gp"))
	folders := Transform([]*family.Family{elders, young})
	if got := generations(folders[1])["kid"]; got != 1 {
		t.Errorf("generation(kid) = %d, want 1", got)
	}
}

func TestTransform_UnlocatableParent(t *testing.T) {
	fam := enroll("f", member("orphan", "ghost"))
	if got := generations(Transform([]*family.Family{fam})[0])["orphan"]; got != 1 {
		t.Errorf("generation(orphan) = %d, want 1", got)
	}
}

func TestTransform_CycleTerminates(t *testing.T) {
	fam := enroll("f", member("a", "b"), member("b", "a"))
	f := Transform([]*family.Family{fam})[0]
	if len(f.Entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(f.Entries))
	}
}

func TestTransform_CycleDoesNotLeakAcrossStarts(t *testing.T) {
	// Each member is computed from its own starting point: b is not reused
	// with the value it got while a's chain was being walked.
	fam := enroll("f", member("a", "b"), member("b", "a"))
	got := generations(Transform([]*family.Family{fam})[0])
	if got["a"] != 2 || got["b"] != 2 {
		t.Errorf("generations = %v, want a=2 b=2", got)
	}

	// A member hanging off the cycle is memoised once complete.
	fam = enroll("f", member("a", "b"), member("b", "a"), member("root"), member("kid", "root"))
	got = generations(Transform([]*family.Family{fam})[0])
	if got["kid"] != 1 || got["root"] != 0 {
		t.Errorf("generations = %v, want root=0 kid=1", got)
	}
}

func TestTransform_CrossFamilySpouse(t *testing.T) {
	hans := member("hans", "opa")
	opa := member("opa")
	eva := member("eva")
	paul := member("paul")
	hans.Spouses = []family.Stub{{ID: "eva", Name: "eva"}}
	eva.Spouses = []family.Stub{{ID: "hans", Name: "hans"}}
	eva.Children = []family.Stub{{ID: "paul", Name: "paul"}}

	mueller := enroll("mueller", opa, hans)
	schmidt := enroll("schmidt", eva, paul)

	folders := Transform([]*family.Family{mueller, schmidt})
	f := folders[0]

	e, ok := f.Entry("eva")
	if !ok {
		t.Fatal("spouse from another family missing")
	}
	if e.Kind != KindSpouse || e.Source != "schmidt" || e.Member.Generation != 1 {
		t.Errorf("eva = %+v gen %d, want spouse from schmidt at generation 1", e, e.Member.Generation)
	}
	kid, ok := f.Entry("paul")
	if !ok || kid.Kind != KindSpouseChild || kid.Member.Generation != 2 {
		t.Errorf("paul = %+v, want spouse-child at generation 2", kid)
	}
	if !slices.Equal(f.Linked, []string{"schmidt"}) {
		t.Errorf("Linked = %v, want [schmidt]", f.Linked)
	}

	wantOrder := []string{"opa", "eva", "hans", "paul"}
	var order []string
	for _, m := range f.Members() {
		order = append(order, m.ID)
	}
	if !slices.Equal(order, wantOrder) {
		t.Errorf("order = %v, want %v", order, wantOrder)
	}
}

func TestTransform_KeepsRolesAndDoesNotMutate(t *testing.T) {
	m := member("a")
	m.Generation = 7
	fam := &family.Family{ID: "f", Memberships: []family.Membership{{Member: m, Role: family.RoleAdmin}}}

	f := Transform([]*family.Family{fam, nil})
	if len(f) != 1 {
		t.Fatalf("folders = %d, want 1", len(f))
	}
	if e, _ := f[0].Entry("a"); e.Role != family.RoleAdmin || e.Kind != KindDirect {
		t.Errorf("entry = %+v, want direct ADMIN", e)
	}
	if m.Generation != 7 {
		t.Errorf("input generation changed to %d", m.Generation)
	}
}
