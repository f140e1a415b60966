package outline

import (
	"fmt"
	"reflect"
	"slices"
	"strings"
	"testing"

	"github.com/matzehuels/kintree/pkg/errors"
	"github.com/matzehuels/kintree/pkg/family"
	"github.com/matzehuels/kintree/pkg/family/transform"
)

func person(id, name string, g family.Gender) *family.Member {
	return &family.Member{ID: id, Name: name, Gender: g, Color: "#" + fmt.Sprintf("%06x", len(id)*4099+int(id[0]))}
}

func ref(m *family.Member) family.Stub { return m.Stub() }

func marry(a, b *family.Member) {
	a.Spouses = append(a.Spouses, ref(b))
	b.Spouses = append(b.Spouses, ref(a))
}

func parent(p, c *family.Member) {
	p.Children = append(p.Children, ref(c))
	c.Parents = append(c.Parents, ref(p))
}

func build(t *testing.T, ms []*family.Member, opts Options) *Result {
	t.Helper()
	res, err := Build(ms, opts)
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	return res
}

func assertPlacedOnce(t *testing.T, res *Result, ms []*family.Member) {
	t.Helper()
	counts := make(map[string]int)
	for _, id := range MemberIDs(res.Rows) {
		counts[id]++
	}
	for _, m := range ms {
		if counts[m.ID] != 1 {
			t.Errorf("member %s placed %d times, want 1", m.ID, counts[m.ID])
		}
	}
	if len(counts) != len(ms) {
		t.Errorf("placed %d distinct members, want %d", len(counts), len(ms))
	}
}

func TestBuild_NuclearFamily(t *testing.T) {
	john := person("john", "John", family.GenderMale)
	jane := person("jane", "Jane", family.GenderFemale)
	michael := person("michael", "Michael", family.GenderMale)
	john.Spouses = []family.Stub{ref(jane)}
	jane.Spouses = []family.Stub{ref(john)}
	michael.Parents = []family.Stub{ref(john), ref(jane)}

	res := build(t, []*family.Member{john, jane, michael}, Options{})

	if len(res.Rows) != 2 {
		t.Fatalf("rows = %d, want 2: %+v", len(res.Rows), res.Rows)
	}
	couple, child := res.Rows[0], res.Rows[1]
	if couple.Column != 0 || len(couple.MemberIDs) != 2 {
		t.Errorf("couple row = column %d with %d members, want column 0 with 2", couple.Column, len(couple.MemberIDs))
	}
	if !strings.Contains(couple.Value, CoupleJoin) {
		t.Errorf("couple value %q lacks %q", couple.Value, CoupleJoin)
	}
	if child.Column != 1 || len(child.MemberIDs) != 1 {
		t.Errorf("child row = column %d with %d members, want column 1 with 1", child.Column, len(child.MemberIDs))
	}
	for _, want := range []string{"Michael", "♂", "[Generation 1]"} {
		if !strings.Contains(child.Value, want) {
			t.Errorf("child value %q lacks %q", child.Value, want)
		}
	}
	if got := res.Roots; !slices.Equal(got, []string{"john"}) {
		t.Errorf("Roots = %v, want [john]", got)
	}
}

func TestBuild_NoHierarchy(t *testing.T) {
	ms := []*family.Member{
		person("c", "Carol", family.GenderFemale),
		person("a", "Alice", family.GenderFemale),
		person("b", "Bob", family.GenderMale),
	}
	res := build(t, ms, Options{})

	if len(res.Rows) != 4 {
		t.Fatalf("rows = %d, want 4", len(res.Rows))
	}
	if res.Rows[0].Value != HeaderNoHierarchy {
		t.Errorf("first row = %q, want %q", res.Rows[0].Value, HeaderNoHierarchy)
	}
	for i, want := range []string{"c", "a", "b"} {
		r := res.Rows[i+1]
		if r.Column != 0 || len(r.MemberIDs) != 1 || r.MemberIDs[0].ID != want {
			t.Errorf("row %d = %+v, want individual %s at column 0", i+1, r, want)
		}
	}
}

func TestBuild_RootMarriedIntoLineage(t *testing.T) {
	gp := person("gp", "Grandpa", family.GenderMale)
	b := person("b", "Bea", family.GenderFemale)
	a := person("a", "Adam", family.GenderMale)
	parent(gp, b)
	marry(a, b)

	res := build(t, []*family.Member{a, b, gp}, Options{})

	if !slices.Equal(res.Roots, []string{"gp"}) {
		t.Fatalf("Roots = %v, want [gp]", res.Roots)
	}
	if got := res.Rows[1]; got.Column != 1 || len(got.MemberIDs) != 2 {
		t.Errorf("row 1 = %+v, want the a/b couple at column 1", got)
	}
	assertPlacedOnce(t, res, []*family.Member{a, b, gp})
}

func TestBuild_DisconnectedMember(t *testing.T) {
	john := person("john", "John", family.GenderMale)
	jane := person("jane", "Jane", family.GenderFemale)
	kid := person("kid", "Kid", family.GenderOther)
	loner := person("loner", "Loner", family.GenderUnknown)
	marry(john, jane)
	parent(john, kid)
	parent(jane, kid)

	res := build(t, []*family.Member{loner, john, jane, kid}, Options{})

	n := len(res.Rows)
	if n < 2 || res.Rows[n-2].Value != HeaderAdditional {
		t.Fatalf("rows = %+v, want additional header before the last row", res.Rows)
	}
	last := res.Rows[n-1]
	if last.MemberIDs[0].ID != "loner" || last.Column != 0 || !strings.HasSuffix(last.Value, "[Generation 0]") {
		t.Errorf("last row = %+v, want loner at generation 0", last)
	}
	if res.Stats.Additional != 1 {
		t.Errorf("Stats.Additional = %d, want 1", res.Stats.Additional)
	}
	assertPlacedOnce(t, res, []*family.Member{loner, john, jane, kid})
}

func TestBuild_DepthBoundOnCyclicChain(t *testing.T) {
	const n = 12
	ms := make([]*family.Member, n+1)
	ms[0] = person("r", "Root", family.GenderMale)
	for i := 1; i <= n; i++ {
		ms[i] = person(fmt.Sprintf("c%02d", i), fmt.Sprintf("Child %02d", i), family.GenderFemale)
		parent(ms[i-1], ms[i])
	}
	parent(ms[n], ms[1])

	res := build(t, ms, Options{})

	assertPlacedOnce(t, res, ms)
	var inTree, header int
	for i, r := range res.Rows {
		if r.Value == HeaderAdditional {
			header = i
			break
		}
		inTree++
	}
	if header == 0 {
		t.Fatal("no additional section for the deep tail")
	}
	if inTree != DefaultMaxDepth+1 {
		t.Errorf("rows before the additional section = %d, want %d", inTree, DefaultMaxDepth+1)
	}
	if got := res.Rows[header+1].Column; got != DefaultMaxDepth+1 {
		t.Errorf("first leftover column = %d, want %d", got, DefaultMaxDepth+1)
	}
}

func TestBuild_MaxDepthOption(t *testing.T) {
	a := person("a", "A", family.GenderMale)
	b := person("b", "B", family.GenderMale)
	c := person("c", "C", family.GenderMale)
	parent(a, b)
	parent(b, c)

	res := build(t, []*family.Member{a, b, c}, Options{MaxDepth: 1})
	want := []string{"a", "b", "c"}
	if got := MemberIDs(res.Rows); !slices.Equal(got, want) {
		t.Errorf("placed = %v, want %v", got, want)
	}
	if res.Rows[2].Value != HeaderAdditional {
		t.Errorf("row 2 = %q, want additional header", res.Rows[2].Value)
	}
}

func TestBuild_Determinism(t *testing.T) {
	ms := bigFamily()
	first := build(t, ms, Options{})
	second := build(t, ms, Options{})
	if !reflect.DeepEqual(first.Rows, second.Rows) {
		t.Errorf("two builds differ:\n%v\n%v", first.Rows, second.Rows)
	}
}

func TestBuild_SeededColorsReproducible(t *testing.T) {
	ms := bigFamily()
	for _, m := range ms {
		m.Color = ""
	}
	first := build(t, ms, Options{Colors: transform.NewColorSource(7)})
	second := build(t, ms, Options{Colors: transform.NewColorSource(7)})
	if !reflect.DeepEqual(first.Rows, second.Rows) {
		t.Error("seeded builds differ")
	}
	if first.Stats.ColorsAssigned != len(ms) {
		t.Errorf("ColorsAssigned = %d, want %d", first.Stats.ColorsAssigned, len(ms))
	}
}

func TestBuild_DoesNotMutateInput(t *testing.T) {
	a := &family.Member{ID: "a", Name: "A", Spouses: []family.Stub{{ID: "b"}}}
	b := &family.Member{ID: "b", Name: "B"}
	build(t, []*family.Member{a, b}, Options{})
	if a.Color != "" || len(b.Spouses) != 0 {
		t.Errorf("input mutated: a.Color=%q b.Spouses=%v", a.Color, b.Spouses)
	}
}

func TestBuild_NoDuplication(t *testing.T) {
	ms := bigFamily()
	res := build(t, ms, Options{})
	assertPlacedOnce(t, res, ms)
}

func TestBuild_ChildOrderByGenerationThenName(t *testing.T) {
	dad := person("dad", "Dad", family.GenderMale)
	mom := person("mom", "Mom", family.GenderFemale)
	zoe := person("zoe", "Zoe", family.GenderFemale)
	adam := person("adam", "Adam", family.GenderMale)
	marry(dad, mom)
	for _, k := range []*family.Member{zoe, adam} {
		parent(dad, k)
		parent(mom, k)
	}

	res := build(t, []*family.Member{dad, mom, zoe, adam}, Options{})
	want := []string{"dad", "mom", "adam", "zoe"}
	if got := MemberIDs(res.Rows); !slices.Equal(got, want) {
		t.Errorf("placed = %v, want %v", got, want)
	}
}

func TestBuild_SeparatorsBetweenRoots(t *testing.T) {
	a := person("a", "Anna", family.GenderFemale)
	ak := person("ak", "Anna Jr", family.GenderFemale)
	z := person("z", "Zed", family.GenderMale)
	zk := person("zk", "Zed Jr", family.GenderMale)
	parent(a, ak)
	parent(z, zk)

	res := build(t, []*family.Member{z, zk, a, ak}, Options{})
	if len(res.Rows) != 5 {
		t.Fatalf("rows = %d, want 5", len(res.Rows))
	}
	if !res.Rows[2].IsSeparator() {
		t.Errorf("row 2 = %+v, want separator", res.Rows[2])
	}
	if got := res.Rows[0].MemberIDs[0].ID; got != "a" {
		t.Errorf("first root = %s, want a (sorted by name)", got)
	}
}

func TestBuild_CustomLabel(t *testing.T) {
	a := person("a", "A", family.GenderMale)
	b := person("b", "B", family.GenderMale)
	parent(a, b)

	res := build(t, []*family.Member{a, b}, Options{GenerationLabel: "Gen %d"})
	if got := res.Rows[1].Value; !strings.HasSuffix(got, "[Gen 1]") {
		t.Errorf("value = %q, want [Gen 1] suffix", got)
	}
}

func TestBuild_InvalidOptions(t *testing.T) {
	tests := []Options{
		{MaxDepth: -1},
		{GenerationLabel: "Generation"},
		{GenerationLabel: "%d of %d"},
		{GenerationLabel: "[%d]"},
	}
	for _, opts := range tests {
		if _, err := Build(nil, opts); !errors.Is(err, errors.ErrCodeInvalidInput) {
			t.Errorf("Build(%+v) error = %v, want INVALID_INPUT", opts, err)
		}
	}
}

func TestBuild_Empty(t *testing.T) {
	res := build(t, nil, Options{})
	if len(res.Rows) != 0 {
		t.Errorf("rows = %v, want none", res.Rows)
	}
}

func TestBuild_DanglingReferencesIgnored(t *testing.T) {
	a := person("a", "A", family.GenderMale)
	b := person("b", "B", family.GenderFemale)
	parent(a, b)
	a.Spouses = []family.Stub{{ID: "ghost", Name: "Ghost"}}
	b.Parents = append(b.Parents, family.Stub{ID: "nobody"})

	res := build(t, []*family.Member{a, b}, Options{})
	assertPlacedOnce(t, res, []*family.Member{a, b})
	if strings.Contains(res.Rows[0].Value, "Ghost") {
		t.Errorf("row %q mentions an out-of-set spouse", res.Rows[0].Value)
	}
}

type wantRow struct {
	column int
	plain  string
	ids    []string
}

func TestBuild_RowKinds(t *testing.T) {
	tests := []struct {
		name    string
		members func() []*family.Member
		want    []wantRow
	}{
		{
			name: "couple with shared children",
			members: func() []*family.Member {
				john := person("john", "John", family.GenderMale)
				jane := person("jane", "Jane", family.GenderFemale)
				michael := person("michael", "Michael", family.GenderMale)
				marry(john, jane)
				parent(john, michael)
				parent(jane, michael)
				return []*family.Member{john, jane, michael}
			},
			want: []wantRow{
				{0, "John ♂ ⚭ Jane [Generation 0]", []string{"john", "jane"}},
				{1, "Michael ♂ [Generation 1]", []string{"michael"}},
			},
		},
		{
			name: "couple without shared children visits both partners' children",
			members: func() []*family.Member {
				bob := person("bob", "Bob", family.GenderMale)
				ann := person("ann", "Ann", family.GenderFemale)
				ada := person("ada", "Ada", family.GenderFemale)
				ben := person("ben", "Ben", family.GenderMale)
				marry(bob, ann)
				parent(ann, ada)
				parent(bob, ben)
				return []*family.Member{bob, ann, ada, ben}
			},
			want: []wantRow{
				{0, "Bob ♂ ⚭ Ann [Generation 0]", []string{"bob", "ann"}},
				{1, "Ada ♀ [Generation 1]", []string{"ada"}},
				{1, "Ben ♂ [Generation 1]", []string{"ben"}},
			},
		},
		{
			name: "second-listed partner groups with the first",
			members: func() []*family.Member {
				jane := person("jane", "Jane", family.GenderFemale)
				john := person("john", "John", family.GenderMale)
				kid := person("kid", "Kid", family.GenderMale)
				step := person("step", "Step", family.GenderMale)
				marry(jane, john)
				parent(john, kid)
				parent(jane, kid)
				parent(john, step)
				return []*family.Member{jane, john, kid, step}
			},
			want: []wantRow{
				{0, "John ♂ & Jane [Generation 0]", []string{"john", "jane"}},
				{1, "Kid ♂ [Generation 1]", []string{"kid"}},
				{1, "Step ♂ [Generation 1]", []string{"step"}},
			},
		},
		{
			name: "multi-spouse group visits every partner's children",
			members: func() []*family.Member {
				eva := person("eva", "Eva", family.GenderFemale)
				lena := person("lena", "Lena", family.GenderFemale)
				hans := person("hans", "Hans", family.GenderMale)
				paul := person("paul", "Paul", family.GenderMale)
				mia := person("mia", "Mia", family.GenderFemale)
				marry(eva, hans)
				marry(lena, hans)
				parent(hans, paul)
				parent(eva, paul)
				parent(hans, mia)
				parent(lena, mia)
				return []*family.Member{eva, lena, hans, paul, mia}
			},
			want: []wantRow{
				{0, "Hans ♂ & Eva & Lena [Generation 0]", []string{"hans", "eva", "lena"}},
				{1, "Mia ♀ [Generation 1]", []string{"mia"}},
				{1, "Paul ♂ [Generation 1]", []string{"paul"}},
			},
		},
		{
			name: "individual names spouses placed earlier",
			members: func() []*family.Member {
				al := person("al", "Al", family.GenderMale)
				bea := person("bea", "Bea", family.GenderFemale)
				cora := person("cora", "Cora", family.GenderFemale)
				gus := person("gus", "Gus", family.GenderMale)
				kid := person("kid", "Kid", family.GenderOther)
				marry(al, bea)
				marry(al, cora)
				parent(al, kid)
				parent(bea, kid)
				parent(gus, cora)
				return []*family.Member{al, bea, cora, gus, kid}
			},
			want: []wantRow{
				{0, "Bea ♀ & Al [Generation 0]", []string{"bea", "al"}},
				{1, "Kid ⚲ [Generation 1]", []string{"kid"}},
				{0, "", nil},
				{0, "Gus ♂ [Generation 0]", []string{"gus"}},
				{1, "Cora ♀ ⚭ Al [Generation 1]", []string{"cora"}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := build(t, tt.members(), Options{})
			if len(res.Rows) != len(tt.want) {
				t.Fatalf("rows = %d, want %d: %+v", len(res.Rows), len(tt.want), res.Rows)
			}
			for i, want := range tt.want {
				r := res.Rows[i]
				var ids []string
				for _, ref := range r.MemberIDs {
					ids = append(ids, ref.ID)
				}
				if r.Column != want.column || PlainValue(r) != want.plain || !slices.Equal(ids, want.ids) {
					t.Errorf("row %d = column %d %q %v, want column %d %q %v",
						i, r.Column, PlainValue(r), ids, want.column, want.plain, want.ids)
				}
			}
		})
	}
}

// bigFamily has three generations, a remarriage, a childless couple and a
// member who married in.
func bigFamily() []*family.Member {
	opa := person("opa", "Otto", family.GenderMale)
	oma := person("oma", "Olga", family.GenderFemale)
	marry(opa, oma)

	hans := person("hans", "Hans", family.GenderMale)
	greta := person("greta", "Greta", family.GenderFemale)
	for _, k := range []*family.Member{hans, greta} {
		parent(opa, k)
		parent(oma, k)
	}

	eva := person("eva", "Eva", family.GenderFemale)
	lena := person("lena", "Lena", family.GenderFemale)
	marry(hans, eva)
	marry(hans, lena)

	paul := person("paul", "Paul", family.GenderMale)
	parent(hans, paul)
	parent(eva, paul)

	karl := person("karl", "Karl", family.GenderMale)
	marry(greta, karl)

	return []*family.Member{opa, oma, hans, greta, eva, lena, paul, karl}
}
