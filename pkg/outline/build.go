package outline

import (
	"math/rand/v2"
	"slices"
	"strings"

	"github.com/matzehuels/kintree/pkg/errors"
	"github.com/matzehuels/kintree/pkg/family"
	"github.com/matzehuels/kintree/pkg/family/transform"
)

// DefaultMaxDepth bounds the walk below each root.
const DefaultMaxDepth = 8

// Options configures Build. The zero value is ready to use.
type Options struct {
	// MaxDepth is the deepest level the walker descends to below a root.
	// Members deeper than that are listed as additional members.
	// Zero means DefaultMaxDepth.
	MaxDepth int

	// GenerationLabel is a fmt template with a single %d verb.
	// Empty means DefaultGenerationLabel.
	GenerationLabel string

	// Locale selects the name collation (BCP 47, e.g. "de"). Ignored when
	// Collator is set.
	Locale   string
	Collator *transform.Collator

	// Policy picks the representative of a root couple.
	Policy transform.RepresentativePolicy

	// Colors is the random source for members without a color. Nil uses a
	// time-seeded source, so pre-color members for reproducible output.
	Colors *rand.Rand
}

func (o Options) validate() error {
	if o.MaxDepth < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "max depth must not be negative, got %d", o.MaxDepth)
	}
	if o.GenerationLabel != "" && strings.Count(o.GenerationLabel, "%d") != 1 {
		return errors.New(errors.ErrCodeInvalidInput, "generation label %q needs exactly one %%d verb", o.GenerationLabel)
	}
	if strings.ContainsAny(o.GenerationLabel, "[]") {
		return errors.New(errors.ErrCodeInvalidInput, "generation label %q must not contain brackets", o.GenerationLabel)
	}
	return nil
}

func (o Options) withDefaults() Options {
	if o.MaxDepth == 0 {
		o.MaxDepth = DefaultMaxDepth
	}
	if o.GenerationLabel == "" {
		o.GenerationLabel = DefaultGenerationLabel
	}
	if o.Collator == nil {
		o.Collator = transform.ParseCollator(o.Locale)
	}
	return o
}

// Stats summarises one build.
type Stats struct {
	Members           int `json:"members"`
	Roots             int `json:"roots"`
	Couples           int `json:"couples"`
	Edges             int `json:"edges"`
	Rows              int `json:"rows"`
	Additional        int `json:"additional"`
	MaxGeneration     int `json:"maxGeneration"`
	ColorsAssigned    int `json:"colorsAssigned"`
	SpousesNormalized int `json:"spousesNormalized"`
}

// Result is the outline of one working set together with the intermediate
// structures it was built from.
type Result struct {
	Rows        []Row
	Roots       []string // representative root ids, in outline order
	Generations transform.Generations
	Couples     []string // canonical couple keys, in discovery order
	Members     *family.Set
	Stats       Stats
}

// Build computes the outline of members.
//
// The input is cloned first, so callers' records are never modified; the
// normalized, colored and generation-tagged copies are returned in
// Result.Members. Malformed genealogy never fails a build: dangling
// references are ignored, cycles end in the depth cap, and members the walk
// cannot reach are listed under HeaderAdditional. Only invalid options
// return an error.
func Build(members []*family.Member, opts Options) (*Result, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	opts = opts.withDefaults()

	clones := make([]*family.Member, 0, len(members))
	for _, m := range members {
		if m != nil {
			clones = append(clones, m.Clone())
		}
	}
	set := family.NewSet(clones)

	normalized := transform.NormalizeSpouses(set)
	colored := transform.AssignColors(set, opts.Colors)
	idx := transform.BuildIndex(set)
	roots := transform.ResolveRoots(set, idx, transform.RootOptions{Policy: opts.Policy, Collator: opts.Collator})
	gens := transform.AssignGenerations(roots, idx)
	gens.Apply(set)
	couples := transform.IdentifyCouples(set, idx)

	w := newWalker(set, idx, couples, opts.Collator, opts.MaxDepth, opts.GenerationLabel)

	var rows []Row
	if len(roots) == 0 {
		rows = w.flat()
	} else {
		rows = w.forest(roots)
	}
	leftovers := w.additional()
	rows = append(rows, leftovers...)

	res := &Result{
		Rows:        rows,
		Generations: gens,
		Couples:     couples.Keys(),
		Members:     set,
		Stats: Stats{
			Members:           set.Len(),
			Roots:             len(roots),
			Couples:           couples.Len(),
			Edges:             idx.EdgeCount(),
			Rows:              len(rows),
			ColorsAssigned:    colored,
			SpousesNormalized: normalized,
		},
	}
	for _, r := range roots {
		res.Roots = append(res.Roots, r.ID)
	}
	if len(leftovers) > 0 {
		res.Stats.Additional = len(leftovers) - 1
	}
	for _, m := range set.Members() {
		res.Stats.MaxGeneration = max(res.Stats.MaxGeneration, m.Generation)
	}
	return res, nil
}

// forest walks every root, separating subtrees with a blank row.
func (w *walker) forest(roots []*family.Member) []Row {
	var rows []Row
	for _, r := range roots {
		sub := w.visit(r.ID, 0, 0)
		// A root already placed under an earlier one adds no rows and no separator.
		if len(sub) == 0 {
			continue
		}
		if len(rows) > 0 {
			rows = append(rows, separator())
		}
		rows = append(rows, sub...)
	}
	return rows
}

// flat lists every member on its own row when no hierarchy was found.
func (w *walker) flat() []Row {
	if w.set.Len() == 0 {
		return nil
	}
	rows := []Row{header(HeaderNoHierarchy)}
	for _, m := range w.set.Members() {
		rows = append(rows, w.individualRow(m, 0, 0, false)...)
	}
	return rows
}

// additional lists the members the walk never placed, by generation and name.
func (w *walker) additional() []Row {
	rest := w.unplaced()
	if len(rest) == 0 {
		return nil
	}
	slices.SortStableFunc(rest, w.compareByGeneration)
	rows := []Row{header(HeaderAdditional)}
	for _, m := range rest {
		rows = append(rows, w.individualRow(m, m.Generation, 0, false)...)
	}
	return rows
}

func separator() Row { return Row{MemberIDs: []MemberRef{}} }

func header(title string) Row { return Row{Value: title, MemberIDs: []MemberRef{}} }
