package transform

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/matzehuels/kintree/pkg/family"
)

// colorSpace is the number of distinct #rrggbb tokens.
const colorSpace = 1 << 24

// NewColorSource returns a seeded random source for AssignColors. Two sources
// with the same seed produce the same colors.
func NewColorSource(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// AssignColors tags members with lineage colors.
//
// Members without a Color get a uniformly random #rrggbb token drawn from r
// (collisions are tolerated, not corrected). Then every member's ParentColors
// is recomputed as the colors of its parents that are present in the set, in
// parent-list order. Already colored members keep their color, so the pass is
// idempotent. A nil r uses a time-seeded source. It returns the number of
// colors assigned.
func AssignColors(s *family.Set, r *rand.Rand) int {
	if r == nil {
		r = NewColorSource(uint64(time.Now().UnixNano()))
	}

	assigned := 0
	for _, m := range s.Members() {
		if m.Color == "" {
			m.Color = fmt.Sprintf("#%06x", r.IntN(colorSpace))
			assigned++
		}
	}

	for _, m := range s.Members() {
		var colors []string
		for _, p := range m.Parents {
			parent, ok := s.Get(p.ID)
			if !ok || parent.Color == "" {
				continue
			}
			colors = append(colors, parent.Color)
		}
		m.ParentColors = colors
	}
	return assigned
}
