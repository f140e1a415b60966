package outline

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/matzehuels/kintree/pkg/family"
)

// Display markers and joiners.
const (
	SelfMarker   = "●"
	ParentMarker = "○"
	CoupleJoin   = " ⚭ "
	GroupJoin    = " & "

	// MaxParentMarkers is the number of parent colors shown per member.
	MaxParentMarkers = 2
)

// DefaultGenerationLabel is the fmt template for the trailing row label.
const DefaultGenerationLabel = "Generation %d"

// Glyph returns the display glyph for g: ♂, ♀ or ⚲ for anything else.
func Glyph(g family.Gender) string {
	switch g.Normalized() {
	case family.GenderMale:
		return "♂"
	case family.GenderFemale:
		return "♀"
	default:
		return "⚲"
	}
}

// memberDisplay renders "●#self ○#p1 ○#p2 Name", followed by the gender
// glyph when lead is set. Members without a color get no markers.
func memberDisplay(m *family.Member, lead bool) string {
	var b strings.Builder
	if m.Color != "" {
		b.WriteString(SelfMarker)
		b.WriteString(m.Color)
		b.WriteByte(' ')
		for i, pc := range m.ParentColors {
			if i == MaxParentMarkers {
				break
			}
			b.WriteString(ParentMarker)
			b.WriteString(pc)
			b.WriteByte(' ')
		}
	}
	b.WriteString(m.Name)
	if lead {
		b.WriteByte(' ')
		b.WriteString(Glyph(m.Gender))
	}
	return b.String()
}

func withLabel(display, label string, generation int) string {
	return display + " [" + fmt.Sprintf(label, generation) + "]"
}

// DisplayMember is one member recovered from a display string.
type DisplayMember struct {
	ID           string // filled by ParseRow when the row carries member ids
	Color        string
	ParentColors []string
	Name         string
	Glyph        string // empty for non-leading members
}

// Display is a parsed row value.
type Display struct {
	Members []DisplayMember
	Joiner  string   // CoupleJoin, GroupJoin or "" for a single member
	Context []string // names of previously placed spouses shown on individual rows
	Label   string   // text inside the trailing brackets
}

// Generation extracts the number from the label. It reports false when the
// label carries no number.
func (d Display) Generation() (int, bool) {
	m := labelNumber.FindString(d.Label)
	if m == "" {
		return 0, false
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return 0, false
	}
	return n, true
}

// Names returns the clean member names in display order.
func (d Display) Names() []string {
	names := make([]string, len(d.Members))
	for i, m := range d.Members {
		names[i] = m.Name
	}
	return names
}

var (
	labelSuffix   = regexp.MustCompile(`\s*\[([^\[\]]*)\]$`)
	labelNumber   = regexp.MustCompile(`-?\d+`)
	memberSegment = regexp.MustCompile(`^●(#[0-9A-Za-z]+)((?: ○#[0-9A-Za-z]+)*) (.*?)(?: ([♂♀⚲])(?: ⚭ (.*))?)?$`)
)

// ParseDisplay splits a row value into its color tokens, clean names, spouse
// context and generation label. Header and separator values yield a Display
// without members.
func ParseDisplay(value string) Display {
	var d Display
	body := value
	if loc := labelSuffix.FindStringSubmatchIndex(value); loc != nil {
		d.Label = value[loc[2]:loc[3]]
		body = value[:loc[0]]
	}
	if !strings.HasPrefix(body, SelfMarker) {
		if d.Label == "" {
			return Display{}
		}
		// Uncolored member: name, glyph and optional context.
		d.Members = []DisplayMember{parsePlain(body, &d)}
		return d
	}

	segments := splitSegments(body)
	for i, seg := range segments {
		text := seg
		if i < len(segments)-1 {
			switch {
			case strings.HasSuffix(text, CoupleJoin):
				text = strings.TrimSuffix(text, CoupleJoin)
				d.Joiner = CoupleJoin
			case strings.HasSuffix(text, GroupJoin):
				text = strings.TrimSuffix(text, GroupJoin)
				d.Joiner = GroupJoin
			}
		}
		sm := memberSegment.FindStringSubmatch(text)
		if sm == nil {
			d.Members = append(d.Members, DisplayMember{Name: strings.TrimSpace(text)})
			continue
		}
		dm := DisplayMember{Color: sm[1], Name: sm[3], Glyph: sm[4]}
		for _, tok := range strings.Fields(sm[2]) {
			dm.ParentColors = append(dm.ParentColors, strings.TrimPrefix(tok, ParentMarker))
		}
		if sm[5] != "" {
			d.Context = splitNames(sm[5])
		}
		d.Members = append(d.Members, dm)
	}
	return d
}

// ParseRow parses r.Value and attaches the row's member ids when they line up
// with the parsed members.
func ParseRow(r Row) Display {
	d := ParseDisplay(r.Value)
	if len(d.Members) == len(r.MemberIDs) {
		for i := range d.Members {
			d.Members[i].ID = r.MemberIDs[i].ID
		}
	}
	return d
}

// splitSegments cuts body before every self marker.
func splitSegments(body string) []string {
	var segs []string
	start := 0
	for i := len(SelfMarker); i < len(body); {
		j := strings.Index(body[i:], SelfMarker)
		if j < 0 {
			break
		}
		segs = append(segs, body[start:i+j])
		start = i + j
		i = start + len(SelfMarker)
	}
	return append(segs, body[start:])
}

func parsePlain(body string, d *Display) DisplayMember {
	name := body
	if i := strings.Index(name, CoupleJoin); i >= 0 {
		d.Context = splitNames(name[i+len(CoupleJoin):])
		name = name[:i]
	}
	dm := DisplayMember{Name: name}
	for _, g := range []string{"♂", "♀", "⚲"} {
		if strings.HasSuffix(name, " "+g) {
			dm.Name = strings.TrimSuffix(name, " "+g)
			dm.Glyph = g
			break
		}
	}
	return dm
}

func splitNames(s string) []string {
	var names []string
	for _, n := range strings.Split(s, ", ") {
		if n = strings.TrimSpace(n); n != "" {
			names = append(names, n)
		}
	}
	return names
}

// PlainValue returns the row value without color markers: the member names
// joined as displayed, the context names and the generation label.
func PlainValue(r Row) string {
	d := ParseRow(r)
	if len(d.Members) == 0 {
		return r.Value
	}
	var b strings.Builder
	for i, m := range d.Members {
		if i > 0 {
			b.WriteString(d.Joiner)
		}
		b.WriteString(m.Name)
		if m.Glyph != "" {
			b.WriteString(" " + m.Glyph)
		}
	}
	if len(d.Context) > 0 {
		b.WriteString(CoupleJoin + strings.Join(d.Context, ", "))
	}
	if d.Label != "" {
		b.WriteString(" [" + d.Label + "]")
	}
	return b.String()
}
