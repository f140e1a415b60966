package layout

import (
	"github.com/mattn/go-runewidth"

	"github.com/matzehuels/kintree/pkg/outline"
)

// Default geometry, in pixels.
const (
	DefaultIndent    = 40.0
	DefaultRowHeight = 28.0
	DefaultCharWidth = 8.0
	DefaultPadding   = 6.0
	DefaultMarkSize  = 10.0
)

// Options controls Place. Zero fields take the defaults above.
type Options struct {
	Indent    float64 // horizontal offset per column
	RowHeight float64
	CharWidth float64 // width of one terminal cell of label text
	Padding   float64
	MarkSize  float64 // edge length of a color swatch
}

func (o Options) withDefaults() Options {
	if o.Indent <= 0 {
		o.Indent = DefaultIndent
	}
	if o.RowHeight <= 0 {
		o.RowHeight = DefaultRowHeight
	}
	if o.CharWidth <= 0 {
		o.CharWidth = DefaultCharWidth
	}
	if o.Padding <= 0 {
		o.Padding = DefaultPadding
	}
	if o.MarkSize <= 0 {
		o.MarkSize = DefaultMarkSize
	}
	return o
}

// Swatch is a color marker drawn in front of a member name.
type Swatch struct {
	Color  string  `json:"color"`
	Parent bool    `json:"parent"`
	X      float64 `json:"x"`
}

// Box is a positioned row.
type Box struct {
	Row    int      `json:"row"`
	Column int      `json:"column"`
	Label  string   `json:"label"`
	Header bool     `json:"header,omitempty"`
	IDs    []string `json:"ids,omitempty"`
	X      float64  `json:"x"`
	Y      float64  `json:"y"`
	Width  float64  `json:"width"`
	Height float64  `json:"height"`
	Marks  []Swatch `json:"marks,omitempty"`
}

// Right returns the right edge of b.
func (b Box) Right() float64 { return b.X + b.Width }

// Bottom returns the bottom edge of b.
func (b Box) Bottom() float64 { return b.Y + b.Height }

// Layout is the placed outline.
type Layout struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Boxes  []Box   `json:"boxes"`
}

// Place assigns coordinates to rows. Each row takes one line of RowHeight;
// separators leave their line empty. A row is indented by its column and is
// as wide as its swatches plus its plain label.
func Place(rows []outline.Row, opts Options) *Layout {
	opts = opts.withDefaults()
	l := &Layout{Boxes: make([]Box, 0, len(rows))}

	for i, r := range rows {
		y := float64(i) * opts.RowHeight
		l.Height = y + opts.RowHeight
		if r.IsSeparator() {
			continue
		}

		b := Box{
			Row:    i,
			Column: r.Column,
			Header: r.IsHeader(),
			X:      float64(r.Column) * opts.Indent,
			Y:      y,
			Height: opts.RowHeight,
		}
		if b.Header {
			b.X = 0
			b.Label = r.Value
		} else {
			b.Label = outline.PlainValue(r)
			for _, ref := range r.MemberIDs {
				b.IDs = append(b.IDs, ref.ID)
			}
		}

		x := b.X + opts.Padding
		for _, ref := range r.MemberIDs {
			if ref.Color == "" {
				continue
			}
			b.Marks = append(b.Marks, Swatch{Color: ref.Color, X: x})
			x += opts.MarkSize + opts.Padding
			for j, pc := range ref.ParentColors {
				if j == outline.MaxParentMarkers {
					break
				}
				b.Marks = append(b.Marks, Swatch{Color: pc, Parent: true, X: x})
				x += opts.MarkSize + opts.Padding
			}
		}
		b.Width = x - b.X + float64(runewidth.StringWidth(b.Label))*opts.CharWidth + opts.Padding
		l.Width = max(l.Width, b.Right())
		l.Boxes = append(l.Boxes, b)
	}
	return l
}
