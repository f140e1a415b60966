// Package document writes outlines as Markdown or indented plain text.
package document

import (
	"bufio"
	"io"
	"strings"

	"github.com/matzehuels/kintree/pkg/outline"
)

// Options configures the writers.
type Options struct {
	Title   string // Markdown only; empty omits the title
	Markers bool   // keep the color markers in values
	Indent  string // per column; empty means two spaces
}

func (o Options) indent() string {
	if o.Indent == "" {
		return "  "
	}
	return o.Indent
}

func (o Options) value(r outline.Row) string {
	if o.Markers {
		return r.Value
	}
	return outline.PlainValue(r)
}

// Markdown writes rows as a nested bullet list. Section headers become level
// three headings and the rows after a header are listed flat.
func Markdown(w io.Writer, rows []outline.Row, opts Options) error {
	bw := bufio.NewWriter(w)
	if opts.Title != "" {
		bw.WriteString("# " + escape(opts.Title) + "\n\n")
	}

	inSection := false
	for _, r := range rows {
		switch {
		case r.IsSeparator():
			bw.WriteString("\n")
		case r.IsHeader():
			inSection = true
			bw.WriteString("\n### " + strings.Trim(r.Value, "= ") + "\n\n")
		default:
			depth := r.Column
			if inSection {
				depth = 0
			}
			bw.WriteString(strings.Repeat(opts.indent(), max(depth, 0)) + "- " + escape(opts.value(r)) + "\n")
		}
	}
	return bw.Flush()
}

// Text writes one line per row, indented by column.
func Text(w io.Writer, rows []outline.Row, opts Options) error {
	bw := bufio.NewWriter(w)
	for _, r := range rows {
		switch {
		case r.IsSeparator():
			bw.WriteString("\n")
		case r.IsHeader():
			bw.WriteString(r.Value + "\n")
		default:
			bw.WriteString(strings.Repeat(opts.indent(), max(r.Column, 0)) + opts.value(r) + "\n")
		}
	}
	return bw.Flush()
}

var mdEscaper = strings.NewReplacer(`\`, `\\`, "*", `\*`, "_", `\_`, "`", "\\`", "#", `\#`)

func escape(s string) string { return mdEscaper.Replace(s) }
