package nodelink

import (
	"bytes"
	"fmt"
	"slices"
	"strings"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/matzehuels/kintree/pkg/family"
	"github.com/matzehuels/kintree/pkg/family/transform"
	"github.com/matzehuels/kintree/pkg/outline"
)

// Options configures diagram generation.
type Options struct {
	// Detailed adds the generation and status to node labels.
	Detailed bool
	// Direction is the Graphviz rankdir. Empty means "TB".
	Direction string
}

// ToDOT converts the members of an outline build to Graphviz DOT.
//
// Edges come from the same relationship index the outline used, so stubs
// pointing outside the working set are not drawn. Each generation is placed
// on its own rank.
func ToDOT(res *outline.Result, opts Options) string {
	dir := opts.Direction
	if dir == "" {
		dir = "TB"
	}

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	fmt.Fprintf(&buf, "  rankdir=%s;\n", dir)
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=18, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.6;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	if res == nil || res.Members == nil {
		buf.WriteString("}\n")
		return buf.String()
	}
	set := res.Members

	ranks := make(map[int][]string)
	for _, m := range set.Members() {
		fmt.Fprintf(&buf, "  %q [%s];\n", m.ID, strings.Join(fmtAttrs(m, opts.Detailed), ", "))
		ranks[m.Generation] = append(ranks[m.Generation], m.ID)
	}

	buf.WriteString("\n")
	gens := make([]int, 0, len(ranks))
	for g := range ranks {
		gens = append(gens, g)
	}
	slices.Sort(gens)
	for _, g := range gens {
		quoted := make([]string, len(ranks[g]))
		for i, id := range ranks[g] {
			quoted[i] = fmt.Sprintf("%q", id)
		}
		fmt.Fprintf(&buf, "  { rank=same; %s; }\n", strings.Join(quoted, "; "))
	}

	buf.WriteString("\n")
	idx := transform.BuildIndex(set)
	for _, m := range set.Members() {
		for _, child := range idx.Children(m.ID) {
			fmt.Fprintf(&buf, "  %q -> %q;\n", m.ID, child)
		}
	}

	for _, c := range transform.IdentifyCouples(set, idx).All() {
		fmt.Fprintf(&buf, "  %q -> %q [dir=none, style=dashed, constraint=false];\n", c.Partners[0], c.Partners[1])
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(m *family.Member, detailed bool) string {
	label := m.Name + " " + outline.Glyph(m.Gender)
	if !detailed {
		return label
	}
	parts := []string{fmt.Sprintf("generation: %d", m.Generation)}
	if m.Status != "" {
		parts = append(parts, "status: "+m.Status)
	}
	return label + "\n" + strings.Join(parts, "\n")
}

func fmtAttrs(m *family.Member, detailed bool) []string {
	attrs := []string{fmt.Sprintf("label=%q", fmtLabel(m, detailed))}
	if m.Color != "" {
		attrs = append(attrs, fmt.Sprintf("fillcolor=%q", m.Color), fmt.Sprintf("fontcolor=%q", textColor(m.Color)))
	}
	return attrs
}

// textColor picks black or white text for legibility on fill.
func textColor(fill string) string {
	c, err := colorful.Hex(fill)
	if err != nil {
		return "black"
	}
	if l, _, _ := c.Lab(); l < 0.55 {
		return "white"
	}
	return "black"
}
