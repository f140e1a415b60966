// Package nodelink renders family relationship graphs as node-link diagrams.
//
// # Overview
//
// Where the outline flattens a family into rows, this package draws the
// underlying graph with Graphviz: one node per member, filled with the
// member's lineage color, arrows from parents to children and dashed links
// between spouses. Members of the same generation share a rank.
//
// # Usage
//
// Build an outline first, then convert its member set to DOT and render:
//
//	res, _ := outline.Build(members, outline.Options{})
//	dot := nodelink.ToDOT(res, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// For PDF or PNG output:
//
//	pdf, err := nodelink.RenderPDF(ctx, dot)
//	png, err := nodelink.RenderPNG(ctx, dot, 2.0)  // 2x scale
//
// # Options
//
//   - Detailed: node labels include the generation and status
//   - Direction: Graphviz rankdir, "TB" by default
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering. PDF and PNG conversion requires librsvg (rsvg-convert).
package nodelink
