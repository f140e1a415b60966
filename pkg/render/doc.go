// Package render turns outlines into files.
//
// # Overview
//
// Every exporter consumes the outline row contract ([outline.Row]) or, for
// diagrams, the member set of an [outline.Result]:
//
//   - [sheet]: CSV with one column per generation
//   - [document]: Markdown and indented plain text
//   - [nodelink]: Graphviz DOT, SVG, PNG and PDF relationship diagrams
//
// # Format Conversion
//
// The [ToPDF] and [ToPNG] functions convert any SVG to other formats using
// the external rsvg-convert tool (from librsvg).
//
//	dot := nodelink.ToDOT(res, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//	pdf, err := render.ToPDF(ctx, svg)
//
// [outline.Row]: github.com/matzehuels/kintree/pkg/outline.Row
// [outline.Result]: github.com/matzehuels/kintree/pkg/outline.Result
// [sheet]: github.com/matzehuels/kintree/pkg/render/sheet
// [document]: github.com/matzehuels/kintree/pkg/render/document
// [nodelink]: github.com/matzehuels/kintree/pkg/render/nodelink
package render
