// Package pkg provides the core libraries for Kintree family tree outlines.
//
// # Overview
//
// Kintree turns flat family records, where members point at each other
// through parent, child and spouse lists, into a generational outline: one
// row per couple or individual, indented by generation and ready to be
// exported as a spreadsheet, a document or a relationship diagram. The pkg
// directory is organized into these areas:
//
//  1. [family] - Member and family model plus the tree passes
//  2. [folders] - Per-family folder view with linked relatives
//  3. [outline] - Depth-first outline algorithm and the row contract
//  4. [layout] - Collapsible tree built from outline rows
//  5. [render] - CSV, Markdown, text and Graphviz exporters
//  6. [store], [cache] - Family sources and result caching
//  7. [pipeline] - Orchestration (load → outline → render)
//  8. [api], [config] - HTTP service and configuration
//
// # Architecture
//
// The typical data flow through Kintree:
//
//	Snapshot file / MongoDB / DynamoDB
//	         ↓
//	    [store] package (families, viewer scoping)
//	         ↓
//	    [folders] package (direct members + linked relatives)
//	         ↓
//	    [family/transform] package (index, couples, roots, generations, colors)
//	         ↓
//	    [outline] package (rows)
//	         ↓
//	    [render] package (CSV/MD/TXT/DOT/SVG/PNG/PDF)
//
// # Quick Start
//
// Build an outline from a snapshot:
//
//	st, err := store.OpenFile("families.json")
//	if err != nil {
//	    return err
//	}
//	runner := pipeline.NewRunner(st, cache.NewNullCache(), cache.NewDefaultKeyer(), nil)
//	defer runner.Close()
//
//	out, err := runner.Outline(ctx, pipeline.Options{FamilyID: "smith"})
//	if err != nil {
//	    return err
//	}
//	for _, r := range out.Rows {
//	    fmt.Println(strings.Repeat("  ", r.Column) + outline.PlainValue(r))
//	}
//
// Or run the algorithm directly on a member list:
//
//	res, err := outline.Build(members, outline.Options{MaxDepth: 8})
//
// # Testing
//
//	go test ./pkg/...               # All tests
//	go test ./pkg/outline/...       # Specific package
//	go test -run Example ./pkg/...  # Examples only
//
// The MongoDB and DynamoDB stores are tested against the driver's mock
// deployment and an in-memory table, so no server is needed.
//
// [family]: https://pkg.go.dev/github.com/matzehuels/kintree/pkg/family
// [folders]: https://pkg.go.dev/github.com/matzehuels/kintree/pkg/folders
// [outline]: https://pkg.go.dev/github.com/matzehuels/kintree/pkg/outline
// [layout]: https://pkg.go.dev/github.com/matzehuels/kintree/pkg/layout
// [render]: https://pkg.go.dev/github.com/matzehuels/kintree/pkg/render
// [store]: https://pkg.go.dev/github.com/matzehuels/kintree/pkg/store
// [cache]: https://pkg.go.dev/github.com/matzehuels/kintree/pkg/cache
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/kintree/pkg/pipeline
// [api]: https://pkg.go.dev/github.com/matzehuels/kintree/pkg/api
// [config]: https://pkg.go.dev/github.com/matzehuels/kintree/pkg/config
//
// [family/transform]: https://pkg.go.dev/github.com/matzehuels/kintree/pkg/family/transform
package pkg
