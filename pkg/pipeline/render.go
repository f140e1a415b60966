package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/matzehuels/kintree/pkg/errors"
	"github.com/matzehuels/kintree/pkg/folders"
	"github.com/matzehuels/kintree/pkg/layout"
	"github.com/matzehuels/kintree/pkg/outline"
	"github.com/matzehuels/kintree/pkg/render/document"
	"github.com/matzehuels/kintree/pkg/render/nodelink"
	"github.com/matzehuels/kintree/pkg/render/sheet"
)

// BuildOutline runs the outline builder on the members of folder.
func BuildOutline(folder *folders.Folder, opts Options) (*Outline, error) {
	if err := opts.ValidateForOutline(); err != nil {
		return nil, err
	}
	res, err := outline.Build(folder.Members(), opts.BuildOptions())
	if err != nil {
		return nil, err
	}
	return &Outline{
		FamilyID:   folder.ID,
		FamilyName: folder.Name,
		Hash:       folderHash(folder),
		Rows:       res.Rows,
		Roots:      res.Roots,
		Couples:    res.Couples,
		Stats:      res.Stats,
		build:      res,
	}, nil
}

// Render generates output artifacts in the requested formats.
// Graph formats need an in-process build; cached outlines are rebuilt from
// folder first, so folder may only be nil when out was just built.
func Render(ctx context.Context, out *Outline, folder *folders.Folder, opts Options) (map[string][]byte, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, err
	}
	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		if needsGraph(format) && out.build == nil {
			if folder == nil {
				return nil, errors.New(errors.ErrCodeInternal, "%s export needs the family graph", format)
			}
			rebuilt, err := BuildOutline(folder, opts)
			if err != nil {
				return nil, err
			}
			out.build = rebuilt.build
		}
		data, err := RenderFormat(ctx, out, format, opts)
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}
	return artifacts, nil
}

// RenderFormat renders a single format.
func RenderFormat(ctx context.Context, out *Outline, format string, opts Options) ([]byte, error) {
	var buf bytes.Buffer
	switch format {
	case FormatCSV:
		if err := sheet.Write(&buf, out.Rows, sheet.Options{Plain: opts.Plain}); err != nil {
			return nil, err
		}
	case FormatMarkdown:
		title := opts.Title
		if title == "" {
			title = out.FamilyName
		}
		if err := document.Markdown(&buf, out.Rows, document.Options{Title: title, Markers: !opts.Plain}); err != nil {
			return nil, err
		}
	case FormatText:
		if err := document.Text(&buf, out.Rows, document.Options{Markers: !opts.Plain}); err != nil {
			return nil, err
		}
	case FormatJSON:
		enc := json.NewEncoder(&buf)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "  ")
		if err := enc.Encode(out); err != nil {
			return nil, err
		}
	case FormatLayout:
		return json.Marshal(layout.Place(out.Rows, layout.Options{}))
	case FormatDOT, FormatSVG, FormatPNG, FormatPDF:
		if out.build == nil {
			return nil, errors.New(errors.ErrCodeInternal, "%s export needs the family graph", format)
		}
		dot := nodelink.ToDOT(out.build, nodelink.Options{Detailed: opts.Detailed, Direction: opts.Direction})
		switch format {
		case FormatDOT:
			return []byte(dot), nil
		case FormatSVG:
			return nodelink.RenderSVG(ctx, dot)
		case FormatPNG:
			scale := opts.Scale
			if scale <= 0 {
				scale = 2.0
			}
			return nodelink.RenderPNG(ctx, dot, scale)
		default:
			return nodelink.RenderPDF(ctx, dot)
		}
	default:
		return nil, ValidateFormat(format)
	}
	return buf.Bytes(), nil
}
