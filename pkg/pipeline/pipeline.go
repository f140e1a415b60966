// Package pipeline provides the outline pipeline shared by the CLI and the
// API server.
//
// This package implements the complete load → outline → render pipeline so
// that every entry point loads, scopes, caches and exports families the same
// way.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Load: Fetch the family from a store, check the viewer's access and
//     expand it into a folder (direct members, cross-family spouses and their
//     children)
//  2. Outline: Run the tree reconstruction on the folder's members
//  3. Render: Export the outline as CSV, Markdown, text, JSON, DOT, SVG,
//     PNG, PDF or layout geometry
//
// Outlines and rendered artifacts are cached by content hash, so a family
// that has not changed is never rebuilt.
//
// # Usage
//
//	runner := pipeline.NewRunner(st, c, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    FamilyID: "smith",
//	    Formats:  []string{"csv", "md"},
//	})
//	if err != nil {
//	    return err
//	}
//	csv := result.Artifacts["csv"]
//
// Run the stages individually:
//
//	folder, err := runner.Folder(ctx, opts)
//	out, err := runner.Outline(ctx, opts)
//	artifacts, err := runner.Render(ctx, out, opts)
package pipeline

import (
	"io"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/kintree/pkg/cache"
	"github.com/matzehuels/kintree/pkg/errors"
	"github.com/matzehuels/kintree/pkg/family/transform"
	"github.com/matzehuels/kintree/pkg/folders"
	"github.com/matzehuels/kintree/pkg/outline"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	// DefaultMaxDepth is the walker depth cap below each root.
	DefaultMaxDepth = outline.DefaultMaxDepth

	// DefaultSeed seeds the colors of members stored without one, so that
	// repeated builds of the same family agree.
	DefaultSeed = uint64(42)

	// DefaultConcurrency bounds ExecuteAll.
	DefaultConcurrency = 4
)

// Format constants for output formats.
const (
	FormatCSV      = "csv"
	FormatMarkdown = "md"
	FormatText     = "txt"
	FormatJSON     = "json"
	FormatDOT      = "dot"
	FormatSVG      = "svg"
	FormatPNG      = "png"
	FormatPDF      = "pdf"
	FormatLayout   = "layout"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatCSV:      true,
	FormatMarkdown: true,
	FormatText:     true,
	FormatJSON:     true,
	FormatDOT:      true,
	FormatSVG:      true,
	FormatPNG:      true,
	FormatPDF:      true,
	FormatLayout:   true,
}

// FormatNames returns the supported formats in sorted order.
func FormatNames() []string {
	names := make([]string, 0, len(ValidFormats))
	for f := range ValidFormats {
		names = append(names, f)
	}
	slices.Sort(names)
	return names
}

// ContentType returns the MIME type of a format.
func ContentType(format string) string {
	switch format {
	case FormatCSV:
		return "text/csv; charset=utf-8"
	case FormatMarkdown:
		return "text/markdown; charset=utf-8"
	case FormatText, FormatDOT:
		return "text/plain; charset=utf-8"
	case FormatJSON, FormatLayout:
		return "application/json"
	case FormatSVG:
		return "image/svg+xml"
	case FormatPNG:
		return "image/png"
	case FormatPDF:
		return "application/pdf"
	}
	return "application/octet-stream"
}

// needsGraph reports whether format is rendered from the relationship graph
// rather than from the rows alone.
func needsGraph(format string) bool {
	switch format {
	case FormatDOT, FormatSVG, FormatPNG, FormatPDF:
		return true
	}
	return false
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the outline pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Load options
	FamilyID string `json:"family_id"`
	Viewer   string `json:"viewer,omitempty"` // member id the request acts for; empty = unscoped
	Refresh  bool   `json:"refresh,omitempty"`

	// Outline options
	MaxDepth        int    `json:"max_depth,omitempty"`
	GenerationLabel string `json:"generation_label,omitempty"`
	Locale          string `json:"locale,omitempty"`
	Policy          string `json:"policy,omitempty"` // "male" or "first"
	Seed            uint64 `json:"seed,omitempty"`

	// Render options
	Formats   []string `json:"formats,omitempty"`
	Title     string   `json:"title,omitempty"`
	Plain     bool     `json:"plain,omitempty"`
	Detailed  bool     `json:"detailed,omitempty"`
	Direction string   `json:"direction,omitempty"`
	Scale     float64  `json:"scale,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Folder is the expanded member list the outline was built from.
	Folder *folders.Folder

	// Outline is the computed outline.
	Outline *Outline

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Outline is the cacheable part of an outline build.
type Outline struct {
	FamilyID   string        `json:"family"`
	FamilyName string        `json:"name,omitempty"`
	Hash       string        `json:"hash"` // content hash of the folder members
	Rows       []outline.Row `json:"rows"`
	Roots      []string      `json:"roots"`
	Couples    []string      `json:"couples"`
	Stats      outline.Stats `json:"stats"`

	// build is the full result when the outline was computed in this
	// process; it is nil for outlines read from the cache.
	build *outline.Result
}

// Build returns the in-process build result, or nil for cached outlines.
func (o *Outline) Build() *outline.Result { return o.build }

// Stats contains pipeline execution statistics.
type Stats struct {
	MemberCount int
	RowCount    int
	LoadTime    time.Duration
	OutlineTime time.Duration
	RenderTime  time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	OutlineHit bool // Whether the outline came from cache
	RenderHit  bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: %s)",
			format, strings.Join(FormatNames(), ", "))
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidatePolicy checks that a representative policy name is valid.
func ValidatePolicy(policy string) error {
	if _, ok := transform.ParsePolicy(policy); !ok {
		return errors.New(errors.ErrCodeInvalidInput, "invalid policy: %q (must be one of: male, first)", policy)
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks required fields and applies defaults for the
// full pipeline. This method is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForLoad(); err != nil {
		return err
	}
	if err := o.ValidateForOutline(); err != nil {
		return err
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForLoad checks the family id and viewer.
func (o *Options) ValidateForLoad() error {
	if err := errors.ValidateFamilyID(o.FamilyID); err != nil {
		return err
	}
	if err := errors.ValidateViewerID(o.Viewer); err != nil {
		return err
	}
	o.setLogger()
	return nil
}

// ValidateForOutline validates and sets defaults for outline computation.
func (o *Options) ValidateForOutline() error {
	if o.MaxDepth < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "max_depth must not be negative")
	}
	if o.MaxDepth == 0 {
		o.MaxDepth = DefaultMaxDepth
	}
	if o.GenerationLabel == "" {
		o.GenerationLabel = outline.DefaultGenerationLabel
	}
	if o.Seed == 0 {
		o.Seed = DefaultSeed
	}
	o.setLogger()
	return ValidatePolicy(o.Policy)
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatJSON}
	}
	for i, f := range o.Formats {
		o.Formats[i] = strings.ToLower(f)
	}
	o.setLogger()
	return ValidateFormats(o.Formats)
}

func (o *Options) setLogger() {
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// BuildOptions returns the outline build options.
func (o *Options) BuildOptions() outline.Options {
	policy, _ := transform.ParsePolicy(o.Policy)
	return outline.Options{
		MaxDepth:        o.MaxDepth,
		GenerationLabel: o.GenerationLabel,
		Locale:          o.Locale,
		Policy:          policy,
		Colors:          transform.NewColorSource(o.Seed),
	}
}

// OutlineKeyOpts returns cache key options for outline computation.
func (o *Options) OutlineKeyOpts() cache.OutlineKeyOpts {
	policy, _ := transform.ParsePolicy(o.Policy)
	return cache.OutlineKeyOpts{
		MaxDepth:        o.MaxDepth,
		GenerationLabel: o.GenerationLabel,
		Locale:          o.Locale,
		Policy:          policy.String(),
		Seed:            o.Seed,
	}
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		Format:    format,
		Plain:     o.Plain,
		Detailed:  o.Detailed,
		Title:     o.Title,
		Direction: o.Direction,
		Scale:     o.Scale,
	}
}
