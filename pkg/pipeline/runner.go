package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/kintree/pkg/cache"
	"github.com/matzehuels/kintree/pkg/errors"
	"github.com/matzehuels/kintree/pkg/folders"
	"github.com/matzehuels/kintree/pkg/observability"
	"github.com/matzehuels/kintree/pkg/store"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use this to avoid duplicating loading and caching logic.
//
// The Runner is stateless except for the store, cache and logger - it
// doesn't keep pipeline results. Multiple goroutines can safely use the
// same Runner with different options.
type Runner struct {
	Store  store.Store
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner over st.
// If keyer is nil, a DefaultKeyer is used.
// If c is nil, a NullCache is used (caching disabled).
func NewRunner(st store.Store, c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Store:  st,
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete load → outline → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	result := &Result{}

	// Stage 1: Load
	loadStart := time.Now()
	folder, err := r.Folder(ctx, opts)
	if err != nil {
		return nil, err
	}
	result.Folder = folder
	result.Stats.LoadTime = time.Since(loadStart)
	result.Stats.MemberCount = len(folder.Entries)

	r.Logger.Info("loaded family",
		"family", folder.ID,
		"members", len(folder.Entries),
		"linked", len(folder.Linked),
		"duration", result.Stats.LoadTime)

	// Stage 2: Outline
	outlineStart := time.Now()
	out, hit, err := r.OutlineFromFolderWithCacheInfo(ctx, folder, opts)
	if err != nil {
		return nil, fmt.Errorf("outline: %w", err)
	}
	result.Outline = out
	result.Stats.OutlineTime = time.Since(outlineStart)
	result.Stats.RowCount = len(out.Rows)
	result.CacheInfo.OutlineHit = hit

	r.Logger.Info("built outline",
		"rows", len(out.Rows),
		"roots", out.Stats.Roots,
		"cached", hit,
		"duration", result.Stats.OutlineTime)

	// Stage 3: Render
	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, out, folder, opts)
	if err != nil {
		return nil, err
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"cached", renderHit,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// Folder loads the requested family and expands it into a folder. Access is
// checked against opts.Viewer; the expansion itself looks at every family in
// the store, since parents and spouses may be enrolled elsewhere.
func (r *Runner) Folder(ctx context.Context, opts Options) (*folders.Folder, error) {
	if err := opts.ValidateForLoad(); err != nil {
		return nil, err
	}
	if r.Store == nil {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "no family store configured")
	}

	start := time.Now()
	observability.Pipeline().OnLoadStart(ctx, opts.FamilyID)
	folder, err := r.loadFolder(ctx, opts)
	count := 0
	if folder != nil {
		count = len(folder.Entries)
	}
	observability.Pipeline().OnLoadComplete(ctx, opts.FamilyID, count, time.Since(start), err)
	return folder, err
}

func (r *Runner) loadFolder(ctx context.Context, opts Options) (*folders.Folder, error) {
	if _, err := store.Scoped(r.Store, opts.Viewer).Family(ctx, opts.FamilyID); err != nil {
		return nil, err
	}
	all, err := r.Store.Families(ctx)
	if err != nil {
		return nil, fmt.Errorf("list families: %w", err)
	}
	for _, f := range folders.Transform(all) {
		if f.ID == opts.FamilyID {
			return &f, nil
		}
	}
	// The family was deleted between the two reads.
	return nil, store.NotFound(opts.FamilyID)
}

// OutlineWithCacheInfo loads the family and builds its outline with caching.
func (r *Runner) OutlineWithCacheInfo(ctx context.Context, opts Options) (*Outline, bool, error) {
	folder, err := r.Folder(ctx, opts)
	if err != nil {
		return nil, false, err
	}
	return r.OutlineFromFolderWithCacheInfo(ctx, folder, opts)
}

// Outline is a convenience wrapper that calls OutlineWithCacheInfo and discards the cache hit info.
func (r *Runner) Outline(ctx context.Context, opts Options) (*Outline, error) {
	out, _, err := r.OutlineWithCacheInfo(ctx, opts)
	return out, err
}

// OutlineFromFolderWithCacheInfo builds the outline of an already loaded
// folder with caching and returns cache hit info.
func (r *Runner) OutlineFromFolderWithCacheInfo(ctx context.Context, folder *folders.Folder, opts Options) (*Outline, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForOutline(); err != nil {
		return nil, false, err
	}

	cacheKey := r.Keyer.OutlineKey(folderHash(folder), opts.OutlineKeyOpts())

	// Try cache first (unless refresh requested)
	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			var out Outline
			if err := json.Unmarshal(data, &out); err == nil {
				observability.Cache().OnCacheHit(ctx, "outline")
				return &out, true, nil // Cache hit
			}
			// If deserialization fails, fall through to rebuild
		}
		observability.Cache().OnCacheMiss(ctx, "outline")
	}

	start := time.Now()
	observability.Pipeline().OnBuildStart(ctx, folder.ID, len(folder.Entries))
	out, err := BuildOutline(folder, opts)
	rows := 0
	if out != nil {
		rows = len(out.Rows)
	}
	observability.Pipeline().OnBuildComplete(ctx, folder.ID, rows, time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	if out.Stats.Additional > 0 {
		opts.Logger.Debug("members outside the tree", "family", folder.ID, "count", out.Stats.Additional)
	}

	// Cache the result
	if data, err := json.Marshal(out); err == nil {
		if r.Cache.Set(ctx, cacheKey, data, cache.TTLOutline) == nil {
			observability.Cache().OnCacheSet(ctx, "outline", len(data))
		}
	}

	return out, false, nil // Cache miss
}

// RenderWithCacheInfo generates artifacts with caching and returns cache hit info.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, out *Outline, folder *folders.Folder, opts Options) (map[string][]byte, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}

	outlineHash := outlineHash(out)

	// Try to get all formats from cache
	artifacts := make(map[string][]byte, len(opts.Formats))
	allCached := !opts.Refresh
	for _, format := range opts.Formats {
		if !allCached {
			break
		}
		cacheKey := r.Keyer.ArtifactKey(outlineHash, opts.ArtifactKeyOpts(format))
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			artifacts[format] = data
		} else {
			allCached = false
		}
	}
	if allCached && len(artifacts) == len(opts.Formats) {
		observability.Cache().OnCacheHit(ctx, "artifact")
		return artifacts, true, nil // All artifacts from cache
	}
	observability.Cache().OnCacheMiss(ctx, "artifact")

	// Render all formats
	start := time.Now()
	observability.Pipeline().OnRenderStart(ctx, opts.Formats)
	rendered, err := Render(ctx, out, folder, opts)
	observability.Pipeline().OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	// Cache each format
	for format, data := range rendered {
		cacheKey := r.Keyer.ArtifactKey(outlineHash, opts.ArtifactKeyOpts(format))
		if r.Cache.Set(ctx, cacheKey, data, cache.TTLArtifact) == nil {
			observability.Cache().OnCacheSet(ctx, "artifact", len(data))
		}
	}

	return rendered, false, nil // Cache miss
}

// ExecuteAll runs Execute for every family id with at most concurrency
// builds in flight. Results are returned in the order of ids. The first
// error cancels the remaining builds.
func (r *Runner) ExecuteAll(ctx context.Context, ids []string, opts Options, concurrency int) ([]*Result, error) {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	results := make([]*Result, len(ids))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, id := range ids {
		g.Go(func() error {
			o := opts
			o.FamilyID = id
			o.Formats = append([]string(nil), opts.Formats...)
			o.validated = false
			res, err := r.Execute(ctx, o)
			if err != nil {
				return fmt.Errorf("family %s: %w", id, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// FamilyIDs lists the ids of the families visible to viewer.
func (r *Runner) FamilyIDs(ctx context.Context, viewer string) ([]string, error) {
	if r.Store == nil {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "no family store configured")
	}
	all, err := store.Scoped(r.Store, viewer).Families(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(all))
	for i, f := range all {
		ids[i] = f.ID
	}
	return ids, nil
}

// Close releases resources held by the runner: the cache and the store.
func (r *Runner) Close() error {
	var errs []error
	if r.Cache != nil {
		errs = append(errs, r.Cache.Close())
	}
	if r.Store != nil {
		errs = append(errs, r.Store.Close())
	}
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

// folderHash hashes the folder members, which fully determine the outline.
func folderHash(f *folders.Folder) string {
	data, err := json.Marshal(f.Entries)
	if err != nil {
		return ""
	}
	return cache.Hash(data)
}

func outlineHash(out *Outline) string {
	data, err := json.Marshal(out)
	if err != nil {
		return out.Hash
	}
	return cache.Hash(data)
}
