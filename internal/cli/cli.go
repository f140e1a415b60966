// Package cli implements the kintree command-line interface.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/kintree/pkg/buildinfo"
	"github.com/matzehuels/kintree/pkg/cache"
	"github.com/matzehuels/kintree/pkg/config"
	"github.com/matzehuels/kintree/pkg/pipeline"
	"github.com/matzehuels/kintree/pkg/store"
	"github.com/matzehuels/kintree/pkg/store/dynamo"
	"github.com/matzehuels/kintree/pkg/store/mongo"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// Out receives command output. Logs and the spinner go to stderr.
	Out io.Writer

	configPath string
	config     *config.Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Out:    os.Stdout,
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "kintree",
		Short:        "kintree rebuilds family trees from genealogy records",
		Long:         `kintree reconstructs family trees from member records and their parent, child and spouse links, and exports them as indented outlines, spreadsheets, documents and graphs.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return c.loadConfig()
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/kintree/config.toml)")

	root.AddCommand(c.outlineCommand())
	root.AddCommand(c.exportCommand())
	root.AddCommand(c.browseCommand())
	root.AddCommand(c.foldersCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

func (c *CLI) loadConfig() error {
	if c.config != nil {
		return nil
	}
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	c.config = cfg
	if path := c.configPath; path != "" {
		c.Logger.Debug("loaded config", "path", path)
	}
	return nil
}

// cfg returns the loaded configuration, or the defaults before loading.
func (c *CLI) cfg() *config.Config {
	if c.config == nil {
		return config.Default()
	}
	return c.config
}

// =============================================================================
// Store and Cache Factory
// =============================================================================

// source is where a command reads families from.
type source struct {
	snapshot string // snapshot file given on the command line; empty = configured store
	familyID string
}

// resolveSource interprets a positional argument: an existing .json or .toml
// file is a snapshot, anything else is a family id in the configured store.
func resolveSource(arg, family string) source {
	if arg != "" {
		ext := strings.ToLower(filepath.Ext(arg))
		if ext == ".json" || ext == ".toml" {
			if _, err := os.Stat(arg); err == nil {
				return source{snapshot: arg, familyID: family}
			}
		}
		if family == "" {
			family = arg
		}
	}
	return source{familyID: family}
}

// openStore opens the store for src: the snapshot file when one was given,
// otherwise the store selected in the config. Remote stores are wrapped in a
// read-through cache.
func (c *CLI) openStore(ctx context.Context, src source, fc cache.Cache) (store.Store, error) {
	if src.snapshot != "" {
		return store.OpenFile(src.snapshot)
	}

	sc := c.cfg().Store
	logger := loggerFromContext(ctx)
	switch sc.Kind {
	case config.StoreMongo:
		logger.Debug("opening mongo store", "database", sc.Database)
		s, err := mongo.Open(ctx, mongo.Config{
			URI:        sc.URI,
			Database:   sc.Database,
			Collection: sc.Collection,
			Timeout:    sc.Timeout,
		})
		if err != nil {
			return nil, err
		}
		return store.Cached(s, fc, store.CacheOptions{Source: config.StoreMongo}), nil
	case config.StoreDynamo:
		logger.Debug("opening dynamo store", "table", sc.Table)
		s, err := dynamo.Open(ctx, dynamo.Config{Table: sc.Table, Region: sc.Region, Endpoint: sc.Endpoint})
		if err != nil {
			return nil, err
		}
		return store.Cached(s, fc, store.CacheOptions{Source: config.StoreDynamo}), nil
	default:
		return store.OpenFile(sc.Path)
	}
}

// newCache creates the configured cache. noCache forces the null cache.
func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	cc := c.cfg().Cache
	switch cc.Kind {
	case config.CacheNone:
		return cache.NewNullCache(), nil
	case config.CacheRedis:
		return cache.NewRedisCache(ctx, cc.URL)
	default:
		dir, err := c.cacheDir()
		if err != nil {
			return cache.NewNullCache(), nil
		}
		return cache.NewFileCache(dir)
	}
}

// cacheDir returns the configured cache directory or the XDG default.
func (c *CLI) cacheDir() (string, error) {
	if dir := c.cfg().Cache.Dir; dir != "" {
		return dir, nil
	}
	return config.CacheDir()
}

// newRunner creates a pipeline runner for src.
func (c *CLI) newRunner(ctx context.Context, src source, noCache bool) (*pipeline.Runner, error) {
	fc, err := c.newCache(ctx, noCache)
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}
	st, err := c.openStore(ctx, src, fc)
	if err != nil {
		fc.Close()
		return nil, err
	}
	return pipeline.NewRunner(st, fc, nil, loggerFromContext(ctx)), nil
}

// =============================================================================
// Options Helpers
// =============================================================================

// outlineFlags are the outline options shared by several commands. Zero
// values fall back to the config file, then to the pipeline defaults.
type outlineFlags struct {
	family   string
	viewer   string
	depth    int
	label    string
	locale   string
	policy   string
	seed     uint64
	noCache  bool
	refresh  bool
	plain    bool
	detailed bool
}

func (f *outlineFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.family, "family", "", "family id (when the argument is a snapshot file)")
	cmd.Flags().StringVar(&f.viewer, "viewer", "", "act as this member; only their families are visible")
	cmd.Flags().IntVar(&f.depth, "depth", 0, fmt.Sprintf("maximum depth below each root (default %d)", pipeline.DefaultMaxDepth))
	cmd.Flags().StringVar(&f.label, "label", "", `generation label template (default "Generation %d")`)
	cmd.Flags().StringVar(&f.locale, "locale", "", "locale for name ordering, e.g. de or sv")
	cmd.Flags().StringVar(&f.policy, "policy", "", "root representative policy: male (default), first")
	cmd.Flags().Uint64Var(&f.seed, "seed", 0, fmt.Sprintf("seed for colors of members stored without one (default %d)", pipeline.DefaultSeed))
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&f.refresh, "refresh", false, "rebuild even when a cached outline exists")
	cmd.Flags().BoolVar(&f.plain, "plain", false, "omit color markers")
	cmd.Flags().BoolVar(&f.detailed, "detailed", false, "include member details in graph exports")
}

// options merges the flags over the config file's [outline] section.
func (c *CLI) options(f *outlineFlags, familyID string) pipeline.Options {
	oc := c.cfg().Outline
	opts := pipeline.Options{
		FamilyID:        familyID,
		Viewer:          f.viewer,
		Refresh:         f.refresh,
		MaxDepth:        oc.MaxDepth,
		GenerationLabel: oc.GenerationLabel,
		Locale:          oc.Locale,
		Policy:          oc.Policy,
		Seed:            oc.Seed,
		Title:           oc.Title,
		Plain:           f.plain,
		Detailed:        f.detailed,
	}
	if f.depth != 0 {
		opts.MaxDepth = f.depth
	}
	if f.label != "" {
		opts.GenerationLabel = f.label
	}
	if f.locale != "" {
		opts.Locale = f.locale
	}
	if f.policy != "" {
		opts.Policy = f.policy
	}
	if f.seed != 0 {
		opts.Seed = f.seed
	}
	return opts
}

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatMarkdown}
	}
	var out []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, strings.ToLower(f))
		}
	}
	return out
}
