package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/matzehuels/kintree/pkg/errors"
	pkgio "github.com/matzehuels/kintree/pkg/io"
	"github.com/matzehuels/kintree/pkg/pipeline"
)

// outlineCommand creates the outline command, which prints a family's tree
// as indented rows.
func (c *CLI) outlineCommand() *cobra.Command {
	var flags outlineFlags
	var asJSON, all bool

	cmd := &cobra.Command{
		Use:   "outline <snapshot|family-id>",
		Short: "Print a family tree as an indented outline",
		Long: `Print a family tree as an indented outline.

The argument is either a family id in the configured store or a JSON/TOML
snapshot file. For snapshots holding several families pick one with --family
or print all of them with --all.`,
		Example: `  kintree outline smith
  kintree outline families.json --family smith --locale de
  kintree outline families.toml --all --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src := resolveSource(args[0], flags.family)
			return c.runOutline(cmd.Context(), src, &flags, asJSON, all)
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVar(&asJSON, "json", false, "print rows as JSON")
	cmd.Flags().BoolVar(&all, "all", false, "outline every family in the store")

	return cmd
}

func (c *CLI) runOutline(ctx context.Context, src source, flags *outlineFlags, asJSON, all bool) error {
	logger := loggerFromContext(ctx)
	runner, err := c.newRunner(ctx, src, flags.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	ids, err := c.familyIDs(ctx, runner, src, flags.viewer, all)
	if err != nil {
		return err
	}

	prog := newProgress(logger)
	results := make([]*pipeline.Result, 0, len(ids))
	if len(ids) == 1 {
		out, hit, err := runner.OutlineWithCacheInfo(ctx, c.options(flags, ids[0]))
		if err != nil {
			return err
		}
		results = append(results, &pipeline.Result{
			Outline:   out,
			Stats:     pipeline.Stats{MemberCount: out.Stats.Members, RowCount: len(out.Rows)},
			CacheInfo: pipeline.CacheInfo{OutlineHit: hit},
		})
	} else {
		opts := c.options(flags, "")
		opts.Formats = []string{pipeline.FormatJSON}
		results, err = runner.ExecuteAll(ctx, ids, opts, c.cfg().Server.Concurrency)
		if err != nil {
			return err
		}
	}
	prog.done(fmt.Sprintf("Built %d outline(s)", len(results)))

	for i, res := range results {
		if asJSON {
			if err := pkgio.WriteRows(res.Outline.Rows, c.Out); err != nil {
				return err
			}
			continue
		}
		if i > 0 {
			fmt.Fprintln(c.Out)
		}
		writeOutline(c.Out, res.Outline, flags.plain)
		logger.Debug("outline stats",
			"family", res.Outline.FamilyID,
			"members", res.Stats.MemberCount,
			"rows", res.Stats.RowCount,
			"cached", res.CacheInfo.OutlineHit)
	}
	return nil
}

// familyIDs picks the families a command works on. With all set every
// visible family is returned. Otherwise the source's family id is used, and
// a snapshot holding a single family needs none.
func (c *CLI) familyIDs(ctx context.Context, runner *pipeline.Runner, src source, viewer string, all bool) ([]string, error) {
	if src.familyID != "" && !all {
		return []string{src.familyID}, nil
	}
	ids, err := runner.FamilyIDs(ctx, viewer)
	if err != nil {
		return nil, err
	}
	switch {
	case len(ids) == 0:
		return nil, errors.New(errors.ErrCodeFamilyNotFound, "no families found")
	case all || len(ids) == 1:
		return ids, nil
	default:
		return nil, errors.New(errors.ErrCodeInvalidInput,
			"snapshot holds %d families; pick one with --family or use --all (ids: %v)", len(ids), ids)
	}
}

// writeOutline prints a title line and the styled rows of out.
func writeOutline(w io.Writer, out *pipeline.Outline, plain bool) {
	title := out.FamilyName
	if title == "" {
		title = out.FamilyID
	}
	fmt.Fprintln(w, StyleTitle.Render(title))
	for _, r := range out.Rows {
		fmt.Fprintln(w, styledRow(r, plain))
	}
}
