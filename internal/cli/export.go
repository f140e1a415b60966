package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/kintree/pkg/pipeline"
)

// exportOpts holds the export-only flags.
type exportOpts struct {
	output    string // output file, base path for several formats, or directory with --all
	formats   string
	all       bool
	title     string
	direction string
	scale     float64
}

// exportCommand creates the export command, which writes an outline in one
// or more formats.
func (c *CLI) exportCommand() *cobra.Command {
	var flags outlineFlags
	var opts exportOpts

	cmd := &cobra.Command{
		Use:   "export <snapshot|family-id>",
		Short: "Export a family tree as CSV, Markdown, text, JSON, DOT, SVG, PNG or PDF",
		Example: `  kintree export smith -f md
  kintree export smith -f csv,svg -o out/smith
  kintree export families.json --all -f csv -o sheets/
  kintree export smith -f dot -o -`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			formats := parseFormats(opts.formats)
			if err := pipeline.ValidateFormats(formats); err != nil {
				return err
			}
			src := resolveSource(args[0], flags.family)
			return c.runExport(cmd.Context(), src, &flags, &opts, formats)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", `output file, base path (several formats) or directory (--all); "-" for stdout`)
	cmd.Flags().StringVarP(&opts.formats, "format", "f", "", fmt.Sprintf("output format(s), comma-separated: %s (default md)", strings.Join(pipeline.FormatNames(), ", ")))
	cmd.Flags().BoolVar(&opts.all, "all", false, "export every family in the store")
	cmd.Flags().StringVar(&opts.title, "title", "", "document title (default: family name)")
	cmd.Flags().StringVar(&opts.direction, "direction", "", "graph rank direction: TB (default), LR")
	cmd.Flags().Float64Var(&opts.scale, "scale", 0, "PNG scale factor (default 2)")

	return cmd
}

func (c *CLI) runExport(ctx context.Context, src source, flags *outlineFlags, eo *exportOpts, formats []string) error {
	runner, err := c.newRunner(ctx, src, flags.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	ids, err := c.familyIDs(ctx, runner, src, flags.viewer, eo.all)
	if err != nil {
		return err
	}
	if eo.output == "-" && (len(ids) > 1 || len(formats) > 1) {
		return fmt.Errorf("stdout output needs exactly one family and one format")
	}

	opts := c.options(flags, "")
	opts.Formats = formats
	if eo.title != "" {
		opts.Title = eo.title
	}
	opts.Direction = eo.direction
	opts.Scale = eo.scale

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Exporting %d family tree(s)...", len(ids)))
	spinner.Start()
	results, err := runner.ExecuteAll(ctx, ids, opts, c.cfg().Server.Concurrency)
	switch {
	case err != nil && spinner.Cancelled():
		spinner.Stop()
		return ctx.Err()
	case err != nil:
		spinner.StopWithError("Export failed")
		return err
	case eo.output == "-":
		spinner.Stop()
		_, err := c.Out.Write(results[0].Artifacts[formats[0]])
		return err
	}
	spinner.StopWithSuccess(fmt.Sprintf("Exported %d family tree(s)", len(results)))

	for _, res := range results {
		id := res.Outline.FamilyID
		printInfo("%s", StyleName.Render(id))
		printStats(res.Stats.MemberCount, res.Stats.RowCount, res.CacheInfo.OutlineHit)
		for _, format := range formats {
			path := outputPath(eo.output, id, format, len(formats), eo.all)
			if err := writeArtifact(path, res.Artifacts[format]); err != nil {
				return err
			}
			printFile(path)
		}
	}
	return nil
}

// outputPath names the file for one family and format. With all set output
// is a directory. Otherwise a single format writes to output as given and
// several formats use output, minus a known format extension, as base path.
func outputPath(output, familyID, format string, nformats int, all bool) string {
	name := familyID + "." + format
	switch {
	case all:
		return filepath.Join(output, name)
	case output == "":
		return name
	case nformats == 1:
		return output
	}
	return basePath(output) + "." + format
}

// basePath strips a known format extension from output.
func basePath(output string) string {
	ext := filepath.Ext(output)
	if pipeline.ValidFormats[strings.TrimPrefix(ext, ".")] {
		return strings.TrimSuffix(output, ext)
	}
	return output
}

func writeArtifact(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
