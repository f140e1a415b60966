package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/kintree/pkg/folders"
	"github.com/matzehuels/kintree/pkg/pipeline"
)

var tableHeaderStyle = lipgloss.NewStyle().Foreground(colorGray).Bold(true)

// foldersCommand creates the folders command. Without a family it lists the
// visible families; with one it lists the members of its folder.
func (c *CLI) foldersCommand() *cobra.Command {
	var flags outlineFlags
	var snapshot string

	cmd := &cobra.Command{
		Use:   "folders [family-id]",
		Short: "List families, or the members of one family's folder",
		Long: `List families, or the members of one family's folder.

A folder holds a family's own members plus the spouses who married in from
other families and those spouses' children, each with a generation computed
across all families.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src := source{snapshot: snapshot}
			if len(args) == 1 {
				src.familyID = args[0]
			}
			return c.runFolders(cmd.Context(), src, &flags)
		},
	}

	cmd.Flags().StringVar(&snapshot, "snapshot", "", "read families from this JSON/TOML snapshot")
	cmd.Flags().StringVar(&flags.viewer, "viewer", "", "act as this member; only their families are visible")
	cmd.Flags().BoolVar(&flags.noCache, "no-cache", false, "disable caching")

	return cmd
}

func (c *CLI) runFolders(ctx context.Context, src source, flags *outlineFlags) error {
	runner, err := c.newRunner(ctx, src, flags.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	if src.familyID == "" {
		return c.listFamilies(ctx, runner, flags.viewer)
	}
	folder, err := runner.Folder(ctx, pipeline.Options{FamilyID: src.familyID, Viewer: flags.viewer})
	if err != nil {
		return err
	}
	fmt.Fprintln(c.Out, StyleTitle.Render(folder.Name))
	fmt.Fprintln(c.Out, folderTable(folder))
	if len(folder.Linked) > 0 {
		fmt.Fprintln(c.Out, StyleDim.Render("linked: "+strings.Join(folder.Linked, ", ")))
	}
	return nil
}

func (c *CLI) listFamilies(ctx context.Context, runner *pipeline.Runner, viewer string) error {
	ids, err := runner.FamilyIDs(ctx, viewer)
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		printInfo("No families found")
		return nil
	}
	rows := make([][]string, 0, len(ids))
	for _, id := range ids {
		folder, err := runner.Folder(ctx, pipeline.Options{FamilyID: id, Viewer: viewer})
		if err != nil {
			return err
		}
		parent := folder.ParentID
		if parent == "" {
			parent = "—"
		}
		direct := 0
		for _, e := range folder.Entries {
			if e.Kind == folders.KindDirect {
				direct++
			}
		}
		rows = append(rows, []string{folder.ID, folder.Name, parent, strconv.Itoa(direct), strconv.Itoa(len(folder.Entries))})
	}
	fmt.Fprintln(c.Out, newTable("ID", "Name", "Parent", "Members", "Folder").Rows(rows...).Render())
	return nil
}

// folderTable renders the entries of f, one row per member.
func folderTable(f *folders.Folder) string {
	rows := make([][]string, len(f.Entries))
	for i, e := range f.Entries {
		marker := " "
		if e.Member.Color != "" {
			marker = swatch("●", e.Member.Color)
		}
		role := e.Role
		if role == "" {
			role = "—"
		}
		rows[i] = []string{marker, e.Member.Name, strconv.Itoa(e.Member.Generation), string(e.Kind), role, e.Source}
	}
	return newTable("", "Name", "Gen", "Kind", "Role", "Family").Rows(rows...).Render()
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return tableHeaderStyle
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})
}
