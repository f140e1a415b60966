package cli

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/kintree/pkg/layout"
	"github.com/matzehuels/kintree/pkg/outline"
)

// Tree view styles
var (
	treeSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	treeDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// browseCommand creates the browse command, an interactive collapsible view
// of an outline.
func (c *CLI) browseCommand() *cobra.Command {
	var flags outlineFlags
	var depth int

	cmd := &cobra.Command{
		Use:   "browse <snapshot|family-id>",
		Short: "Browse a family tree interactively",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src := resolveSource(args[0], flags.family)
			return c.runBrowse(cmd.Context(), src, &flags, depth)
		},
	}

	flags.register(cmd)
	cmd.Flags().IntVar(&depth, "expand", 1, "levels expanded at start")

	return cmd
}

func (c *CLI) runBrowse(ctx context.Context, src source, flags *outlineFlags, expand int) error {
	runner, err := c.newRunner(ctx, src, flags.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	ids, err := c.familyIDs(ctx, runner, src, flags.viewer, false)
	if err != nil {
		return err
	}
	out, err := runner.Outline(ctx, c.options(flags, ids[0]))
	if err != nil {
		return err
	}

	title := out.FamilyName
	if title == "" {
		title = out.FamilyID
	}
	m := NewTreeModel(title, out.Rows, flags.plain)
	m.Tree.CollapseBelow(expand)
	_, err = tea.NewProgram(m, tea.WithContext(ctx), tea.WithAltScreen()).Run()
	return err
}

// =============================================================================
// TreeModel - Collapsible outline view
// =============================================================================

// TreeModel is the bubbletea model for browsing an outline.
type TreeModel struct {
	Title  string
	Tree   *layout.Tree
	Plain  bool
	Cursor int
	Offset int
	Height int
}

// NewTreeModel creates a tree model over rows.
func NewTreeModel(title string, rows []outline.Row, plain bool) TreeModel {
	return TreeModel{
		Title:  title,
		Tree:   layout.BuildTree(rows),
		Plain:  plain,
		Height: 20,
	}
}

func (m TreeModel) Init() tea.Cmd {
	return nil
}

func (m TreeModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	visible := m.Tree.Visible()
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
			}
		case "down", "j":
			if m.Cursor < len(visible)-1 {
				m.Cursor++
			}
		case "home", "g":
			m.Cursor = 0
		case "end", "G":
			m.Cursor = len(visible) - 1
		case "enter", " ":
			if m.Cursor < len(visible) {
				m.Tree.Toggle(visible[m.Cursor])
			}
		case "right", "l":
			if m.Cursor < len(visible) {
				visible[m.Cursor].Collapsed = false
			}
		case "left", "h":
			m.collapseOrParent(visible)
		case "e":
			m.Tree.ExpandAll()
		case "c":
			m.Tree.CollapseBelow(0)
			m.Cursor = m.rootIndex(visible)
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-5, 5)
	}

	m.clamp()
	return m, nil
}

// collapseOrParent collapses the node under the cursor or, when it is
// already collapsed or a leaf, moves to its parent.
func (m *TreeModel) collapseOrParent(visible []*layout.Node) {
	if m.Cursor >= len(visible) {
		return
	}
	n := visible[m.Cursor]
	if len(n.Children) > 0 && !n.Collapsed {
		n.Collapsed = true
		return
	}
	for i := m.Cursor - 1; i >= 0; i-- {
		if visible[i].Depth < n.Depth {
			m.Cursor = i
			return
		}
	}
}

// rootIndex returns the visible position of the root that contains the node
// under the cursor, after everything was collapsed.
func (m *TreeModel) rootIndex(before []*layout.Node) int {
	if m.Cursor >= len(before) {
		return 0
	}
	var root *layout.Node
	for i := m.Cursor; i >= 0; i-- {
		if before[i].Depth == 0 {
			root = before[i]
			break
		}
	}
	for i, n := range m.Tree.Visible() {
		if n == root {
			return i
		}
	}
	return 0
}

func (m *TreeModel) clamp() {
	n := len(m.Tree.Visible())
	m.Cursor = min(max(m.Cursor, 0), max(n-1, 0))
	if m.Cursor < m.Offset {
		m.Offset = m.Cursor
	}
	if m.Cursor >= m.Offset+m.Height {
		m.Offset = m.Cursor - m.Height + 1
	}
}

func (m TreeModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render(m.Title))
	b.WriteString("\n")
	b.WriteString(treeDimStyle.Render("↑/↓ navigate  ⏎ toggle  ←/→ collapse/expand  e expand all  c collapse all  q quit"))
	b.WriteString("\n\n")

	visible := m.Tree.Visible()
	end := min(m.Offset+m.Height, len(visible))
	for i := m.Offset; i < end; i++ {
		n := visible[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = treeSelectedStyle.Render("▸ ")
		}
		fold := "  "
		switch {
		case len(n.Children) > 0 && n.Collapsed:
			fold = treeDimStyle.Render("▶ ")
		case len(n.Children) > 0:
			fold = treeDimStyle.Render("▼ ")
		}

		row := n.Row
		row.Column = 0
		line := styledRow(row, m.Plain)
		if n.Collapsed {
			line += treeDimStyle.Render(fmt.Sprintf("  (+%d)", countBelow(n)))
		}
		b.WriteString(cursor + strings.Repeat("  ", n.Depth) + fold + line + "\n")
	}

	b.WriteString("\n")
	b.WriteString(treeDimStyle.Render(fmt.Sprintf("  [%d/%d]", min(m.Cursor+1, len(visible)), len(visible))))
	return b.String()
}

// countBelow returns the number of descendants of n.
func countBelow(n *layout.Node) int {
	count := 0
	for _, c := range n.Children {
		count += 1 + countBelow(c)
	}
	return count
}
