package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/archview/pkg/calm"
	"github.com/matzehuels/archview/pkg/decision"
	"github.com/matzehuels/archview/pkg/graph"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// SelectModel - Interactive decision selection
// =============================================================================

// selectRow addresses one choice of one decision point.
type selectRow struct {
	point  int
	choice int
}

// SelectModel is the bubbletea model for picking decision choices.
type SelectModel struct {
	Graph      graph.Graph
	Points     []decision.Point
	Selections decision.Selections
	Cursor     int
	Confirmed  bool

	rows []selectRow
}

// NewSelectModel creates a selector over the decision points of g, starting
// from sel.
func NewSelectModel(g graph.Graph, sel decision.Selections) SelectModel {
	points := decision.ExtractPoints(g.Nodes)
	var rows []selectRow
	for pi, p := range points {
		for ci := range p.Choices {
			rows = append(rows, selectRow{point: pi, choice: ci})
		}
	}
	if sel == nil {
		sel = decision.Selections{}
	}
	return SelectModel{Graph: g, Points: points, Selections: sel.Clone(), rows: rows}
}

func (m SelectModel) Init() tea.Cmd {
	return nil
}

func (m SelectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "up", "k":
		if m.Cursor > 0 {
			m.Cursor--
		}
	case "down", "j":
		if m.Cursor < len(m.rows)-1 {
			m.Cursor++
		}
	case " ", "x":
		if len(m.rows) > 0 {
			r := m.rows[m.Cursor]
			m.Selections = m.Selections.Toggle(m.Points[r.point], r.choice)
		}
	case "c":
		m.Selections = decision.Selections{}
	case "enter":
		m.Confirmed = true
		return m, tea.Quit
	}
	return m, nil
}

func (m SelectModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Choices"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  space toggle  c clear  ⏎ done  q quit"))
	b.WriteString("\n")

	last := -1
	for i, r := range m.rows {
		p := m.Points[r.point]
		if r.point != last {
			last = r.point
			b.WriteString("\n")
			b.WriteString(StyleHighlight.Render(p.GroupID))
			b.WriteString(" " + listDimStyle.Render(promptOf(p)))
			b.WriteString("\n")
		}

		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		line := fmt.Sprintf("%s%s %s", cursor, m.marker(p, r.choice), p.Choices[r.choice].Description)

		switch {
		case i == m.Cursor:
			b.WriteString(listSelectedStyle.Render(line))
		case m.active(p, r.choice):
			b.WriteString(listNormalStyle.Render(line))
		default:
			b.WriteString(listDimStyle.Render(line))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.summary())
	b.WriteString("\n")
	return b.String()
}

// marker draws a radio button for oneOf points and a checkbox for anyOf.
func (m SelectModel) marker(p decision.Point, choice int) string {
	on := m.selected(p, choice)
	if p.Mode == calm.ModeAnyOf {
		if on {
			return "[x]"
		}
		return "[ ]"
	}
	if on {
		return "(•)"
	}
	return "( )"
}

func (m SelectModel) selected(p decision.Point, choice int) bool {
	for _, i := range m.Selections[p.GroupID] {
		if i == choice {
			return true
		}
	}
	return false
}

// active reports whether the choice is in effect: selected, or part of a
// group with no selection.
func (m SelectModel) active(p decision.Point, choice int) bool {
	return len(m.Selections[p.GroupID]) == 0 || m.selected(p, choice)
}

// summary reports how much of the graph the current selection leaves visible.
func (m SelectModel) summary() string {
	nodes, edges := m.VisibleCounts()
	return listDimStyle.Render("visible: ") +
		StyleNumber.Render(fmt.Sprintf("%d/%d", nodes, len(m.Graph.Nodes))) + listDimStyle.Render(" nodes, ") +
		StyleNumber.Render(fmt.Sprintf("%d/%d", edges, len(m.Graph.Edges))) + listDimStyle.Render(" edges")
}

// VisibleCounts returns the number of visible nodes and edges.
func (m SelectModel) VisibleCounts() (nodes, edges int) {
	view := decision.Apply(m.Graph, m.Selections)
	if !view.Active {
		return len(m.Graph.Nodes), len(m.Graph.Edges)
	}
	return len(view.Nodes), len(view.Edges)
}

// =============================================================================
// Command
// =============================================================================

// selectCommand opens the interactive selector.
func (c *CLI) selectCommand() *cobra.Command {
	var (
		opts    docOpts
		selects []string
	)

	cmd := &cobra.Command{
		Use:   "select <document>",
		Short: "Pick decision choices interactively",
		Long: `Open an interactive list of the document's decision points. On exit the
chosen selections are printed together with a render command that applies them.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sel, err := decision.ParseSelections(selects...)
			if err != nil {
				return err
			}
			g, _, err := c.buildGraph(cmd.Context(), args[0], opts)
			if err != nil {
				return err
			}

			model := NewSelectModel(g, sel)
			if len(model.Points) == 0 {
				printInfo("No decision points")
				return nil
			}

			final, err := tea.NewProgram(model, tea.WithContext(cmd.Context())).Run()
			if err != nil {
				return err
			}
			m := final.(SelectModel)
			if !m.Confirmed {
				printInfo("Cancelled")
				return nil
			}

			nodes, edges := m.VisibleCounts()
			fmt.Fprintln(c.out, m.Selections.String())
			printKeyValue("Nodes", fmt.Sprintf("%d/%d visible", nodes, len(g.Nodes)))
			printKeyValue("Edges", fmt.Sprintf("%d/%d visible", edges, len(g.Edges)))
			if len(m.Selections) > 0 {
				printNextStep("Render it", "archview render "+args[0]+selectFlags(m.Selections))
			}
			return nil
		},
	}

	opts.register(cmd)
	cmd.Flags().StringArrayVarP(&selects, "select", "s", nil, "initial selection group=i[,j...] (repeatable)")

	return cmd
}

// selectFlags turns sel back into --select arguments.
func selectFlags(sel decision.Selections) string {
	var b strings.Builder
	for _, part := range strings.Fields(sel.String()) {
		b.WriteString(" --select ")
		b.WriteString(part)
	}
	return b.String()
}
