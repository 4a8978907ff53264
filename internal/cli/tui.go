package cli

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/pybundle/pkg/resolve"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// SelectModel - Interactive requirement selection
// =============================================================================

// SelectModel is the bubbletea model that lets the user deselect
// requirements before they are downloaded. Every requirement starts
// selected.
type SelectModel struct {
	Set    *resolve.RequirementSet
	Reqs   []*resolve.Requirement
	Keep   []bool
	Cursor int
	Height int
	Offset int

	Confirmed   bool
	Interrupted bool
}

// NewSelectModel creates a selection model over set.
func NewSelectModel(set *resolve.RequirementSet) SelectModel {
	reqs := set.Requirements()
	keep := make([]bool, len(reqs))
	for i := range keep {
		keep[i] = true
	}
	return SelectModel{Set: set, Reqs: reqs, Keep: keep, Height: 15}
}

func (m SelectModel) Init() tea.Cmd {
	return nil
}

func (m SelectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.Interrupted = true
			return m, tea.Quit
		case "q", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Reqs)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case " ", "x":
			if len(m.Keep) > 0 {
				m.Keep[m.Cursor] = !m.Keep[m.Cursor]
			}
		case "a":
			all := m.selected() < len(m.Keep)
			for i := range m.Keep {
				m.Keep[i] = all
			}
		case "enter":
			m.Confirmed = true
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 6
		if m.Height < 5 {
			m.Height = 5
		}
	}
	return m, nil
}

func (m SelectModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Packages"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  space toggle  a all  ⏎ download  q cancel"))
	b.WriteString("\n\n")

	end := m.Offset + m.Height
	if end > len(m.Reqs) {
		end = len(m.Reqs)
	}
	for i := m.Offset; i < end; i++ {
		r := m.Reqs[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		box := "[ ]"
		if m.Keep[i] {
			box = "[x]"
		}
		line := fmt.Sprintf("%s%s %-28s", cursor, box, r.Package)
		detail := ""
		if r.Aliased() && len(r.Imports) > 0 {
			detail = "import " + strings.Join(r.Imports, ", ") + "  "
		}
		detail += fmt.Sprintf("%d files", len(sourceFiles(r)))

		switch {
		case i == m.Cursor:
			b.WriteString(listSelectedStyle.Render(line))
		case m.Keep[i]:
			b.WriteString(listNormalStyle.Render(line))
		default:
			b.WriteString(listDimStyle.Render(line))
		}
		b.WriteString(" ")
		b.WriteString(listDimStyle.Render(detail))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d selected]", m.selected(), len(m.Reqs))))
	return b.String()
}

func (m SelectModel) selected() int {
	n := 0
	for _, k := range m.Keep {
		if k {
			n++
		}
	}
	return n
}

// Selection returns the chosen requirements. A cancelled model selects
// nothing.
func (m SelectModel) Selection() *resolve.RequirementSet {
	if !m.Confirmed {
		return &resolve.RequirementSet{}
	}
	var keep []string
	for i, r := range m.Reqs {
		if m.Keep[i] {
			keep = append(keep, r.Package)
		}
	}
	return m.Set.Retain(keep)
}

// selectRequirements runs the selection list. ctrl+c interrupts the whole
// run.
func selectRequirements(ctx context.Context, set *resolve.RequirementSet) (*resolve.RequirementSet, error) {
	final, err := tea.NewProgram(NewSelectModel(set), tea.WithContext(ctx)).Run()
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, err
	}
	m := final.(SelectModel)
	if m.Interrupted {
		return nil, context.Canceled
	}
	return m.Selection(), nil
}

// sourceFiles returns the distinct files that import r, in scan order.
func sourceFiles(r *resolve.Requirement) []string {
	seen := make(map[string]bool)
	var files []string
	for _, src := range r.Sources {
		if !seen[src.File] {
			seen[src.File] = true
			files = append(files, src.File)
		}
	}
	return files
}
