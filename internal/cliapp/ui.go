package cliapp

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"lattice/internal/query"
)

var (
	titleStyle = lipgloss.NewStyle().
			MarginLeft(2).
			Foreground(lipgloss.Color("#3B82F6")).
			Bold(true).
			Render

	docStyle = lipgloss.NewStyle().Margin(1, 2)

	categoryStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FBBF24")).
			Bold(true)

	relationStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#10B981"))

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#64748B")).
			Italic(true)
)

type nodeItem struct {
	view query.NodeView
}

func (i nodeItem) Title() string { return i.view.Title }
func (i nodeItem) Description() string {
	if i.view.Category == "" {
		return i.view.ID
	}
	return fmt.Sprintf("%s · %s", i.view.ID, i.view.Category)
}
func (i nodeItem) FilterValue() string { return i.view.Title + " " + i.view.ID }

type uiModel struct {
	svc      *query.Service
	nodeList list.Model
	detail   string
	showing  bool
	width    int
	height   int
}

func newUIModel(svc *query.Service) uiModel {
	ctx := context.Background()

	items := make([]list.Item, 0)
	// The centrality ranking doubles as a browsing order: hubs first.
	for _, entry := range svc.Centrality(ctx, 0, false) {
		items = append(items, nodeItem{view: entry.Node})
	}

	nodeList := list.New(items, list.NewDefaultDelegate(), 0, 0)
	nodeList.Title = "lattice · knowledge graph"
	nodeList.SetShowStatusBar(true)
	nodeList.SetFilteringEnabled(true)

	return uiModel{svc: svc, nodeList: nodeList}
}

func (m uiModel) Init() tea.Cmd {
	return nil
}

func (m uiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			if m.showing {
				m.showing = false
				return m, nil
			}
			return m, tea.Quit
		case "esc":
			if m.showing {
				m.showing = false
				return m, nil
			}
		case "enter":
			if !m.showing {
				if item, ok := m.nodeList.SelectedItem().(nodeItem); ok {
					m.detail = m.renderDetail(item.view.ID)
					m.showing = true
				}
				return m, nil
			}
		}
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		h, v := docStyle.GetFrameSize()
		m.nodeList.SetSize(msg.Width-h, msg.Height-v)
	}

	var cmd tea.Cmd
	m.nodeList, cmd = m.nodeList.Update(msg)
	return m, cmd
}

func (m uiModel) View() string {
	if m.showing {
		return docStyle.Render(m.detail)
	}
	return docStyle.Render(m.nodeList.View())
}

func (m uiModel) renderDetail(id string) string {
	ctx := context.Background()

	node, err := m.svc.GetNode(ctx, id)
	if err != nil {
		return fmt.Sprintf("error: %v", err)
	}

	var sb strings.Builder
	sb.WriteString(titleStyle(node.Title))
	sb.WriteString("\n\n")
	sb.WriteString(fmt.Sprintf("id:       %s\n", node.ID))
	if node.Category != "" {
		sb.WriteString(fmt.Sprintf("category: %s\n", categoryStyle.Render(node.Category)))
	}
	if node.Source != "" {
		sb.WriteString(fmt.Sprintf("source:   %s\n", node.Source))
	}

	if nb, nbErr := m.svc.Neighborhood(ctx, id, 1, nil); nbErr == nil && len(nb.Edges) > 0 {
		sb.WriteString("\nconnections:\n")
		for _, e := range nb.Edges {
			other := e.To
			arrow := "->"
			if e.To == id {
				other = e.From
				arrow = "<-"
			}
			sb.WriteString(fmt.Sprintf("  %s %s %s\n",
				arrow, relationStyle.Render(e.Relationship), other))
		}
	}

	if prereqs, pErr := m.svc.Prerequisites(ctx, id); pErr == nil && len(prereqs.Ordered) > 0 {
		sb.WriteString("\nlearning order:\n")
		for i, n := range prereqs.Ordered {
			sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, n.Title))
		}
	}

	sb.WriteString("\n")
	sb.WriteString(statusStyle.Render("esc to go back · q to quit"))
	return sb.String()
}

func runUI(svc *query.Service) error {
	program := tea.NewProgram(newUIModel(svc), tea.WithAltScreen())
	_, err := program.Run()
	return err
}
