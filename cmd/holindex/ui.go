package main

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().
			MarginLeft(2).
			Foreground(lipgloss.Color("#3B82F6")).
			Bold(true).
			Render

	docStyle = lipgloss.NewStyle().Margin(1, 2)

	unresolvedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F87171")).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#10B981")).
			Bold(true)

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#64748B")).
			Italic(true)
)

type item struct {
	title, desc string
}

func (i item) Title() string       { return i.title }
func (i item) Description() string { return i.desc }
func (i item) FilterValue() string { return i.title + i.desc }

type model struct {
	list        list.Model
	unresolved  []string
	lastUpdate  time.Time
	files       int
	definitions int
	modules     int
}

type updateMsg struct {
	unresolved  []string
	files       int
	definitions int
	modules     int
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" || msg.String() == "q" {
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		h, v := docStyle.GetFrameSize()
		m.list.SetSize(msg.Width-h, msg.Height-v-4)
	case updateMsg:
		m.unresolved = msg.unresolved
		m.files = msg.files
		m.definitions = msg.definitions
		m.modules = msg.modules
		m.lastUpdate = time.Now()

		items := []list.Item{}
		for _, dep := range m.unresolved {
			items = append(items, item{
				title: "Unresolved Dependency",
				desc:  dep,
			})
		}
		m.list.SetItems(items)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m model) View() string {
	status := statusStyle.Render(fmt.Sprintf("Last update: %v | %d files | %d definitions | %d modules",
		m.lastUpdate.Format("15:04:05"), m.files, m.definitions, m.modules))

	var summary string
	if len(m.unresolved) == 0 {
		summary = successStyle.Render("✅ All dependencies resolved")
	} else {
		summary = fmt.Sprintf("⚠️  %s",
			unresolvedStyle.Render(fmt.Sprintf("%d Unresolved", len(m.unresolved))))
	}

	header := fmt.Sprintf("%s\n%s | %s\n", titleStyle("Proof Library Index Monitor"), status, summary)
	return docStyle.Render(header + "\n" + m.list.View())
}

func initialModel() model {
	l := list.New([]list.Item{}, list.NewDefaultDelegate(), 0, 0)
	l.Title = "Unresolved Dependencies"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)

	return model{
		list:       l,
		lastUpdate: time.Now(),
	}
}
