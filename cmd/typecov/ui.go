// # cmd/typecov/ui.go
package main

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"typecov/internal/coverage"
)

var (
	titleStyle = lipgloss.NewStyle().
			MarginLeft(2).
			Foreground(lipgloss.Color("#3B82F6")).
			Bold(true).
			Render

	docStyle = lipgloss.NewStyle().Margin(1, 2)

	untypedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F87171")).
			Bold(true)

	partialStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FBBF24")).
			Bold(true)

	typedStyle = lipgloss.NewStyle().
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
	list       list.Model
	rendered   string
	lastUpdate time.Time
	files      int64
	typedPct   int64
	hasData    bool
}

type updateMsg struct {
	snapshot *coverage.Snapshot
	rendered string
	recorded []*coverage.Snapshot
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
		m.list.SetSize(msg.Width-h, (msg.Height-v)/2)
	case updateMsg:
		m.rendered = msg.rendered
		m.lastUpdate = time.Now()
		m.hasData = true
		m.files = msg.snapshot.Files
		if methods := msg.snapshot.Methods(); methods > 0 {
			m.typedPct = msg.snapshot.MethodsWithSig * 100 / methods
		}

		items := []list.Item{}
		for i := len(msg.recorded) - 1; i >= 0; i-- {
			s := msg.recorded[i]
			title := time.Unix(s.Timestamp, 0).UTC().Format("2006-01-02 15:04:05")
			if s.CommitSHA != "" {
				title += " @ " + s.CommitSHA
			}
			var pct int64
			if methods := s.Methods(); methods > 0 {
				pct = s.MethodsWithSig * 100 / methods
			}
			items = append(items, item{
				title: title,
				desc:  fmt.Sprintf("%d files | %d%% methods typed", s.Files, pct),
			})
		}
		m.list.SetItems(items)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m model) View() string {
	status := statusStyle.Render(fmt.Sprintf("Last update: %v | %d files",
		m.lastUpdate.Format("15:04:05"), m.files))

	var summary string
	switch {
	case !m.hasData:
		summary = statusStyle.Render("waiting for snapshots...")
	case m.typedPct >= 80:
		summary = typedStyle.Render(fmt.Sprintf("%d%% methods typed", m.typedPct))
	case m.typedPct >= 40:
		summary = partialStyle.Render(fmt.Sprintf("%d%% methods typed", m.typedPct))
	default:
		summary = untypedStyle.Render(fmt.Sprintf("%d%% methods typed", m.typedPct))
	}

	header := fmt.Sprintf("%s\n%s | %s\n", titleStyle("Typing Coverage Monitor"), status, summary)
	return docStyle.Render(header + "\n" + m.list.View() + "\n" + m.rendered)
}

func initialModel() model {
	l := list.New([]list.Item{}, list.NewDefaultDelegate(), 0, 0)
	l.Title = "Recorded Snapshots"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)

	return model{
		list:       l,
		lastUpdate: time.Now(),
	}
}

func (a *App) RunUI() error {
	p := tea.NewProgram(initialModel(), tea.WithAltScreen())
	a.teaProgram = p

	// Seed the dashboard with the last recording, if any.
	go func() {
		recorded, err := a.Store.Latest(a.Config.Project, 20)
		if err != nil || len(recorded) == 0 {
			return
		}
		a.pushUpdate(recorded[len(recorded)-1])
	}()

	_, err := p.Run()
	return err
}
