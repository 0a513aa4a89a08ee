package tui

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/flappy-arena/internal/storage"
)

// History layout constants
const (
	minWidthForSidebar = 80 // Minimum width to show the run list sidebar
	sidebarWidth       = 24 // Width of the run list sidebar
	maxRuns            = 50 // Max runs to load
)

// HistoryKeyMap defines the key bindings for the training history screen.
type HistoryKeyMap struct {
	Up      key.Binding
	Down    key.Binding
	NextRun key.Binding
	PrevRun key.Binding
	Quit    key.Binding
}

// ShortHelp returns key bindings for the short help view.
func (k HistoryKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.NextRun, k.PrevRun, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k HistoryKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.NextRun, k.PrevRun},
		{k.Quit},
	}
}

// DefaultHistoryKeyMap returns default key bindings.
func DefaultHistoryKeyMap() HistoryKeyMap {
	return HistoryKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("up/k", "scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("down/j", "scroll down"),
		),
		NextRun: key.NewBinding(
			key.WithKeys("tab", "right", "l"),
			key.WithHelp("tab", "next run"),
		),
		PrevRun: key.NewBinding(
			key.WithKeys("shift+tab", "left", "h"),
			key.WithHelp("S-tab", "prev run"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "esc", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// HistoryModel browses recorded training runs and their generations.
type HistoryModel struct {
	store       *storage.Store
	runs        []storage.Run
	runCursor   int
	generations []storage.Generation
	table       table.Model
	help        help.Model
	keys        HistoryKeyMap
	width       int
	height      int
	quitting    bool
	showSidebar bool
	err         error
}

// NewHistoryModel creates a history model and loads the most recent runs.
// If runID is not empty and known, that run is selected first.
func NewHistoryModel(store *storage.Store, runID string, width, height int) HistoryModel {
	h := help.New()
	h.ShowAll = false

	m := HistoryModel{
		store:       store,
		keys:        DefaultHistoryKeyMap(),
		help:        h,
		width:       width,
		height:      height,
		showSidebar: width >= minWidthForSidebar,
	}
	m.table = m.createTable()

	if store != nil {
		m.runs, m.err = store.RecentRuns(maxRuns)
	}
	for i, r := range m.runs {
		if r.RunID == runID {
			m.runCursor = i
		}
	}
	m.loadGenerations()
	return m
}

// createTable creates a new table sized to the window.
func (m *HistoryModel) createTable() table.Model {
	columns := []table.Column{
		{Title: "Gen", Width: 5},
		{Title: "Best", Width: 10},
		{Title: "Mean", Width: 10},
		{Title: "StdDev", Width: 9},
		{Title: "Passes", Width: 7},
		{Title: "Frames", Width: 8},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(max(m.height-8, 3)),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return t
}

// loadGenerations loads the generations of the selected run.
func (m *HistoryModel) loadGenerations() {
	m.generations = nil
	if m.store != nil && len(m.runs) > 0 {
		gens, err := m.store.Generations(m.runs[m.runCursor].RunID)
		if err != nil {
			m.err = err
		} else {
			m.generations = gens
		}
	}
	m.updateTableRows()
}

// updateTableRows updates the table with the current generations.
func (m *HistoryModel) updateTableRows() {
	rows := make([]table.Row, len(m.generations))
	for i, g := range m.generations {
		rows[i] = table.Row{
			fmt.Sprintf("%d", g.Generation),
			fmt.Sprintf("%.2f", g.Best),
			fmt.Sprintf("%.2f", g.Mean),
			fmt.Sprintf("%.2f", g.StdDev),
			fmt.Sprintf("%d", g.BestPasses),
			fmt.Sprintf("%d", g.Frames),
		}
	}
	m.table.SetRows(rows)
	m.table.GotoTop()
}

// SelectedRun returns the selected run, if any.
func (m HistoryModel) SelectedRun() (storage.Run, bool) {
	if len(m.runs) == 0 {
		return storage.Run{}, false
	}
	return m.runs[m.runCursor], true
}

// Generations returns the generations shown in the table.
func (m HistoryModel) Generations() []storage.Generation {
	return m.generations
}

// Init initializes the history model.
func (m HistoryModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the history screen.
func (m HistoryModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, m.keys.NextRun):
			if len(m.runs) > 0 {
				m.runCursor = (m.runCursor + 1) % len(m.runs)
				m.loadGenerations()
			}
			return m, nil

		case key.Matches(msg, m.keys.PrevRun):
			if len(m.runs) > 0 {
				m.runCursor = (m.runCursor - 1 + len(m.runs)) % len(m.runs)
				m.loadGenerations()
			}
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.showSidebar = m.width >= minWidthForSidebar
		m.table = m.createTable()
		m.updateTableRows()
		m.help.Width = msg.Width
		return m, nil
	}

	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// View renders the history screen.
func (m HistoryModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("229")).
		MarginBottom(1)

	title := "TRAINING HISTORY"
	if run, ok := m.SelectedRun(); ok {
		title = fmt.Sprintf("TRAINING HISTORY - %s (pop %d, %s)", shortID(run.RunID), run.Population, run.Scoring)
	}
	b.WriteString(titleStyle.Render(centerText(title, m.width)))
	b.WriteString("\n\n")

	tableStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1)
	tableRendered := tableStyle.Render(m.renderTableContent())

	if m.showSidebar {
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, m.renderSidebar(), "  ", tableRendered))
	} else {
		b.WriteString(centerText(tableRendered, m.width))
	}

	b.WriteString("\n")
	helpStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	b.WriteString(helpStyle.Render(m.help.View(m.keys)))

	return b.String()
}

// renderSidebar renders the list of runs.
func (m HistoryModel) renderSidebar() string {
	sidebarStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Width(sidebarWidth).
		Padding(0, 1)

	var sb strings.Builder
	sb.WriteString("Runs\n")
	sb.WriteString(strings.Repeat("-", sidebarWidth-4))
	sb.WriteString("\n")

	for i, r := range m.runs {
		cursor := "  "
		style := lipgloss.NewStyle()
		if i == m.runCursor {
			cursor = "> "
			style = style.Bold(true).Foreground(lipgloss.Color("229"))
		}
		line := fmt.Sprintf("%s %3d %7s", shortID(r.RunID), r.Generations, formatBest(r.BestFitness))
		sb.WriteString(style.Render(cursor + line))
		sb.WriteString("\n")
	}

	return sidebarStyle.Render(sb.String())
}

// renderTableContent renders the table or an empty message.
func (m HistoryModel) renderTableContent() string {
	emptyStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241")).
		Italic(true).
		Padding(2, 4)

	switch {
	case m.err != nil:
		return emptyStyle.Render("Could not load history:\n" + m.err.Error())
	case len(m.runs) == 0:
		return emptyStyle.Render("No training runs recorded yet.\nRun 'flappy train' to start one!")
	case len(m.generations) == 0:
		return emptyStyle.Render("This run has no completed generations.")
	}
	return m.table.View()
}

// formatBest formats a run's best fitness, or "-" for a run without generations.
func formatBest(best sql.NullFloat64) string {
	if !best.Valid {
		return "-"
	}
	return fmt.Sprintf("%.1f", best.Float64)
}

// shortID returns the first block of a run ID.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// centerText centers text within the given width.
func centerText(text string, width int) string {
	textWidth := lipgloss.Width(text)
	if textWidth >= width {
		return text
	}
	return lipgloss.PlaceHorizontal(width, lipgloss.Center, text)
}

// RunHistory runs the training history browser.
func RunHistory(store *storage.Store, runID string, width, height int) error {
	p := tea.NewProgram(NewHistoryModel(store, runID, width, height), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
