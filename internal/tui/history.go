package tui

import (
	"fmt"

	"threshold/internal/store"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
)

const historyPageSize = 15

// HistorySource lists and loads saved analyses
type HistorySource interface {
	History(limit, offset int) ([]store.Activity, int, error)
	Stored(id string) (*store.Analysis, error)
}

// HistoryModel is the analysed activities list
type HistoryModel struct {
	source     HistorySource
	activities []store.Activity
	cursor     int
	offset     int
	total      int
	pageSize   int
	loading    bool
	err        error
}

// NewHistoryModel creates a history model listing pageSize analyses per page.
// A non-positive pageSize uses the default of 15.
func NewHistoryModel(src HistorySource, pageSize int) HistoryModel {
	if pageSize <= 0 {
		pageSize = historyPageSize
	}
	return HistoryModel{
		source:   src,
		pageSize: pageSize,
		loading:  true,
	}
}

// OpenReportMsg asks the app to show a saved analysis
type OpenReportMsg struct {
	ID string
}

// Init initializes the history screen
func (m HistoryModel) Init() tea.Cmd {
	return m.loadPage
}

type historyLoadedMsg struct {
	activities []store.Activity
	total      int
	err        error
}

func (m HistoryModel) loadPage() tea.Msg {
	activities, total, err := m.source.History(m.pageSize, m.offset)
	if err != nil {
		return historyLoadedMsg{err: err}
	}
	return historyLoadedMsg{activities: activities, total: total}
}

// Update handles messages
func (m HistoryModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case historyLoadedMsg:
		m.loading = false
		m.err = msg.err
		m.activities = msg.activities
		m.total = msg.total
		if m.cursor >= len(m.activities) {
			m.cursor = 0
		}

	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			} else if m.offset > 0 {
				// Go to previous page
				m.offset -= m.pageSize
				m.cursor = m.pageSize - 1
				m.loading = true
				return m, m.loadPage
			}
		case "down", "j":
			if m.cursor < len(m.activities)-1 {
				m.cursor++
			} else if m.offset+len(m.activities) < m.total {
				// Go to next page
				m.offset += m.pageSize
				m.cursor = 0
				m.loading = true
				return m, m.loadPage
			}
		case "pgup":
			if m.offset > 0 {
				m.offset -= m.pageSize
				if m.offset < 0 {
					m.offset = 0
				}
				m.cursor = 0
				m.loading = true
				return m, m.loadPage
			}
		case "pgdown":
			if m.offset+m.pageSize < m.total {
				m.offset += m.pageSize
				m.cursor = 0
				m.loading = true
				return m, m.loadPage
			}
		case "r":
			m.loading = true
			return m, m.loadPage
		case "enter":
			if len(m.activities) > 0 && m.cursor < len(m.activities) {
				id := m.activities[m.cursor].ID
				return m, func() tea.Msg {
					return OpenReportMsg{ID: id}
				}
			}
		}
	}
	return m, nil
}

// View renders the history list
func (m HistoryModel) View() string {
	if m.loading {
		return "\n  Loading history..."
	}

	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("\n  Error: %v", m.err))
	}

	if len(m.activities) == 0 {
		return "\n  No analysed activities yet. Run 'threshold analyze <file.fit>'."
	}

	var sections []string

	// Title with pagination info
	startNum := m.offset + 1
	endNum := m.offset + len(m.activities)
	sections = append(sections, cardTitleStyle.Render(fmt.Sprintf("History (%d-%d of %d)", startNum, endNum, m.total)))

	sections = append(sections, tableHeaderStyle.Render(fmt.Sprintf("  %-10s  %-25s  %-6s  %8s  %7s  %s",
		"Date", "Name", "Source", "Duration", "Beats", "Analysed")))

	for i, a := range m.activities {
		cursor := "  "
		if i == m.cursor {
			cursor = "> "
		}

		date := "-"
		if !a.StartDate.IsZero() {
			date = a.StartDate.Format("Jan 02")
		}

		row := fmt.Sprintf("%s%-10s  %-25s  %-6s  %8s  %7s  %s",
			cursor,
			date,
			truncateName(a.Name, 25),
			a.Source,
			formatDuration(a.Duration),
			formatCount(a.Beats),
			humanize.Time(a.AnalyzedAt),
		)

		if i == m.cursor {
			sections = append(sections, tableSelectedStyle.Render(row))
		} else {
			sections = append(sections, tableRowStyle.Render(row))
		}
	}

	help := statusStyle.Render("\n  enter: view analysis  j/k: navigate  pgup/pgdn: page  r: refresh")
	sections = append(sections, help)

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// truncateName shortens a name to max runes with an ellipsis
func truncateName(name string, max int) string {
	runes := []rune(name)
	if len(runes) <= max {
		return name
	}
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}
