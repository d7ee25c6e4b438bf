package tui

import (
	"fmt"

	"threshold/internal/service"
	"threshold/internal/store"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Rows reserved for the header, nav and footer around the viewport
const chromeHeight = 6

// ReportModel shows one analysis in a scrollable viewport.
// A live report is rendered as given; a stored one is loaded by ID.
type ReportModel struct {
	report   *service.Report
	source   HistorySource
	id       string
	stored   *store.Analysis
	viewport viewport.Model
	loading  bool
	err      error
	width    int
	height   int
	ready    bool
}

// NewReportModel creates a model for a report produced in this run
func NewReportModel(r *service.Report, width, height int) ReportModel {
	m := ReportModel{report: r, width: width, height: height}
	m.initViewport()
	return m
}

// NewStoredReportModel creates a model that loads a saved analysis
func NewStoredReportModel(src HistorySource, id string, width, height int) ReportModel {
	m := ReportModel{source: src, id: id, loading: true, width: width, height: height}
	m.initViewport()
	return m
}

func (m *ReportModel) initViewport() {
	if m.width > 0 && m.height > chromeHeight {
		m.viewport = viewport.New(m.width, m.height-chromeHeight)
		m.ready = true
		if !m.loading {
			m.viewport.SetContent(m.renderContent())
		}
	}
}

// Init initializes the report screen
func (m ReportModel) Init() tea.Cmd {
	if m.source != nil {
		return m.load
	}
	return nil
}

type reportLoadedMsg struct {
	analysis *store.Analysis
	err      error
}

func (m ReportModel) load() tea.Msg {
	a, err := m.source.Stored(m.id)
	return reportLoadedMsg{analysis: a, err: err}
}

// Update handles messages
func (m ReportModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case reportLoadedMsg:
		m.loading = false
		m.err = msg.err
		m.stored = msg.analysis
		if m.ready {
			m.viewport.SetContent(m.renderContent())
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height-chromeHeight)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height - chromeHeight
		}
		if !m.loading {
			m.viewport.SetContent(m.renderContent())
		}

	case tea.KeyMsg:
		switch msg.String() {
		case "r":
			if m.source != nil {
				m.loading = true
				return m, m.load
			}
		}
	}

	// Handle viewport scrolling
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// View renders the report screen
func (m ReportModel) View() string {
	if m.loading {
		return "\n  Loading analysis..."
	}

	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("\n  Error: %v", m.err))
	}

	if !m.ready {
		return "\n  Initializing..."
	}

	help := "  j/k or arrows: scroll  ?: help  q: quit"
	if m.source != nil {
		help = "  esc: back to history  j/k or arrows: scroll  r: reload  q: quit"
	}
	footer := statusStyle.Render(help)

	return lipgloss.JoinVertical(lipgloss.Left, m.viewport.View(), footer)
}

func (m ReportModel) renderContent() string {
	if m.report != nil {
		return RenderReport(m.report, m.width)
	}
	return RenderStored(m.stored, m.width)
}
