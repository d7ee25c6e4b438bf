package tui

import (
	"threshold/internal/service"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Screen identifiers
type Screen int

const (
	ScreenReport Screen = iota
	ScreenHistory
	ScreenHelp
)

// App is the root Bubble Tea model
type App struct {
	screen     Screen
	prevScreen Screen

	// Screen models
	report  ReportModel
	history HistoryModel
	help    HelpModel

	// Only set when browsing saved analyses
	source HistorySource

	// Window dimensions
	width  int
	height int
}

// NewReportApp shows a single fresh report
func NewReportApp(r *service.Report) *App {
	return &App{
		screen: ScreenReport,
		report: NewReportModel(r, 0, 0),
		help:   NewHelpModel(),
	}
}

// NewHistoryApp browses saved analyses, pageSize per page
func NewHistoryApp(src HistorySource, pageSize int) *App {
	return &App{
		screen:  ScreenHistory,
		source:  src,
		history: NewHistoryModel(src, pageSize),
		help:    NewHelpModel(),
	}
}

// NewStoredApp opens one saved analysis; esc goes on to the history list
func NewStoredApp(src HistorySource, id string, pageSize int) *App {
	app := NewHistoryApp(src, pageSize)
	app.screen = ScreenReport
	app.report = NewStoredReportModel(src, id, 0, 0)
	return app
}

// Run starts the program on the alternate screen and blocks until it quits
func Run(app *App) error {
	_, err := tea.NewProgram(app, tea.WithAltScreen()).Run()
	return err
}

// Init initializes the app
func (a *App) Init() tea.Cmd {
	if a.screen == ScreenHistory {
		return a.history.Init()
	}
	return a.report.Init()
}

// Update handles messages
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return a, tea.Quit
		case "?":
			if a.screen != ScreenHelp {
				a.prevScreen = a.screen
				a.screen = ScreenHelp
			}
			return a, nil
		case "esc":
			if a.screen == ScreenHelp {
				a.screen = a.prevScreen
				return a, nil
			}
			if a.screen == ScreenReport && a.source != nil {
				a.screen = ScreenHistory
				return a, a.history.Init()
			}
		}

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		// Every screen keeps its size current, even when hidden
		m, _ := a.report.Update(msg)
		a.report = m.(ReportModel)
		return a, nil

	case OpenReportMsg:
		a.screen = ScreenReport
		a.report = NewStoredReportModel(a.source, msg.ID, a.width, a.height)
		return a, a.report.Init()
	}

	// Delegate to current screen
	var cmd tea.Cmd
	switch a.screen {
	case ScreenReport:
		var m tea.Model
		m, cmd = a.report.Update(msg)
		a.report = m.(ReportModel)
	case ScreenHistory:
		var m tea.Model
		m, cmd = a.history.Update(msg)
		a.history = m.(HistoryModel)
	case ScreenHelp:
		var m tea.Model
		m, cmd = a.help.Update(msg)
		a.help = m.(HelpModel)
	}

	return a, cmd
}

// View renders the app
func (a *App) View() string {
	var content string
	switch a.screen {
	case ScreenReport:
		content = a.report.View()
	case ScreenHistory:
		content = a.history.View()
	case ScreenHelp:
		content = a.help.View()
	}

	return lipgloss.JoinVertical(lipgloss.Left, a.renderHeader(), a.renderNav(), content)
}

func (a *App) renderHeader() string {
	return headerStyle.Render("Threshold - VT1, CP and W' Balance")
}

type navItem struct {
	key    string
	label  string
	screen Screen
}

func (a *App) renderNav() string {
	items := []navItem{{"", "Report", ScreenReport}, {"?", "Help", ScreenHelp}}
	if a.source != nil {
		items[0] = navItem{"esc", "History", ScreenHistory}
	}

	var nav string
	for i, item := range items {
		if i > 0 {
			nav += "  "
		}

		label := item.label
		if item.key != "" {
			label = "[" + item.key + "] " + label
		}
		if a.screen == item.screen {
			nav += navActiveStyle.Render(label)
		} else {
			nav += navInactiveStyle.Render(label)
		}
	}

	nav += "  " + navInactiveStyle.Render("[q] Quit")

	return navStyle.Render(nav)
}
