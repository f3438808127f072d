// Package tui is the terminal dashboard for readiness, power profile and sync.
package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"coachlab/internal/service"
	"coachlab/internal/store"
)

// Screen identifiers
type Screen int

const (
	ScreenDashboard Screen = iota
	ScreenPower
	ScreenDiary
	ScreenSync
	ScreenHelp
)

// App is the root Bubble Tea model
type App struct {
	screen     Screen
	prevScreen Screen

	// Screen models
	dashboard  DashboardModel
	power      PowerModel
	diary      DiaryModel
	syncScreen SyncModel
	help       HelpModel

	// Services
	queryService     *service.QueryService
	readinessService *service.ReadinessService
	syncService      *service.SyncService

	athlete store.Athlete
	today   func() string

	// Window dimensions
	width  int
	height int

	// Status message
	status string
}

// NewApp creates a new App for one athlete. syncService may be nil when
// Strava is not configured.
func NewApp(athlete store.Athlete, queryService *service.QueryService, readinessService *service.ReadinessService, syncService *service.SyncService) *App {
	today := func() string { return time.Now().Format(store.DateLayout) }
	return &App{
		screen:           ScreenDashboard,
		queryService:     queryService,
		readinessService: readinessService,
		syncService:      syncService,
		athlete:          athlete,
		today:            today,
		dashboard:        NewDashboardModel(queryService, athlete.ID, today(), 0),
		power:            NewPowerModel(queryService, athlete.ID, today(), 0, 0),
		diary:            NewDiaryModel(readinessService, athlete.ID),
		syncScreen:       NewSyncModel(syncService, athlete.ID),
		help:             NewHelpModel(),
	}
}

// Init initializes the app
func (a *App) Init() tea.Cmd {
	return a.dashboard.Init()
}

// Update handles messages
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		// Global keybindings (unless a sync is running)
		if a.screen != ScreenSync || !a.syncScreen.syncing {
			switch msg.String() {
			case "q", "ctrl+c":
				return a, tea.Quit
			case "1":
				a.screen = ScreenDashboard
				a.dashboard = NewDashboardModel(a.queryService, a.athlete.ID, a.today(), a.width)
				return a, a.dashboard.Init()
			case "2":
				a.screen = ScreenPower
				a.power = NewPowerModel(a.queryService, a.athlete.ID, a.today(), a.width, a.height)
				return a, a.power.Init()
			case "3":
				a.screen = ScreenDiary
				return a, a.diary.Init()
			case "4", "s":
				if a.screen != ScreenSync {
					a.screen = ScreenSync
					return a, a.syncScreen.Init()
				}
				// Let 's' fall through to sync screen when already there
			case "?":
				a.prevScreen = a.screen
				a.screen = ScreenHelp
				return a, nil
			case "esc":
				if a.screen == ScreenHelp {
					a.screen = a.prevScreen
					return a, nil
				}
			}
		}

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		var powerCmd, dashCmd tea.Cmd
		var m tea.Model
		m, powerCmd = a.power.Update(msg)
		a.power = m.(PowerModel)
		m, dashCmd = a.dashboard.Update(msg)
		a.dashboard = m.(DashboardModel)
		return a, tea.Batch(powerCmd, dashCmd)

	// Data for a screen may arrive while another one is showing
	case dashboardDataMsg:
		m, cmd := a.dashboard.Update(msg)
		a.dashboard = m.(DashboardModel)
		return a, cmd

	case powerDataMsg:
		m, cmd := a.power.Update(msg)
		a.power = m.(PowerModel)
		return a, cmd

	case SyncCompleteMsg:
		if a.syncScreen.err != nil {
			a.status = "Sync failed"
		} else {
			a.status = "Sync complete"
		}
		// New rides change the power profile and training load
		a.dashboard = NewDashboardModel(a.queryService, a.athlete.ID, a.today(), a.width)
		a.power = NewPowerModel(a.queryService, a.athlete.ID, a.today(), a.width, a.height)
		return a, tea.Batch(a.dashboard.Init(), a.power.Init())
	}

	// Delegate to current screen
	var cmd tea.Cmd
	switch a.screen {
	case ScreenDashboard:
		var m tea.Model
		m, cmd = a.dashboard.Update(msg)
		a.dashboard = m.(DashboardModel)
	case ScreenPower:
		var m tea.Model
		m, cmd = a.power.Update(msg)
		a.power = m.(PowerModel)
	case ScreenDiary:
		var m tea.Model
		m, cmd = a.diary.Update(msg)
		a.diary = m.(DiaryModel)
	case ScreenSync:
		var m tea.Model
		m, cmd = a.syncScreen.Update(msg)
		a.syncScreen = m.(SyncModel)
	case ScreenHelp:
		var m tea.Model
		m, cmd = a.help.Update(msg)
		a.help = m.(HelpModel)
	}

	return a, cmd
}

// View renders the app
func (a *App) View() string {
	header := a.renderHeader()
	nav := a.renderNav()

	var content string
	switch a.screen {
	case ScreenDashboard:
		content = a.dashboard.View()
	case ScreenPower:
		content = a.power.View()
	case ScreenDiary:
		content = a.diary.View()
	case ScreenSync:
		content = a.syncScreen.View()
	case ScreenHelp:
		content = a.help.View()
	}

	footer := a.renderFooter()

	return lipgloss.JoinVertical(lipgloss.Left, header, nav, content, footer)
}

func (a *App) renderHeader() string {
	return headerStyle.Render("coachlab - " + a.athlete.Name)
}

func (a *App) renderNav() string {
	items := []struct {
		key    string
		label  string
		screen Screen
	}{
		{"1", "Readiness", ScreenDashboard},
		{"2", "Power", ScreenPower},
		{"3", "Diary", ScreenDiary},
		{"4", "Sync", ScreenSync},
		{"?", "Help", ScreenHelp},
	}

	var nav string
	for i, item := range items {
		if i > 0 {
			nav += "  "
		}

		label := "[" + item.key + "] " + item.label
		if a.screen == item.screen {
			nav += navActiveStyle.Render(label)
		} else {
			nav += navInactiveStyle.Render(label)
		}
	}

	nav += "  " + navInactiveStyle.Render("[q] Quit")

	return navStyle.Render(nav)
}

func (a *App) renderFooter() string {
	if a.status != "" {
		return statusStyle.Render(a.status)
	}
	return ""
}

// SyncCompleteMsg is sent when sync finishes
type SyncCompleteMsg struct{}
