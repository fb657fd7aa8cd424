package tui

import (
	"fuelwave/internal/energy"
	"fuelwave/internal/service"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Screen identifiers
type Screen int

const (
	ScreenDashboard Screen = iota
	ScreenWindows
	ScreenForecast
	ScreenSync
	ScreenHelp
)

// App is the root Bubble Tea model
type App struct {
	screen     Screen
	prevScreen Screen

	// Screen models
	dashboard  DashboardModel
	windows    WindowsModel
	forecast   ForecastModel
	syncScreen SyncModel
	help       HelpModel

	// Services
	planner     *service.PlannerService
	syncService *service.SyncService
	units       Units

	// Day shown on the day screens
	date         energy.Date
	forecastDays int

	// Window dimensions
	width  int
	height int

	// Status message
	status string
}

// NewApp creates a new App with all dependencies
func NewApp(planner *service.PlannerService, syncService *service.SyncService, units Units, date energy.Date, forecastDays int) *App {
	return &App{
		screen:       ScreenDashboard,
		planner:      planner,
		syncService:  syncService,
		units:        units,
		date:         date,
		forecastDays: forecastDays,
		dashboard:    NewDashboardModel(planner, units, date, 0),
		windows:      NewWindowsModel(planner, units, date, 0, 0),
		forecast:     NewForecastModel(planner, units, date, forecastDays, 0),
		syncScreen:   NewSyncModel(syncService),
		help:         NewHelpModel(),
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
		// Global keybindings (unless in sync mode)
		if a.screen != ScreenSync || !a.syncScreen.syncing {
			switch msg.String() {
			case "q", "ctrl+c":
				return a, tea.Quit
			case "1":
				a.screen = ScreenDashboard
				return a, a.reload()
			case "2":
				a.screen = ScreenWindows
				return a, a.reload()
			case "3":
				a.screen = ScreenForecast
				return a, a.reload()
			case "4", "s":
				if a.screen != ScreenSync {
					a.screen = ScreenSync
					return a, a.syncScreen.Init()
				}
				// Let 's' fall through to sync screen when already there
			case "[":
				return a, a.setDate(a.date.AddDays(-1))
			case "]":
				return a, a.setDate(a.date.AddDays(1))
			case "t":
				return a, a.setDate(a.planner.Today())
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

	case SyncCompleteMsg:
		a.status = "Workouts synced; day screens recomputed on open"
	}

	// Delegate to current screen
	var cmd tea.Cmd
	switch a.screen {
	case ScreenDashboard:
		var m tea.Model
		m, cmd = a.dashboard.Update(msg)
		a.dashboard = m.(DashboardModel)
	case ScreenWindows:
		var m tea.Model
		m, cmd = a.windows.Update(msg)
		a.windows = m.(WindowsModel)
	case ScreenForecast:
		var m tea.Model
		m, cmd = a.forecast.Update(msg)
		a.forecast = m.(ForecastModel)
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

// setDate moves the day screens to date and recomputes the visible one
func (a *App) setDate(date energy.Date) tea.Cmd {
	a.date = date
	a.status = ""
	if a.screen == ScreenSync || a.screen == ScreenHelp {
		a.screen = ScreenDashboard
	}
	return a.reload()
}

// reload rebuilds the current day screen so it recomputes with the latest
// logs, date and window size
func (a *App) reload() tea.Cmd {
	switch a.screen {
	case ScreenDashboard:
		a.dashboard = NewDashboardModel(a.planner, a.units, a.date, a.width)
		return a.dashboard.Init()
	case ScreenWindows:
		a.windows = NewWindowsModel(a.planner, a.units, a.date, a.width, a.height)
		return a.windows.Init()
	case ScreenForecast:
		days := a.forecast.days
		if days <= 0 {
			days = a.forecastDays
		}
		a.forecast = NewForecastModel(a.planner, a.units, a.date, days, a.width)
		return a.forecast.Init()
	}
	return nil
}

// View renders the app
func (a *App) View() string {
	header := a.renderHeader()
	nav := a.renderNav()

	var content string
	switch a.screen {
	case ScreenDashboard:
		content = a.dashboard.View()
	case ScreenWindows:
		content = a.windows.View()
	case ScreenForecast:
		content = a.forecast.View()
	case ScreenSync:
		content = a.syncScreen.View()
	case ScreenHelp:
		content = a.help.View()
	}

	footer := a.renderFooter()

	return lipgloss.JoinVertical(lipgloss.Left, header, nav, content, footer)
}

func (a *App) renderHeader() string {
	return headerStyle.Render("fuelwave  glycogen & fueling planner  " + a.date.String())
}

func (a *App) renderNav() string {
	items := []struct {
		key    string
		label  string
		screen Screen
	}{
		{"1", "Dashboard", ScreenDashboard},
		{"2", "Windows", ScreenWindows},
		{"3", "Forecast", ScreenForecast},
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
