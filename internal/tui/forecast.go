package tui

import (
	"context"
	"fmt"
	"strings"

	"fuelwave/internal/energy"
	"fuelwave/internal/service"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
)

// ForecastModel shows the chained glycogen level over several days
type ForecastModel struct {
	planner *service.PlannerService
	units   Units
	start   energy.Date
	days    int
	views   []*service.DayView
	loading bool
	err     error
	width   int
}

// NewForecastModel creates a new forecast model
func NewForecastModel(ps *service.PlannerService, units Units, start energy.Date, days, width int) ForecastModel {
	if days <= 0 {
		days = service.DefaultForecastDays
	}
	return ForecastModel{
		planner: ps,
		units:   units,
		start:   start,
		days:    days,
		loading: true,
		width:   width,
	}
}

// Init initializes the forecast screen
func (m ForecastModel) Init() tea.Cmd {
	return m.loadForecast
}

type forecastLoadedMsg struct {
	start energy.Date
	days  int
	views []*service.DayView
	err   error
}

func (m ForecastModel) loadForecast() tea.Msg {
	views, err := m.planner.Forecast(context.Background(), m.start, m.days)
	return forecastLoadedMsg{start: m.start, days: m.days, views: views, err: err}
}

// Update handles messages
func (m ForecastModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case forecastLoadedMsg:
		if msg.start != m.start || msg.days != m.days {
			return m, nil
		}
		m.loading = false
		m.err = msg.err
		m.views = msg.views

	case tea.WindowSizeMsg:
		m.width = msg.Width

	case tea.KeyMsg:
		switch msg.String() {
		case "+", "=":
			if m.days < service.MaxForecastDays {
				m.days++
				m.loading = true
				return m, m.loadForecast
			}
		case "-":
			if m.days > 1 {
				m.days--
				m.loading = true
				return m, m.loadForecast
			}
		case "r":
			m.loading = true
			return m, m.loadForecast
		}
	}
	return m, nil
}

// View renders the forecast screen
func (m ForecastModel) View() string {
	if m.loading {
		return fmt.Sprintf("\n  Forecasting %d days...", m.days)
	}

	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("\n  Error: %v", m.err))
	}

	if len(m.views) == 0 {
		return "\n  Nothing to forecast"
	}

	sections := []string{m.renderChart(), m.renderTable()}
	sections = append(sections, statusStyle.Render("Press '+' or '-' to change the number of days, 'r' to refresh"))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m ForecastModel) renderChart() string {
	title := cardTitleStyle.Render(fmt.Sprintf("%d-Day Glycogen Forecast", len(m.views)))

	series := hourlyLevels(m.views)
	if len(series) < 2 {
		return cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, title, "Not enough points to chart"))
	}

	graph := asciigraph.Plot(series,
		asciigraph.Height(10),
		asciigraph.Width(chartWidth(m.width)),
		asciigraph.Precision(0),
		asciigraph.LowerBound(0),
		asciigraph.UpperBound(100),
		asciigraph.Caption(fmt.Sprintf("hourly glycogen %%, %s to %s", m.views[0].Date, m.views[len(m.views)-1].Date)),
	)

	return cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, title, graph))
}

func (m ForecastModel) renderTable() string {
	header := tableHeaderStyle.Render(fmt.Sprintf("%-10s  %6s  %6s  %6s  %8s  %-24s",
		"Date", "Start", "Low", "End", "Fluid", "Workouts"))

	rows := []string{header}
	for _, v := range m.views {
		first, _ := firstPoint(v.Timeline)
		last, _ := v.Timeline.Last()

		var titles []string
		for _, w := range v.Plan.Windows {
			titles = appendMissing(titles, w.WorkoutTitles...)
		}
		workouts := "rest"
		if len(titles) > 0 {
			workouts = truncateName(strings.Join(titles, ", "), 24)
		}

		low := minLevel(v.Timeline)
		row := fmt.Sprintf("%-10s  %5.0f%%  %5.0f%%  %5.0f%%  %8s  %-24s",
			v.Date, first.LevelPercent, low, last.LevelPercent, m.units.FormatFluid(last.FluidDeficit), workouts)

		state, _ := energy.ClassifyTank(low)
		if state == energy.TankCritical {
			row = warningStyle.Render(row)
		}
		rows = append(rows, tableRowStyle.Render(row))
	}

	return cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

// hourlyLevels joins the days' timelines into one series sampled on the hour
func hourlyLevels(views []*service.DayView) []float64 {
	var out []float64
	for _, v := range views {
		for _, p := range v.Timeline.Points {
			if p.Timestamp.Minute() == 0 {
				out = append(out, p.LevelPercent)
			}
		}
	}
	return out
}

func firstPoint(t energy.DayTimeline) (energy.EnergyPoint, bool) {
	if len(t.Points) == 0 {
		return energy.EnergyPoint{}, false
	}
	return t.Points[0], true
}

func minLevel(t energy.DayTimeline) float64 {
	if len(t.Points) == 0 {
		return 0
	}
	low := t.Points[0].LevelPercent
	for _, p := range t.Points[1:] {
		if p.LevelPercent < low {
			low = p.LevelPercent
		}
	}
	return low
}

func appendMissing(list []string, items ...string) []string {
	for _, it := range items {
		found := false
		for _, s := range list {
			if s == it {
				found = true
				break
			}
		}
		if !found {
			list = append(list, it)
		}
	}
	return list
}
