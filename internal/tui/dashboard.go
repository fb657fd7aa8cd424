package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"fuelwave/internal/energy"
	"fuelwave/internal/service"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
)

// DashboardModel is the dashboard screen model: the tank gauge, the
// energy wave and the current fueling window for one date
type DashboardModel struct {
	planner *service.PlannerService
	units   Units
	date    energy.Date
	view    *service.DayView
	loading bool
	err     error
	width   int
}

// NewDashboardModel creates a new dashboard model
func NewDashboardModel(ps *service.PlannerService, units Units, date energy.Date, width int) DashboardModel {
	return DashboardModel{
		planner: ps,
		units:   units,
		date:    date,
		loading: true,
		width:   width,
	}
}

// Init initializes the dashboard
func (m DashboardModel) Init() tea.Cmd {
	return m.loadData
}

func (m DashboardModel) loadData() tea.Msg {
	view, err := m.planner.Day(context.Background(), m.date)
	return dashboardDataMsg{date: m.date, view: view, err: err}
}

type dashboardDataMsg struct {
	date energy.Date
	view *service.DayView
	err  error
}

// Update handles messages
func (m DashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case dashboardDataMsg:
		if msg.date != m.date {
			return m, nil
		}
		m.loading = false
		m.err = msg.err
		m.view = msg.view
	case tea.WindowSizeMsg:
		m.width = msg.Width
	case tea.KeyMsg:
		switch msg.String() {
		case "r":
			m.loading = true
			return m, m.loadData
		}
	}
	return m, nil
}

// View renders the dashboard
func (m DashboardModel) View() string {
	if m.loading {
		return "\n  Computing glycogen forecast..."
	}

	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("\n  Error: %v", m.err))
	}

	if m.view == nil {
		return "\n  No data for " + m.date.String()
	}

	var sections []string

	topRow := lipgloss.JoinHorizontal(lipgloss.Top, m.renderTankCard(), "  ", m.renderBreakdownCard())
	sections = append(sections, topRow)

	if len(m.view.Timeline.Points) > 2 {
		sections = append(sections, m.renderWave())
	}

	sections = append(sections, m.renderWindowCard())

	if unscheduled := m.renderUnscheduled(); unscheduled != "" {
		sections = append(sections, unscheduled)
	}

	help := statusStyle.Render("Press 'r' to refresh, '[' and ']' to change day, '2' for all fueling windows")
	sections = append(sections, help)

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m DashboardModel) renderTankCard() string {
	v := m.view
	g := v.Glycogen
	title := cardTitleStyle.Render("Glycogen Tank " + m.date.String())

	style := tankStyle(g.State)
	gauge := RenderProgressBar(g.Percentage/100, 24) + " " + style.Bold(true).Render(fmt.Sprintf("%.0f%%", g.Percentage))

	lines := []string{
		gauge,
		style.Render(string(g.State)),
		"",
		RenderMetric("Carbs on board", fmt.Sprintf("%.0f g", g.CarbsOnBoard), ""),
	}

	if p, ok := v.Current(); ok {
		lines = append(lines,
			RenderMetric("Timeline level", fmt.Sprintf("%.0f%%", p.LevelPercent), levelTrend(v.Timeline, p)),
			RenderMetric("Energy balance", m.units.FormatEnergyDelta(p.KcalBalance), ""),
			RenderMetric("Fluid deficit", m.units.FormatFluid(p.FluidDeficit), ""),
		)
	}

	start := "midnight baseline"
	if v.Chained {
		start = "carried from yesterday"
	}
	lines = append(lines, "", mutedStyle.Render(wrap(g.Advice, 36)), mutedStyle.Render("Day start: "+start))

	content := lipgloss.JoinVertical(lipgloss.Left, lines...)
	return cardStyle.Width(42).Render(lipgloss.JoinVertical(lipgloss.Left, title, content))
}

func (m DashboardModel) renderBreakdownCard() string {
	b := m.view.Glycogen.Breakdown
	title := cardTitleStyle.Render("Breakdown")

	lines := []string{
		RenderMetric("Baseline", fmt.Sprintf("%.1f%%", b.MidnightBaselinePercent), ""),
		RenderMetric("Carbs eaten", fmt.Sprintf("+%.1f%%", b.Replenishment.Value),
			fmt.Sprintf("%.0f/%.0f g", b.Replenishment.ActualCarbs, b.Replenishment.TargetCarbs)),
	}
	for _, d := range b.DepletionEvents {
		lines = append(lines, RenderMetric(truncateName(d.Title, 16), fmt.Sprintf("-%.1f%%", d.Value),
			fmt.Sprintf("%.0f min @ %.0f%%", d.DurationMin, d.Intensity*100)))
	}
	lines = append(lines,
		RenderMetric("Resting", fmt.Sprintf("-%.1f%%", b.RestingMetabolismDrop), ""),
		"",
		RenderMetric("Tank now", fmt.Sprintf("%.0f%%", m.view.Glycogen.Percentage), ""),
	)

	content := lipgloss.JoinVertical(lipgloss.Left, lines...)
	return cardStyle.Width(46).Render(lipgloss.JoinVertical(lipgloss.Left, title, content))
}

func (m DashboardModel) renderWave() string {
	title := cardTitleStyle.Render("Energy Wave")

	caption := "glycogen % over the day"
	if p, ok := m.view.Current(); ok {
		if d := p.Timestamp.Sub(m.view.Now); d < 15*time.Minute && d > -15*time.Minute {
			caption += ", now " + p.TimeLabel
		}
	}

	graph := asciigraph.Plot(m.view.Timeline.Levels(),
		asciigraph.Height(10),
		asciigraph.Width(chartWidth(m.width)),
		asciigraph.Precision(0),
		asciigraph.LowerBound(0),
		asciigraph.UpperBound(100),
		asciigraph.Caption(caption),
	)

	return cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, title, graph, mutedStyle.Render(eventLine(m.view.Timeline))))
}

func (m DashboardModel) renderWindowCard() string {
	v := m.view
	i := v.ActiveWindow()
	label := "Current Window"
	if i < 0 {
		i = nextWindow(v)
		label = "Next Window"
	}
	title := cardTitleStyle.Render(label)

	if i < 0 || i >= len(v.Plan.Windows) {
		return cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, title, "No fueling windows"))
	}

	w := v.Plan.Windows[i]
	content := renderWindowBody(w, v.Progress[i], m.units)
	return cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, title, windowHeading(w), content))
}

func (m DashboardModel) renderUnscheduled() string {
	var lines []string
	seen := make(map[string]bool)
	all := make([]energy.UnscheduledEvent, 0, len(m.view.Glycogen.Unscheduled)+len(m.view.Plan.Unscheduled))
	all = append(all, m.view.Glycogen.Unscheduled...)
	all = append(all, m.view.Plan.Unscheduled...)
	for _, u := range all {
		key := string(u.Kind) + "|" + u.Name + "|" + u.Raw
		if seen[key] {
			continue
		}
		seen[key] = true
		lines = append(lines, warningStyle.Render(fmt.Sprintf("  ! %s %q not placed: %s", u.Kind, u.Name, u.Reason)))
	}
	return strings.Join(lines, "\n")
}

// levelTrend compares a point with the start of the day
func levelTrend(t energy.DayTimeline, p energy.EnergyPoint) string {
	if len(t.Points) == 0 {
		return ""
	}
	d := p.LevelPercent - t.Points[0].LevelPercent
	switch {
	case d >= 0.5:
		return fmt.Sprintf("↑ %.0f", d)
	case d <= -0.5:
		return fmt.Sprintf("↓ %.0f", -d)
	}
	return "→"
}

// nextWindow returns the first window starting after the view's clock, or -1
func nextWindow(v *service.DayView) int {
	for i, w := range v.Plan.Windows {
		if w.Start.After(v.Now) {
			return i
		}
	}
	return -1
}

// eventLine lists the annotated events of a timeline in time order
func eventLine(t energy.DayTimeline) string {
	var parts []string
	for _, p := range t.Points {
		if p.Event != nil {
			parts = append(parts, p.TimeLabel+" "+p.Event.Icon+" "+p.Event.Label)
		}
	}
	return truncateName(strings.Join(parts, "  "), 110)
}

func chartWidth(termWidth int) int {
	w := termWidth - 16
	if w > 96 {
		w = 96
	}
	if w < 40 {
		w = 40
	}
	return w
}

func truncateName(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}

// wrap breaks text on spaces so no line exceeds width
func wrap(s string, width int) string {
	var lines []string
	var line string
	for _, word := range strings.Fields(s) {
		if line != "" && len(line)+1+len(word) > width {
			lines = append(lines, line)
			line = word
			continue
		}
		if line != "" {
			line += " "
		}
		line += word
	}
	if line != "" {
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}
