package tui

import (
	"context"
	"fmt"
	"strings"

	"fuelwave/internal/energy"
	"fuelwave/internal/service"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// WindowsModel lists every fueling window of a day with logged-food progress
type WindowsModel struct {
	planner  *service.PlannerService
	units    Units
	date     energy.Date
	view     *service.DayView
	viewport viewport.Model
	loading  bool
	err      error
	width    int
	height   int
	ready    bool
}

// NewWindowsModel creates a new windows model
func NewWindowsModel(ps *service.PlannerService, units Units, date energy.Date, width, height int) WindowsModel {
	m := WindowsModel{
		planner: ps,
		units:   units,
		date:    date,
		loading: true,
		width:   width,
		height:  height,
	}

	if width > 0 && height > 0 {
		m.viewport = viewport.New(width, height-6)
		m.ready = true
	}

	return m
}

// Init initializes the windows screen
func (m WindowsModel) Init() tea.Cmd {
	return m.loadWindows
}

type windowsLoadedMsg struct {
	date energy.Date
	view *service.DayView
	err  error
}

func (m WindowsModel) loadWindows() tea.Msg {
	view, err := m.planner.Day(context.Background(), m.date)
	return windowsLoadedMsg{date: m.date, view: view, err: err}
}

// Update handles messages
func (m WindowsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case windowsLoadedMsg:
		if msg.date != m.date {
			return m, nil
		}
		m.loading = false
		m.err = msg.err
		m.view = msg.view
		if m.ready && m.view != nil {
			m.viewport.SetContent(m.renderContent())
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height-6)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height - 6
		}
		if m.view != nil {
			m.viewport.SetContent(m.renderContent())
		}

	case tea.KeyMsg:
		switch msg.String() {
		case "r":
			m.loading = true
			return m, m.loadWindows
		}
	}

	// Handle viewport scrolling
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// View renders the windows screen
func (m WindowsModel) View() string {
	if m.loading {
		return "\n  Planning fueling windows..."
	}

	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("\n  Error: %v", m.err))
	}

	if !m.ready {
		return "\n  Initializing..."
	}

	footer := statusStyle.Render("  j/k or arrows: scroll  r: refresh  [ ]: change day")

	return lipgloss.JoinVertical(lipgloss.Left, m.viewport.View(), footer)
}

func (m WindowsModel) renderContent() string {
	v := m.view
	var sections []string

	sections = append(sections, cardTitleStyle.Render("Fueling Windows "+v.Date.String()))

	active := v.ActiveWindow()
	for i, w := range v.Plan.Windows {
		heading := windowHeading(w)
		if i == active {
			heading = tableSelectedStyle.Render("▶ " + windowLabel(w))
		}
		sections = append(sections, heading, renderWindowBody(w, v.Progress[i], m.units), "")
	}

	if len(v.Plan.Notes) > 0 {
		sections = append(sections, sectionStyle.Render("Notes"))
		for _, n := range v.Plan.Notes {
			sections = append(sections, "  "+n)
		}
		sections = append(sections, "")
	}

	if len(v.Plan.Supplements) > 0 {
		sections = append(sections, sectionStyle.Render("Supplements"))
		for _, s := range v.Plan.Supplements {
			sections = append(sections, fmt.Sprintf("  %s %s  %s", helpKeyStyle.Render(s.Name), formatAmount(s.Amount, s.Unit), mutedStyle.Render(s.Timing)))
			if s.Reason != "" {
				sections = append(sections, "    "+mutedStyle.Render(s.Reason))
			}
		}
		sections = append(sections, "")
	}

	if len(v.Plan.Unscheduled) > 0 {
		sections = append(sections, sectionStyle.Render("Not placed"))
		for _, u := range v.Plan.Unscheduled {
			sections = append(sections, warningStyle.Render(fmt.Sprintf("  %s %q: %s", u.Kind, u.Name, u.Reason)))
		}
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func windowLabel(w energy.FuelingWindow) string {
	label := fmt.Sprintf("%s-%s  %s", w.Start.Format("15:04"), w.End.Format("15:04"), windowTypeName(w.Type))
	if len(w.WorkoutTitles) > 0 {
		label += "  " + strings.Join(w.WorkoutTitles, ", ")
	}
	return label
}

func windowHeading(w energy.FuelingWindow) string {
	return helpKeyStyle.Render(windowLabel(w))
}

func windowTypeName(t energy.WindowType) string {
	switch t {
	case energy.WindowPreWorkout:
		return "Pre-workout"
	case energy.WindowIntraWorkout:
		return "During"
	case energy.WindowPostWorkout:
		return "Recovery"
	case energy.WindowTransition:
		return "Around training"
	case energy.WindowDailyBase:
		return "Daily base"
	}
	return string(t)
}

// renderWindowBody renders the targets of a window against what was logged in it
func renderWindowBody(w energy.FuelingWindow, p energy.WindowProgress, units Units) string {
	lines := []string{}
	if w.Description != "" {
		lines = append(lines, mutedStyle.Render("  "+w.Description))
	}

	lines = append(lines,
		"  "+metricLabelStyle.Render("Carbs")+RenderProgressBar(p.CarbRatio(), 20)+
			fmt.Sprintf(" %.0f / %.0f g", p.Consumed.Carbs, p.Target.Carbs),
		"  "+metricLabelStyle.Render("Fluid")+RenderFluidBar(ratio(p.Consumed.FluidMl, p.Target.FluidMl), 20)+
			fmt.Sprintf(" %s / %s", units.FormatFluidValue(p.Consumed.FluidMl), units.FormatFluid(p.Target.FluidMl)),
		"  "+metricLabelStyle.Render("Protein / fat")+
			fmt.Sprintf("%.0f / %.0f g, %.0f / %.0f g", p.Consumed.Protein, p.Target.Protein, p.Consumed.Fat, p.Target.Fat),
	)
	if p.Target.SodiumMg > 0 {
		lines = append(lines, "  "+metricLabelStyle.Render("Sodium")+fmt.Sprintf("%.0f mg", p.Target.SodiumMg))
	}

	if len(w.Foods) > 0 {
		names := make([]string, len(w.Foods))
		for i, f := range w.Foods {
			names[i] = fmt.Sprintf("%s %.0f g", f.Name, f.CarbsGrams)
		}
		lines = append(lines, "  "+mutedStyle.Render(truncateName(strings.Join(names, " · "), 90)))
	}

	return strings.Join(lines, "\n")
}

func ratio(consumed, target float64) float64 {
	if target <= 0 {
		if consumed > 0 {
			return 1
		}
		return 0
	}
	return consumed / target
}

func formatAmount(v float64, unit string) string {
	if v == 0 {
		return ""
	}
	if v == float64(int64(v)) {
		return fmt.Sprintf("%d %s", int64(v), unit)
	}
	return fmt.Sprintf("%.1f %s", v, unit)
}
