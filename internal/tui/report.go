package tui

import (
	"fmt"
	"io"
	"strings"

	"fuelwave/internal/service"
)

// PrintDay writes a plain-text summary of a day view, for use outside the TUI
func PrintDay(w io.Writer, v *service.DayView, units Units) error {
	var b strings.Builder
	g := v.Glycogen

	fmt.Fprintf(&b, "%s  glycogen %.0f%% (%s)\n", v.Date, g.Percentage, g.State)
	fmt.Fprintf(&b, "  %s\n", g.Advice)
	if p, ok := v.Current(); ok {
		fmt.Fprintf(&b, "  at %s: level %.0f%%, balance %s, fluid deficit %s\n",
			p.TimeLabel, p.LevelPercent, units.FormatEnergyDelta(p.KcalBalance), units.FormatFluid(p.FluidDeficit))
	}
	if last, ok := v.Timeline.Last(); ok {
		fmt.Fprintf(&b, "  day ends at %.0f%%\n", last.LevelPercent)
	}

	bd := g.Breakdown
	fmt.Fprintf(&b, "\n  baseline %.1f%%, carbs +%.1f%% (%.0f/%.0f g), resting -%.1f%%\n",
		bd.MidnightBaselinePercent, bd.Replenishment.Value, bd.Replenishment.ActualCarbs, bd.Replenishment.TargetCarbs, bd.RestingMetabolismDrop)
	for _, d := range bd.DepletionEvents {
		fmt.Fprintf(&b, "  %s -%.1f%% (%.0f min)\n", d.Title, d.Value, d.DurationMin)
	}

	b.WriteString("\nFueling windows\n")
	for i, win := range v.Plan.Windows {
		p := v.Progress[i]
		fmt.Fprintf(&b, "  %s\n", windowLabel(win))
		fmt.Fprintf(&b, "    carbs %.0f/%.0f g, fluid %s/%s, protein %.0f/%.0f g\n",
			p.Consumed.Carbs, p.Target.Carbs,
			units.FormatFluidValue(p.Consumed.FluidMl), units.FormatFluid(p.Target.FluidMl),
			p.Consumed.Protein, p.Target.Protein)
	}

	for _, n := range v.Plan.Notes {
		fmt.Fprintf(&b, "  note: %s\n", n)
	}
	for _, s := range v.Plan.Supplements {
		fmt.Fprintf(&b, "  supplement: %s %s %s\n", s.Name, formatAmount(s.Amount, s.Unit), s.Timing)
	}
	for _, u := range v.Plan.Unscheduled {
		fmt.Fprintf(&b, "  not placed: %s %q (%s)\n", u.Kind, u.Name, u.Reason)
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// PrintForecast writes one line per forecast day
func PrintForecast(w io.Writer, views []*service.DayView, units Units) error {
	var b strings.Builder
	fmt.Fprintf(&b, "%-10s  %6s  %6s  %6s  %8s\n", "date", "start", "low", "end", "fluid")
	for _, v := range views {
		first, _ := firstPoint(v.Timeline)
		last, _ := v.Timeline.Last()
		fmt.Fprintf(&b, "%-10s  %5.0f%%  %5.0f%%  %5.0f%%  %8s\n",
			v.Date, first.LevelPercent, minLevel(v.Timeline), last.LevelPercent, units.FormatFluid(last.FluidDeficit))
	}
	_, err := io.WriteString(w, b.String())
	return err
}
