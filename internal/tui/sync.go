package tui

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"fuelwave/internal/service"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
)

// SyncModel is the sync screen model
type SyncModel struct {
	syncService *service.SyncService
	spinner     spinner.Model
	progress    service.SyncProgress
	progressCh  chan service.SyncProgress
	lastSync    time.Time
	counts      map[string]int
	syncing     bool
	result      *service.SyncResult
	err         error
	done        bool
}

// NewSyncModel creates a new sync model
func NewSyncModel(ss *service.SyncService) SyncModel {
	return SyncModel{
		syncService: ss,
		spinner:     spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(helpKeyStyle)),
	}
}

// Init loads the last sync time and stored workout counts
func (m SyncModel) Init() tea.Cmd {
	return m.loadStatus
}

type syncStatusMsg struct {
	lastSync time.Time
	counts   map[string]int
	err      error
}

func (m SyncModel) loadStatus() tea.Msg {
	counts, err := m.syncService.WorkoutCounts()
	return syncStatusMsg{lastSync: m.syncService.LastSync(), counts: counts, err: err}
}

// SyncDoneMsg is sent when sync finishes
type SyncDoneMsg struct {
	Result *service.SyncResult
	Err    error
}

type syncProgressMsg service.SyncProgress

// Update handles messages
func (m SyncModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case syncStatusMsg:
		m.lastSync = msg.lastSync
		m.counts = msg.counts
		if msg.err != nil && !m.syncing {
			m.err = msg.err
		}

	case syncProgressMsg:
		m.progress = service.SyncProgress(msg)
		if m.progressCh == nil {
			return m, nil
		}
		return m, waitForProgress(m.progressCh)

	case SyncDoneMsg:
		m.syncing = false
		m.progressCh = nil
		m.done = true
		m.result = msg.Result
		m.err = msg.Err
		return m, tea.Batch(m.loadStatus, func() tea.Msg { return SyncCompleteMsg{} })

	case spinner.TickMsg:
		if !m.syncing {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if !m.syncing && m.syncService.HasStrava() {
			switch msg.String() {
			case "enter", "s":
				m.syncing = true
				m.done = false
				m.err = nil
				m.result = nil
				m.progress = service.SyncProgress{}

				m.progressCh = make(chan service.SyncProgress, 16)
				return m, tea.Batch(m.runSync(m.progressCh), waitForProgress(m.progressCh), m.spinner.Tick)
			}
		}
	}
	return m, nil
}

func (m SyncModel) runSync(progress chan service.SyncProgress) tea.Cmd {
	return func() tea.Msg {
		result, err := m.syncService.SyncAll(context.Background(), progress)
		return SyncDoneMsg{Result: result, Err: err}
	}
}

// waitForProgress delivers one progress update; it is re-armed until the
// service closes the channel
func waitForProgress(progress <-chan service.SyncProgress) tea.Cmd {
	return func() tea.Msg {
		p, ok := <-progress
		if !ok {
			return nil
		}
		return syncProgressMsg(p)
	}
}

// View renders the sync screen
func (m SyncModel) View() string {
	var sections []string

	title := cardTitleStyle.Render("Strava Sync")
	sections = append(sections, title)

	if !m.syncService.HasStrava() {
		sections = append(sections, m.renderNotConfigured())
		return lipgloss.JoinVertical(lipgloss.Left, sections...)
	}

	if m.err != nil {
		sections = append(sections, errorStyle.Render(fmt.Sprintf("\n  Error: %v", m.err)))
		sections = append(sections, "\n"+statusStyle.Render("  Press 's' or Enter to retry"))
		return lipgloss.JoinVertical(lipgloss.Left, sections...)
	}

	if m.done && !m.syncing {
		sections = append(sections, successStyle.Render("\n  Sync complete!"))
		sections = append(sections, m.renderSummary())
		sections = append(sections, "\n"+statusStyle.Render("  Press '1' to go to dashboard"))
		return lipgloss.JoinVertical(lipgloss.Left, sections...)
	}

	if m.syncing {
		sections = append(sections, m.renderProgress())
	} else {
		sections = append(sections, m.renderStartPrompt())
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m SyncModel) renderNotConfigured() string {
	lines := []string{
		"",
		"  Strava is not configured.",
		"",
		"  Add your client ID and secret to ~/.fuelwave/config.json",
		"  and restart to connect your account.",
		"",
		"  Completed workouts can also be imported from FIT files:",
		"    fuelwave --import-fit ride.fit",
		"",
		m.renderStored(),
	}
	return strings.Join(lines, "\n")
}

func (m SyncModel) renderStartPrompt() string {
	var lines []string

	lines = append(lines, "")
	lines = append(lines, "  This will import your completed Strava activities as workouts.")
	lines = append(lines, "")
	lines = append(lines, "  Last sync: "+m.lastSyncText())
	lines = append(lines, m.renderStored())
	lines = append(lines, "")

	// Show rate limit status
	short, daily := m.syncService.RateLimitStatus()
	lines = append(lines, statusStyle.Render(fmt.Sprintf("  API limits: %d/100 (15min), %d/1000 (daily)", short, daily)))
	lines = append(lines, "")
	lines = append(lines, statusStyle.Render("  Press 's' or Enter to start sync"))

	return strings.Join(lines, "\n")
}

func (m SyncModel) renderProgress() string {
	var lines []string

	lines = append(lines, "")
	lines = append(lines, "  "+m.spinner.View()+" Syncing with Strava...")
	lines = append(lines, "")

	p := m.progress
	if p.Total > 0 {
		lines = append(lines, fmt.Sprintf("  %s %d / %d", RenderProgressBar(float64(p.Completed)/float64(p.Total), 30), p.Completed, p.Total))
	}
	if p.Current != "" {
		lines = append(lines, "  "+mutedStyle.Render(truncateName(p.Current, 50)))
	}
	lines = append(lines, "")
	lines = append(lines, statusStyle.Render("  This may take a moment..."))

	return strings.Join(lines, "\n")
}

func (m SyncModel) renderSummary() string {
	var lines []string

	if m.result == nil {
		return ""
	}

	r := m.result
	lines = append(lines, "")

	if r.WorkoutsStored > 0 {
		lines = append(lines, successStyle.Render(fmt.Sprintf("  %s workouts stored", humanize.Comma(int64(r.WorkoutsStored)))))
	} else {
		lines = append(lines, statusStyle.Render("  No new activities"))
	}

	if r.Skipped > 0 {
		lines = append(lines, mutedStyle.Render(fmt.Sprintf("  %d activities without a duration skipped", r.Skipped)))
	}

	if len(r.Errors) > 0 {
		lines = append(lines, "")
		lines = append(lines, warningStyle.Render(fmt.Sprintf("  %d errors occurred", len(r.Errors))))
	}

	return strings.Join(lines, "\n")
}

func (m SyncModel) renderStored() string {
	if len(m.counts) == 0 {
		return "  " + mutedStyle.Render("No workouts stored yet")
	}
	sources := make([]string, 0, len(m.counts))
	for s := range m.counts {
		sources = append(sources, s)
	}
	sort.Strings(sources)

	parts := make([]string, len(sources))
	for i, s := range sources {
		parts[i] = fmt.Sprintf("%s %s", humanize.Comma(int64(m.counts[s])), s)
	}
	return "  " + mutedStyle.Render("Stored workouts: "+strings.Join(parts, ", "))
}

func (m SyncModel) lastSyncText() string {
	if m.lastSync.IsZero() {
		return "never"
	}
	return humanize.Time(m.lastSync)
}
