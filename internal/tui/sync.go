package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"coachlab/internal/service"
	"coachlab/internal/strava"
)

// SyncModel is the sync screen model. syncService is nil when Strava is not
// configured.
type SyncModel struct {
	syncService *service.SyncService
	athleteID   string
	syncing     bool
	progress    service.SyncProgress
	updates     <-chan service.SyncProgress
	done        <-chan SyncDoneMsg
	result      *service.SyncResult
	err         error
	finished    bool
}

// NewSyncModel creates a new sync model
func NewSyncModel(ss *service.SyncService, athleteID string) SyncModel {
	return SyncModel{
		syncService: ss,
		athleteID:   athleteID,
	}
}

// Init initializes the sync screen
func (m SyncModel) Init() tea.Cmd {
	return nil
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
	case syncProgressMsg:
		m.progress = service.SyncProgress(msg)
		return m, waitForSync(m.updates, m.done)

	case SyncDoneMsg:
		m.syncing = false
		m.finished = true
		m.result = msg.Result
		m.err = msg.Err
		return m, func() tea.Msg { return SyncCompleteMsg{} }

	case tea.KeyMsg:
		if !m.syncing && m.syncService != nil {
			switch msg.String() {
			case "enter", "s":
				m.syncing = true
				m.finished = false
				m.err = nil
				m.result = nil
				m.progress = service.SyncProgress{}
				m.updates, m.done = m.startSync()
				return m, waitForSync(m.updates, m.done)
			}
		}
	}
	return m, nil
}

// startSync runs the sync in the background. Progress is read one message
// at a time by waitForSync; the result arrives after progress is closed.
func (m SyncModel) startSync() (<-chan service.SyncProgress, <-chan SyncDoneMsg) {
	updates := make(chan service.SyncProgress)
	done := make(chan SyncDoneMsg, 1)

	go func() {
		result, err := m.syncService.SyncAll(context.Background(), m.athleteID, updates)
		done <- SyncDoneMsg{Result: result, Err: err}
	}()

	return updates, done
}

func waitForSync(updates <-chan service.SyncProgress, done <-chan SyncDoneMsg) tea.Cmd {
	return func() tea.Msg {
		if p, ok := <-updates; ok {
			return syncProgressMsg(p)
		}
		return <-done
	}
}

// View renders the sync screen
func (m SyncModel) View() string {
	var sections []string

	title := cardTitleStyle.Render("Strava Sync")
	sections = append(sections, title)

	if m.syncService == nil {
		sections = append(sections, warningStyle.Render("\n  Strava is not configured."))
		sections = append(sections, statusStyle.Render("  Add strava.client_id and strava.client_secret to the config, then run: coachlab auth"))
		return lipgloss.JoinVertical(lipgloss.Left, sections...)
	}

	if m.err != nil {
		sections = append(sections, errorStyle.Render(fmt.Sprintf("\n  Error: %v", m.err)))
		sections = append(sections, m.renderSummary())
		sections = append(sections, "\n"+statusStyle.Render("  Press 's' or Enter to retry"))
		return lipgloss.JoinVertical(lipgloss.Left, sections...)
	}

	if m.finished && !m.syncing {
		sections = append(sections, successStyle.Render("\n  Sync complete!"))
		sections = append(sections, m.renderSummary())
		sections = append(sections, "\n"+statusStyle.Render("  Press '1' to go to the dashboard"))
		return lipgloss.JoinVertical(lipgloss.Left, sections...)
	}

	if m.syncing {
		sections = append(sections, m.renderProgress())
	} else {
		sections = append(sections, m.renderStartPrompt())
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m SyncModel) renderStartPrompt() string {
	var lines []string

	lines = append(lines, "")
	lines = append(lines, "  This will sync your power-meter rides from Strava:")
	lines = append(lines, "")
	lines = append(lines, "  1. Fetch new rides")
	lines = append(lines, "  2. Download watts streams and find best efforts")
	lines = append(lines, "  3. Refit critical power if a best improved")
	lines = append(lines, "")

	short, daily := m.syncService.RateLimitStatus()
	lines = append(lines, statusStyle.Render(fmt.Sprintf("  API requests left: %d/%d (15min), %d/%d (daily)",
		short, strava.DefaultShortLimit, daily, strava.DefaultDailyLimit)))
	lines = append(lines, "")
	lines = append(lines, statusStyle.Render("  Press 's' or Enter to start sync"))

	return strings.Join(lines, "\n")
}

func (m SyncModel) renderProgress() string {
	p := m.progress
	steps := []struct {
		phase string
		label string
	}{
		{"activities", "Fetching new rides"},
		{"streams", "Downloading watts streams"},
		{"model", "Refitting critical power"},
	}

	lines := []string{"", "  Syncing with Strava...", ""}
	for i, s := range steps {
		line := fmt.Sprintf("  %d. %s", i+1, s.label)
		if s.phase == p.Phase {
			line = successStyle.Render(line)
		}
		lines = append(lines, line)
	}

	if p.Phase == "streams" && p.Total > 0 {
		lines = append(lines, "")
		lines = append(lines, "  "+RenderProgressBar(float64(p.Completed)/float64(p.Total), 40)+
			fmt.Sprintf(" %d/%d", p.Completed, p.Total))
		if p.CurrentActivity != "" {
			lines = append(lines, statusStyle.Render("  "+truncateName(p.CurrentActivity, 50)))
		}
	}

	return strings.Join(lines, "\n")
}

func (m SyncModel) renderSummary() string {
	var lines []string

	if m.result == nil {
		return ""
	}

	r := m.result
	lines = append(lines, "")

	if r.ActivitiesStored > 0 {
		lines = append(lines, successStyle.Render(fmt.Sprintf("  %d rides synced", r.ActivitiesStored)))
	} else {
		lines = append(lines, statusStyle.Render("  No new rides"))
	}

	if r.StreamsFetched > 0 {
		lines = append(lines, successStyle.Render(fmt.Sprintf("  %d streams analysed", r.StreamsFetched)))
	}

	if r.EffortsUpdated > 0 {
		lines = append(lines, successStyle.Render(fmt.Sprintf("  %d best efforts improved", r.EffortsUpdated)))
	}

	if r.Fit != nil {
		lines = append(lines, successStyle.Render(fmt.Sprintf("  CP %.0f W, W' %.1f kJ", r.Fit.CP, r.Fit.WPrime/1000)))
	}

	if len(r.Errors) > 0 {
		lines = append(lines, "")
		lines = append(lines, warningStyle.Render(fmt.Sprintf("  %d rides failed and will be retried", len(r.Errors))))
	}

	return strings.Join(lines, "\n")
}
