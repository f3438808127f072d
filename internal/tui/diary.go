package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"coachlab/internal/service"
	"coachlab/internal/store"
)

// diaryLimit is how many readings the diary screen loads
const diaryLimit = 90

// DiaryModel is the readings list screen model
type DiaryModel struct {
	readiness *service.ReadinessService
	athleteID string
	entries   []store.DiaryEntry
	cursor    int
	offset    int
	pageSize  int
	loading   bool
	err       error
}

// NewDiaryModel creates a new diary model
func NewDiaryModel(rs *service.ReadinessService, athleteID string) DiaryModel {
	return DiaryModel{
		readiness: rs,
		athleteID: athleteID,
		pageSize:  15,
		loading:   true,
	}
}

// Init initializes the diary screen
func (m DiaryModel) Init() tea.Cmd {
	return m.load
}

type diaryLoadedMsg struct {
	entries []store.DiaryEntry
	err     error
}

func (m DiaryModel) load() tea.Msg {
	entries, err := m.readiness.History(m.athleteID, diaryLimit)
	return diaryLoadedMsg{entries: entries, err: err}
}

// Update handles messages
func (m DiaryModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case diaryLoadedMsg:
		m.loading = false
		m.err = msg.err
		m.entries = msg.entries
		m.cursor, m.offset = 0, 0

	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.entries)-1 {
				m.cursor++
			}
		case "pgup":
			m.cursor -= m.pageSize
			if m.cursor < 0 {
				m.cursor = 0
			}
		case "pgdown":
			m.cursor += m.pageSize
			if m.cursor > len(m.entries)-1 {
				m.cursor = max(len(m.entries)-1, 0)
			}
		case "r":
			m.loading = true
			return m, m.load
		}

		// Keep the cursor on the visible page
		if m.cursor < m.offset {
			m.offset = m.cursor
		} else if m.cursor >= m.offset+m.pageSize {
			m.offset = m.cursor - m.pageSize + 1
		}
	}
	return m, nil
}

// View renders the diary
func (m DiaryModel) View() string {
	if m.loading {
		return "\n  Loading readings..."
	}

	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("\n  Error: %v", m.err))
	}

	if len(m.entries) == 0 {
		return "\n  No readings yet. Record one with: coachlab reading add --file rr.txt"
	}

	var sections []string

	header := tableHeaderStyle.Render(fmt.Sprintf("%-10s  %7s  %6s  %5s  %8s  %-8s  %s",
		"Date", "rMSSD", "SDNN", "HR", "Artifact", "Status", "Change"))
	sections = append(sections, header)

	end := min(m.offset+m.pageSize, len(m.entries))
	for i := m.offset; i < end; i++ {
		e := m.entries[i]
		row := fmt.Sprintf("%-10s  %7.1f  %6.1f  %5.0f  %7.1f%%  %-8s  %s",
			e.Date,
			e.RMSSD,
			e.SDNN,
			e.HeartRate,
			e.ArtifactPct,
			statusText(e.Status),
			formatDeviation(e.DeviationPct),
		)
		if i == m.cursor {
			sections = append(sections, tableSelectedStyle.Render(row))
		} else {
			sections = append(sections, tableRowStyle.Render(row))
		}
	}

	sections = append(sections, "", m.renderSelected())

	pageInfo := fmt.Sprintf("Showing %d-%d of %d", m.offset+1, end, len(m.entries))
	sections = append(sections, statusStyle.Render(pageInfo+"  |  j/k: navigate  pgup/pgdn: page  r: refresh"))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m DiaryModel) renderSelected() string {
	e := m.entries[m.cursor]

	lines := []string{
		RenderStatusBadge(e.Status) + "  " + e.Recommendation,
		RenderMetric("pNN50", fmt.Sprintf("%.1f%%", e.PNN50), ""),
		RenderMetric("CV", fmt.Sprintf("%.1f%%", e.CV), ""),
		RenderMetric("Mean RR", fmt.Sprintf("%.0f ms", e.MeanRR), ""),
		RenderMetric("Beats", fmt.Sprintf("%d", e.BeatCount), ""),
	}
	if !e.IsValid {
		lines = append(lines, warningStyle.Render("Poor signal - excluded from the baseline"))
	}
	if e.Notes != "" {
		lines = append(lines, "", mutedStyle.Render(e.Notes))
	}
	return cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

// statusText is the plain label used inside table rows, where a styled badge
// would break column alignment
func statusText(status string) string {
	if status == "" {
		return "-"
	}
	return status
}
