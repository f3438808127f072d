package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"coachlab/internal/service"
)

// DashboardModel is the readiness dashboard screen model
type DashboardModel struct {
	queryService *service.QueryService
	athleteID    string
	date         string
	data         *service.Dashboard
	loading      bool
	err          error
	width        int
}

// NewDashboardModel creates a new dashboard model for date (YYYY-MM-DD)
func NewDashboardModel(qs *service.QueryService, athleteID, date string, width int) DashboardModel {
	return DashboardModel{
		queryService: qs,
		athleteID:    athleteID,
		date:         date,
		loading:      true,
		width:        width,
	}
}

// Init initializes the dashboard
func (m DashboardModel) Init() tea.Cmd {
	return m.loadData
}

func (m DashboardModel) loadData() tea.Msg {
	data, err := m.queryService.Dashboard(m.athleteID, m.date)
	return dashboardDataMsg{data: data, err: err}
}

type dashboardDataMsg struct {
	data *service.Dashboard
	err  error
}

// Update handles messages
func (m DashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case dashboardDataMsg:
		m.loading = false
		m.err = msg.err
		m.data = msg.data
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
		return "\n  Loading dashboard..."
	}

	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("\n  Error: %v", m.err))
	}

	if m.data == nil {
		return "\n  No data available."
	}

	var sections []string

	topRow := lipgloss.JoinHorizontal(lipgloss.Top, m.renderReadinessCard(), "  ", m.renderFormCard())
	sections = append(sections, topRow)

	if len(m.data.RMSSDHistory) > 2 {
		sections = append(sections, m.renderRMSSDChart())
	}

	if hasLoad(m.data.WeeklyTSS) {
		sections = append(sections, m.renderLoadChart())
	}

	help := statusStyle.Render("Press 'r' to refresh, '2' for power profile, '3' for the diary")
	sections = append(sections, help)

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m DashboardModel) renderReadinessCard() string {
	title := cardTitleStyle.Render("Readiness " + m.data.Date)

	today := m.data.Today
	if today == nil {
		lines := []string{
			RenderStatusBadge(""),
			"",
			mutedStyle.Render("No reading for today yet."),
			mutedStyle.Render("Record one with: coachlab reading add"),
		}
		return cardStyle.Width(44).Render(lipgloss.JoinVertical(lipgloss.Left, title, lipgloss.JoinVertical(lipgloss.Left, lines...)))
	}

	b := m.data.Baseline
	baseline := "building..."
	if b.HasData() {
		baseline = fmt.Sprintf("%.1f ± %.1f ms (%d)", b.Mean, b.StdDev, b.Count)
	}

	lines := []string{
		RenderStatusBadge(today.Status),
		"",
		RenderMetric("rMSSD", fmt.Sprintf("%.1f ms", today.RMSSD), formatDeviation(today.DeviationPct)),
		RenderMetric("Baseline", baseline, ""),
		RenderMetric("Resting HR", fmt.Sprintf("%.0f bpm", today.HeartRate), ""),
		RenderMetric("Artifacts", fmt.Sprintf("%.1f%%", today.ArtifactPct), ""),
		"",
		mutedStyle.Render(today.Recommendation),
	}
	if !today.IsValid {
		lines = append(lines, warningStyle.Render("Poor signal - repeat the measurement"))
	}

	content := lipgloss.JoinVertical(lipgloss.Left, lines...)
	return cardStyle.Width(44).Render(lipgloss.JoinVertical(lipgloss.Left, title, content))
}

func (m DashboardModel) renderFormCard() string {
	title := cardTitleStyle.Render("Training Form")
	a := m.data.Athlete
	f := m.data.Fitness

	lines := []string{
		RenderMetric("Critical Power", formatWatts(a.CP), formatWattsPerKg(a.CP, a.WeightKg)),
		RenderMetric("W'", formatKilojoules(a.WPrime), ""),
		RenderMetric("Fitness (CTL)", fmt.Sprintf("%.0f", f.CTL), ""),
		RenderMetric("Fatigue (ATL)", fmt.Sprintf("%.0f", f.ATL), ""),
		RenderMetric("Form (TSB)", fmt.Sprintf("%+.0f", f.TSB), ""),
		"",
		mutedStyle.Render(m.data.FormDescription),
	}

	content := lipgloss.JoinVertical(lipgloss.Left, lines...)
	return cardStyle.Width(40).Render(lipgloss.JoinVertical(lipgloss.Left, title, content))
}

func (m DashboardModel) renderRMSSDChart() string {
	title := cardTitleStyle.Render("rMSSD vs Baseline")

	graph := asciigraph.PlotMany(
		[][]float64{m.data.RMSSDHistory, gapZeros(m.data.BaselineHistory)},
		asciigraph.Height(8),
		asciigraph.Width(m.chartWidth()),
		asciigraph.Precision(1),
		asciigraph.SeriesColors(asciigraph.Green, asciigraph.Gray),
		asciigraph.Caption(fmt.Sprintf("%s to %s (green: rMSSD, grey: baseline)",
			m.data.HistoryDates[0], m.data.HistoryDates[len(m.data.HistoryDates)-1])),
	)

	return cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, title, graph))
}

func (m DashboardModel) renderLoadChart() string {
	title := cardTitleStyle.Render(fmt.Sprintf("Weekly TSS - last %d weeks", service.ChartWeeks))

	graph := asciigraph.Plot(m.data.WeeklyTSS,
		asciigraph.Height(6),
		asciigraph.Width(m.chartWidth()),
		asciigraph.Precision(0),
		asciigraph.Caption("from "+m.data.WeeklyLabels[0]),
	)

	return cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, title, graph))
}

func (m DashboardModel) chartWidth() int {
	if m.width > 30 && m.width-20 < 60 {
		return m.width - 20
	}
	return 60
}

func hasLoad(weekly []float64) bool {
	for _, w := range weekly {
		if w > 0 {
			return true
		}
	}
	return false
}
