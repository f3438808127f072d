package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"coachlab/internal/analysis"
	"coachlab/internal/service"
)

// PowerModel is the power profile screen: model parameters, best efforts
// and the pacing table in a scrollable viewport
type PowerModel struct {
	queryService *service.QueryService
	athleteID    string
	date         string
	data         *service.Dashboard
	viewport     viewport.Model
	loading      bool
	err          error
	ready        bool
}

// NewPowerModel creates a new power profile model
func NewPowerModel(qs *service.QueryService, athleteID, date string, width, height int) PowerModel {
	m := PowerModel{
		queryService: qs,
		athleteID:    athleteID,
		date:         date,
		loading:      true,
	}

	if width > 0 && height > 0 {
		m.viewport = viewport.New(width, height-6) // header, nav and footer
		m.ready = true
	}

	return m
}

// Init initializes the power screen
func (m PowerModel) Init() tea.Cmd {
	return m.loadData
}

type powerDataMsg struct {
	data *service.Dashboard
	err  error
}

func (m PowerModel) loadData() tea.Msg {
	data, err := m.queryService.Dashboard(m.athleteID, m.date)
	return powerDataMsg{data: data, err: err}
}

// Update handles messages
func (m PowerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case powerDataMsg:
		m.loading = false
		m.err = msg.err
		m.data = msg.data
		if m.ready && m.data != nil {
			m.viewport.SetContent(m.renderContent())
		}

	case tea.WindowSizeMsg:
		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height-6)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height - 6
		}
		if m.data != nil {
			m.viewport.SetContent(m.renderContent())
		}

	case tea.KeyMsg:
		if msg.String() == "r" {
			m.loading = true
			return m, m.loadData
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// View renders the power screen
func (m PowerModel) View() string {
	if m.loading {
		return "\n  Loading power profile..."
	}

	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("\n  Error: %v", m.err))
	}

	if !m.ready {
		return "\n  Initializing..."
	}

	footer := statusStyle.Render("  j/k or arrows: scroll  r: refresh")
	return lipgloss.JoinVertical(lipgloss.Left, m.viewport.View(), footer)
}

func (m PowerModel) renderContent() string {
	sections := []string{
		lipgloss.JoinHorizontal(lipgloss.Top, m.renderModelCard(), "  ", m.renderPhysiologyCard()),
		m.renderEfforts(),
		m.renderPacing(),
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m PowerModel) renderModelCard() string {
	title := cardTitleStyle.Render("Critical Power Model")
	a := m.data.Athlete

	if a.CP == nil {
		content := mutedStyle.Render("No model yet.\nRecord efforts between 3 and 20 minutes,\nthen run: coachlab power fit")
		return cardStyle.Width(44).Render(lipgloss.JoinVertical(lipgloss.Left, title, content))
	}

	fitted := "-"
	if a.CPUpdatedAt != nil {
		fitted = a.CPUpdatedAt.Format("Jan 02 2006")
	}
	r2 := "-"
	if a.CPR2 != nil {
		r2 = fmt.Sprintf("%.4f", *a.CPR2)
	}

	lines := []string{
		RenderMetric("CP", formatWatts(a.CP), formatWattsPerKg(a.CP, a.WeightKg)),
		RenderMetric("W'", formatKilojoules(a.WPrime), ""),
		RenderMetric("Model", a.CPModel, ""),
		RenderMetric("R²", r2, ""),
		RenderMetric("Fitted", fitted, ""),
	}
	return cardStyle.Width(44).Render(lipgloss.JoinVertical(lipgloss.Left, title, lipgloss.JoinVertical(lipgloss.Left, lines...)))
}

func (m PowerModel) renderPhysiologyCard() string {
	title := cardTitleStyle.Render("Aerobic Ceiling")
	a := m.data.Athlete

	vo2 := "-"
	label := ""
	if a.VO2max != nil {
		vo2 = fmt.Sprintf("%.1f ml/kg/min", *a.VO2max)
		label = analysis.VO2maxLabel(*a.VO2max)
	}

	lines := []string{
		RenderMetric("VO2max", vo2, label),
		RenderMetric("pVO2max", formatWatts(a.PVO2max), formatWattsPerKg(a.PVO2max, a.WeightKg)),
		RenderMetric("Tlim", formatSeconds(a.TlimSeconds), ""),
	}
	return cardStyle.Width(40).Render(lipgloss.JoinVertical(lipgloss.Left, title, lipgloss.JoinVertical(lipgloss.Left, lines...)))
}

func (m PowerModel) renderEfforts() string {
	title := cardTitleStyle.Render("Best Efforts")

	if len(m.data.Efforts) == 0 {
		return cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, title, "No efforts recorded"))
	}

	rows := []string{tableHeaderStyle.Render(fmt.Sprintf("%-8s  %7s  %-7s  %-22s  %s", "Duration", "Power", "Source", "Ride", "Date"))}
	for _, e := range m.data.Efforts {
		ride := "-"
		if e.ActivityID != nil {
			ride = fmt.Sprintf("#%d", *e.ActivityID)
		}
		rows = append(rows, tableRowStyle.Render(fmt.Sprintf("%-8s  %5.0f W  %-7s  %-22s  %s",
			service.FormatDuration(e.DurationSeconds),
			e.Power,
			e.Source,
			truncateName(ride, 22),
			e.AchievedAt.Format("Jan 02 2006"),
		)))
	}

	return cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, title, strings.Join(rows, "\n")))
}

func (m PowerModel) renderPacing() string {
	title := cardTitleStyle.Render("Pacing Targets")

	if len(m.data.Pacing) == 0 {
		return cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, title, mutedStyle.Render("Fit a critical power model to see pacing targets")))
	}

	rows := []string{tableHeaderStyle.Render(fmt.Sprintf("%-8s  %7s  %8s  %s", "Duration", "Power", "%VO2max", "Zone"))}
	for _, p := range m.data.Pacing {
		pct := "-"
		if p.PercentVO2 > 0 {
			pct = fmt.Sprintf("%.1f%%", p.PercentVO2)
		}
		zone := mutedStyle.Render("below CP")
		if p.AboveCP {
			zone = warningStyle.Render("above CP")
		}
		rows = append(rows, tableRowStyle.Render(fmt.Sprintf("%-8s  %5.0f W  %8s  %s",
			service.FormatDuration(int(p.Duration)), p.Power, pct, zone)))
	}

	return cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, title, strings.Join(rows, "\n")))
}
