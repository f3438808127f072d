package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"coachlab/internal/analysis"
	"coachlab/internal/api"
	"coachlab/internal/service"
	"coachlab/internal/store"
)

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F59E0B"))
)

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// table is a plain column-aligned table with a styled header
type table struct {
	headers []string
	rows    [][]string
	widths  []int
}

func newTable(headers ...string) *table {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	return &table{headers: headers, widths: widths}
}

func (t *table) addRow(values ...string) {
	row := make([]string, len(t.headers))
	for i := range t.headers {
		if i < len(values) {
			row[i] = values[i]
		}
		if n := len([]rune(row[i])); n > t.widths[i] {
			t.widths[i] = n
		}
	}
	t.rows = append(t.rows, row)
}

func (t *table) render(w io.Writer) {
	var sb strings.Builder
	for i, h := range t.headers {
		if i > 0 {
			sb.WriteString("  ")
		}
		sb.WriteString(headerStyle.Render(pad(h, t.widths[i])))
	}
	sb.WriteString("\n")

	for i, width := range t.widths {
		if i > 0 {
			sb.WriteString("  ")
		}
		sb.WriteString(mutedStyle.Render(strings.Repeat("─", width)))
	}
	sb.WriteString("\n")

	for _, row := range t.rows {
		for i, cell := range row {
			if i > 0 {
				sb.WriteString("  ")
			}
			sb.WriteString(pad(cell, t.widths[i]))
		}
		sb.WriteString("\n")
	}
	fmt.Fprint(w, sb.String())
}

func pad(s string, width int) string {
	n := len([]rune(s))
	if n >= width {
		return s
	}
	return s + strings.Repeat(" ", width-n)
}

func optional(v *float64, format string) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf(format, *v)
}

func printReading(w io.Writer, r *service.ReadingResult) {
	fmt.Fprintf(w, "%s  %s\n", headerStyle.Render(r.Date), analysis.ReadinessLabel(r.Readiness.Status))
	if m := r.Metrics; m != nil {
		fmt.Fprintf(w, "  rMSSD %.2f ms  SDNN %.2f ms  pNN50 %.1f%%  HR %.1f bpm\n", m.RMSSD, m.SDNN, m.PNN50, m.HeartRate)
	}
	c := r.Cleaning
	fmt.Fprintf(w, "  %d of %d beats kept (%.1f%% artifacts)\n", len(c.Cleaned), len(c.Original), c.ArtifactPercentage)
	if r.Baseline.HasData() {
		fmt.Fprintf(w, "  Baseline %.2f ms over %d readings, %+.1f%%\n", r.Baseline.Mean, r.Baseline.Count, r.Readiness.DeviationPercent)
	} else {
		fmt.Fprintln(w, mutedStyle.Render("  No baseline yet"))
	}
	fmt.Fprintf(w, "  %s\n", r.Readiness.Recommendation)
	printWarnings(w, c.Warnings)
}

func printWarnings(w io.Writer, warnings []string) {
	for _, msg := range warnings {
		fmt.Fprintln(w, warningStyle.Render("  ! "+msg))
	}
}

func printDiary(w io.Writer, entries []store.DiaryEntry) {
	t := newTable("DATE", "RMSSD", "SDNN", "HR", "ARTIFACT", "STATUS", "CHANGE", "NOTES")
	for _, e := range entries {
		t.addRow(
			e.Date,
			fmt.Sprintf("%.2f", e.RMSSD),
			fmt.Sprintf("%.2f", e.SDNN),
			fmt.Sprintf("%.0f", e.HeartRate),
			fmt.Sprintf("%.1f%%", e.ArtifactPct),
			analysis.ReadinessLabel(analysis.ReadinessStatus(e.Status)),
			optional(e.DeviationPct, "%+.1f%%"),
			e.Notes,
		)
	}
	t.render(w)
}

func printEfforts(w io.Writer, efforts []store.PowerEffort) {
	t := newTable("DURATION", "POWER", "SOURCE", "ACTIVITY", "DATE")
	for _, e := range efforts {
		activity := "-"
		if e.ActivityID != nil {
			activity = fmt.Sprintf("%d", *e.ActivityID)
		}
		t.addRow(
			service.FormatDuration(e.DurationSeconds),
			fmt.Sprintf("%.0f W", e.Power),
			e.Source,
			activity,
			e.AchievedAt.Format(store.DateLayout),
		)
	}
	t.render(w)
}

func printPacing(w io.Writer, targets []analysis.PacingTarget) {
	t := newTable("DURATION", "POWER", "%VO2MAX", "ZONE")
	for _, p := range targets {
		pct := "-"
		if p.PercentVO2 > 0 {
			pct = fmt.Sprintf("%.1f%%", p.PercentVO2)
		}
		zone := "below CP"
		if p.AboveCP {
			zone = "above CP"
		}
		t.addRow(service.FormatDuration(int(p.Duration)), fmt.Sprintf("%.0f W", p.Power), pct, zone)
	}
	t.render(w)
}

func printAthlete(w io.Writer, a *store.Athlete) {
	fmt.Fprintf(w, "%s  %s\n", headerStyle.Render(a.Name), mutedStyle.Render(a.ID))
	fmt.Fprintf(w, "  Weight   %.1f kg\n", a.WeightKg)
	fmt.Fprintf(w, "  CP       %s\n", optional(a.CP, "%.0f W"))
	fmt.Fprintf(w, "  W'       %s\n", optional(a.WPrime, "%.0f J"))
	if a.CPModel != "" {
		fmt.Fprintf(w, "  Model    %s (R² %s)\n", a.CPModel, optional(a.CPR2, "%.4f"))
	}
	vo2 := optional(a.VO2max, "%.1f ml/kg/min")
	if a.VO2max != nil {
		vo2 += " (" + analysis.VO2maxLabel(*a.VO2max) + ")"
	}
	fmt.Fprintf(w, "  VO2max   %s\n", vo2)
	fmt.Fprintf(w, "  pVO2max  %s\n", optional(a.PVO2max, "%.0f W"))
	fmt.Fprintf(w, "  Tlim     %s\n", optional(a.TlimSeconds, "%.0f s"))
}

func printDashboard(w io.Writer, d *service.Dashboard, asJSON bool) error {
	if asJSON {
		return printJSON(w, api.NewDashboardResponse(d))
	}

	fmt.Fprintf(w, "%s  %s  %s\n", headerStyle.Render("coachlab"), d.Athlete.Name, d.Date)
	if d.Today != nil {
		fmt.Fprintf(w, "  Readiness  %s  rMSSD %.2f ms (%s)\n", d.Label, d.Today.RMSSD, optional(d.Today.DeviationPct, "%+.1f%%"))
		fmt.Fprintf(w, "  %s\n", d.Today.Recommendation)
	} else {
		fmt.Fprintln(w, mutedStyle.Render("  No reading for today. Record one with: coachlab reading add --file rr.txt"))
	}
	if d.Athlete.CP != nil {
		fmt.Fprintf(w, "  CP %.0f W  W' %s\n", *d.Athlete.CP, optional(d.Athlete.WPrime, "%.0f J"))
	}
	if d.FormDescription != "" {
		fmt.Fprintf(w, "  CTL %.0f  ATL %.0f  TSB %+.0f  %s\n", d.Fitness.CTL, d.Fitness.ATL, d.Fitness.TSB, d.FormDescription)
	}
	return nil
}
