package service

import (
	"errors"
	"fmt"
	"time"

	"coachlab/internal/analysis"
	"coachlab/internal/store"
)

// QueryService provides read-only views for the TUI, CLI and API
type QueryService struct {
	store  *store.DB
	power  *PowerService
	policy analysis.ReadinessPolicy
}

// NewQueryService creates a new query service
func NewQueryService(db *store.DB, power *PowerService, policy analysis.ReadinessPolicy) *QueryService {
	return &QueryService{store: db, power: power, policy: policy}
}

// Dashboard contains all data needed for the readiness and power screens
type Dashboard struct {
	Athlete store.Athlete
	Date    string

	// Readiness; Today is nil until the day's reading is submitted
	Today    *store.DiaryEntry
	Baseline analysis.Baseline
	Label    string

	// For the rMSSD chart, oldest first
	RMSSDHistory    []float64
	BaselineHistory []float64
	HistoryDates    []string

	// Power profile
	Efforts []store.PowerEffort
	Pacing  []analysis.PacingTarget

	// Training form from synced rides
	Fitness         analysis.FitnessMetrics
	FormDescription string
	WeeklyTSS       []float64
	WeeklyLabels    []string
}

// Dashboard gathers everything shown for an athlete on date (YYYY-MM-DD)
func (q *QueryService) Dashboard(athleteID, date string) (*Dashboard, error) {
	day, err := time.Parse(store.DateLayout, date)
	if err != nil {
		return nil, fmt.Errorf("%w: date %q must be YYYY-MM-DD", ErrInvalidInput, date)
	}

	athlete, err := q.store.GetAthlete(athleteID)
	if err != nil {
		return nil, err
	}

	data := &Dashboard{Athlete: *athlete, Date: date, Label: "Unknown"}

	today, err := q.store.GetDiaryEntry(athleteID, date)
	switch {
	case err == nil:
		data.Today = today
		data.Label = analysis.ReadinessLabel(analysis.ReadinessStatus(today.Status))
	case !errors.Is(err, store.ErrDiaryEntryNotFound):
		return nil, fmt.Errorf("loading today's reading: %w", err)
	}

	if err := q.loadHistory(data); err != nil {
		return nil, err
	}

	data.Efforts, err = q.store.ListPowerEfforts(athleteID)
	if err != nil {
		return nil, fmt.Errorf("loading efforts: %w", err)
	}

	data.Pacing, err = q.power.PacingTable(athleteID, nil)
	if err != nil && !errors.Is(err, ErrNoPowerModel) {
		return nil, fmt.Errorf("building pacing table: %w", err)
	}

	if err := q.loadTrainingLoad(data, day); err != nil {
		return nil, err
	}

	return data, nil
}

// loadHistory fills the chart series from stored trends. The baseline shown
// for today is the one the day was classified against.
func (q *QueryService) loadHistory(data *Dashboard) error {
	trends, err := q.store.ListTrends(data.Athlete.ID, DiaryHistoryLimit)
	if err != nil {
		return fmt.Errorf("loading trends: %w", err)
	}

	// Trends come back newest first
	for i := len(trends) - 1; i >= 0; i-- {
		t := trends[i]
		if t.Date > data.Date {
			continue
		}
		data.RMSSDHistory = append(data.RMSSDHistory, t.RMSSD)
		data.BaselineHistory = append(data.BaselineHistory, t.BaselineMean)
		data.HistoryDates = append(data.HistoryDates, t.Date)

		if t.Date == data.Date {
			data.Baseline = analysis.Baseline{
				Mean:   t.BaselineMean,
				StdDev: t.BaselineStdDev,
				Count:  t.BaselineCount,
				Days:   t.BaselineDays,
			}
		}
	}
	return nil
}

// loadTrainingLoad computes CTL/ATL/TSB and weekly TSS from scored rides
func (q *QueryService) loadTrainingLoad(data *Dashboard, day time.Time) error {
	since := day.AddDate(0, 0, -FitnessHistoryDays)
	rides, err := q.store.ListActivitiesSince(data.Athlete.ID, since)
	if err != nil {
		return fmt.Errorf("loading rides: %w", err)
	}

	var loads []analysis.DailyLoad
	for _, r := range rides {
		if r.TSS == nil || r.StartDate.After(day.AddDate(0, 0, 1)) {
			continue
		}
		loads = append(loads, analysis.DailyLoad{Date: r.StartDate, TSS: *r.TSS})
	}

	data.WeeklyTSS, data.WeeklyLabels = weeklyTSS(loads, day)

	if len(loads) == 0 {
		return nil
	}

	// A rest day today still decays fatigue
	loads = append(loads, analysis.DailyLoad{Date: day})
	data.Fitness = analysis.GetCurrentFitness(loads)
	data.FormDescription = analysis.FormDescription(data.Fitness.TSB)
	return nil
}

// weeklyTSS buckets load into the ChartWeeks weeks ending with day's week
func weeklyTSS(loads []analysis.DailyLoad, day time.Time) ([]float64, []string) {
	currentWeekStart := getMonday(day)
	firstWeekStart := currentWeekStart.AddDate(0, 0, -7*(ChartWeeks-1))

	totals := make([]float64, ChartWeeks)
	labels := make([]string, ChartWeeks)
	for i := range labels {
		labels[i] = firstWeekStart.AddDate(0, 0, 7*i).Format("Jan 02")
	}

	for _, l := range loads {
		if l.Date.Before(firstWeekStart) {
			continue
		}
		idx := int(l.Date.Sub(firstWeekStart).Hours() / (24 * 7))
		if idx >= 0 && idx < ChartWeeks {
			totals[idx] += l.TSS
		}
	}
	return totals, labels
}

// getMonday returns the Monday of the week containing t, at midnight
func getMonday(t time.Time) time.Time {
	daysFromMonday := (int(t.Weekday()) + 6) % 7 // Monday = 0
	monday := t.AddDate(0, 0, -daysFromMonday)
	return time.Date(monday.Year(), monday.Month(), monday.Day(), 0, 0, 0, 0, monday.Location())
}

// FormatDuration formats seconds as "H:MM:SS" or "M:SS"
func FormatDuration(seconds int) string {
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60

	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}
