package api

import (
	"time"

	"coachlab/internal/analysis"
	"coachlab/internal/service"
	"coachlab/internal/store"
)

// AthleteResponse is the public view of an athlete and its power model
type AthleteResponse struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	WeightKg    float64    `json:"weight_kg"`
	CP          *float64   `json:"cp,omitempty"`
	WPrime      *float64   `json:"w_prime,omitempty"`
	CPModel     string     `json:"cp_model,omitempty"`
	CPR2        *float64   `json:"cp_r2,omitempty"`
	CPUpdatedAt *time.Time `json:"cp_updated_at,omitempty"`
	VO2max      *float64   `json:"vo2max,omitempty"`
	VO2maxLabel string     `json:"vo2max_label,omitempty"`
	PVO2max     *float64   `json:"pvo2max,omitempty"`
	TlimSeconds *float64   `json:"tlim_seconds,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

func NewAthleteResponse(a *store.Athlete) AthleteResponse {
	r := AthleteResponse{
		ID:          a.ID,
		Name:        a.Name,
		WeightKg:    a.WeightKg,
		CP:          a.CP,
		WPrime:      a.WPrime,
		CPModel:     a.CPModel,
		CPR2:        a.CPR2,
		CPUpdatedAt: a.CPUpdatedAt,
		VO2max:      a.VO2max,
		PVO2max:     a.PVO2max,
		TlimSeconds: a.TlimSeconds,
		CreatedAt:   a.CreatedAt,
	}
	if a.VO2max != nil {
		r.VO2maxLabel = analysis.VO2maxLabel(*a.VO2max)
	}
	return r
}

// DiaryEntryResponse is one day's stored reading
type DiaryEntryResponse struct {
	Date           string   `json:"date"`
	RMSSD          float64  `json:"rmssd"`
	SDNN           float64  `json:"sdnn"`
	PNN50          float64  `json:"pnn50"`
	CV             float64  `json:"cv"`
	MeanRR         float64  `json:"mean_rr"`
	HeartRate      float64  `json:"heart_rate"`
	ArtifactPct    float64  `json:"artifact_pct"`
	BeatCount      int      `json:"beat_count"`
	IsValid        bool     `json:"is_valid"`
	Status         string   `json:"status"`
	Label          string   `json:"label"`
	Recommendation string   `json:"recommendation"`
	DeviationPct   *float64 `json:"deviation_pct,omitempty"`
	Notes          string   `json:"notes,omitempty"`
}

func NewDiaryEntryResponse(e *store.DiaryEntry) DiaryEntryResponse {
	return DiaryEntryResponse{
		Date:           e.Date,
		RMSSD:          e.RMSSD,
		SDNN:           e.SDNN,
		PNN50:          e.PNN50,
		CV:             e.CV,
		MeanRR:         e.MeanRR,
		HeartRate:      e.HeartRate,
		ArtifactPct:    e.ArtifactPct,
		BeatCount:      e.BeatCount,
		IsValid:        e.IsValid,
		Status:         e.Status,
		Label:          analysis.ReadinessLabel(analysis.ReadinessStatus(e.Status)),
		Recommendation: e.Recommendation,
		DeviationPct:   e.DeviationPct,
		Notes:          e.Notes,
	}
}

// CleaningResponse summarises RR cleaning
type CleaningResponse struct {
	OriginalCount      int      `json:"original_count"`
	CleanCount         int      `json:"clean_count"`
	ArtifactCount      int      `json:"artifact_count"`
	ArtifactPercentage float64  `json:"artifact_percentage"`
	IsValid            bool     `json:"is_valid"`
	Warnings           []string `json:"warnings"`
}

func NewCleaningResponse(c analysis.CleaningResult) CleaningResponse {
	warnings := c.Warnings
	if warnings == nil {
		warnings = []string{}
	}
	return CleaningResponse{
		OriginalCount:      len(c.Original),
		CleanCount:         len(c.Cleaned),
		ArtifactCount:      c.ArtifactCount,
		ArtifactPercentage: c.ArtifactPercentage,
		IsValid:            c.IsValid,
		Warnings:           warnings,
	}
}

// MetricsResponse holds the time-domain HRV metrics
type MetricsResponse struct {
	RMSSD     float64 `json:"rmssd"`
	SDNN      float64 `json:"sdnn"`
	PNN50     float64 `json:"pnn50"`
	CV        float64 `json:"cv"`
	MeanRR    float64 `json:"mean_rr"`
	HeartRate float64 `json:"heart_rate"`
}

// BaselineResponse is the rolling rMSSD baseline
type BaselineResponse struct {
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
	Count  int     `json:"count"`
	Days   int     `json:"days"`
}

// ReadinessResponse is a readiness classification
type ReadinessResponse struct {
	Status           string  `json:"status"`
	Label            string  `json:"label"`
	Recommendation   string  `json:"recommendation"`
	DeviationPercent float64 `json:"deviation_percent"`
}

// ReadingResponse is returned for a submitted reading
type ReadingResponse struct {
	Date      string            `json:"date"`
	Cleaning  CleaningResponse  `json:"cleaning"`
	Metrics   *MetricsResponse  `json:"metrics,omitempty"`
	Baseline  BaselineResponse  `json:"baseline"`
	Readiness ReadinessResponse `json:"readiness"`
}

func NewReadingResponse(r *service.ReadingResult) ReadingResponse {
	resp := ReadingResponse{
		Date:     r.Date,
		Cleaning: NewCleaningResponse(r.Cleaning),
		Baseline: BaselineResponse{
			Mean:   r.Baseline.Mean,
			StdDev: r.Baseline.StdDev,
			Count:  r.Baseline.Count,
			Days:   r.Baseline.Days,
		},
		Readiness: ReadinessResponse{
			Status:           string(r.Readiness.Status),
			Label:            analysis.ReadinessLabel(r.Readiness.Status),
			Recommendation:   r.Readiness.Recommendation,
			DeviationPercent: r.Readiness.DeviationPercent,
		},
	}
	if m := r.Metrics; m != nil {
		resp.Metrics = &MetricsResponse{
			RMSSD:     m.RMSSD,
			SDNN:      m.SDNN,
			PNN50:     m.PNN50,
			CV:        m.CV,
			MeanRR:    m.MeanRR,
			HeartRate: m.HeartRate,
		}
	}
	return resp
}

// EffortResponse is a stored best effort
type EffortResponse struct {
	DurationSeconds int       `json:"duration_seconds"`
	Power           float64   `json:"power"`
	Source          string    `json:"source"`
	ActivityID      *int64    `json:"activity_id,omitempty"`
	AchievedAt      time.Time `json:"achieved_at"`
}

func NewEffortResponses(efforts []store.PowerEffort) []EffortResponse {
	out := make([]EffortResponse, len(efforts))
	for i, e := range efforts {
		out[i] = EffortResponse{
			DurationSeconds: e.DurationSeconds,
			Power:           e.Power,
			Source:          e.Source,
			ActivityID:      e.ActivityID,
			AchievedAt:      e.AchievedAt,
		}
	}
	return out
}

// FitResponse is a fitted critical power model
type FitResponse struct {
	CP         float64  `json:"cp"`
	WPrime     float64  `json:"w_prime"`
	R2         *float64 `json:"r2,omitempty"`
	Model      string   `json:"model"`
	PointsUsed int      `json:"points_used"`
}

func NewFitResponse(f *analysis.CPModelResult) FitResponse {
	return FitResponse{
		CP:         f.CP,
		WPrime:     f.WPrime,
		R2:         f.R2,
		Model:      string(f.Model),
		PointsUsed: f.PointsUsed,
	}
}

// PacingResponse is one row of a pacing table
type PacingResponse struct {
	DurationSeconds float64 `json:"duration_seconds"`
	Duration        string  `json:"duration"`
	Power           float64 `json:"power"`
	PercentVO2      float64 `json:"percent_vo2max,omitempty"`
	AboveCP         bool    `json:"above_cp"`
}

func NewPacingResponses(targets []analysis.PacingTarget) []PacingResponse {
	out := make([]PacingResponse, len(targets))
	for i, t := range targets {
		out[i] = PacingResponse{
			DurationSeconds: t.Duration,
			Duration:        service.FormatDuration(int(t.Duration)),
			Power:           t.Power,
			PercentVO2:      t.PercentVO2,
			AboveCP:         t.AboveCP,
		}
	}
	return out
}

// FitnessResponse is the training load summary
type FitnessResponse struct {
	CTL         float64 `json:"ctl"`
	ATL         float64 `json:"atl"`
	TSB         float64 `json:"tsb"`
	Description string  `json:"description,omitempty"`
}

// DashboardResponse mirrors service.Dashboard
type DashboardResponse struct {
	Athlete         AthleteResponse     `json:"athlete"`
	Date            string              `json:"date"`
	Today           *DiaryEntryResponse `json:"today,omitempty"`
	Label           string              `json:"label"`
	Baseline        BaselineResponse    `json:"baseline"`
	RMSSDHistory    []float64           `json:"rmssd_history"`
	BaselineHistory []float64           `json:"baseline_history"`
	HistoryDates    []string            `json:"history_dates"`
	Efforts         []EffortResponse    `json:"efforts"`
	Pacing          []PacingResponse    `json:"pacing"`
	Fitness         FitnessResponse     `json:"fitness"`
	WeeklyTSS       []float64           `json:"weekly_tss"`
	WeeklyLabels    []string            `json:"weekly_labels"`
}

func NewDashboardResponse(d *service.Dashboard) DashboardResponse {
	resp := DashboardResponse{
		Athlete: NewAthleteResponse(&d.Athlete),
		Date:    d.Date,
		Label:   d.Label,
		Baseline: BaselineResponse{
			Mean:   d.Baseline.Mean,
			StdDev: d.Baseline.StdDev,
			Count:  d.Baseline.Count,
			Days:   d.Baseline.Days,
		},
		RMSSDHistory:    d.RMSSDHistory,
		BaselineHistory: d.BaselineHistory,
		HistoryDates:    d.HistoryDates,
		Efforts:         NewEffortResponses(d.Efforts),
		Pacing:          NewPacingResponses(d.Pacing),
		Fitness: FitnessResponse{
			CTL:         analysis.Round1(d.Fitness.CTL),
			ATL:         analysis.Round1(d.Fitness.ATL),
			TSB:         analysis.Round1(d.Fitness.TSB),
			Description: d.FormDescription,
		},
		WeeklyTSS:    d.WeeklyTSS,
		WeeklyLabels: d.WeeklyLabels,
	}
	if d.Today != nil {
		today := NewDiaryEntryResponse(d.Today)
		resp.Today = &today
	}
	return resp
}
