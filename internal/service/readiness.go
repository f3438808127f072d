package service

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"coachlab/internal/analysis"
	"coachlab/internal/config"
	"coachlab/internal/metrics"
	"coachlab/internal/store"
)

// ReadinessService turns morning RR recordings into diary entries and
// readiness classifications
type ReadinessService struct {
	store        *store.DB
	clean        analysis.CleanOptions
	baselineDays int
	policy       analysis.ReadinessPolicy
	log          *logrus.Entry
}

// NewReadinessService builds the service from the engine settings. It fails
// only when a readiness policy file is configured and cannot be loaded.
func NewReadinessService(db *store.DB, engine config.EngineConfig, logger *logrus.Logger) (*ReadinessService, error) {
	policy, err := engine.ReadinessPolicy()
	if err != nil {
		return nil, fmt.Errorf("loading readiness policy: %w", err)
	}

	days := engine.BaselineDays
	if days <= 0 {
		days = analysis.DefaultBaselineDays
	}

	return &ReadinessService{
		store:        db,
		clean:        engine.CleanOptions(),
		baselineDays: days,
		policy:       policy,
		log:          logger.WithField("component", "readiness"),
	}, nil
}

// ReadingResult is everything computed for one submitted reading
type ReadingResult struct {
	AthleteID string
	Date      string
	Cleaning  analysis.CleaningResult
	Metrics   *analysis.HRVMetrics
	Baseline  analysis.Baseline
	Readiness analysis.Readiness
}

// SubmitReading cleans and scores one day's RR intervals, stores the diary
// entry and classifies it against the baseline of earlier valid days.
// Resubmitting a day replaces it.
//
// When too few beats survive cleaning, the returned result carries the
// cleaning warnings alongside ErrInsufficientData and nothing is stored.
func (s *ReadinessService) SubmitReading(athleteID, date string, rr []int, notes string) (*ReadingResult, error) {
	if _, err := time.Parse(store.DateLayout, date); err != nil {
		return nil, fmt.Errorf("%w: date %q must be YYYY-MM-DD", ErrInvalidInput, date)
	}
	if _, err := s.store.GetAthlete(athleteID); err != nil {
		return nil, err
	}

	log := s.log.WithFields(logrus.Fields{"athlete": athleteID, "date": date})

	result := &ReadingResult{AthleteID: athleteID, Date: date}
	result.Cleaning = analysis.CleanRR(rr, s.clean)
	metrics.ArtifactPercent.Observe(result.Cleaning.ArtifactPercentage)

	hrv := analysis.ComputeHRV(result.Cleaning)
	if hrv == nil {
		metrics.ReadingsRejected.Inc()
		log.WithField("clean_beats", len(result.Cleaning.Cleaned)).Warn("Reading rejected")
		return result, fmt.Errorf("%w: %d clean beats", ErrInsufficientData, len(result.Cleaning.Cleaned))
	}
	result.Metrics = hrv

	prior, err := s.store.GetDiaryEntriesBefore(athleteID, date, s.baselineDays)
	if err != nil {
		return nil, fmt.Errorf("loading baseline history: %w", err)
	}
	result.Baseline = analysis.EstimateBaseline(analysis.Chronological(rmssdValues(prior)), s.baselineDays)
	result.Readiness = analysis.ClassifyReadiness(hrv.RMSSD, result.Baseline.Mean, s.policy)

	var deviation *float64
	if result.Baseline.Mean > 0 {
		d := result.Readiness.DeviationPercent
		deviation = &d
	}
	status := string(result.Readiness.Status)

	// Short recordings still get scored but never feed a later baseline
	entry := &store.DiaryEntry{
		AthleteID:      athleteID,
		Date:           date,
		RMSSD:          hrv.RMSSD,
		SDNN:           hrv.SDNN,
		PNN50:          hrv.PNN50,
		CV:             hrv.CV,
		MeanRR:         hrv.MeanRR,
		HeartRate:      hrv.HeartRate,
		ArtifactPct:    result.Cleaning.ArtifactPercentage,
		BeatCount:      len(result.Cleaning.Cleaned),
		IsValid:        result.Cleaning.IsValid && len(result.Cleaning.Cleaned) >= analysis.MinCleanBeats,
		Status:         status,
		Recommendation: result.Readiness.Recommendation,
		DeviationPct:   deviation,
		Notes:          notes,
	}
	trend := &store.Trend{
		AthleteID:      athleteID,
		Date:           date,
		RMSSD:          hrv.RMSSD,
		BaselineMean:   result.Baseline.Mean,
		BaselineStdDev: result.Baseline.StdDev,
		BaselineCount:  result.Baseline.Count,
		BaselineDays:   result.Baseline.Days,
		Status:         status,
	}
	if err := s.store.SaveReading(entry, trend); err != nil {
		return nil, err
	}

	metrics.ReadingsProcessed.WithLabelValues(status).Inc()
	log.WithFields(logrus.Fields{
		"rmssd":     hrv.RMSSD,
		"baseline":  result.Baseline.Mean,
		"status":    status,
		"artifacts": result.Cleaning.ArtifactPercentage,
		"valid":     entry.IsValid,
	}).Info("Reading processed")

	return result, nil
}

// Today returns the stored reading and classification for date
func (s *ReadinessService) Today(athleteID, date string) (*store.DiaryEntry, error) {
	if _, err := s.store.GetAthlete(athleteID); err != nil {
		return nil, err
	}
	return s.store.GetDiaryEntry(athleteID, date)
}

// History returns up to limit diary entries, newest first
func (s *ReadinessService) History(athleteID string, limit int) ([]store.DiaryEntry, error) {
	if _, err := s.store.GetAthlete(athleteID); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = DiaryHistoryLimit
	}
	return s.store.ListDiaryEntries(athleteID, limit)
}

// Policy returns the readiness bands in use
func (s *ReadinessService) Policy() analysis.ReadinessPolicy {
	return s.policy
}

func rmssdValues(entries []store.DiaryEntry) []float64 {
	values := make([]float64, len(entries))
	for i, e := range entries {
		values[i] = e.RMSSD
	}
	return values
}
