package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"coachlab/internal/analysis"
	"coachlab/internal/config"
	"coachlab/internal/metrics"
	"coachlab/internal/store"
)

// PowerService maintains each athlete's power-duration profile: best
// efforts, the fitted CP/W' model, VO2max markers and time to exhaustion
type PowerService struct {
	store  *store.DB
	model  analysis.CPModel
	pacing []float64
	log    *logrus.Entry
	now    func() time.Time
}

// NewPowerService creates a power service using the configured default model
// and pacing durations
func NewPowerService(db *store.DB, engine config.EngineConfig, logger *logrus.Logger) *PowerService {
	return &PowerService{
		store:  db,
		model:  engine.Model(),
		pacing: engine.PacingSeconds(),
		log:    logger.WithField("component", "power"),
		now:    time.Now,
	}
}

// RecordEffort stores a manually entered best effort. Returns whether it
// beat the stored best for that duration.
func (s *PowerService) RecordEffort(athleteID string, durationSeconds int, power float64, achievedAt time.Time) (bool, error) {
	if durationSeconds <= 0 || power <= 0 {
		return false, fmt.Errorf("%w: duration and power must be positive", ErrInvalidInput)
	}
	if _, err := s.store.GetAthlete(athleteID); err != nil {
		return false, err
	}
	if achievedAt.IsZero() {
		achievedAt = s.now()
	}

	updated, err := s.store.UpsertPowerEffort(&store.PowerEffort{
		AthleteID:       athleteID,
		DurationSeconds: durationSeconds,
		Power:           power,
		Source:          store.EffortSourceManual,
		AchievedAt:      achievedAt,
	})
	if err != nil {
		return false, fmt.Errorf("saving effort: %w", err)
	}

	s.log.WithFields(logrus.Fields{
		"athlete":  athleteID,
		"duration": durationSeconds,
		"power":    power,
		"new_best": updated,
	}).Info("Effort recorded")
	return updated, nil
}

// Efforts returns the athlete's best efforts ordered by duration
func (s *PowerService) Efforts(athleteID string) ([]store.PowerEffort, error) {
	if _, err := s.store.GetAthlete(athleteID); err != nil {
		return nil, err
	}
	return s.store.ListPowerEfforts(athleteID)
}

// FitCriticalPower fits CP and W' from the stored best efforts and saves the
// model on the athlete. An empty model uses the configured default. When
// pVO2max is known, Tlim is recomputed from the new model.
func (s *PowerService) FitCriticalPower(athleteID string, model analysis.CPModel) (*analysis.CPModelResult, error) {
	if model == "" {
		model = s.model
	}

	athlete, err := s.store.GetAthlete(athleteID)
	if err != nil {
		return nil, err
	}

	efforts, err := s.store.ListPowerEfforts(athleteID)
	if err != nil {
		return nil, fmt.Errorf("loading efforts: %w", err)
	}

	points := make([]analysis.PowerDurationPoint, len(efforts))
	for i, e := range efforts {
		points[i] = analysis.PowerDurationPoint{Duration: float64(e.DurationSeconds), Power: e.Power}
	}

	log := s.log.WithFields(logrus.Fields{"athlete": athleteID, "model": model})

	fit := analysis.SolveCriticalPower(points, model)
	if fit == nil {
		metrics.CPFits.WithLabelValues(string(model), metrics.FitUntrusted).Inc()
		log.WithField("efforts", len(points)).Warn("Critical power fit not trusted")
		return nil, ErrUntrustedFit
	}
	metrics.CPFits.WithLabelValues(string(model), metrics.FitOK).Inc()

	fittedAt := s.now().UTC().Truncate(time.Second)
	athlete.CP = floatPtr(fit.CP)
	athlete.WPrime = floatPtr(fit.WPrime)
	athlete.CPModel = string(fit.Model)
	athlete.CPR2 = fit.R2
	athlete.CPUpdatedAt = &fittedAt
	refreshTlim(athlete)

	if err := s.store.UpdateAthlete(athlete); err != nil {
		return nil, fmt.Errorf("saving model: %w", err)
	}

	log.WithFields(logrus.Fields{
		"cp":      fit.CP,
		"w_prime": fit.WPrime,
		"points":  fit.PointsUsed,
	}).Info("Critical power fitted")
	return fit, nil
}

// RecordRampTest stores the VO2max estimated from ramp-test peak power.
// The ramp peak also stands in for pVO2max until a 5 minute test refines it.
func (s *PowerService) RecordRampTest(athleteID string, mapWatts float64) (*store.Athlete, error) {
	if mapWatts <= 0 {
		return nil, fmt.Errorf("%w: peak power must be positive", ErrInvalidInput)
	}

	athlete, err := s.store.GetAthlete(athleteID)
	if err != nil {
		return nil, err
	}
	if athlete.WeightKg <= 0 {
		return nil, fmt.Errorf("%w: athlete weight is not set", ErrInvalidInput)
	}

	athlete.VO2max = floatPtr(analysis.EstimateVO2maxFromRamp(mapWatts, athlete.WeightKg))
	if athlete.PVO2max == nil {
		athlete.PVO2max = floatPtr(mapWatts)
	}
	refreshTlim(athlete)

	return athlete, s.save(athlete, "Ramp test recorded")
}

// RecordFiveMinutePower sets pVO2max from a maximal 5 minute effort and
// stores the effort itself as a best
func (s *PowerService) RecordFiveMinutePower(athleteID string, power float64) (*store.Athlete, error) {
	if power <= 0 {
		return nil, fmt.Errorf("%w: power must be positive", ErrInvalidInput)
	}

	athlete, err := s.store.GetAthlete(athleteID)
	if err != nil {
		return nil, err
	}

	if _, err := s.store.UpsertPowerEffort(&store.PowerEffort{
		AthleteID:       athleteID,
		DurationSeconds: 300,
		Power:           power,
		Source:          store.EffortSourceManual,
		AchievedAt:      s.now(),
	}); err != nil {
		return nil, fmt.Errorf("saving effort: %w", err)
	}

	athlete.PVO2max = floatPtr(analysis.PVO2maxFrom5MinPower(power))
	refreshTlim(athlete)

	return athlete, s.save(athlete, "Five minute test recorded")
}

// RecordTlimObservation blends an observed time to exhaustion at pVO2max
// into the athlete's estimate. With no prior estimate the model value is
// used as the prior, and failing that the observation is taken as is.
func (s *PowerService) RecordTlimObservation(athleteID string, observedSeconds float64) (*store.Athlete, error) {
	if observedSeconds <= 0 {
		return nil, fmt.Errorf("%w: observed time must be positive", ErrInvalidInput)
	}

	athlete, err := s.store.GetAthlete(athleteID)
	if err != nil {
		return nil, err
	}

	current := observedSeconds
	switch {
	case athlete.TlimSeconds != nil:
		current = *athlete.TlimSeconds
	case athlete.PVO2max != nil && athlete.CP != nil && athlete.WPrime != nil:
		current = analysis.TlimAtPVO2max(*athlete.PVO2max, *athlete.CP, *athlete.WPrime)
	}
	athlete.TlimSeconds = floatPtr(analysis.UpdateTlim(current, observedSeconds))

	return athlete, s.save(athlete, "Tlim observation recorded")
}

// PacingTable returns sustainable power targets from the athlete's fitted
// model. Empty durations use the configured defaults.
func (s *PowerService) PacingTable(athleteID string, durations []float64) ([]analysis.PacingTarget, error) {
	athlete, err := s.store.GetAthlete(athleteID)
	if err != nil {
		return nil, err
	}
	if athlete.CP == nil || athlete.WPrime == nil {
		return nil, ErrNoPowerModel
	}
	if len(durations) == 0 {
		durations = s.pacing
	}
	for _, d := range durations {
		if d <= 0 {
			return nil, fmt.Errorf("%w: durations must be positive", ErrInvalidInput)
		}
	}

	var pVO2max float64
	if athlete.PVO2max != nil {
		pVO2max = *athlete.PVO2max
	}
	return analysis.PacingTable(durations, *athlete.CP, *athlete.WPrime, pVO2max), nil
}

// refitAfterSync refits with the default model, treating an untrusted fit as
// "nothing to update"
func (s *PowerService) refitAfterSync(athleteID string) (*analysis.CPModelResult, error) {
	fit, err := s.FitCriticalPower(athleteID, "")
	if errors.Is(err, ErrUntrustedFit) {
		return nil, nil
	}
	return fit, err
}

func (s *PowerService) save(athlete *store.Athlete, msg string) error {
	if err := s.store.UpdateAthlete(athlete); err != nil {
		return fmt.Errorf("saving athlete: %w", err)
	}
	s.log.WithFields(logrus.Fields{
		"athlete": athlete.ID,
		"vo2max":  deref(athlete.VO2max),
		"pvo2max": deref(athlete.PVO2max),
		"tlim":    deref(athlete.TlimSeconds),
	}).Info(msg)
	return nil
}

// refreshTlim recomputes Tlim when the model and pVO2max are both known
func refreshTlim(a *store.Athlete) {
	if a.CP == nil || a.WPrime == nil || a.PVO2max == nil {
		return
	}
	a.TlimSeconds = floatPtr(analysis.TlimAtPVO2max(*a.PVO2max, *a.CP, *a.WPrime))
}

func floatPtr(f float64) *float64 { return &f }

func deref(f *float64) float64 {
	if f == nil {
		return 0
	}
	return *f
}
