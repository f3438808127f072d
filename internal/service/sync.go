package service

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"coachlab/internal/analysis"
	"coachlab/internal/metrics"
	"coachlab/internal/store"
	"coachlab/internal/strava"
)

// StravaAPI is the part of the Strava client the sync needs
type StravaAPI interface {
	GetActivities(ctx context.Context, after time.Time, page, perPage int) ([]strava.Activity, error)
	GetActivityStreams(ctx context.Context, activityID int64) (*strava.Streams, error)
	RateLimitStatus() (shortRemaining, dailyRemaining int)
}

// SyncService pulls power-meter rides from Strava and turns their watts
// streams into best efforts for the critical power fit
type SyncService struct {
	client StravaAPI
	store  *store.DB
	power  *PowerService
	log    *logrus.Entry
}

// NewSyncService creates a new sync service
func NewSyncService(client StravaAPI, db *store.DB, power *PowerService, logger *logrus.Logger) *SyncService {
	return &SyncService{
		client: client,
		store:  db,
		power:  power,
		log:    logger.WithField("component", "sync"),
	}
}

// SyncProgress reports progress during sync
type SyncProgress struct {
	Phase           string // "activities", "streams", "model"
	Total           int
	Completed       int
	CurrentActivity string
	Error           error
}

// SyncResult contains the results of a sync operation
type SyncResult struct {
	ActivitiesFetched int
	ActivitiesStored  int
	StreamsFetched    int
	EffortsUpdated    int
	Fit               *analysis.CPModelResult
	Errors            []error
}

// SyncAll performs a full sync for one athlete: activities -> streams -> model.
// Per-ride failures are collected in the result and do not stop the sync.
func (s *SyncService) SyncAll(ctx context.Context, athleteID string, progress chan<- SyncProgress) (*SyncResult, error) {
	if progress != nil {
		defer close(progress)
	}

	if _, err := s.store.GetAthlete(athleteID); err != nil {
		return nil, err
	}

	result := &SyncResult{}

	// Phase 1: Sync ride summaries
	if err := s.syncActivities(ctx, athleteID, progress, result); err != nil {
		return result, fmt.Errorf("syncing activities: %w", err)
	}

	// Phase 2: Fetch watts streams and extract best efforts
	if err := s.syncStreams(ctx, athleteID, progress, result); err != nil {
		return result, fmt.Errorf("syncing streams: %w", err)
	}

	// Phase 3: Refit the model when a best improved
	if result.EffortsUpdated > 0 {
		send(progress, SyncProgress{Phase: "model"})
		fit, err := s.power.refitAfterSync(athleteID)
		if err != nil {
			return result, fmt.Errorf("refitting critical power: %w", err)
		}
		result.Fit = fit
	}

	s.log.WithFields(logrus.Fields{
		"athlete": athleteID,
		"fetched": result.ActivitiesFetched,
		"stored":  result.ActivitiesStored,
		"streams": result.StreamsFetched,
		"efforts": result.EffortsUpdated,
		"errors":  len(result.Errors),
	}).Info("Sync complete")

	return result, nil
}

// syncActivities pages through new Strava activities and stores power-meter rides
func (s *SyncService) syncActivities(ctx context.Context, athleteID string, progress chan<- SyncProgress, result *SyncResult) error {
	key := lastActivitySyncKey + ":" + athleteID
	after, err := s.store.GetSyncTime(key)
	if err != nil {
		s.log.WithError(err).Warn("Ignoring unreadable sync time")
		after = time.Time{}
	}
	startedAt := time.Now()

	send(progress, SyncProgress{Phase: "activities"})

	for page := 1; ; page++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		activities, err := s.client.GetActivities(ctx, after, page, ActivitiesPerPage)
		if err != nil {
			return fmt.Errorf("fetching page %d: %w", page, err)
		}
		if len(activities) == 0 {
			break
		}

		result.ActivitiesFetched += len(activities)

		for _, a := range activities {
			if !a.HasPowerMeter() {
				continue
			}
			if err := s.store.UpsertActivity(convertActivity(athleteID, a)); err != nil {
				result.Errors = append(result.Errors, fmt.Errorf("storing activity %d: %w", a.ID, err))
				continue
			}
			result.ActivitiesStored++
			metrics.SyncedActivities.Inc()
		}

		send(progress, SyncProgress{
			Phase:     "activities",
			Total:     result.ActivitiesFetched,
			Completed: result.ActivitiesStored,
		})

		if len(activities) < ActivitiesPerPage {
			break // Last page
		}
	}

	if err := s.store.SetSyncTime(key, startedAt); err != nil {
		return fmt.Errorf("saving sync time: %w", err)
	}
	return nil
}

// syncStreams fetches watts streams for unprocessed rides, a few at a time.
// All workers share the client's rate limiter.
func (s *SyncService) syncStreams(ctx context.Context, athleteID string, progress chan<- SyncProgress, result *SyncResult) error {
	activities, err := s.store.GetActivitiesNeedingStreams(athleteID, StreamBatchSize)
	if err != nil {
		return fmt.Errorf("getting activities needing streams: %w", err)
	}
	if len(activities) == 0 {
		return nil
	}

	athlete, err := s.store.GetAthlete(athleteID)
	if err != nil {
		return err
	}

	total := len(activities)
	send(progress, SyncProgress{Phase: "streams", Total: total})

	var (
		mu        sync.Mutex
		completed atomic.Int32
		fetched   atomic.Int32
		updated   atomic.Int32
	)
	recordErr := func(err error) {
		mu.Lock()
		result.Errors = append(result.Errors, err)
		mu.Unlock()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(StreamWorkers)

	for _, activity := range activities {
		activity := activity
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			n, err := s.processRide(gctx, athlete, activity)
			done := int(completed.Add(1))
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				if strava.IsRateLimited(err) {
					// Unprocessed rides stay pending for the next sync
					return fmt.Errorf("stopped at activity %d: %w", activity.ID, err)
				}
				// Some rides have no usable stream; keep going
				recordErr(fmt.Errorf("activity %d (%s): %w", activity.ID, activity.Name, err))
			} else {
				fetched.Add(1)
				updated.Add(int32(n))
			}

			send(progress, SyncProgress{
				Phase:           "streams",
				Total:           total,
				Completed:       done,
				CurrentActivity: activity.Name,
			})
			return nil
		})
	}

	err = g.Wait()
	result.StreamsFetched += int(fetched.Load())
	result.EffortsUpdated += int(updated.Load())
	return err
}

// processRide extracts best efforts and TSS from one ride's watts stream.
// Returns how many stored bests it improved.
func (s *SyncService) processRide(ctx context.Context, athlete *store.Athlete, activity store.Activity) (int, error) {
	streams, err := s.client.GetActivityStreams(ctx, activity.ID)
	if err != nil {
		return 0, err
	}

	var updated int
	if streams.HasWatts() && streams.Time != nil {
		watts := analysis.ResampleTo1Hz(streams.Time.Data, streams.Watts.Data)
		for _, effort := range analysis.FindBestEfforts(watts, analysis.EffortDurations) {
			activityID := activity.ID
			better, err := s.store.UpsertPowerEffort(&store.PowerEffort{
				AthleteID:       athlete.ID,
				DurationSeconds: effort.DurationSeconds,
				Power:           effort.AvgPower,
				Source:          store.EffortSourceStrava,
				ActivityID:      &activityID,
				AchievedAt:      activity.StartDate.Add(time.Duration(effort.StartOffset) * time.Second),
			})
			if err != nil {
				return updated, fmt.Errorf("saving %ds effort: %w", effort.DurationSeconds, err)
			}
			if better {
				updated++
			}
		}
	}

	if err := s.store.MarkStreamsSynced(activity.ID, rideTSS(athlete, activity)); err != nil {
		return updated, fmt.Errorf("marking synced: %w", err)
	}
	return updated, nil
}

// rideTSS scores a ride against the athlete's current CP, nil when either is unknown
func rideTSS(athlete *store.Athlete, a store.Activity) *float64 {
	if athlete.CP == nil || a.WeightedAverageWatts == nil {
		return nil
	}
	tss := analysis.PowerTSS(*a.WeightedAverageWatts, a.MovingTime, *athlete.CP)
	if tss <= 0 {
		return nil
	}
	return &tss
}

// RateLimitStatus returns the current rate limit status from the client
func (s *SyncService) RateLimitStatus() (shortRemaining, dailyRemaining int) {
	return s.client.RateLimitStatus()
}

func send(progress chan<- SyncProgress, p SyncProgress) {
	if progress != nil {
		progress <- p
	}
}

// convertActivity converts a Strava API ride to a store activity
func convertActivity(athleteID string, a strava.Activity) *store.Activity {
	activity := &store.Activity{
		ID:          a.ID,
		AthleteID:   athleteID,
		Name:        a.Name,
		Type:        a.Type,
		StartDate:   a.StartDate,
		Distance:    a.Distance,
		MovingTime:  a.MovingTime,
		ElapsedTime: a.ElapsedTime,
		DeviceWatts: a.DeviceWatts,
	}

	if a.AverageWatts > 0 {
		activity.AverageWatts = floatPtr(a.AverageWatts)
	}
	if a.WeightedAverageWatts > 0 {
		activity.WeightedAverageWatts = floatPtr(a.WeightedAverageWatts)
	}

	return activity
}
