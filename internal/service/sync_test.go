package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coachlab/internal/logging"
	"coachlab/internal/store"
	"coachlab/internal/strava"
)

type fakeStrava struct {
	mu         sync.Mutex
	activities []strava.Activity
	streams    map[int64]*strava.Streams
	failures   map[int64]error
	afters     []time.Time
}

func (f *fakeStrava) GetActivities(ctx context.Context, after time.Time, page, perPage int) ([]strava.Activity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.afters = append(f.afters, after)
	if page > 1 || !after.IsZero() {
		return nil, nil
	}
	return f.activities, nil
}

func (f *fakeStrava) GetActivityStreams(ctx context.Context, id int64) (*strava.Streams, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.failures[id]; ok {
		return nil, err
	}
	s, ok := f.streams[id]
	if !ok {
		return nil, errors.New("API error 404: Record Not Found")
	}
	return s, nil
}

func (f *fakeStrava) RateLimitStatus() (int, int) { return 99, 999 }

func constantStream(seconds, watts int) *strava.Streams {
	times := make([]int, seconds)
	power := make([]int, seconds)
	for i := range times {
		times[i] = i
		power[i] = watts
	}
	return &strava.Streams{
		Time:  &strava.StreamData[int]{Data: times},
		Watts: &strava.StreamData[int]{Data: power},
	}
}

func ride(id int64, name string, deviceWatts bool) strava.Activity {
	return strava.Activity{
		ID:                   id,
		Name:                 name,
		Type:                 "Ride",
		StartDate:            time.Date(2024, 3, int(id), 7, 0, 0, 0, time.UTC),
		MovingTime:           3600,
		ElapsedTime:          3700,
		AverageWatts:         240,
		WeightedAverageWatts: 250,
		DeviceWatts:          deviceWatts,
	}
}

func TestSyncAll(t *testing.T) {
	env := setupTestEnv(t)

	run := strava.Activity{ID: 9, Name: "Run", Type: "Run", StartDate: time.Now()}
	client := &fakeStrava{
		activities: []strava.Activity{
			ride(1, "Steady", true),
			ride(2, "No stream", true),
			ride(3, "Estimated watts", false),
			run,
		},
		streams: map[int64]*strava.Streams{
			1: constantStream(1300, 300),
		},
	}
	svc := NewSyncService(client, env.db, env.power, logging.Discard())

	progress := make(chan SyncProgress)
	var phases []string
	done := make(chan struct{})
	go func() {
		for p := range progress {
			phases = append(phases, p.Phase)
		}
		close(done)
	}()

	result, err := svc.SyncAll(context.Background(), env.athlete.ID, progress)
	require.NoError(t, err)
	<-done

	assert.Equal(t, 4, result.ActivitiesFetched)
	assert.Equal(t, 2, result.ActivitiesStored)
	assert.Equal(t, 1, result.StreamsFetched)
	assert.Equal(t, 5, result.EffortsUpdated)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0].Error(), "No stream")

	assert.Contains(t, phases, "activities")
	assert.Contains(t, phases, "streams")
	assert.Contains(t, phases, "model")

	efforts, err := env.db.ListPowerEfforts(env.athlete.ID)
	require.NoError(t, err)
	require.Len(t, efforts, 5)
	for _, e := range efforts {
		assert.Equal(t, 300.0, e.Power)
		assert.Equal(t, store.EffortSourceStrava, e.Source)
		require.NotNil(t, e.ActivityID)
		assert.Equal(t, int64(1), *e.ActivityID)
	}

	require.NotNil(t, result.Fit)
	assert.Equal(t, 300.0, result.Fit.CP)
	assert.InDelta(t, 0, result.Fit.WPrime, 1)

	// The failed ride is retried next time; the processed one is not
	pending, err := env.db.GetActivitiesNeedingStreams(env.athlete.ID, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, int64(2), pending[0].ID)

	count, err := env.db.CountActivities(env.athlete.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestSyncAll_Incremental(t *testing.T) {
	env := setupTestEnv(t)
	client := &fakeStrava{activities: []strava.Activity{ride(1, "Steady", true)}, streams: map[int64]*strava.Streams{}}
	svc := NewSyncService(client, env.db, env.power, logging.Discard())

	_, err := svc.SyncAll(context.Background(), env.athlete.ID, nil)
	require.NoError(t, err)
	second, err := svc.SyncAll(context.Background(), env.athlete.ID, nil)
	require.NoError(t, err)

	require.Len(t, client.afters, 2)
	assert.True(t, client.afters[0].IsZero())
	assert.False(t, client.afters[1].IsZero())
	assert.Equal(t, 0, second.ActivitiesFetched)
	assert.Nil(t, second.Fit)
}

func TestSyncAll_ScoresTSSWhenCPKnown(t *testing.T) {
	env := setupTestEnv(t)
	recordStandardEfforts(t, env)
	_, err := env.power.FitCriticalPower(env.athlete.ID, "")
	require.NoError(t, err)

	client := &fakeStrava{
		activities: []strava.Activity{ride(1, "Easy", true)},
		streams:    map[int64]*strava.Streams{1: constantStream(600, 150)},
	}
	svc := NewSyncService(client, env.db, env.power, logging.Discard())

	result, err := svc.SyncAll(context.Background(), env.athlete.ID, nil)
	require.NoError(t, err)
	assert.Empty(t, result.Errors)

	stored, err := env.db.GetActivity(1)
	require.NoError(t, err)
	require.NotNil(t, stored.TSS)
	// 1h at 250 W against CP 239
	assert.InDelta(t, 109.4, *stored.TSS, 0.05)
}

func TestSyncAll_StopsWhenRateLimited(t *testing.T) {
	env := setupTestEnv(t)

	client := &fakeStrava{
		activities: []strava.Activity{ride(1, "Limited", true)},
		failures: map[int64]error{
			1: &strava.APIError{StatusCode: 429, Body: "Rate Limit Exceeded"},
		},
	}
	svc := NewSyncService(client, env.db, env.power, logging.Discard())

	result, err := svc.SyncAll(context.Background(), env.athlete.ID, nil)
	require.Error(t, err)
	assert.True(t, strava.IsRateLimited(err))
	require.NotNil(t, result)
	assert.Equal(t, 1, result.ActivitiesStored)
	assert.Empty(t, result.Errors)

	pending, err := env.db.GetActivitiesNeedingStreams(env.athlete.ID, 10)
	require.NoError(t, err)
	assert.Len(t, pending, 1)
}

func TestSyncAll_UnknownAthlete(t *testing.T) {
	env := setupTestEnv(t)
	svc := NewSyncService(&fakeStrava{}, env.db, env.power, logging.Discard())

	_, err := svc.SyncAll(context.Background(), "missing", nil)
	assert.ErrorIs(t, err, store.ErrAthleteNotFound)
}

func TestSyncAll_Cancelled(t *testing.T) {
	env := setupTestEnv(t)
	svc := NewSyncService(&fakeStrava{}, env.db, env.power, logging.Discard())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.SyncAll(ctx, env.athlete.ID, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRateLimitStatus(t *testing.T) {
	env := setupTestEnv(t)
	svc := NewSyncService(&fakeStrava{}, env.db, env.power, logging.Discard())

	short, daily := svc.RateLimitStatus()
	assert.Equal(t, 99, short)
	assert.Equal(t, 999, daily)
}
