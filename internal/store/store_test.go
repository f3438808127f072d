package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := OpenInMemory()
	require.NoError(t, err)

	t.Cleanup(func() {
		db.Close()
	})

	return db
}

func createTestAthlete(t *testing.T, db *DB) *Athlete {
	t.Helper()
	a, err := db.CreateAthlete("Test Rider", 72)
	require.NoError(t, err)
	return a
}

func floatPtr(f float64) *float64 { return &f }

func TestOpen_CreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "data.db")

	db, err := Open(path)
	require.NoError(t, err)
	defer db.Close()

	_, err = db.CreateAthlete("File Rider", 65)
	assert.NoError(t, err)
	assert.FileExists(t, path)
}

func TestAthletes(t *testing.T) {
	db := setupTestDB(t)

	t.Run("create and get", func(t *testing.T) {
		created := createTestAthlete(t, db)
		assert.Len(t, created.ID, 36)

		got, err := db.GetAthlete(created.ID)
		require.NoError(t, err)
		assert.Equal(t, "Test Rider", got.Name)
		assert.Equal(t, 72.0, got.WeightKg)
		assert.Nil(t, got.CP)
		assert.Nil(t, got.CPUpdatedAt)
		assert.Equal(t, created.CreatedAt.Unix(), got.CreatedAt.Unix())
	})

	t.Run("not found", func(t *testing.T) {
		_, err := db.GetAthlete("missing")
		assert.ErrorIs(t, err, ErrAthleteNotFound)
	})

	t.Run("update model fields", func(t *testing.T) {
		a := createTestAthlete(t, db)
		now := time.Now().UTC().Truncate(time.Second)
		a.CP = floatPtr(240)
		a.WPrime = floatPtr(28800)
		a.CPModel = "work_time"
		a.CPR2 = floatPtr(0.9999)
		a.CPUpdatedAt = &now
		a.PVO2max = floatPtr(380)
		a.TlimSeconds = floatPtr(206)

		require.NoError(t, db.UpdateAthlete(a))

		got, err := db.GetAthlete(a.ID)
		require.NoError(t, err)
		require.NotNil(t, got.CP)
		assert.Equal(t, 240.0, *got.CP)
		assert.Equal(t, 28800.0, *got.WPrime)
		assert.Equal(t, "work_time", got.CPModel)
		assert.Equal(t, 0.9999, *got.CPR2)
		require.NotNil(t, got.CPUpdatedAt)
		assert.True(t, now.Equal(*got.CPUpdatedAt))
		assert.Equal(t, 206.0, *got.TlimSeconds)
		assert.Nil(t, got.VO2max)
	})

	t.Run("update missing athlete", func(t *testing.T) {
		err := db.UpdateAthlete(&Athlete{ID: "missing", Name: "x"})
		assert.ErrorIs(t, err, ErrAthleteNotFound)
	})

	t.Run("list", func(t *testing.T) {
		athletes, err := db.ListAthletes()
		require.NoError(t, err)
		assert.GreaterOrEqual(t, len(athletes), 2)
	})
}

func diaryEntry(athleteID, date string, rmssd float64) *DiaryEntry {
	return &DiaryEntry{
		AthleteID: athleteID,
		Date:      date,
		RMSSD:     rmssd,
		SDNN:      rmssd * 1.2,
		MeanRR:    900,
		HeartRate: 66.7,
		BeatCount: 300,
		IsValid:   true,
	}
}

func TestDiaryEntries(t *testing.T) {
	db := setupTestDB(t)
	a := createTestAthlete(t, db)

	for i, rmssd := range []float64{50, 52, 48, 60, 55} {
		date := time.Date(2024, 3, 1+i, 0, 0, 0, 0, time.UTC).Format(DateLayout)
		require.NoError(t, db.UpsertDiaryEntry(diaryEntry(a.ID, date, rmssd)))
	}

	t.Run("get one day", func(t *testing.T) {
		e, err := db.GetDiaryEntry(a.ID, "2024-03-04")
		require.NoError(t, err)
		assert.Equal(t, 60.0, e.RMSSD)
		assert.True(t, e.IsValid)
		assert.Empty(t, e.Status)
	})

	t.Run("missing day", func(t *testing.T) {
		_, err := db.GetDiaryEntry(a.ID, "2024-04-01")
		assert.ErrorIs(t, err, ErrDiaryEntryNotFound)
	})

	t.Run("entries before a date are newest first", func(t *testing.T) {
		entries, err := db.GetDiaryEntriesBefore(a.ID, "2024-03-05", 7)
		require.NoError(t, err)
		require.Len(t, entries, 4)
		assert.Equal(t, "2024-03-04", entries[0].Date)
		assert.Equal(t, "2024-03-01", entries[3].Date)
	})

	t.Run("limit applies to most recent", func(t *testing.T) {
		entries, err := db.GetDiaryEntriesBefore(a.ID, "2024-03-06", 2)
		require.NoError(t, err)
		require.Len(t, entries, 2)
		assert.Equal(t, 55.0, entries[0].RMSSD)
		assert.Equal(t, 60.0, entries[1].RMSSD)
	})

	t.Run("upsert replaces the day", func(t *testing.T) {
		e := diaryEntry(a.ID, "2024-03-02", 70)
		e.Notes = "remeasured"
		require.NoError(t, db.UpsertDiaryEntry(e))

		got, err := db.GetDiaryEntry(a.ID, "2024-03-02")
		require.NoError(t, err)
		assert.Equal(t, 70.0, got.RMSSD)
		assert.Equal(t, "remeasured", got.Notes)
	})

	t.Run("invalid readings are excluded from history", func(t *testing.T) {
		e := diaryEntry(a.ID, "2024-02-28", 10)
		e.IsValid = false
		require.NoError(t, db.UpsertDiaryEntry(e))

		entries, err := db.GetDiaryEntriesBefore(a.ID, "2024-03-01", 7)
		require.NoError(t, err)
		assert.Empty(t, entries)

		all, err := db.ListDiaryEntries(a.ID, 30)
		require.NoError(t, err)
		assert.Len(t, all, 6)
	})
}

func TestSaveReading(t *testing.T) {
	db := setupTestDB(t)
	a := createTestAthlete(t, db)

	e := diaryEntry(a.ID, "2024-03-05", 44)
	e.Status = "YELLOW"
	e.Recommendation = "Reduce intensity"
	e.DeviationPct = floatPtr(-12)
	trend := &Trend{
		AthleteID: a.ID, Date: "2024-03-05", RMSSD: 44,
		BaselineMean: 50, BaselineCount: 3, BaselineDays: 7, Status: "YELLOW",
	}
	require.NoError(t, db.SaveReading(e, trend))

	got, err := db.GetDiaryEntry(a.ID, "2024-03-05")
	require.NoError(t, err)
	assert.Equal(t, "YELLOW", got.Status)
	assert.Equal(t, "Reduce intensity", got.Recommendation)
	require.NotNil(t, got.DeviationPct)
	assert.Equal(t, -12.0, *got.DeviationPct)

	trends, err := db.ListTrends(a.ID, 10)
	require.NoError(t, err)
	require.Len(t, trends, 1)
	assert.Equal(t, 50.0, trends[0].BaselineMean)
}

func TestSaveReading_RollsBackWhenTrendFails(t *testing.T) {
	db := setupTestDB(t)
	a := createTestAthlete(t, db)

	e := diaryEntry(a.ID, "2024-03-05", 44)
	e.Status = "GREEN"
	// The trend row violates the athlete foreign key
	trend := &Trend{AthleteID: "no-such-athlete", Date: "2024-03-05", RMSSD: 44, BaselineDays: 7, Status: "GREEN"}

	require.Error(t, db.SaveReading(e, trend))

	_, err := db.GetDiaryEntry(a.ID, "2024-03-05")
	assert.ErrorIs(t, err, ErrDiaryEntryNotFound)
}

func TestDiaryEntries_ForeignKey(t *testing.T) {
	db := setupTestDB(t)

	err := db.UpsertDiaryEntry(diaryEntry("no-such-athlete", "2024-03-01", 50))
	assert.Error(t, err)
}

func TestTrends(t *testing.T) {
	db := setupTestDB(t)
	a := createTestAthlete(t, db)

	require.NoError(t, db.UpsertTrend(&Trend{
		AthleteID: a.ID, Date: "2024-03-01", RMSSD: 50,
		BaselineMean: 0, BaselineCount: 0, BaselineDays: 7, Status: "GREEN",
	}))
	require.NoError(t, db.UpsertTrend(&Trend{
		AthleteID: a.ID, Date: "2024-03-02", RMSSD: 40,
		BaselineMean: 50, BaselineStdDev: 0, BaselineCount: 1, BaselineDays: 7, Status: "RED",
	}))
	// recompute the same day
	require.NoError(t, db.UpsertTrend(&Trend{
		AthleteID: a.ID, Date: "2024-03-02", RMSSD: 46,
		BaselineMean: 50, BaselineStdDev: 0, BaselineCount: 1, BaselineDays: 7, Status: "GREEN",
	}))

	trends, err := db.ListTrends(a.ID, 10)
	require.NoError(t, err)
	require.Len(t, trends, 2)
	assert.Equal(t, "2024-03-02", trends[0].Date)
	assert.Equal(t, 46.0, trends[0].RMSSD)
	assert.Equal(t, "GREEN", trends[0].Status)
	assert.Equal(t, 1, trends[0].BaselineCount)
}

func TestPowerEfforts(t *testing.T) {
	db := setupTestDB(t)
	a := createTestAthlete(t, db)
	when := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	t.Run("first effort is stored", func(t *testing.T) {
		updated, err := db.UpsertPowerEffort(&PowerEffort{
			AthleteID: a.ID, DurationSeconds: 300, Power: 340,
			Source: EffortSourceManual, AchievedAt: when,
		})
		require.NoError(t, err)
		assert.True(t, updated)
	})

	t.Run("weaker effort is ignored", func(t *testing.T) {
		updated, err := db.UpsertPowerEffort(&PowerEffort{
			AthleteID: a.ID, DurationSeconds: 300, Power: 320,
			Source: EffortSourceManual, AchievedAt: when.AddDate(0, 0, 1),
		})
		require.NoError(t, err)
		assert.False(t, updated)

		got, err := db.GetPowerEffort(a.ID, 300)
		require.NoError(t, err)
		assert.Equal(t, 340.0, got.Power)
	})

	t.Run("stronger effort replaces", func(t *testing.T) {
		activityID := int64(42)
		updated, err := db.UpsertPowerEffort(&PowerEffort{
			AthleteID: a.ID, DurationSeconds: 300, Power: 355,
			Source: EffortSourceStrava, ActivityID: &activityID, AchievedAt: when.AddDate(0, 0, 2),
		})
		require.NoError(t, err)
		assert.True(t, updated)

		got, err := db.GetPowerEffort(a.ID, 300)
		require.NoError(t, err)
		assert.Equal(t, 355.0, got.Power)
		assert.Equal(t, EffortSourceStrava, got.Source)
		require.NotNil(t, got.ActivityID)
		assert.Equal(t, int64(42), *got.ActivityID)
		assert.True(t, when.AddDate(0, 0, 2).Equal(got.AchievedAt))
	})

	t.Run("list ordered by duration", func(t *testing.T) {
		_, err := db.UpsertPowerEffort(&PowerEffort{
			AthleteID: a.ID, DurationSeconds: 180, Power: 400,
			Source: EffortSourceManual, AchievedAt: when,
		})
		require.NoError(t, err)
		_, err = db.UpsertPowerEffort(&PowerEffort{
			AthleteID: a.ID, DurationSeconds: 720, Power: 280,
			Source: EffortSourceManual, AchievedAt: when,
		})
		require.NoError(t, err)

		efforts, err := db.ListPowerEfforts(a.ID)
		require.NoError(t, err)
		require.Len(t, efforts, 3)
		assert.Equal(t, 180, efforts[0].DurationSeconds)
		assert.Equal(t, 300, efforts[1].DurationSeconds)
		assert.Equal(t, 720, efforts[2].DurationSeconds)
	})
}

func TestActivities(t *testing.T) {
	db := setupTestDB(t)
	a := createTestAthlete(t, db)
	start := time.Date(2024, 3, 1, 7, 30, 0, 0, time.UTC)

	ride := &Activity{
		ID: 1001, AthleteID: a.ID, Name: "Morning Ride", Type: "Ride",
		StartDate: start, Distance: 40000, MovingTime: 5400, ElapsedTime: 5600,
		AverageWatts: floatPtr(210), WeightedAverageWatts: floatPtr(225), DeviceWatts: true,
	}
	require.NoError(t, db.UpsertActivity(ride))
	require.NoError(t, db.UpsertActivity(&Activity{
		ID: 1002, AthleteID: a.ID, Name: "Estimated Power", Type: "Ride",
		StartDate: start.AddDate(0, 0, 1), Distance: 20000, MovingTime: 3600, ElapsedTime: 3600,
		DeviceWatts: false,
	}))

	t.Run("get", func(t *testing.T) {
		got, err := db.GetActivity(1001)
		require.NoError(t, err)
		assert.Equal(t, "Morning Ride", got.Name)
		assert.True(t, start.Equal(got.StartDate))
		assert.True(t, got.DeviceWatts)
		assert.Equal(t, 225.0, *got.WeightedAverageWatts)

		_, err = db.GetActivity(9999)
		assert.ErrorIs(t, err, ErrActivityNotFound)
	})

	t.Run("only power meter rides need streams", func(t *testing.T) {
		pending, err := db.GetActivitiesNeedingStreams(a.ID, 10)
		require.NoError(t, err)
		require.Len(t, pending, 1)
		assert.Equal(t, int64(1001), pending[0].ID)
	})

	t.Run("mark synced keeps TSS across upsert", func(t *testing.T) {
		require.NoError(t, db.MarkStreamsSynced(1001, floatPtr(112.5)))
		require.NoError(t, db.UpsertActivity(ride))

		got, err := db.GetActivity(1001)
		require.NoError(t, err)
		require.NotNil(t, got.TSS)
		assert.Equal(t, 112.5, *got.TSS)

		pending, err := db.GetActivitiesNeedingStreams(a.ID, 10)
		require.NoError(t, err)
		assert.Empty(t, pending)

		assert.ErrorIs(t, db.MarkStreamsSynced(9999, nil), ErrActivityNotFound)
	})

	t.Run("list since", func(t *testing.T) {
		rides, err := db.ListActivitiesSince(a.ID, start.Add(time.Hour))
		require.NoError(t, err)
		require.Len(t, rides, 1)
		assert.Equal(t, int64(1002), rides[0].ID)

		count, err := db.CountActivities(a.ID)
		require.NoError(t, err)
		assert.Equal(t, 2, count)
	})
}

func TestAuth(t *testing.T) {
	db := setupTestDB(t)

	_, err := db.GetAuth()
	assert.ErrorIs(t, err, ErrNoAuth)
	assert.ErrorIs(t, db.UpdateTokens("a", "r", time.Now()), ErrNoAuth)

	expires := time.Now().Add(time.Hour).Truncate(time.Second)
	require.NoError(t, db.SaveAuth(&Auth{
		StravaAthleteID: 123, AccessToken: "access", RefreshToken: "refresh", ExpiresAt: expires,
	}))

	newExpiry := expires.Add(6 * time.Hour)
	require.NoError(t, db.UpdateTokens("access2", "refresh2", newExpiry))

	got, err := db.GetAuth()
	require.NoError(t, err)
	assert.Equal(t, int64(123), got.StravaAthleteID)
	assert.Equal(t, "access2", got.AccessToken)
	assert.True(t, newExpiry.Equal(got.ExpiresAt))

	require.NoError(t, db.DeleteAuth())
	_, err = db.GetAuth()
	assert.ErrorIs(t, err, ErrNoAuth)
}

func TestSyncState(t *testing.T) {
	db := setupTestDB(t)

	value, err := db.GetSyncState("missing")
	require.NoError(t, err)
	assert.Empty(t, value)

	zero, err := db.GetSyncTime("last_activity_sync")
	require.NoError(t, err)
	assert.True(t, zero.IsZero())

	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, db.SetSyncTime("last_activity_sync", at))

	got, err := db.GetSyncTime("last_activity_sync")
	require.NoError(t, err)
	assert.True(t, at.Equal(got))

	require.NoError(t, db.SetSyncState("last_activity_sync", "garbage"))
	_, err = db.GetSyncTime("last_activity_sync")
	assert.Error(t, err)
}
