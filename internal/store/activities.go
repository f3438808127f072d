package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ErrActivityNotFound is returned when an activity doesn't exist
var ErrActivityNotFound = errors.New("activity not found")

const activityColumns = `id, athlete_id, name, type, start_date, distance, moving_time, elapsed_time,
	average_watts, weighted_average_watts, device_watts, tss, streams_synced`

// UpsertActivity inserts or updates a ride. TSS and stream state are kept on update.
func (db *DB) UpsertActivity(a *Activity) error {
	_, err := db.Exec(`
		INSERT INTO activities (`+activityColumns+`, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET
			athlete_id = excluded.athlete_id,
			name = excluded.name,
			type = excluded.type,
			start_date = excluded.start_date,
			distance = excluded.distance,
			moving_time = excluded.moving_time,
			elapsed_time = excluded.elapsed_time,
			average_watts = excluded.average_watts,
			weighted_average_watts = excluded.weighted_average_watts,
			device_watts = excluded.device_watts,
			updated_at = CURRENT_TIMESTAMP
	`,
		a.ID, a.AthleteID, a.Name, a.Type, a.StartDate.UTC().Format(time.RFC3339),
		a.Distance, a.MovingTime, a.ElapsedTime,
		a.AverageWatts, a.WeightedAverageWatts, boolToInt(a.DeviceWatts), a.TSS,
		boolToInt(a.StreamsSynced),
	)
	return err
}

// GetActivity retrieves a ride by ID
func (db *DB) GetActivity(id int64) (*Activity, error) {
	row := db.QueryRow(`SELECT `+activityColumns+` FROM activities WHERE id = ?`, id)

	a, err := scanActivity(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrActivityNotFound
	}
	return a, err
}

// GetActivitiesNeedingStreams returns power-meter rides whose watts stream
// hasn't been processed yet, newest first
func (db *DB) GetActivitiesNeedingStreams(athleteID string, limit int) ([]Activity, error) {
	rows, err := db.Query(`
		SELECT `+activityColumns+`
		FROM activities
		WHERE athlete_id = ? AND streams_synced = 0 AND device_watts = 1
		ORDER BY start_date DESC
		LIMIT ?
	`, athleteID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanActivities(rows)
}

// ListActivitiesSince returns rides starting on or after since, oldest first
func (db *DB) ListActivitiesSince(athleteID string, since time.Time) ([]Activity, error) {
	rows, err := db.Query(`
		SELECT `+activityColumns+`
		FROM activities
		WHERE athlete_id = ? AND start_date >= ?
		ORDER BY start_date
	`, athleteID, since.UTC().Format(time.RFC3339))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanActivities(rows)
}

// MarkStreamsSynced records that a ride's stream was processed, with its TSS
func (db *DB) MarkStreamsSynced(id int64, tss *float64) error {
	result, err := db.Exec(`
		UPDATE activities
		SET streams_synced = 1, tss = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, tss, id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrActivityNotFound
	}
	return nil
}

// CountActivities returns the number of stored rides for an athlete
func (db *DB) CountActivities(athleteID string) (int, error) {
	var count int
	err := db.QueryRow("SELECT COUNT(*) FROM activities WHERE athlete_id = ?", athleteID).Scan(&count)
	return count, err
}

func scanActivity(row rowScanner) (*Activity, error) {
	var a Activity
	var startDate string
	var deviceWatts, streamsSynced int

	err := row.Scan(
		&a.ID, &a.AthleteID, &a.Name, &a.Type, &startDate, &a.Distance, &a.MovingTime, &a.ElapsedTime,
		&a.AverageWatts, &a.WeightedAverageWatts, &deviceWatts, &a.TSS, &streamsSynced,
	)
	if err != nil {
		return nil, err
	}

	a.StartDate, err = time.Parse(time.RFC3339, startDate)
	if err != nil {
		return nil, fmt.Errorf("parsing start_date %q: %w", startDate, err)
	}
	a.DeviceWatts = deviceWatts == 1
	a.StreamsSynced = streamsSynced == 1

	return &a, nil
}

func scanActivities(rows *sql.Rows) ([]Activity, error) {
	var activities []Activity
	for rows.Next() {
		a, err := scanActivity(rows)
		if err != nil {
			return nil, err
		}
		activities = append(activities, *a)
	}
	return activities, rows.Err()
}
