package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// UpsertPowerEffort stores an effort if it beats the athlete's current best
// for that duration. Returns whether the stored best changed.
func (db *DB) UpsertPowerEffort(e *PowerEffort) (updated bool, err error) {
	existing, err := db.GetPowerEffort(e.AthleteID, e.DurationSeconds)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return false, err
	}
	if existing != nil && existing.Power >= e.Power {
		return false, nil
	}

	_, err = db.Exec(`
		INSERT INTO power_efforts (
			athlete_id, duration_seconds, power, source, activity_id, achieved_at
		) VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(athlete_id, duration_seconds) DO UPDATE SET
			power = excluded.power,
			source = excluded.source,
			activity_id = excluded.activity_id,
			achieved_at = excluded.achieved_at
	`,
		e.AthleteID, e.DurationSeconds, e.Power, e.Source, e.ActivityID,
		e.AchievedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return false, err
	}

	return true, nil
}

// GetPowerEffort returns the stored best for one duration, or sql.ErrNoRows
func (db *DB) GetPowerEffort(athleteID string, durationSeconds int) (*PowerEffort, error) {
	row := db.QueryRow(`
		SELECT athlete_id, duration_seconds, power, source, activity_id, achieved_at
		FROM power_efforts
		WHERE athlete_id = ? AND duration_seconds = ?
	`, athleteID, durationSeconds)

	return scanPowerEffort(row)
}

// ListPowerEfforts returns the athlete's best efforts ordered by duration
func (db *DB) ListPowerEfforts(athleteID string) ([]PowerEffort, error) {
	rows, err := db.Query(`
		SELECT athlete_id, duration_seconds, power, source, activity_id, achieved_at
		FROM power_efforts
		WHERE athlete_id = ?
		ORDER BY duration_seconds
	`, athleteID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var efforts []PowerEffort
	for rows.Next() {
		e, err := scanPowerEffort(rows)
		if err != nil {
			return nil, err
		}
		efforts = append(efforts, *e)
	}
	return efforts, rows.Err()
}

func scanPowerEffort(row rowScanner) (*PowerEffort, error) {
	var e PowerEffort
	var achievedAt string

	if err := row.Scan(&e.AthleteID, &e.DurationSeconds, &e.Power, &e.Source, &e.ActivityID, &achievedAt); err != nil {
		return nil, err
	}

	var err error
	e.AchievedAt, err = time.Parse(time.RFC3339, achievedAt)
	if err != nil {
		return nil, fmt.Errorf("parsing achieved_at %q: %w", achievedAt, err)
	}
	return &e, nil
}
