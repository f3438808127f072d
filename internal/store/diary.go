package store

import (
	"database/sql"
	"errors"
	"fmt"
)

const diaryColumns = `athlete_id, date, rmssd, sdnn, pnn50, cv, mean_rr, heart_rate,
	artifact_pct, beat_count, is_valid, status, recommendation, deviation_pct, notes`

// execer is satisfied by both *DB and *sql.Tx
type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

// UpsertDiaryEntry inserts or replaces the reading for an athlete and day
func (db *DB) UpsertDiaryEntry(e *DiaryEntry) error {
	return upsertDiaryEntry(db, e)
}

// SaveReading writes a classified reading and its baseline snapshot
// atomically, so a day never has metrics without a status.
func (db *DB) SaveReading(e *DiaryEntry, t *Trend) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := upsertDiaryEntry(tx, e); err != nil {
		return fmt.Errorf("saving diary entry: %w", err)
	}
	if err := upsertTrend(tx, t); err != nil {
		return fmt.Errorf("saving trend: %w", err)
	}
	return tx.Commit()
}

func upsertDiaryEntry(ex execer, e *DiaryEntry) error {
	_, err := ex.Exec(`
		INSERT INTO diary_entries (`+diaryColumns+`, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(athlete_id, date) DO UPDATE SET
			rmssd = excluded.rmssd,
			sdnn = excluded.sdnn,
			pnn50 = excluded.pnn50,
			cv = excluded.cv,
			mean_rr = excluded.mean_rr,
			heart_rate = excluded.heart_rate,
			artifact_pct = excluded.artifact_pct,
			beat_count = excluded.beat_count,
			is_valid = excluded.is_valid,
			status = excluded.status,
			recommendation = excluded.recommendation,
			deviation_pct = excluded.deviation_pct,
			notes = excluded.notes,
			updated_at = CURRENT_TIMESTAMP
	`,
		e.AthleteID, e.Date, e.RMSSD, e.SDNN, e.PNN50, e.CV, e.MeanRR, e.HeartRate,
		e.ArtifactPct, e.BeatCount, boolToInt(e.IsValid), nullString(e.Status),
		nullString(e.Recommendation), e.DeviationPct, nullString(e.Notes),
	)
	return err
}

// GetDiaryEntry retrieves the reading for one day
func (db *DB) GetDiaryEntry(athleteID, date string) (*DiaryEntry, error) {
	row := db.QueryRow(`
		SELECT `+diaryColumns+`
		FROM diary_entries
		WHERE athlete_id = ? AND date = ?
	`, athleteID, date)

	e, err := scanDiaryEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrDiaryEntryNotFound
	}
	return e, err
}

// GetDiaryEntriesBefore returns up to limit valid readings dated strictly
// before date, newest first. Readings rejected for signal quality are skipped
// so they never feed the baseline.
func (db *DB) GetDiaryEntriesBefore(athleteID, date string, limit int) ([]DiaryEntry, error) {
	rows, err := db.Query(`
		SELECT `+diaryColumns+`
		FROM diary_entries
		WHERE athlete_id = ? AND date < ? AND is_valid = 1
		ORDER BY date DESC
		LIMIT ?
	`, athleteID, date, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanDiaryEntries(rows)
}

// ListDiaryEntries returns the most recent readings, newest first
func (db *DB) ListDiaryEntries(athleteID string, limit int) ([]DiaryEntry, error) {
	rows, err := db.Query(`
		SELECT `+diaryColumns+`
		FROM diary_entries
		WHERE athlete_id = ?
		ORDER BY date DESC
		LIMIT ?
	`, athleteID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanDiaryEntries(rows)
}

func scanDiaryEntry(row rowScanner) (*DiaryEntry, error) {
	var e DiaryEntry
	var isValid int
	var status, recommendation, notes sql.NullString

	err := row.Scan(
		&e.AthleteID, &e.Date, &e.RMSSD, &e.SDNN, &e.PNN50, &e.CV, &e.MeanRR, &e.HeartRate,
		&e.ArtifactPct, &e.BeatCount, &isValid, &status, &recommendation, &e.DeviationPct, &notes,
	)
	if err != nil {
		return nil, err
	}

	e.IsValid = isValid == 1
	e.Status = status.String
	e.Recommendation = recommendation.String
	e.Notes = notes.String
	return &e, nil
}

func scanDiaryEntries(rows *sql.Rows) ([]DiaryEntry, error) {
	var entries []DiaryEntry
	for rows.Next() {
		e, err := scanDiaryEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *e)
	}
	return entries, rows.Err()
}
