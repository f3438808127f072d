package store

// UpsertTrend stores the baseline snapshot for a day
func (db *DB) UpsertTrend(t *Trend) error {
	return upsertTrend(db, t)
}

func upsertTrend(ex execer, t *Trend) error {
	_, err := ex.Exec(`
		INSERT INTO trends (
			athlete_id, date, rmssd, baseline_mean, baseline_std,
			baseline_count, baseline_days, status, computed_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(athlete_id, date) DO UPDATE SET
			rmssd = excluded.rmssd,
			baseline_mean = excluded.baseline_mean,
			baseline_std = excluded.baseline_std,
			baseline_count = excluded.baseline_count,
			baseline_days = excluded.baseline_days,
			status = excluded.status,
			computed_at = CURRENT_TIMESTAMP
	`,
		t.AthleteID, t.Date, t.RMSSD, t.BaselineMean, t.BaselineStdDev,
		t.BaselineCount, t.BaselineDays, t.Status,
	)
	return err
}

// ListTrends returns the most recent trend rows, newest first
func (db *DB) ListTrends(athleteID string, limit int) ([]Trend, error) {
	rows, err := db.Query(`
		SELECT athlete_id, date, rmssd, baseline_mean, baseline_std,
			baseline_count, baseline_days, status
		FROM trends
		WHERE athlete_id = ?
		ORDER BY date DESC
		LIMIT ?
	`, athleteID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var trends []Trend
	for rows.Next() {
		var t Trend
		err := rows.Scan(
			&t.AthleteID, &t.Date, &t.RMSSD, &t.BaselineMean, &t.BaselineStdDev,
			&t.BaselineCount, &t.BaselineDays, &t.Status,
		)
		if err != nil {
			return nil, err
		}
		trends = append(trends, t)
	}
	return trends, rows.Err()
}
