package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const athleteColumns = `id, name, weight_kg, cp, w_prime, cp_model, cp_r2, cp_updated_at,
	vo2max, pvo2max, tlim_seconds, created_at`

// CreateAthlete inserts a new athlete with a generated ID
func (db *DB) CreateAthlete(name string, weightKg float64) (*Athlete, error) {
	a := &Athlete{
		ID:        uuid.NewString(),
		Name:      name,
		WeightKg:  weightKg,
		CreatedAt: time.Now().UTC().Truncate(time.Second),
	}

	_, err := db.Exec(`
		INSERT INTO athletes (id, name, weight_kg, created_at)
		VALUES (?, ?, ?, ?)
	`, a.ID, a.Name, a.WeightKg, a.CreatedAt.Format(time.RFC3339))
	if err != nil {
		return nil, fmt.Errorf("inserting athlete: %w", err)
	}
	return a, nil
}

// GetAthlete retrieves an athlete by ID
func (db *DB) GetAthlete(id string) (*Athlete, error) {
	row := db.QueryRow(`SELECT `+athleteColumns+` FROM athletes WHERE id = ?`, id)
	return scanAthlete(row)
}

// ListAthletes returns all athletes ordered by creation time
func (db *DB) ListAthletes() ([]Athlete, error) {
	rows, err := db.Query(`SELECT ` + athleteColumns + ` FROM athletes ORDER BY created_at, name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var athletes []Athlete
	for rows.Next() {
		a, err := scanAthlete(rows)
		if err != nil {
			return nil, err
		}
		athletes = append(athletes, *a)
	}
	return athletes, rows.Err()
}

// UpdateAthlete writes the profile and model fields of an existing athlete
func (db *DB) UpdateAthlete(a *Athlete) error {
	var cpUpdatedAt *string
	if a.CPUpdatedAt != nil {
		s := a.CPUpdatedAt.UTC().Format(time.RFC3339)
		cpUpdatedAt = &s
	}

	result, err := db.Exec(`
		UPDATE athletes
		SET name = ?, weight_kg = ?, cp = ?, w_prime = ?, cp_model = ?, cp_r2 = ?,
			cp_updated_at = ?, vo2max = ?, pvo2max = ?, tlim_seconds = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`,
		a.Name, a.WeightKg, a.CP, a.WPrime, nullString(a.CPModel), a.CPR2,
		cpUpdatedAt, a.VO2max, a.PVO2max, a.TlimSeconds, a.ID,
	)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrAthleteNotFound
	}
	return nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...any) error
}

func scanAthlete(row rowScanner) (*Athlete, error) {
	var a Athlete
	var cpModel, cpUpdatedAt sql.NullString
	var createdAt string

	err := row.Scan(
		&a.ID, &a.Name, &a.WeightKg, &a.CP, &a.WPrime, &cpModel, &a.CPR2, &cpUpdatedAt,
		&a.VO2max, &a.PVO2max, &a.TlimSeconds, &createdAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAthleteNotFound
	}
	if err != nil {
		return nil, err
	}

	a.CPModel = cpModel.String
	a.CreatedAt, err = time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return nil, fmt.Errorf("parsing created_at %q: %w", createdAt, err)
	}
	if cpUpdatedAt.Valid {
		t, err := time.Parse(time.RFC3339, cpUpdatedAt.String)
		if err != nil {
			return nil, fmt.Errorf("parsing cp_updated_at %q: %w", cpUpdatedAt.String, err)
		}
		a.CPUpdatedAt = &t
	}

	return &a, nil
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
