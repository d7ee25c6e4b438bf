package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// SaveAnalysis stores an analysed activity and everything derived from it.
// Re-analysing the same source replaces the previous results and keeps the activity ID,
// which is written back to a.Activity.ID.
func (db *DB) SaveAnalysis(a *Analysis) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	id, err := existingID(tx, a.Activity.Source, a.Activity.SourceRef)
	if err != nil {
		return err
	}
	if id == "" {
		id = a.Activity.ID
	}
	if id == "" {
		id = uuid.NewString()
	}

	if a.Activity.AnalyzedAt.IsZero() {
		a.Activity.AnalyzedAt = time.Now().UTC()
	}

	// Children cascade from the activity row
	if _, err := tx.Exec("DELETE FROM activities WHERE id = ?", id); err != nil {
		return fmt.Errorf("deleting previous analysis: %w", err)
	}

	act := a.Activity
	_, err = tx.Exec(`
		INSERT INTO activities (
			id, source, source_ref, name, sport, start_date, duration,
			beats, power_samples, notes, analyzed_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		id, act.Source, act.SourceRef, act.Name, act.Sport, formatTime(act.StartDate), act.Duration,
		act.Beats, act.PowerSamples, strings.Join(act.Notes, "\n"), formatTime(act.AnalyzedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting activity: %w", err)
	}

	if err := insertTimeline(tx, id, a.Timeline); err != nil {
		return err
	}
	if err := insertMMP(tx, id, a.MMP); err != nil {
		return err
	}
	if err := insertVT1(tx, id, a.VT1); err != nil {
		return err
	}
	if err := insertCPModel(tx, id, a.CP); err != nil {
		return err
	}
	if err := insertBalance(tx, id, a.Balance); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	a.Activity.ID = id
	return nil
}

func existingID(tx *sql.Tx, source, ref string) (string, error) {
	var id string
	err := tx.QueryRow(`
		SELECT id FROM activities WHERE source = ? AND source_ref = ?
	`, source, ref).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("looking up activity: %w", err)
	}
	return id, nil
}

// GetActivity retrieves an activity by ID
func (db *DB) GetActivity(id string) (*Activity, error) {
	row := db.QueryRow(`
		SELECT id, source, source_ref, name, sport, start_date, duration,
			beats, power_samples, notes, analyzed_at
		FROM activities
		WHERE id = ?
	`, id)
	return scanActivity(row)
}

// FindActivity retrieves the activity analysed from a source reference
func (db *DB) FindActivity(source, ref string) (*Activity, error) {
	row := db.QueryRow(`
		SELECT id, source, source_ref, name, sport, start_date, duration,
			beats, power_samples, notes, analyzed_at
		FROM activities
		WHERE source = ? AND source_ref = ?
	`, source, ref)
	return scanActivity(row)
}

// ListActivities returns activities ordered by analysis time, newest first
func (db *DB) ListActivities(limit, offset int) ([]Activity, error) {
	rows, err := db.Query(`
		SELECT id, source, source_ref, name, sport, start_date, duration,
			beats, power_samples, notes, analyzed_at
		FROM activities
		ORDER BY analyzed_at DESC, id
		LIMIT ? OFFSET ?
	`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

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

// CountActivities returns the number of analysed activities
func (db *DB) CountActivities() (int, error) {
	var count int
	err := db.QueryRow("SELECT COUNT(*) FROM activities").Scan(&count)
	return count, err
}

// DeleteActivity removes an activity and its results
func (db *DB) DeleteActivity(id string) error {
	result, err := db.Exec("DELETE FROM activities WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting activity: %w", err)
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

// GetAnalysis loads an activity with its timeline, VT1, MMP, CP and balance results
func (db *DB) GetAnalysis(id string) (*Analysis, error) {
	act, err := db.GetActivity(id)
	if err != nil {
		return nil, err
	}

	a := &Analysis{Activity: *act}
	if a.Timeline, err = db.GetTimeline(id); err != nil {
		return nil, err
	}
	if a.MMP, err = db.GetMMP(id); err != nil {
		return nil, err
	}
	if a.VT1, err = db.GetVT1(id); err != nil {
		return nil, err
	}
	if a.CP, err = db.GetCPModel(id); err != nil {
		return nil, err
	}
	if a.Balance, err = db.GetBalanceSummary(id); err != nil {
		return nil, err
	}
	return a, nil
}

// scanner is satisfied by *sql.Row and *sql.Rows
type scanner interface {
	Scan(dest ...any) error
}

func scanActivity(s scanner) (*Activity, error) {
	var a Activity
	var sport, startDate, notes sql.NullString
	var analyzedAt string

	err := s.Scan(
		&a.ID, &a.Source, &a.SourceRef, &a.Name, &sport, &startDate, &a.Duration,
		&a.Beats, &a.PowerSamples, &notes, &analyzedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrActivityNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning activity: %w", err)
	}

	a.Sport = sport.String
	if startDate.Valid && startDate.String != "" {
		a.StartDate, _ = time.Parse(time.RFC3339, startDate.String)
	}
	if notes.Valid && notes.String != "" {
		a.Notes = strings.Split(notes.String, "\n")
	}
	a.AnalyzedAt, _ = time.Parse(time.RFC3339, analyzedAt)
	return &a, nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
