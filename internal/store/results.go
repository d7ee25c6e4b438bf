package store

import (
	"database/sql"
	"errors"
	"fmt"
)

func insertTimeline(tx *sql.Tx, activityID string, points []DFAPoint) error {
	if len(points) == 0 {
		return nil
	}

	stmt, err := tx.Prepare(`
		INSERT INTO dfa_points (
			activity_id, time_offset, alpha1, fit_quality, std_err,
			tier, window_samples, classification
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for _, p := range points {
		_, err := stmt.Exec(
			activityID, p.TimeOffset, p.Alpha1, p.FitQuality, p.StdErr,
			p.Tier, p.WindowSamples, p.Classification,
		)
		if err != nil {
			return fmt.Errorf("inserting DFA point: %w", err)
		}
	}
	return nil
}

func insertMMP(tx *sql.Tx, activityID string, samples []MMPSample) error {
	if len(samples) == 0 {
		return nil
	}

	stmt, err := tx.Prepare(`
		INSERT INTO mmp_samples (activity_id, duration, power) VALUES (?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for _, s := range samples {
		if _, err := stmt.Exec(activityID, s.Duration, s.Power); err != nil {
			return fmt.Errorf("inserting MMP sample: %w", err)
		}
	}
	return nil
}

func insertVT1(tx *sql.Tx, activityID string, v *VT1Estimate) error {
	if v == nil {
		return nil
	}
	_, err := tx.Exec(`
		INSERT INTO vt1_estimates (
			activity_id, verdict, crossing_time, alpha1, tier, power,
			average_alpha1, average_class, usable_beats
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		activityID, v.Verdict, v.CrossingTime, v.Alpha1, v.Tier, v.Power,
		v.AverageAlpha1, v.AverageClass, v.UsableBeats,
	)
	if err != nil {
		return fmt.Errorf("inserting VT1 estimate: %w", err)
	}
	return nil
}

func insertCPModel(tx *sql.Tx, activityID string, m *CPModel) error {
	if m == nil {
		return nil
	}
	_, err := tx.Exec(`
		INSERT INTO cp_models (
			activity_id, source, critical_power, w_prime, kind, fit_quality,
			tier, fallback, linear_fallback, iterations
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		activityID, m.Source, m.CriticalPower, m.WPrime, m.Kind, m.FitQuality,
		m.Tier, m.Fallback, m.LinearFallback, m.Iterations,
	)
	if err != nil {
		return fmt.Errorf("inserting CP model: %w", err)
	}
	return nil
}

func insertBalance(tx *sql.Tx, activityID string, b *BalanceSummary) error {
	if b == nil {
		return nil
	}
	_, err := tx.Exec(`
		INSERT INTO balance_summaries (
			activity_id, critical_power, w_prime, min_balance, min_at,
			depleted_seconds, final_balance
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		activityID, b.CriticalPower, b.WPrime, b.MinBalance, b.MinAt,
		b.DepletedSeconds, b.FinalBalance,
	)
	if err != nil {
		return fmt.Errorf("inserting balance summary: %w", err)
	}
	return nil
}

// GetTimeline retrieves an activity's alpha1 timeline ordered by time
func (db *DB) GetTimeline(activityID string) ([]DFAPoint, error) {
	rows, err := db.Query(`
		SELECT time_offset, alpha1, fit_quality, std_err, tier, window_samples, classification
		FROM dfa_points
		WHERE activity_id = ?
		ORDER BY time_offset
	`, activityID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var points []DFAPoint
	for rows.Next() {
		var p DFAPoint
		if err := rows.Scan(&p.TimeOffset, &p.Alpha1, &p.FitQuality, &p.StdErr,
			&p.Tier, &p.WindowSamples, &p.Classification); err != nil {
			return nil, fmt.Errorf("scanning DFA point: %w", err)
		}
		points = append(points, p)
	}
	return points, rows.Err()
}

// GetMMP retrieves an activity's maximal mean powers ordered by duration
func (db *DB) GetMMP(activityID string) ([]MMPSample, error) {
	rows, err := db.Query(`
		SELECT duration, power FROM mmp_samples
		WHERE activity_id = ?
		ORDER BY duration
	`, activityID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var samples []MMPSample
	for rows.Next() {
		var s MMPSample
		if err := rows.Scan(&s.Duration, &s.Power); err != nil {
			return nil, fmt.Errorf("scanning MMP sample: %w", err)
		}
		samples = append(samples, s)
	}
	return samples, rows.Err()
}

// GetVT1 retrieves an activity's VT1 estimate, nil when none was stored
func (db *DB) GetVT1(activityID string) (*VT1Estimate, error) {
	var v VT1Estimate
	err := db.QueryRow(`
		SELECT verdict, crossing_time, alpha1, tier, power, average_alpha1, average_class, usable_beats
		FROM vt1_estimates
		WHERE activity_id = ?
	`, activityID).Scan(&v.Verdict, &v.CrossingTime, &v.Alpha1, &v.Tier, &v.Power,
		&v.AverageAlpha1, &v.AverageClass, &v.UsableBeats)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading VT1 estimate: %w", err)
	}
	return &v, nil
}

// GetCPModel retrieves the capacity used for an activity, nil when none was stored
func (db *DB) GetCPModel(activityID string) (*CPModel, error) {
	var m CPModel
	err := db.QueryRow(`
		SELECT source, critical_power, w_prime, kind, fit_quality, tier, fallback, linear_fallback, iterations
		FROM cp_models
		WHERE activity_id = ?
	`, activityID).Scan(&m.Source, &m.CriticalPower, &m.WPrime, &m.Kind, &m.FitQuality,
		&m.Tier, &m.Fallback, &m.LinearFallback, &m.Iterations)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading CP model: %w", err)
	}
	return &m, nil
}

// GetBalanceSummary retrieves an activity's W' balance summary, nil when none was stored
func (db *DB) GetBalanceSummary(activityID string) (*BalanceSummary, error) {
	var b BalanceSummary
	err := db.QueryRow(`
		SELECT critical_power, w_prime, min_balance, min_at, depleted_seconds, final_balance
		FROM balance_summaries
		WHERE activity_id = ?
	`, activityID).Scan(&b.CriticalPower, &b.WPrime, &b.MinBalance, &b.MinAt,
		&b.DepletedSeconds, &b.FinalBalance)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading balance summary: %w", err)
	}
	return &b, nil
}

// LatestCPModel returns the most recently estimated capacity across all activities.
// Configured capacities are skipped. Returns nil when nothing was estimated yet.
func (db *DB) LatestCPModel() (*CPModel, error) {
	var m CPModel
	err := db.QueryRow(`
		SELECT c.source, c.critical_power, c.w_prime, c.kind, c.fit_quality, c.tier,
			c.fallback, c.linear_fallback, c.iterations
		FROM cp_models c
		JOIN activities a ON a.id = c.activity_id
		WHERE c.source = 'estimated'
		ORDER BY a.analyzed_at DESC
		LIMIT 1
	`).Scan(&m.Source, &m.CriticalPower, &m.WPrime, &m.Kind, &m.FitQuality,
		&m.Tier, &m.Fallback, &m.LinearFallback, &m.Iterations)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading latest CP model: %w", err)
	}
	return &m, nil
}
