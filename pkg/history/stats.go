package history

import (
	"database/sql"
	"fmt"
	"time"
)

// Stats aggregates the runs of the last days days. Dry runs are left out.
func (s *Store) Stats(days int) (Stats, error) {
	since := time.Now().UTC().AddDate(0, 0, -days)
	stats := Stats{Days: days}

	var avg sql.NullFloat64
	err := s.db.QueryRow(`
		SELECT COUNT(*),
			COUNT(CASE WHEN status = 'success' THEN 1 END),
			COUNT(CASE WHEN status = 'failed' THEN 1 END),
			COUNT(CASE WHEN status = 'aborted' THEN 1 END),
			AVG(duration_ms)
		FROM runs WHERE dry_run = 0 AND timestamp >= ?
	`, since).Scan(&stats.Total, &stats.Succeeded, &stats.Failed, &stats.Aborted, &avg)
	if err != nil {
		return stats, fmt.Errorf("failed to query totals: %w", err)
	}

	if stats.Total > 0 {
		stats.SuccessRate = float64(stats.Succeeded) / float64(stats.Total) * 100
	}
	if avg.Valid {
		stats.AvgDuration = time.Duration(avg.Float64) * time.Millisecond
	}

	if stats.Variants, err = s.variantStats(since); err != nil {
		return stats, err
	}
	if stats.CommonErrors, err = s.commonErrors(since); err != nil {
		return stats, err
	}
	return stats, nil
}

func (s *Store) variantStats(since time.Time) ([]VariantStat, error) {
	rows, err := s.db.Query(`
		SELECT variant, COUNT(*) as count,
			(COUNT(CASE WHEN status = 'success' THEN 1 END) * 100.0 / COUNT(*)) as success_rate
		FROM runs WHERE dry_run = 0 AND variant != '' AND timestamp >= ?
		GROUP BY variant ORDER BY count DESC, variant
	`, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query variants: %w", err)
	}
	defer rows.Close()

	var out []VariantStat
	for rows.Next() {
		var vs VariantStat
		var rate sql.NullFloat64
		if err := rows.Scan(&vs.Variant, &vs.Count, &rate); err != nil {
			return nil, err
		}
		vs.SuccessRate = rate.Float64
		out = append(out, vs)
	}
	return out, rows.Err()
}

func (s *Store) commonErrors(since time.Time) ([]ErrorStat, error) {
	rows, err := s.db.Query(`
		SELECT error, COUNT(*) as count, MAX(timestamp) as last_seen
		FROM runs WHERE dry_run = 0 AND status = 'failed' AND error != '' AND timestamp >= ?
		GROUP BY error ORDER BY count DESC LIMIT 5
	`, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query errors: %w", err)
	}
	defer rows.Close()

	var out []ErrorStat
	for rows.Next() {
		var es ErrorStat
		var lastSeen string
		if err := rows.Scan(&es.Error, &es.Count, &lastSeen); err != nil {
			return nil, err
		}
		es.LastSeen = parseTimestamp(lastSeen)
		out = append(out, es)
	}
	return out, rows.Err()
}

// parseTimestamp reads an aggregated DATETIME, which the driver hands back as
// text rather than time.Time.
func parseTimestamp(s string) time.Time {
	for _, layout := range []string{
		"2006-01-02 15:04:05.999999999-07:00",
		"2006-01-02T15:04:05.999999999-07:00",
		"2006-01-02 15:04:05.999999999",
		time.RFC3339Nano,
	} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
