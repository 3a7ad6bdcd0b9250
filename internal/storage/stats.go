package storage

import (
	"context"
	"fmt"

	"github.com/meltforce/guitardaily/internal/models"
)

// GetDataStats returns aggregate statistics for a user's stored practice data.
func (db *DB) GetDataStats(ctx context.Context, userID int) (*models.DataStats, error) {
	stats := &models.DataStats{AttemptsByStatus: []models.StatusStat{}}

	err := db.Pool.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM exercises WHERE user_id = $1),
			(SELECT COUNT(*) FROM attempts WHERE user_id = $1),
			(SELECT COUNT(*) FROM sessions WHERE user_id = $1)
	`, userID).Scan(&stats.TotalExercises, &stats.TotalAttempts, &stats.TotalSessions)
	if err != nil {
		return nil, fmt.Errorf("counting practice data: %w", err)
	}

	err = db.Pool.QueryRow(ctx,
		`SELECT MIN(ts), MAX(ts) FROM attempts WHERE user_id = $1`, userID,
	).Scan(&stats.EarliestAttempt, &stats.LatestAttempt)
	if err != nil {
		return nil, fmt.Errorf("querying attempt range: %w", err)
	}

	rows, err := db.Pool.Query(ctx,
		`SELECT status, COUNT(*) FROM attempts
		 WHERE user_id = $1
		 GROUP BY status
		 ORDER BY COUNT(*) DESC, status`, userID)
	if err != nil {
		return nil, fmt.Errorf("querying attempts by status: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var s models.StatusStat
		if err := rows.Scan(&s.Status, &s.Count); err != nil {
			return nil, fmt.Errorf("scanning status stat: %w", err)
		}
		stats.AttemptsByStatus = append(stats.AttemptsByStatus, s)
	}
	return stats, rows.Err()
}
