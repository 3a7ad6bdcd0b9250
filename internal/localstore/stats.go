package localstore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/meltforce/guitardaily/internal/models"
)

// GetDataStats returns aggregate statistics for a user's stored practice data.
func (s *Store) GetDataStats(ctx context.Context, userID int) (*models.DataStats, error) {
	stats := &models.DataStats{AttemptsByStatus: []models.StatusStat{}}

	err := s.db.QueryRowxContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM exercises WHERE user_id = ?),
			(SELECT COUNT(*) FROM attempts WHERE user_id = ?),
			(SELECT COUNT(*) FROM sessions WHERE user_id = ?)
	`, userID, userID, userID).Scan(&stats.TotalExercises, &stats.TotalAttempts, &stats.TotalSessions)
	if err != nil {
		return nil, fmt.Errorf("counting practice data: %w", err)
	}

	var earliest, latest sql.NullString
	if err := s.db.QueryRowxContext(ctx,
		`SELECT MIN(ts), MAX(ts) FROM attempts WHERE user_id = ?`, userID,
	).Scan(&earliest, &latest); err != nil {
		return nil, fmt.Errorf("querying attempt range: %w", err)
	}
	for _, p := range []struct {
		src sql.NullString
		dst **time.Time
	}{{earliest, &stats.EarliestAttempt}, {latest, &stats.LatestAttempt}} {
		if !p.src.Valid {
			continue
		}
		t, err := parseTS(p.src.String)
		if err != nil {
			return nil, err
		}
		*p.dst = &t
	}

	var byStatus []struct {
		Status string `db:"status"`
		Count  int64  `db:"n"`
	}
	if err := s.db.SelectContext(ctx, &byStatus,
		`SELECT status, COUNT(*) AS n FROM attempts WHERE user_id = ?
		 GROUP BY status ORDER BY n DESC, status`, userID); err != nil {
		return nil, fmt.Errorf("querying attempts by status: %w", err)
	}
	for _, r := range byStatus {
		stats.AttemptsByStatus = append(stats.AttemptsByStatus,
			models.StatusStat{Status: models.AttemptStatus(r.Status), Count: r.Count})
	}
	return stats, nil
}
