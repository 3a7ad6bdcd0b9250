package localstore

import (
	"context"
	"fmt"

	"github.com/meltforce/guitardaily/internal/models"
)

type attemptRow struct {
	ID         string `db:"id"`
	ExerciseID string `db:"exercise_id"`
	BPMUsed    int    `db:"bpm_used"`
	Status     string `db:"status"`
	TS         string `db:"ts"`
	Notes      string `db:"notes"`
}

// InsertAttempt stores an attempt and moves the referenced exercise's
// updated_at forward to the attempt time. Returns false if the id exists.
func (s *Store) InsertAttempt(ctx context.Context, userID int, a models.Attempt) (bool, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("beginning tx: %w", err)
	}
	defer tx.Rollback()

	ts := formatTS(a.Timestamp)
	res, err := tx.ExecContext(ctx,
		`INSERT INTO attempts (user_id, id, exercise_id, bpm_used, status, ts, notes)
		 VALUES (?,?,?,?,?,?,?)
		 ON CONFLICT DO NOTHING`,
		userID, a.ID, a.ExerciseID, a.BPMUsed, string(a.Status), ts, a.Notes)
	if err != nil {
		return false, fmt.Errorf("inserting attempt: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return false, nil
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE exercises SET updated_at = ? WHERE user_id = ? AND id = ? AND updated_at < ?`,
		ts, userID, a.ExerciseID, ts); err != nil {
		return false, fmt.Errorf("touching exercise %s: %w", a.ExerciseID, err)
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("committing attempt: %w", err)
	}
	return true, nil
}

// ListAttempts returns attempts newest first. limit <= 0 returns all.
func (s *Store) ListAttempts(ctx context.Context, userID, limit int) ([]models.Attempt, error) {
	query := `SELECT id, exercise_id, bpm_used, status, ts, notes FROM attempts
		WHERE user_id = ? ORDER BY ts DESC, id`
	args := []any{userID}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	var rows []attemptRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("querying attempts: %w", err)
	}
	result := make([]models.Attempt, 0, len(rows))
	for _, r := range rows {
		ts, err := parseTS(r.TS)
		if err != nil {
			return nil, err
		}
		result = append(result, models.Attempt{
			ID: r.ID, ExerciseID: r.ExerciseID, BPMUsed: r.BPMUsed,
			Status: models.AttemptStatus(r.Status), Timestamp: ts, Notes: r.Notes,
		})
	}
	return result, nil
}
