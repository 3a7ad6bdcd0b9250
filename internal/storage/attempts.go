package storage

import (
	"context"
	"fmt"

	"github.com/meltforce/guitardaily/internal/models"
)

// InsertAttempt stores an attempt and, in the same transaction, moves the
// referenced exercise's updated_at forward to the attempt time. A dangling
// exercise id updates nothing. Returns false if the attempt id already exists.
func (db *DB) InsertAttempt(ctx context.Context, userID int, a models.Attempt) (bool, error) {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("beginning tx: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx,
		`INSERT INTO attempts (user_id, id, exercise_id, bpm_used, status, ts, notes)
		 VALUES ($1,$2,$3,$4,$5,$6,$7)
		 ON CONFLICT DO NOTHING`,
		userID, a.ID, a.ExerciseID, a.BPMUsed, string(a.Status), a.Timestamp, a.Notes)
	if err != nil {
		return false, fmt.Errorf("inserting attempt: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return false, nil
	}

	if _, err := tx.Exec(ctx,
		`UPDATE exercises SET updated_at = $3
		 WHERE user_id = $1 AND id = $2 AND updated_at < $3`,
		userID, a.ExerciseID, a.Timestamp); err != nil {
		return false, fmt.Errorf("touching exercise %s: %w", a.ExerciseID, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("committing attempt: %w", err)
	}
	return true, nil
}

// ListAttempts returns the user's attempts, newest first. limit <= 0 returns
// the full log, which the streak needs.
func (db *DB) ListAttempts(ctx context.Context, userID, limit int) ([]models.Attempt, error) {
	query := `SELECT id, exercise_id, bpm_used, status, ts, notes
		 FROM attempts
		 WHERE user_id = $1
		 ORDER BY ts DESC, id`
	args := []any{userID}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}

	rows, err := db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying attempts: %w", err)
	}
	defer rows.Close()

	result := []models.Attempt{}
	for rows.Next() {
		var a models.Attempt
		if err := rows.Scan(&a.ID, &a.ExerciseID, &a.BPMUsed, &a.Status, &a.Timestamp, &a.Notes); err != nil {
			return nil, fmt.Errorf("scanning attempt: %w", err)
		}
		result = append(result, a)
	}
	return result, rows.Err()
}
