package storage

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/meltforce/guitardaily/internal/models"
)

const exerciseColumns = `id, title, bpm_min, bpm_max, music_key, est_minutes, difficulty, notes, tags, created_at, updated_at`

func scanExercise(row pgx.Row) (models.Exercise, error) {
	var e models.Exercise
	err := row.Scan(&e.ID, &e.Title, &e.BPMMin, &e.BPMMax, &e.Key, &e.EstMinutes,
		&e.Difficulty, &e.Notes, &e.Tags, &e.CreatedAt, &e.UpdatedAt)
	if e.Tags == nil {
		e.Tags = []string{}
	}
	return e, err
}

// ListExercises returns the user's catalog, newest first.
func (db *DB) ListExercises(ctx context.Context, userID int) ([]models.Exercise, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT `+exerciseColumns+` FROM exercises
		 WHERE user_id = $1
		 ORDER BY created_at DESC, id`, userID)
	if err != nil {
		return nil, fmt.Errorf("querying exercises: %w", err)
	}
	defer rows.Close()

	result := []models.Exercise{}
	for rows.Next() {
		e, err := scanExercise(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning exercise: %w", err)
		}
		result = append(result, e)
	}
	return result, rows.Err()
}

// GetExercise returns one exercise or models.ErrNotFound.
func (db *DB) GetExercise(ctx context.Context, userID int, id string) (models.Exercise, error) {
	row := db.Pool.QueryRow(ctx,
		`SELECT `+exerciseColumns+` FROM exercises WHERE user_id = $1 AND id = $2`, userID, id)
	e, err := scanExercise(row)
	if err != nil {
		return models.Exercise{}, fmt.Errorf("getting exercise %s: %w", id, notFound(err))
	}
	return e, nil
}

// UpsertExercise inserts the exercise or replaces every field except
// created_at. updated_at only moves forward. Returns true when a new row was
// created.
func (db *DB) UpsertExercise(ctx context.Context, userID int, e models.Exercise) (bool, error) {
	tags := e.Tags
	if tags == nil {
		tags = []string{}
	}
	var inserted bool
	err := db.Pool.QueryRow(ctx,
		`INSERT INTO exercises (user_id, `+exerciseColumns+`)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
		 ON CONFLICT (user_id, id) DO UPDATE SET
			title = EXCLUDED.title, bpm_min = EXCLUDED.bpm_min, bpm_max = EXCLUDED.bpm_max,
			music_key = EXCLUDED.music_key, est_minutes = EXCLUDED.est_minutes,
			difficulty = EXCLUDED.difficulty, notes = EXCLUDED.notes, tags = EXCLUDED.tags,
			updated_at = GREATEST(exercises.updated_at, EXCLUDED.updated_at)
		 RETURNING (xmax = 0)`,
		userID, e.ID, e.Title, e.BPMMin, e.BPMMax, e.Key, e.EstMinutes,
		string(e.Difficulty), e.Notes, tags, e.CreatedAt, e.UpdatedAt,
	).Scan(&inserted)
	if err != nil {
		return false, fmt.Errorf("upserting exercise %s: %w", e.ID, err)
	}
	return inserted, nil
}

// DeleteExercise removes an exercise. Attempts and sessions that reference it
// are left alone.
func (db *DB) DeleteExercise(ctx context.Context, userID int, id string) error {
	tag, err := db.Pool.Exec(ctx,
		`DELETE FROM exercises WHERE user_id = $1 AND id = $2`, userID, id)
	if err != nil {
		return fmt.Errorf("deleting exercise %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("deleting exercise %s: %w", id, models.ErrNotFound)
	}
	return nil
}
