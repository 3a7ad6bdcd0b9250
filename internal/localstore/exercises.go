package localstore

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/meltforce/guitardaily/internal/models"
)

type exerciseRow struct {
	ID         string `db:"id"`
	Title      string `db:"title"`
	BPMMin     int    `db:"bpm_min"`
	BPMMax     int    `db:"bpm_max"`
	Key        string `db:"music_key"`
	EstMinutes int    `db:"est_minutes"`
	Difficulty string `db:"difficulty"`
	Notes      string `db:"notes"`
	Tags       string `db:"tags"`
	CreatedAt  string `db:"created_at"`
	UpdatedAt  string `db:"updated_at"`
}

func (r exerciseRow) model() (models.Exercise, error) {
	e := models.Exercise{
		ID: r.ID, Title: r.Title, BPMMin: r.BPMMin, BPMMax: r.BPMMax, Key: r.Key,
		EstMinutes: r.EstMinutes, Difficulty: models.Difficulty(r.Difficulty), Notes: r.Notes,
		Tags: []string{},
	}
	if err := json.Unmarshal([]byte(r.Tags), &e.Tags); err != nil {
		return e, fmt.Errorf("decoding tags of %s: %w", r.ID, err)
	}
	if e.Tags == nil {
		e.Tags = []string{}
	}
	var err error
	if e.CreatedAt, err = parseTS(r.CreatedAt); err != nil {
		return e, err
	}
	if e.UpdatedAt, err = parseTS(r.UpdatedAt); err != nil {
		return e, err
	}
	return e, nil
}

const exerciseColumns = `id, title, bpm_min, bpm_max, music_key, est_minutes, difficulty, notes, tags, created_at, updated_at`

// ListExercises returns the user's catalog, newest first.
func (s *Store) ListExercises(ctx context.Context, userID int) ([]models.Exercise, error) {
	var rows []exerciseRow
	if err := s.db.SelectContext(ctx, &rows,
		`SELECT `+exerciseColumns+` FROM exercises WHERE user_id = ? ORDER BY created_at DESC, id`,
		userID); err != nil {
		return nil, fmt.Errorf("querying exercises: %w", err)
	}
	result := make([]models.Exercise, 0, len(rows))
	for _, r := range rows {
		e, err := r.model()
		if err != nil {
			return nil, err
		}
		result = append(result, e)
	}
	return result, nil
}

// GetExercise returns one exercise or models.ErrNotFound.
func (s *Store) GetExercise(ctx context.Context, userID int, id string) (models.Exercise, error) {
	var r exerciseRow
	if err := s.db.GetContext(ctx, &r,
		`SELECT `+exerciseColumns+` FROM exercises WHERE user_id = ? AND id = ?`, userID, id); err != nil {
		return models.Exercise{}, fmt.Errorf("getting exercise %s: %w", id, notFound(err))
	}
	return r.model()
}

// UpsertExercise inserts the exercise or replaces every field except
// created_at. updated_at only moves forward. Returns true when a new row was
// created.
func (s *Store) UpsertExercise(ctx context.Context, userID int, e models.Exercise) (bool, error) {
	tags := e.Tags
	if tags == nil {
		tags = []string{}
	}
	encoded, err := json.Marshal(tags)
	if err != nil {
		return false, fmt.Errorf("encoding tags: %w", err)
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("beginning tx: %w", err)
	}
	defer tx.Rollback()

	var existing int
	if err := tx.GetContext(ctx, &existing,
		`SELECT COUNT(*) FROM exercises WHERE user_id = ? AND id = ?`, userID, e.ID); err != nil {
		return false, fmt.Errorf("checking exercise %s: %w", e.ID, err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO exercises (user_id, `+exerciseColumns+`)
		 VALUES (?,?,?,?,?,?,?,?,?,?,?,?)
		 ON CONFLICT (user_id, id) DO UPDATE SET
			title = excluded.title, bpm_min = excluded.bpm_min, bpm_max = excluded.bpm_max,
			music_key = excluded.music_key, est_minutes = excluded.est_minutes,
			difficulty = excluded.difficulty, notes = excluded.notes, tags = excluded.tags,
			updated_at = MAX(exercises.updated_at, excluded.updated_at)`,
		userID, e.ID, e.Title, e.BPMMin, e.BPMMax, e.Key, e.EstMinutes, string(e.Difficulty),
		e.Notes, string(encoded), formatTS(e.CreatedAt), formatTS(e.UpdatedAt))
	if err != nil {
		return false, fmt.Errorf("upserting exercise %s: %w", e.ID, err)
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("committing exercise: %w", err)
	}
	return existing == 0, nil
}

// DeleteExercise removes an exercise and leaves attempts and sessions alone.
func (s *Store) DeleteExercise(ctx context.Context, userID int, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM exercises WHERE user_id = ? AND id = ?`, userID, id)
	if err != nil {
		return fmt.Errorf("deleting exercise %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("deleting exercise %s: %w", id, models.ErrNotFound)
	}
	return nil
}
