package storage

import (
	"context"
	"fmt"

	"github.com/meltforce/guitardaily/internal/models"
)

// InsertImportLog creates a new import log entry and returns its ID.
func (db *DB) InsertImportLog(ctx context.Context, log models.ImportLog) (int64, error) {
	var id int64
	err := db.Pool.QueryRow(ctx,
		`INSERT INTO import_logs (user_id, source, status, exercises_received, exercises_inserted,
		 attempts_received, attempts_inserted, sessions_received, sessions_inserted, skipped,
		 duration_ms, error_message, metadata)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
		 RETURNING id`,
		log.UserID, log.Source, log.Status, log.ExercisesReceived, log.ExercisesInserted,
		log.AttemptsReceived, log.AttemptsInserted, log.SessionsReceived, log.SessionsInserted,
		log.Skipped, log.DurationMs, log.ErrorMessage, log.Metadata,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("inserting import log: %w", err)
	}
	return id, nil
}

// QueryImportLogs returns the most recent import logs for a user.
func (db *DB) QueryImportLogs(ctx context.Context, userID, limit int) ([]models.ImportLog, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := db.Pool.Query(ctx,
		`SELECT id, user_id, created_at, source, status, exercises_received, exercises_inserted,
		 attempts_received, attempts_inserted, sessions_received, sessions_inserted, skipped,
		 duration_ms, error_message, metadata
		 FROM import_logs
		 WHERE user_id = $1
		 ORDER BY created_at DESC
		 LIMIT $2`,
		userID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying import logs: %w", err)
	}
	defer rows.Close()

	result := []models.ImportLog{}
	for rows.Next() {
		var l models.ImportLog
		if err := rows.Scan(&l.ID, &l.UserID, &l.CreatedAt, &l.Source, &l.Status,
			&l.ExercisesReceived, &l.ExercisesInserted, &l.AttemptsReceived, &l.AttemptsInserted,
			&l.SessionsReceived, &l.SessionsInserted, &l.Skipped,
			&l.DurationMs, &l.ErrorMessage, &l.Metadata); err != nil {
			return nil, fmt.Errorf("scanning import log: %w", err)
		}
		result = append(result, l)
	}
	return result, rows.Err()
}
