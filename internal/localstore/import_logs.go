package localstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/meltforce/guitardaily/internal/models"
)

type importLogRow struct {
	ID                int64          `db:"id"`
	UserID            int            `db:"user_id"`
	CreatedAt         string         `db:"created_at"`
	Source            string         `db:"source"`
	Status            string         `db:"status"`
	ExercisesReceived int            `db:"exercises_received"`
	ExercisesInserted int            `db:"exercises_inserted"`
	AttemptsReceived  int            `db:"attempts_received"`
	AttemptsInserted  int            `db:"attempts_inserted"`
	SessionsReceived  int            `db:"sessions_received"`
	SessionsInserted  int            `db:"sessions_inserted"`
	Skipped           int            `db:"skipped"`
	DurationMs        sql.NullInt64  `db:"duration_ms"`
	ErrorMessage      sql.NullString `db:"error_message"`
	Metadata          sql.NullString `db:"metadata"`
}

// InsertImportLog creates a new import log entry and returns its ID.
func (s *Store) InsertImportLog(ctx context.Context, log models.ImportLog) (int64, error) {
	var metadata *string
	if log.Metadata != nil {
		m := string(*log.Metadata)
		metadata = &m
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO import_logs (user_id, created_at, source, status, exercises_received, exercises_inserted,
		 attempts_received, attempts_inserted, sessions_received, sessions_inserted, skipped,
		 duration_ms, error_message, metadata)
		 VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		log.UserID, formatTS(s.now()), log.Source, log.Status, log.ExercisesReceived, log.ExercisesInserted,
		log.AttemptsReceived, log.AttemptsInserted, log.SessionsReceived, log.SessionsInserted,
		log.Skipped, log.DurationMs, log.ErrorMessage, metadata)
	if err != nil {
		return 0, fmt.Errorf("inserting import log: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading import log id: %w", err)
	}
	return id, nil
}

// QueryImportLogs returns the most recent import logs for a user.
func (s *Store) QueryImportLogs(ctx context.Context, userID, limit int) ([]models.ImportLog, error) {
	if limit <= 0 {
		limit = 50
	}
	var rows []importLogRow
	if err := s.db.SelectContext(ctx, &rows,
		`SELECT * FROM import_logs WHERE user_id = ? ORDER BY created_at DESC, id DESC LIMIT ?`,
		userID, limit); err != nil {
		return nil, fmt.Errorf("querying import logs: %w", err)
	}

	result := make([]models.ImportLog, 0, len(rows))
	for _, r := range rows {
		created, err := parseTS(r.CreatedAt)
		if err != nil {
			return nil, err
		}
		l := models.ImportLog{
			ID: r.ID, UserID: r.UserID, CreatedAt: created, Source: r.Source, Status: r.Status,
			ExercisesReceived: r.ExercisesReceived, ExercisesInserted: r.ExercisesInserted,
			AttemptsReceived: r.AttemptsReceived, AttemptsInserted: r.AttemptsInserted,
			SessionsReceived: r.SessionsReceived, SessionsInserted: r.SessionsInserted,
			Skipped: r.Skipped,
		}
		if r.DurationMs.Valid {
			d := int(r.DurationMs.Int64)
			l.DurationMs = &d
		}
		if r.ErrorMessage.Valid {
			msg := r.ErrorMessage.String
			l.ErrorMessage = &msg
		}
		if r.Metadata.Valid {
			raw := json.RawMessage(r.Metadata.String)
			l.Metadata = &raw
		}
		result = append(result, l)
	}
	return result, nil
}
