package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/meltforce/guitardaily/internal/models"
)

// InsertSession stores a generated session. Returns false if the id exists.
func (db *DB) InsertSession(ctx context.Context, userID int, s models.Session) (bool, error) {
	date, err := parseSessionDate(s.Date)
	if err != nil {
		return false, err
	}
	items, err := encodeItems(s.Items)
	if err != nil {
		return false, err
	}
	tag, err := db.Pool.Exec(ctx,
		`INSERT INTO sessions (user_id, id, date, total_planned, items)
		 VALUES ($1,$2,$3,$4,$5)
		 ON CONFLICT DO NOTHING`,
		userID, s.ID, date, s.TotalPlanned, items)
	if err != nil {
		return false, fmt.Errorf("inserting session: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// ListSessions returns sessions newest date first. limit <= 0 returns all.
func (db *DB) ListSessions(ctx context.Context, userID, limit int) ([]models.Session, error) {
	query := `SELECT id, date, total_planned, items FROM sessions
		 WHERE user_id = $1
		 ORDER BY date DESC, created_at DESC`
	args := []any{userID}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}

	rows, err := db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying sessions: %w", err)
	}
	defer rows.Close()

	result := []models.Session{}
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	return result, rows.Err()
}

// GetSession returns one session or models.ErrNotFound.
func (db *DB) GetSession(ctx context.Context, userID int, id string) (models.Session, error) {
	row := db.Pool.QueryRow(ctx,
		`SELECT id, date, total_planned, items FROM sessions WHERE user_id = $1 AND id = $2`,
		userID, id)
	s, err := scanSession(row)
	if err != nil {
		return models.Session{}, fmt.Errorf("getting session %s: %w", id, notFound(err))
	}
	return s, nil
}

func scanSession(row pgx.Row) (models.Session, error) {
	var (
		s     models.Session
		date  time.Time
		items []byte
	)
	if err := row.Scan(&s.ID, &date, &s.TotalPlanned, &items); err != nil {
		return models.Session{}, fmt.Errorf("scanning session: %w", err)
	}
	s.Date = date.Format(models.DateLayout)
	decoded, err := decodeItems(items)
	if err != nil {
		return models.Session{}, fmt.Errorf("session %s: %w", s.ID, err)
	}
	s.Items = decoded
	return s, nil
}

func parseSessionDate(date string) (time.Time, error) {
	t, err := time.Parse(models.DateLayout, date)
	if err != nil {
		return time.Time{}, fmt.Errorf("session date %q: %w", date, err)
	}
	return t, nil
}

func encodeItems(items []models.SessionItem) ([]byte, error) {
	if items == nil {
		items = []models.SessionItem{}
	}
	b, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("encoding session items: %w", err)
	}
	return b, nil
}

func decodeItems(raw []byte) ([]models.SessionItem, error) {
	items := []models.SessionItem{}
	if len(raw) == 0 {
		return items, nil
	}
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("decoding session items: %w", err)
	}
	return items, nil
}
