package localstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/meltforce/guitardaily/internal/models"
)

type sessionRow struct {
	ID           string `db:"id"`
	Date         string `db:"date"`
	TotalPlanned int    `db:"total_planned"`
	Items        string `db:"items"`
}

func (r sessionRow) model() (models.Session, error) {
	s := models.Session{ID: r.ID, Date: r.Date, TotalPlanned: r.TotalPlanned, Items: []models.SessionItem{}}
	if err := json.Unmarshal([]byte(r.Items), &s.Items); err != nil {
		return s, fmt.Errorf("decoding items of session %s: %w", r.ID, err)
	}
	if s.Items == nil {
		s.Items = []models.SessionItem{}
	}
	return s, nil
}

// InsertSession stores a generated session. Returns false if the id exists.
func (s *Store) InsertSession(ctx context.Context, userID int, sess models.Session) (bool, error) {
	if _, err := time.Parse(models.DateLayout, sess.Date); err != nil {
		return false, fmt.Errorf("session date %q: %w", sess.Date, err)
	}
	items := sess.Items
	if items == nil {
		items = []models.SessionItem{}
	}
	encoded, err := json.Marshal(items)
	if err != nil {
		return false, fmt.Errorf("encoding session items: %w", err)
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (user_id, id, date, total_planned, items, created_at)
		 VALUES (?,?,?,?,?,?)
		 ON CONFLICT DO NOTHING`,
		userID, sess.ID, sess.Date, sess.TotalPlanned, string(encoded), formatTS(s.now()))
	if err != nil {
		return false, fmt.Errorf("inserting session: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// ListSessions returns sessions newest date first. limit <= 0 returns all.
func (s *Store) ListSessions(ctx context.Context, userID, limit int) ([]models.Session, error) {
	query := `SELECT id, date, total_planned, items FROM sessions
		WHERE user_id = ? ORDER BY date DESC, created_at DESC`
	args := []any{userID}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	var rows []sessionRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("querying sessions: %w", err)
	}
	result := make([]models.Session, 0, len(rows))
	for _, r := range rows {
		sess, err := r.model()
		if err != nil {
			return nil, err
		}
		result = append(result, sess)
	}
	return result, nil
}

// GetSession returns one session or models.ErrNotFound.
func (s *Store) GetSession(ctx context.Context, userID int, id string) (models.Session, error) {
	var r sessionRow
	if err := s.db.GetContext(ctx, &r,
		`SELECT id, date, total_planned, items FROM sessions WHERE user_id = ? AND id = ?`,
		userID, id); err != nil {
		return models.Session{}, fmt.Errorf("getting session %s: %w", id, notFound(err))
	}
	return r.model()
}
