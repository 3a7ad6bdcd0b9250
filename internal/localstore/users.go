package localstore

import (
	"context"
	"fmt"

	"github.com/meltforce/guitardaily/internal/models"
)

// GetOrCreateUser finds or creates a user by login and returns its id.
func (s *Store) GetOrCreateUser(ctx context.Context, login, displayName string) (int, error) {
	var id int
	err := s.db.QueryRowxContext(ctx, `
		INSERT INTO users (login, display_name, last_seen)
		VALUES (?, ?, ?)
		ON CONFLICT (login) DO UPDATE
			SET last_seen = excluded.last_seen,
			    display_name = COALESCE(NULLIF(excluded.display_name, ''), users.display_name)
		RETURNING id
	`, login, displayName, formatTS(s.now())).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("upserting user %q: %w", login, err)
	}
	return id, nil
}

type userRow struct {
	ID          int    `db:"id"`
	Login       string `db:"login"`
	DisplayName string `db:"display_name"`
	LastSeen    string `db:"last_seen"`
}

// ListUsers returns all users ordered by id.
func (s *Store) ListUsers(ctx context.Context) ([]models.User, error) {
	var rows []userRow
	if err := s.db.SelectContext(ctx, &rows,
		`SELECT id, login, display_name, last_seen FROM users ORDER BY id`); err != nil {
		return nil, fmt.Errorf("querying users: %w", err)
	}
	users := make([]models.User, 0, len(rows))
	for _, r := range rows {
		seen, err := parseTS(r.LastSeen)
		if err != nil {
			return nil, err
		}
		users = append(users, models.User{ID: r.ID, Login: r.Login, DisplayName: r.DisplayName, LastSeen: seen})
	}
	return users, nil
}
