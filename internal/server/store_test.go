package server

import (
	"context"
	"sort"
	"sync"

	"github.com/meltforce/guitardaily/internal/models"
)

// memStore is an in-memory Store for handler tests.
type memStore struct {
	mu        sync.Mutex
	users     map[string]int
	exercises map[int]map[string]models.Exercise
	attempts  map[int][]models.Attempt
	sessions  map[int][]models.Session
	logs      []models.ImportLog
}

func newMemStore() *memStore {
	return &memStore{
		users:     map[string]int{},
		exercises: map[int]map[string]models.Exercise{},
		attempts:  map[int][]models.Attempt{},
		sessions:  map[int][]models.Session{},
	}
}

func (m *memStore) GetOrCreateUser(_ context.Context, login, _ string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if id, ok := m.users[login]; ok {
		return id, nil
	}
	id := len(m.users) + 1
	m.users[login] = id
	return id, nil
}

func (m *memStore) ListUsers(context.Context) ([]models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.User
	for login, id := range m.users {
		out = append(out, models.User{ID: id, Login: login})
	}
	return out, nil
}

func (m *memStore) ListExercises(_ context.Context, userID int) ([]models.Exercise, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Exercise{}
	for _, e := range m.exercises[userID] {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memStore) GetExercise(_ context.Context, userID int, id string) (models.Exercise, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.exercises[userID][id]
	if !ok {
		return models.Exercise{}, models.ErrNotFound
	}
	return e, nil
}

func (m *memStore) UpsertExercise(_ context.Context, userID int, e models.Exercise) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.exercises[userID] == nil {
		m.exercises[userID] = map[string]models.Exercise{}
	}
	prev, exists := m.exercises[userID][e.ID]
	if exists && prev.UpdatedAt.After(e.UpdatedAt) {
		e.UpdatedAt = prev.UpdatedAt
	}
	m.exercises[userID][e.ID] = e
	return !exists, nil
}

func (m *memStore) DeleteExercise(_ context.Context, userID int, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.exercises[userID][id]; !ok {
		return models.ErrNotFound
	}
	delete(m.exercises[userID], id)
	return nil
}

func (m *memStore) InsertAttempt(_ context.Context, userID int, a models.Attempt) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, x := range m.attempts[userID] {
		if x.ID == a.ID {
			return false, nil
		}
	}
	m.attempts[userID] = append(m.attempts[userID], a)
	if e, ok := m.exercises[userID][a.ExerciseID]; ok && a.Timestamp.After(e.UpdatedAt) {
		e.UpdatedAt = a.Timestamp
		m.exercises[userID][a.ExerciseID] = e
	}
	return true, nil
}

func (m *memStore) ListAttempts(_ context.Context, userID, limit int) ([]models.Attempt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := append([]models.Attempt(nil), m.attempts[userID]...)
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memStore) InsertSession(_ context.Context, userID int, s models.Session) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[userID] = append(m.sessions[userID], s)
	return true, nil
}

func (m *memStore) ListSessions(_ context.Context, userID, limit int) ([]models.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := append([]models.Session(nil), m.sessions[userID]...)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memStore) GetSession(_ context.Context, userID int, id string) (models.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.sessions[userID] {
		if s.ID == id {
			return s, nil
		}
	}
	return models.Session{}, models.ErrNotFound
}

func (m *memStore) InsertImportLog(_ context.Context, l models.ImportLog) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l.ID = int64(len(m.logs) + 1)
	m.logs = append(m.logs, l)
	return l.ID, nil
}

func (m *memStore) QueryImportLogs(_ context.Context, userID, limit int) ([]models.ImportLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.ImportLog{}
	for _, l := range m.logs {
		if l.UserID == userID {
			out = append(out, l)
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memStore) GetDataStats(_ context.Context, userID int) (*models.DataStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return &models.DataStats{
		TotalExercises: int64(len(m.exercises[userID])),
		TotalAttempts:  int64(len(m.attempts[userID])),
		TotalSessions:  int64(len(m.sessions[userID])),
	}, nil
}
