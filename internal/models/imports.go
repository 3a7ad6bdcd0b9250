package models

import (
	"encoding/json"
	"time"
)

// ImportLog records the outcome of one catalog or history import.
type ImportLog struct {
	ID                int64            `json:"id"`
	UserID            int              `json:"user_id"`
	CreatedAt         time.Time        `json:"created_at"`
	Source            string           `json:"source"`
	Status            string           `json:"status"`
	ExercisesReceived int              `json:"exercises_received"`
	ExercisesInserted int              `json:"exercises_inserted"`
	AttemptsReceived  int              `json:"attempts_received"`
	AttemptsInserted  int              `json:"attempts_inserted"`
	SessionsReceived  int              `json:"sessions_received"`
	SessionsInserted  int              `json:"sessions_inserted"`
	Skipped           int              `json:"skipped"`
	DurationMs        *int             `json:"duration_ms"`
	ErrorMessage      *string          `json:"error_message"`
	Metadata          *json.RawMessage `json:"metadata"`
}

// DataStats holds aggregate counts over a user's stored practice data.
type DataStats struct {
	TotalExercises   int64        `json:"total_exercises"`
	TotalAttempts    int64        `json:"total_attempts"`
	TotalSessions    int64        `json:"total_sessions"`
	EarliestAttempt  *time.Time   `json:"earliest_attempt"`
	LatestAttempt    *time.Time   `json:"latest_attempt"`
	AttemptsByStatus []StatusStat `json:"attempts_by_status"`
}

// StatusStat counts attempts with one status.
type StatusStat struct {
	Status AttemptStatus `json:"status"`
	Count  int64         `json:"count"`
}
