package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned by the stores when a row does not exist for the user.
var ErrNotFound = errors.New("not found")

// DateLayout is the calendar-day format used for session dates and streak days.
const DateLayout = "2006-01-02"

// Difficulty grades an exercise.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Valid reports whether d is one of the known difficulties.
func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

// AttemptStatus is the outcome of one practice attempt.
type AttemptStatus string

const (
	StatusDone    AttemptStatus = "done"
	StatusPartial AttemptStatus = "partial" // "needs work"
	StatusFail    AttemptStatus = "fail"
)

// Valid reports whether s is one of the known statuses.
func (s AttemptStatus) Valid() bool {
	switch s {
	case StatusDone, StatusPartial, StatusFail:
		return true
	}
	return false
}

// Exercise is a reusable practice drill.
type Exercise struct {
	ID         string     `json:"id" validate:"required"`
	Title      string     `json:"title" validate:"required"`
	BPMMin     int        `json:"bpmMin" validate:"gt=0"`
	BPMMax     int        `json:"bpmMax" validate:"gtefield=BPMMin"`
	Key        string     `json:"key"`
	EstMinutes int        `json:"estMinutes" validate:"gt=0"`
	Difficulty Difficulty `json:"difficulty" validate:"oneof=easy medium hard"`
	Notes      string     `json:"notes,omitempty"`
	Tags       []string   `json:"tags"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt" validate:"gtefield=CreatedAt"`
}

// StartingTempo is the midpoint of the tempo range, rounded half up.
func (e Exercise) StartingTempo() int {
	return (e.BPMMin + e.BPMMax + 1) / 2
}

// NewExercise returns an exercise with a fresh id and the defaults used for
// user-entered drills that leave fields blank.
func NewExercise(now time.Time) Exercise {
	return Exercise{
		ID:         uuid.NewString(),
		Title:      "Untitled Exercise",
		BPMMin:     60,
		BPMMax:     120,
		Key:        "C",
		EstMinutes: 3,
		Difficulty: DifficultyEasy,
		Tags:       []string{},
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// Attempt is one logged outcome for one exercise. ExerciseID is a weak
// reference: the exercise may have been deleted since.
type Attempt struct {
	ID         string        `json:"id" validate:"required"`
	ExerciseID string        `json:"exerciseId" validate:"required"`
	BPMUsed    int           `json:"bpmUsed" validate:"gt=0"`
	Status     AttemptStatus `json:"status" validate:"oneof=done partial fail"`
	Timestamp  time.Time     `json:"timestamp"`
	Notes      string        `json:"notes,omitempty"`
}

// SessionItem is one block of a practice session.
type SessionItem struct {
	ExerciseID     string `json:"exerciseId"`
	PlannedMinutes int    `json:"plannedMinutes"`
}

// Session is a generated practice plan. Items are in playback order.
type Session struct {
	ID           string        `json:"id"`
	Date         string        `json:"date"`
	TotalPlanned int           `json:"totalPlanned"`
	Items        []SessionItem `json:"items"`
}

// ScheduledMinutes sums the planned minutes of all items. It is below
// TotalPlanned only when generation stopped early.
func (s Session) ScheduledMinutes() int {
	total := 0
	for _, it := range s.Items {
		total += it.PlannedMinutes
	}
	return total
}

// User is an authenticated identity that owns a catalog, attempts and sessions.
type User struct {
	ID          int       `json:"id"`
	Login       string    `json:"login"`
	DisplayName string    `json:"displayName"`
	LastSeen    time.Time `json:"lastSeen"`
}
