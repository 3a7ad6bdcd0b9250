package importer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/meltforce/guitardaily/internal/models"
)

// localStorage keys written by the browser version of the app.
const (
	keyExercises = "ga_exercises"
	keyAttempts  = "ga_attempts"
	keySessions  = "ga_sessions"
)

type rawExercise struct {
	ID         string   `json:"id"`
	Title      string   `json:"title"`
	BPMMin     *float64 `json:"bpmMin"`
	BPMMax     *float64 `json:"bpmMax"`
	Key        *string  `json:"key"`
	EstMinutes *float64 `json:"estMinutes"`
	Difficulty string   `json:"difficulty"`
	Notes      string   `json:"notes"`
	Tags       []string `json:"tags"`
	CreatedAt  string   `json:"createdAt"`
	UpdatedAt  string   `json:"updatedAt"`
}

type rawAttempt struct {
	ID         string  `json:"id"`
	ExerciseID string  `json:"exerciseId"`
	BPMUsed    float64 `json:"bpmUsed"`
	Status     string  `json:"status"`
	Timestamp  string  `json:"timestamp"`
	Notes      string  `json:"notes"`
}

type rawSession struct {
	ID           string  `json:"id"`
	Date         string  `json:"date"`
	TotalPlanned float64 `json:"totalPlanned"`
	Items        []struct {
		ExerciseID     string  `json:"exerciseId"`
		PlannedMinutes float64 `json:"plannedMinutes"`
	} `json:"items"`
}

// decodeStorageValue decodes one storage key. Values may be embedded either
// as JSON arrays or as the raw strings the browser stored.
func decodeStorageValue(raw json.RawMessage, v any) error {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return err
		}
		raw = []byte(s)
	}
	return json.Unmarshal(raw, v)
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	models.DateLayout,
}

// parseTimestamp accepts RFC 3339 and a few zone-less forms, read as UTC.
func parseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

func (imp *Importer) importBrowserExport(ctx context.Context, userID int, r io.Reader, stats *Stats) error {
	var export map[string]json.RawMessage
	if err := json.NewDecoder(r).Decode(&export); err != nil {
		return fmt.Errorf("decoding export: %w", err)
	}

	var (
		exercises []rawExercise
		attempts  []rawAttempt
		sessions  []rawSession
	)
	if err := decodeStorageValue(export[keyExercises], &exercises); err != nil {
		return fmt.Errorf("decoding %s: %w", keyExercises, err)
	}
	if err := decodeStorageValue(export[keyAttempts], &attempts); err != nil {
		return fmt.Errorf("decoding %s: %w", keyAttempts, err)
	}
	if err := decodeStorageValue(export[keySessions], &sessions); err != nil {
		return fmt.Errorf("decoding %s: %w", keySessions, err)
	}

	now := imp.now().UTC()

	stats.ExercisesReceived = len(exercises)
	for i, raw := range exercises {
		e, err := raw.model(now)
		if err != nil {
			stats.skip("exercise %d: %v", i, err)
			continue
		}
		if err := imp.writeExercise(ctx, userID, e, stats); err != nil {
			return err
		}
	}

	stats.AttemptsReceived = len(attempts)
	for i, raw := range attempts {
		a, err := raw.model()
		if err != nil {
			stats.skip("attempt %d: %v", i, err)
			continue
		}
		if imp.dryRun {
			stats.AttemptsInserted++
			continue
		}
		inserted, err := imp.store.InsertAttempt(ctx, userID, a)
		if err != nil {
			return fmt.Errorf("writing attempt %s: %w", a.ID, err)
		}
		if inserted {
			stats.AttemptsInserted++
		} else {
			stats.AttemptsDuplicated++
		}
	}

	stats.SessionsReceived = len(sessions)
	for i, raw := range sessions {
		s, err := raw.model()
		if err != nil {
			stats.skip("session %d: %v", i, err)
			continue
		}
		if imp.dryRun {
			stats.SessionsInserted++
			continue
		}
		inserted, err := imp.store.InsertSession(ctx, userID, s)
		if err != nil {
			return fmt.Errorf("writing session %s: %w", s.ID, err)
		}
		if inserted {
			stats.SessionsInserted++
		} else {
			stats.SessionsDuplicated++
		}
	}
	return nil
}

func round(f float64) int { return int(math.Round(f)) }

// model fills missing fields with the new-exercise defaults and validates.
func (r rawExercise) model(now time.Time) (models.Exercise, error) {
	e := models.NewExercise(now)
	if r.ID != "" {
		e.ID = r.ID
	}
	if t := strings.TrimSpace(r.Title); t != "" {
		e.Title = t
	}
	if r.BPMMin != nil {
		e.BPMMin = round(*r.BPMMin)
	}
	if r.BPMMax != nil {
		e.BPMMax = round(*r.BPMMax)
	}
	if r.Key != nil && *r.Key != "" {
		e.Key = *r.Key
	}
	if r.EstMinutes != nil && *r.EstMinutes > 0 {
		e.EstMinutes = round(*r.EstMinutes)
	}
	if r.Difficulty != "" {
		e.Difficulty = models.Difficulty(strings.ToLower(r.Difficulty))
	}
	e.Notes = r.Notes
	if r.Tags != nil {
		e.Tags = r.Tags
	}
	if r.CreatedAt != "" {
		t, err := parseTimestamp(r.CreatedAt)
		if err != nil {
			return e, fmt.Errorf("createdAt: %w", err)
		}
		e.CreatedAt = t
		e.UpdatedAt = t
	}
	if r.UpdatedAt != "" {
		t, err := parseTimestamp(r.UpdatedAt)
		if err != nil {
			return e, fmt.Errorf("updatedAt: %w", err)
		}
		e.UpdatedAt = t
	}
	if e.UpdatedAt.Before(e.CreatedAt) {
		e.UpdatedAt = e.CreatedAt
	}
	return e, models.Validate(e)
}

func (r rawAttempt) model() (models.Attempt, error) {
	if r.Timestamp == "" {
		return models.Attempt{}, fmt.Errorf("missing timestamp")
	}
	ts, err := parseTimestamp(r.Timestamp)
	if err != nil {
		return models.Attempt{}, err
	}
	a := models.Attempt{
		ID:         r.ID,
		ExerciseID: r.ExerciseID,
		BPMUsed:    round(r.BPMUsed),
		Status:     models.AttemptStatus(strings.ToLower(r.Status)),
		Timestamp:  ts,
		Notes:      r.Notes,
	}
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return a, models.Validate(a)
}

func (r rawSession) model() (models.Session, error) {
	day, err := parseTimestamp(r.Date)
	if err != nil {
		return models.Session{}, fmt.Errorf("date: %w", err)
	}
	if r.TotalPlanned < 0 {
		return models.Session{}, fmt.Errorf("negative totalPlanned")
	}
	s := models.Session{
		ID:           r.ID,
		Date:         day.Format(models.DateLayout),
		TotalPlanned: round(r.TotalPlanned),
		Items:        make([]models.SessionItem, 0, len(r.Items)),
	}
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	for i, it := range r.Items {
		if it.ExerciseID == "" || it.PlannedMinutes <= 0 {
			return models.Session{}, fmt.Errorf("item %d is incomplete", i)
		}
		s.Items = append(s.Items, models.SessionItem{ExerciseID: it.ExerciseID, PlannedMinutes: round(it.PlannedMinutes)})
	}
	return s, nil
}
