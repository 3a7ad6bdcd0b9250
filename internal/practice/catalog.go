package practice

import (
	"sort"
	"strings"
	"time"

	"github.com/meltforce/guitardaily/internal/models"
)

// Catalog indexes exercises by id. Attempts and session items only hold weak
// references, so lookups report absence instead of assuming integrity.
type Catalog struct {
	byID map[string]models.Exercise
}

// NewCatalog indexes the given exercises.
func NewCatalog(exercises []models.Exercise) Catalog {
	c := Catalog{byID: make(map[string]models.Exercise, len(exercises))}
	for _, ex := range exercises {
		c.byID[ex.ID] = ex
	}
	return c
}

// Lookup returns the exercise with id, or false if it no longer exists.
func (c Catalog) Lookup(id string) (models.Exercise, bool) {
	ex, ok := c.byID[id]
	return ex, ok
}

// Len reports the number of exercises in the catalog.
func (c Catalog) Len() int { return len(c.byID) }

// PlannedExercise is a session item joined with its exercise.
type PlannedExercise struct {
	Position       int             `json:"position"`
	PlannedMinutes int             `json:"plannedMinutes"`
	StartBPM       int             `json:"startBpm"`
	Exercise       models.Exercise `json:"exercise"`
}

// ResolveItems joins session items with the catalog. Items whose exercise was
// deleted are skipped; Position keeps the item's index in the session.
func ResolveItems(sess models.Session, catalog Catalog) []PlannedExercise {
	out := make([]PlannedExercise, 0, len(sess.Items))
	for i, it := range sess.Items {
		ex, ok := catalog.Lookup(it.ExerciseID)
		if !ok {
			continue
		}
		out = append(out, PlannedExercise{
			Position:       i,
			PlannedMinutes: it.PlannedMinutes,
			StartBPM:       ex.StartingTempo(),
			Exercise:       ex,
		})
	}
	return out
}

// ExerciseProgress summarizes the attempt log for one exercise.
type ExerciseProgress struct {
	ExerciseID  string               `json:"exerciseId"`
	Title       string               `json:"title"`
	Attempts    int                  `json:"attempts"`
	Done        int                  `json:"done"`
	Partial     int                  `json:"partial"`
	Fail        int                  `json:"fail"`
	BestDoneBPM int                  `json:"bestDoneBpm"`
	LastBPM     int                  `json:"lastBpm"`
	LastStatus  models.AttemptStatus `json:"lastStatus,omitempty"`
	LastAt      *time.Time           `json:"lastAt,omitempty"`
}

// Progress aggregates attempts per exercise in the catalog, sorted by title.
// Attempts referencing missing exercises are ignored. Exercises without
// attempts are included with zero counts.
func Progress(attempts []models.Attempt, catalog Catalog) []ExerciseProgress {
	byID := make(map[string]*ExerciseProgress, catalog.Len())
	for id, ex := range catalog.byID {
		byID[id] = &ExerciseProgress{ExerciseID: id, Title: ex.Title}
	}

	for _, a := range attempts {
		p, ok := byID[a.ExerciseID]
		if !ok {
			continue
		}
		p.Attempts++
		switch a.Status {
		case models.StatusDone:
			p.Done++
			p.BestDoneBPM = max(p.BestDoneBPM, a.BPMUsed)
		case models.StatusPartial:
			p.Partial++
		case models.StatusFail:
			p.Fail++
		}
		if p.LastAt == nil || a.Timestamp.After(*p.LastAt) {
			ts := a.Timestamp
			p.LastAt = &ts
			p.LastBPM = a.BPMUsed
			p.LastStatus = a.Status
		}
	}

	out := make([]ExerciseProgress, 0, len(byID))
	for _, p := range byID {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool {
		ti, tj := strings.ToLower(out[i].Title), strings.ToLower(out[j].Title)
		if ti != tj {
			return ti < tj
		}
		return out[i].ExerciseID < out[j].ExerciseID
	})
	return out
}
