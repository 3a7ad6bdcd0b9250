package server

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/meltforce/guitardaily/internal/models"
)

// exerciseInput is the writable part of an exercise. Absent fields keep
// their current (or default) value.
type exerciseInput struct {
	Title      *string            `json:"title"`
	BPMMin     *int               `json:"bpmMin"`
	BPMMax     *int               `json:"bpmMax"`
	Key        *string            `json:"key"`
	EstMinutes *int               `json:"estMinutes"`
	Difficulty *models.Difficulty `json:"difficulty"`
	Notes      *string            `json:"notes"`
	Tags       []string           `json:"tags"`
}

func (in exerciseInput) apply(e *models.Exercise) {
	if in.Title != nil {
		e.Title = *in.Title
	}
	if in.BPMMin != nil {
		e.BPMMin = *in.BPMMin
	}
	if in.BPMMax != nil {
		e.BPMMax = *in.BPMMax
	}
	if in.Key != nil {
		e.Key = *in.Key
	}
	if in.EstMinutes != nil {
		e.EstMinutes = *in.EstMinutes
	}
	if in.Difficulty != nil {
		e.Difficulty = *in.Difficulty
	}
	if in.Notes != nil {
		e.Notes = *in.Notes
	}
	if in.Tags != nil {
		e.Tags = in.Tags
	}
}

// handleListExercises returns the catalog, seeding the starter drills for a
// user who has none.
func (s *Server) handleListExercises(w http.ResponseWriter, r *http.Request) {
	uid := userIDFromContext(r)
	exercises, err := s.store.ListExercises(r.Context(), uid)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if len(exercises) == 0 {
		exercises = models.SeedExercises(s.now().UTC())
		for _, e := range exercises {
			if _, err := s.store.UpsertExercise(r.Context(), uid, e); err != nil {
				s.writeError(w, fmt.Errorf("seeding catalog: %w", err))
				return
			}
		}
		s.log.Info("seeded catalog", "user", uid, "exercises", len(exercises))
	}
	writeJSON(w, http.StatusOK, exercises)
}

func (s *Server) handleCreateExercise(w http.ResponseWriter, r *http.Request) {
	var in exerciseInput
	if err := decodeJSON(r, &in); err != nil {
		writeBadRequest(w, "invalid JSON: "+err.Error())
		return
	}
	e := models.NewExercise(s.now().UTC())
	in.apply(&e)
	if err := models.Validate(e); err != nil {
		s.writeError(w, err)
		return
	}
	if _, err := s.store.UpsertExercise(r.Context(), userIDFromContext(r), e); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, e)
}

func (s *Server) handleGetExercise(w http.ResponseWriter, r *http.Request) {
	e, err := s.store.GetExercise(r.Context(), userIDFromContext(r), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (s *Server) handleUpdateExercise(w http.ResponseWriter, r *http.Request) {
	uid := userIDFromContext(r)
	e, err := s.store.GetExercise(r.Context(), uid, chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	var in exerciseInput
	if err := decodeJSON(r, &in); err != nil {
		writeBadRequest(w, "invalid JSON: "+err.Error())
		return
	}
	in.apply(&e)
	if now := s.now().UTC(); now.After(e.UpdatedAt) {
		e.UpdatedAt = now
	}
	if err := models.Validate(e); err != nil {
		s.writeError(w, err)
		return
	}
	if _, err := s.store.UpsertExercise(r.Context(), uid, e); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

// handleDeleteExercise removes the exercise only; attempts and sessions that
// reference it are kept.
func (s *Server) handleDeleteExercise(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteExercise(r.Context(), userIDFromContext(r), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
