package server

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/meltforce/guitardaily/internal/models"
	"github.com/meltforce/guitardaily/internal/practice"
)

// sessionResponse is a session with its items joined to the catalog.
type sessionResponse struct {
	Session models.Session             `json:"session"`
	Items   []practice.PlannedExercise `json:"items"`
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Minutes *int `json:"minutes"`
	}
	if r.ContentLength != 0 {
		if err := decodeJSON(r, &in); err != nil {
			writeBadRequest(w, "invalid JSON: "+err.Error())
			return
		}
	}
	minutes := s.opts.DefaultMinutes
	if in.Minutes != nil {
		minutes = *in.Minutes
	}
	switch {
	case minutes <= 0:
		writeBadRequest(w, "minutes must be positive")
		return
	case s.opts.MaxMinutes > 0 && minutes > s.opts.MaxMinutes:
		writeBadRequest(w, fmt.Sprintf("minutes must be between 1 and %d", s.opts.MaxMinutes))
		return
	}

	uid := userIDFromContext(r)
	exercises, err := s.store.ListExercises(r.Context(), uid)
	if err != nil {
		s.writeError(w, err)
		return
	}
	sess := practice.GenerateSession(exercises, minutes, s.now())
	if _, err := s.store.InsertSession(r.Context(), uid, sess); err != nil {
		s.writeError(w, err)
		return
	}
	s.log.Info("session planned", "user", uid, "minutes", minutes, "items", len(sess.Items))
	writeJSON(w, http.StatusCreated, sessionResponse{
		Session: sess,
		Items:   practice.ResolveItems(sess, practice.NewCatalog(exercises)),
	})
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := s.store.ListSessions(r.Context(), userIDFromContext(r), parseLimit(r, 20))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sessions)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	uid := userIDFromContext(r)
	sess, err := s.store.GetSession(r.Context(), uid, chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	exercises, err := s.store.ListExercises(r.Context(), uid)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{
		Session: sess,
		Items:   practice.ResolveItems(sess, practice.NewCatalog(exercises)),
	})
}

type attemptInput struct {
	ExerciseID string               `json:"exerciseId"`
	BPMUsed    *int                 `json:"bpmUsed"`
	Status     models.AttemptStatus `json:"status"`
	Notes      string               `json:"notes"`
}

// handleLogAttempt appends an attempt and answers with the recomputed streak.
// bpmUsed defaults to the exercise's starting tempo.
func (s *Server) handleLogAttempt(w http.ResponseWriter, r *http.Request) {
	var in attemptInput
	if err := decodeJSON(r, &in); err != nil {
		writeBadRequest(w, "invalid JSON: "+err.Error())
		return
	}
	if in.ExerciseID == "" {
		writeBadRequest(w, "exerciseId is required")
		return
	}

	uid := userIDFromContext(r)
	ex, err := s.store.GetExercise(r.Context(), uid, in.ExerciseID)
	if err != nil {
		s.writeError(w, err)
		return
	}

	a := models.Attempt{
		ID:         uuid.NewString(),
		ExerciseID: ex.ID,
		BPMUsed:    ex.StartingTempo(),
		Status:     in.Status,
		Timestamp:  s.now().UTC(),
		Notes:      in.Notes,
	}
	if in.BPMUsed != nil {
		a.BPMUsed = *in.BPMUsed
	}
	if err := models.Validate(a); err != nil {
		s.writeError(w, err)
		return
	}
	if _, err := s.store.InsertAttempt(r.Context(), uid, a); err != nil {
		s.writeError(w, err)
		return
	}

	attempts, err := s.store.ListAttempts(r.Context(), uid, 0)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"attempt": a,
		"streak":  practice.ComputeStreak(attempts, s.now()),
	})
}

func (s *Server) handleListAttempts(w http.ResponseWriter, r *http.Request) {
	attempts, err := s.store.ListAttempts(r.Context(), userIDFromContext(r), parseLimit(r, 100))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, attempts)
}

type streakResponse struct {
	practice.Streak
	AtRisk bool `json:"atRisk"`
}

func (s *Server) handleStreak(w http.ResponseWriter, r *http.Request) {
	attempts, err := s.store.ListAttempts(r.Context(), userIDFromContext(r), 0)
	if err != nil {
		s.writeError(w, err)
		return
	}
	now := s.now()
	_, atRisk := practice.AtRisk(attempts, now)
	writeJSON(w, http.StatusOK, streakResponse{Streak: practice.ComputeStreak(attempts, now), AtRisk: atRisk})
}

func (s *Server) handleProgress(w http.ResponseWriter, r *http.Request) {
	uid := userIDFromContext(r)
	exercises, err := s.store.ListExercises(r.Context(), uid)
	if err != nil {
		s.writeError(w, err)
		return
	}
	attempts, err := s.store.ListAttempts(r.Context(), uid, 0)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, practice.Progress(attempts, practice.NewCatalog(exercises)))
}
