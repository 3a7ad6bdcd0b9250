package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/meltforce/guitardaily/internal/models"
	"github.com/meltforce/guitardaily/internal/practice"
	"github.com/meltforce/guitardaily/internal/theory"
)

const defaultSessionMinutes = 30

// --- Tool definitions ---

var toolListExercises = mcp.NewTool("list_exercises",
	mcp.WithDescription("List the exercise catalog. Each exercise has a tempo range (bpmMin/bpmMax), key, estimated minutes, difficulty and tags."),
	mcp.WithString("tag", mcp.Description("Only return exercises carrying this tag (case-insensitive)")),
)

var toolPlanSession = mcp.NewTool("plan_session",
	mcp.WithDescription("Plan a practice session. Least recently practiced exercises come first and blocks fill the requested minutes exactly unless the catalog is empty."),
	mcp.WithNumber("minutes", mcp.Description("Target length in minutes. Defaults to the server's configured session length.")),
	mcp.WithBoolean("save", mcp.Description("Store the plan in the session history. Defaults to false.")),
)

var toolGetStreak = mcp.NewTool("get_streak",
	mcp.WithDescription("Current and best streak of consecutive practice days (UTC), and whether today's practice is still missing from a live streak."),
)

var toolGetRecentAttempts = mcp.NewTool("get_recent_attempts",
	mcp.WithDescription("Most recent practice attempts, newest first. Status is done, partial (needs work) or fail."),
	mcp.WithNumber("limit", mcp.Description("Maximum attempts to return. Defaults to 20.")),
	mcp.WithString("exercise_id", mcp.Description("Only attempts for this exercise")),
)

var toolGetExerciseProgress = mcp.NewTool("get_exercise_progress",
	mcp.WithDescription("Per-exercise attempt counts by status, best tempo among done attempts and the last attempt."),
	mcp.WithString("exercise_id", mcp.Description("Only this exercise")),
)

var toolLogAttempt = mcp.NewTool("log_attempt",
	mcp.WithDescription("Record a practice attempt for an exercise and return the updated streak."),
	mcp.WithString("exercise_id", mcp.Required(), mcp.Description("Exercise ID from list_exercises")),
	mcp.WithString("status", mcp.Required(), mcp.Description("Outcome"), mcp.Enum("done", "partial", "fail")),
	mcp.WithNumber("bpm", mcp.Description("Tempo used. Defaults to the middle of the exercise's tempo range.")),
	mcp.WithString("notes", mcp.Description("Free-form notes")),
)

var toolGetScaleNotes = mcp.NewTool("get_scale_notes",
	mcp.WithDescription("Spell a scale on a root note."),
	mcp.WithString("root", mcp.Required(), mcp.Description("Root note, e.g. E, F#, Bb")),
	mcp.WithString("type", mcp.Description("Scale type. Defaults to major."), mcp.Enum("major", "minor", "major-pentatonic", "minor-pentatonic")),
)

// --- Tool handlers ---

func (h *handlers) listExercises(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	uid := UserIDFromContext(ctx)
	exercises, err := h.ds.ListExercises(ctx, uid)
	if err != nil {
		h.log.Error("mcp list_exercises", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	if tag := req.GetString("tag", ""); tag != "" {
		filtered := []models.Exercise{}
		for _, e := range exercises {
			for _, t := range e.Tags {
				if strings.EqualFold(t, tag) {
					filtered = append(filtered, e)
					break
				}
			}
		}
		exercises = filtered
	}
	return jsonResult(exercises)
}

func (h *handlers) planSession(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	minutes := req.GetInt("minutes", h.opts.DefaultMinutes)
	switch {
	case minutes <= 0:
		return mcp.NewToolResultError("minutes must be positive"), nil
	case h.opts.MaxMinutes > 0 && minutes > h.opts.MaxMinutes:
		return mcp.NewToolResultError(fmt.Sprintf("minutes must be between 1 and %d", h.opts.MaxMinutes)), nil
	}

	uid := UserIDFromContext(ctx)
	exercises, err := h.ds.ListExercises(ctx, uid)
	if err != nil {
		h.log.Error("mcp plan_session", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	sess := practice.GenerateSession(exercises, minutes, h.now())
	saved := false
	if req.GetBool("save", false) {
		if _, err := h.ds.InsertSession(ctx, uid, sess); err != nil {
			h.log.Error("mcp plan_session save", "error", err)
			return mcp.NewToolResultError("saving session failed: " + err.Error()), nil
		}
		saved = true
	}

	return jsonResult(map[string]any{
		"session": sess,
		"items":   practice.ResolveItems(sess, practice.NewCatalog(exercises)),
		"saved":   saved,
	})
}

func (h *handlers) getStreak(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	attempts, err := h.ds.ListAttempts(ctx, UserIDFromContext(ctx), 0)
	if err != nil {
		h.log.Error("mcp get_streak", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	now := h.now()
	streak := practice.ComputeStreak(attempts, now)
	lost, atRisk := practice.AtRisk(attempts, now)
	return jsonResult(map[string]any{
		"current":     streak.Current,
		"best":        streak.Best,
		"at_risk":     atRisk,
		"at_risk_len": lost,
	})
}

func (h *handlers) getRecentAttempts(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit := req.GetInt("limit", 20)
	if limit <= 0 {
		limit = 20
	}
	exerciseID := req.GetString("exercise_id", "")

	uid := UserIDFromContext(ctx)
	fetch := limit
	if exerciseID != "" {
		fetch = 0
	}
	attempts, err := h.ds.ListAttempts(ctx, uid, fetch)
	if err != nil {
		h.log.Error("mcp get_recent_attempts", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	out := make([]models.Attempt, 0, limit)
	for _, a := range attempts {
		if exerciseID != "" && a.ExerciseID != exerciseID {
			continue
		}
		out = append(out, a)
		if len(out) == limit {
			break
		}
	}
	return jsonResult(out)
}

func (h *handlers) getExerciseProgress(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	uid := UserIDFromContext(ctx)
	exercises, err := h.ds.ListExercises(ctx, uid)
	if err != nil {
		h.log.Error("mcp get_exercise_progress", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	attempts, err := h.ds.ListAttempts(ctx, uid, 0)
	if err != nil {
		h.log.Error("mcp get_exercise_progress", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	progress := practice.Progress(attempts, practice.NewCatalog(exercises))
	if id := req.GetString("exercise_id", ""); id != "" {
		for _, p := range progress {
			if p.ExerciseID == id {
				return jsonResult(p)
			}
		}
		return mcp.NewToolResultError("exercise not found: " + id), nil
	}
	return jsonResult(progress)
}

func (h *handlers) logAttempt(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	exerciseID, err := req.RequireString("exercise_id")
	if err != nil {
		return mcp.NewToolResultError("exercise_id parameter is required"), nil
	}
	status, err := req.RequireString("status")
	if err != nil {
		return mcp.NewToolResultError("status parameter is required"), nil
	}

	uid := UserIDFromContext(ctx)
	exercises, err := h.ds.ListExercises(ctx, uid)
	if err != nil {
		h.log.Error("mcp log_attempt", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	ex, ok := practice.NewCatalog(exercises).Lookup(exerciseID)
	if !ok {
		return mcp.NewToolResultError("exercise not found: " + exerciseID), nil
	}

	a := models.Attempt{
		ID:         uuid.NewString(),
		ExerciseID: ex.ID,
		BPMUsed:    req.GetInt("bpm", ex.StartingTempo()),
		Status:     models.AttemptStatus(status),
		Timestamp:  h.now().UTC(),
		Notes:      req.GetString("notes", ""),
	}
	if err := models.Validate(a); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if _, err := h.ds.InsertAttempt(ctx, uid, a); err != nil {
		h.log.Error("mcp log_attempt", "error", err)
		return mcp.NewToolResultError("saving attempt failed: " + err.Error()), nil
	}

	attempts, err := h.ds.ListAttempts(ctx, uid, 0)
	if err != nil {
		h.log.Error("mcp log_attempt", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return jsonResult(map[string]any{
		"attempt": a,
		"streak":  practice.ComputeStreak(attempts, h.now()),
	})
}

func (h *handlers) getScaleNotes(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	root, err := req.RequireString("root")
	if err != nil {
		return mcp.NewToolResultError("root parameter is required"), nil
	}
	t := theory.ScaleType(req.GetString("type", string(theory.ScaleMajor)))
	notes, err := theory.BuildScale(root, t)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(map[string]any{"root": notes[0], "type": t, "notes": notes})
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	result, err := mcp.NewToolResultJSON(v)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}
