package mcp

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/meltforce/guitardaily/internal/models"
	"github.com/meltforce/guitardaily/internal/practice"
)

func (h *handlers) practiceSummary(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	uid := UserIDFromContext(ctx)

	attempts, err := h.ds.ListAttempts(ctx, uid, 0)
	if err != nil {
		return nil, err
	}

	sessions, err := h.ds.ListSessions(ctx, uid, 1)
	if err != nil {
		h.log.Warn("practice_summary: session query failed", "error", err)
	}

	now := h.now()
	today := now.UTC().Format(models.DateLayout)
	todays := 0
	for _, a := range attempts {
		if a.Timestamp.UTC().Format(models.DateLayout) == today {
			todays++
		}
	}
	_, atRisk := practice.AtRisk(attempts, now)

	summary := map[string]any{
		"date":           today,
		"streak":         practice.ComputeStreak(attempts, now),
		"streak_at_risk": atRisk,
		"attempts_today": todays,
		"total_attempts": len(attempts),
		"practice_days":  len(practice.PracticeDays(attempts)),
		"last_session":   nil,
	}
	if len(sessions) > 0 {
		summary["last_session"] = sessions[0]
	}

	data, err := json.Marshal(summary)
	if err != nil {
		return nil, err
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

func (h *handlers) catalog(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	exercises, err := h.ds.ListExercises(ctx, UserIDFromContext(ctx))
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(exercises)
	if err != nil {
		return nil, err
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
