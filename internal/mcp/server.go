package mcp

import (
	"context"
	"log/slog"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/meltforce/guitardaily/internal/practice"
)

type contextKey int

const userIDKey contextKey = iota

// UserIDFromContext extracts the user ID injected by the transport layer.
func UserIDFromContext(ctx context.Context) int {
	if id, ok := ctx.Value(userIDKey).(int); ok {
		return id
	}
	return 1
}

// WithUserID returns a context with the given user ID.
func WithUserID(ctx context.Context, userID int) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// Options holds the session length limits shared with the REST API.
// MaxMinutes <= 0 disables the upper bound.
type Options struct {
	DefaultMinutes int
	MaxMinutes     int
}

// New creates an MCP server with all tools and resources registered.
func New(ds DataSource, version string, opts Options, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("GuitarDaily", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("GuitarDaily practice server. Browse the exercise catalog, plan practice sessions, log attempts and follow the daily streak. All data is scoped to the authenticated user."),
	)

	if opts.DefaultMinutes <= 0 {
		opts.DefaultMinutes = defaultSessionMinutes
	}
	h := &handlers{ds: ds, log: log, now: time.Now, opts: opts}

	// Tools
	s.AddTools(
		server.ServerTool{Tool: toolListExercises, Handler: h.listExercises},
		server.ServerTool{Tool: toolPlanSession, Handler: h.planSession},
		server.ServerTool{Tool: toolGetStreak, Handler: h.getStreak},
		server.ServerTool{Tool: toolGetRecentAttempts, Handler: h.getRecentAttempts},
		server.ServerTool{Tool: toolGetExerciseProgress, Handler: h.getExerciseProgress},
		server.ServerTool{Tool: toolLogAttempt, Handler: h.logAttempt},
		server.ServerTool{Tool: toolGetScaleNotes, Handler: h.getScaleNotes},
	)

	// Resources
	s.AddResources(
		server.ServerResource{Resource: resPracticeSummary, Handler: h.practiceSummary},
		server.ServerResource{Resource: resCatalog, Handler: h.catalog},
	)

	return s
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	ds   DataSource
	log  *slog.Logger
	now  practice.Clock
	opts Options
}

// --- Resource definitions ---

var resPracticeSummary = mcp.NewResource(
	"guitardaily://practice_summary",
	"Practice Summary",
	mcp.WithResourceDescription("Current and best streak, today's attempts and the most recent session"),
	mcp.WithMIMEType("application/json"),
)

var resCatalog = mcp.NewResource(
	"guitardaily://catalog",
	"Exercise Catalog",
	mcp.WithResourceDescription("All exercises with tempo range, key, duration, difficulty and tags"),
	mcp.WithMIMEType("application/json"),
)
