package mcp

import (
	"context"

	"github.com/meltforce/guitardaily/internal/localstore"
	"github.com/meltforce/guitardaily/internal/models"
	"github.com/meltforce/guitardaily/internal/storage"
)

// DataSource abstracts the data layer for MCP tools. Both gateways (local)
// and HTTPClient (remote via REST API) satisfy this interface.
type DataSource interface {
	ListExercises(ctx context.Context, userID int) ([]models.Exercise, error)
	ListAttempts(ctx context.Context, userID, limit int) ([]models.Attempt, error)
	InsertAttempt(ctx context.Context, userID int, a models.Attempt) (bool, error)
	ListSessions(ctx context.Context, userID, limit int) ([]models.Session, error)
	InsertSession(ctx context.Context, userID int, s models.Session) (bool, error)
}

// Compile-time checks: both gateways satisfy DataSource.
var (
	_ DataSource = (*storage.DB)(nil)
	_ DataSource = (*localstore.Store)(nil)
)
