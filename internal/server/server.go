package server

import (
	"context"
	"log/slog"
	"math/rand"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/meltforce/guitardaily/internal/localstore"
	"github.com/meltforce/guitardaily/internal/models"
	"github.com/meltforce/guitardaily/internal/practice"
	"github.com/meltforce/guitardaily/internal/storage"
)

// Store is the persistence gateway the handlers depend on. Both the Postgres
// and the SQLite gateways implement it.
type Store interface {
	GetOrCreateUser(ctx context.Context, login, displayName string) (int, error)
	ListUsers(ctx context.Context) ([]models.User, error)

	ListExercises(ctx context.Context, userID int) ([]models.Exercise, error)
	GetExercise(ctx context.Context, userID int, id string) (models.Exercise, error)
	UpsertExercise(ctx context.Context, userID int, e models.Exercise) (bool, error)
	DeleteExercise(ctx context.Context, userID int, id string) error

	InsertAttempt(ctx context.Context, userID int, a models.Attempt) (bool, error)
	ListAttempts(ctx context.Context, userID, limit int) ([]models.Attempt, error)

	InsertSession(ctx context.Context, userID int, s models.Session) (bool, error)
	ListSessions(ctx context.Context, userID, limit int) ([]models.Session, error)
	GetSession(ctx context.Context, userID int, id string) (models.Session, error)

	InsertImportLog(ctx context.Context, log models.ImportLog) (int64, error)
	QueryImportLogs(ctx context.Context, userID, limit int) ([]models.ImportLog, error)
	GetDataStats(ctx context.Context, userID int) (*models.DataStats, error)
}

var (
	_ Store = (*storage.DB)(nil)
	_ Store = (*localstore.Store)(nil)
)

// Options configures the HTTP API.
type Options struct {
	APIKey         string
	DefaultMinutes int
	MaxMinutes     int
	RatePerMinute  int
	Burst          int
	// DevUserID is the user every request acts as when Tailscale is off.
	DevUserID int
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	store  Store
	log    *slog.Logger
	opts   Options
	whois  whoIser
	now    practice.Clock
	router chi.Router

	rngMu sync.Mutex
	rng   *rand.Rand
}

// New creates a new Server with all routes configured.
func New(store Store, opts Options, log *slog.Logger) *Server {
	s := &Server{
		store:  store,
		log:    log,
		opts:   opts,
		now:    time.Now,
		router: chi.NewRouter(),
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// SetTailscale switches identity from the dev user to Tailscale WhoIs lookups.
func (s *Server) SetTailscale(lc whoIser) {
	s.whois = lc
}

// Mount attaches h under pattern behind the identity middleware, so handlers
// can read the caller with UserIDFromContext.
func (s *Server) Mount(pattern string, h http.Handler) {
	s.router.Mount(pattern, s.identify(h))
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	s.router.Use(CORS)

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Use(s.identify)
		r.Use(RateLimit(s.opts.RatePerMinute, s.opts.Burst))

		r.Get("/me", s.handleMe)
		r.Get("/stats", s.handleStats)

		r.Route("/exercises", func(r chi.Router) {
			r.Get("/", s.handleListExercises)
			r.Post("/", s.handleCreateExercise)
			r.Get("/{id}", s.handleGetExercise)
			r.Put("/{id}", s.handleUpdateExercise)
			r.Delete("/{id}", s.handleDeleteExercise)
		})

		r.Post("/sessions", s.handleCreateSession)
		r.Get("/sessions", s.handleListSessions)
		r.Get("/sessions/{id}", s.handleGetSession)

		r.Post("/attempts", s.handleLogAttempt)
		r.Get("/attempts", s.handleListAttempts)
		r.Get("/streak", s.handleStreak)
		r.Get("/progress", s.handleProgress)

		r.Route("/theory", func(r chi.Router) {
			r.Get("/scale", s.handleScale)
			r.Get("/fretboard", s.handleFretboard)
			r.Get("/chords", s.handleChords)
			r.Get("/modes", s.handleModes)
			r.Get("/quiz", s.handleQuizQuestion)
			r.Post("/quiz", s.handleQuizAnswer)
		})
		r.Get("/metronome", s.handleMetronome)

		// Bulk import (API key required)
		r.With(APIKeyAuth(s.opts.APIKey)).Post("/import", s.handleImport)
		r.Get("/import-logs", s.handleImportLogs)
	})
}
