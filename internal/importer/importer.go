// Package importer loads practice data from files: the localStorage JSON
// export of the browser app, and exercise catalogs kept as XLSX or CSV
// spreadsheets.
package importer

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/meltforce/guitardaily/internal/models"
)

// Format identifies an import file type.
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

const maxProblems = 50

// Store is the subset of the gateways the importer writes to.
type Store interface {
	GetExercise(ctx context.Context, userID int, id string) (models.Exercise, error)
	UpsertExercise(ctx context.Context, userID int, e models.Exercise) (bool, error)
	InsertAttempt(ctx context.Context, userID int, a models.Attempt) (bool, error)
	InsertSession(ctx context.Context, userID int, s models.Session) (bool, error)
	InsertImportLog(ctx context.Context, log models.ImportLog) (int64, error)
}

// Stats tracks import progress. In a dry run the inserted counts are the
// records that passed validation and would have been written.
type Stats struct {
	Format Format `json:"format"`
	DryRun bool   `json:"dry_run"`

	ExercisesReceived int `json:"exercises_received"`
	ExercisesInserted int `json:"exercises_inserted"`
	ExercisesUpdated  int `json:"exercises_updated"`

	AttemptsReceived   int `json:"attempts_received"`
	AttemptsInserted   int `json:"attempts_inserted"`
	AttemptsDuplicated int `json:"attempts_duplicated"`

	SessionsReceived   int `json:"sessions_received"`
	SessionsInserted   int `json:"sessions_inserted"`
	SessionsDuplicated int `json:"sessions_duplicated"`

	Skipped  int      `json:"skipped"`
	Problems []string `json:"problems,omitempty"`
}

func (s *Stats) skip(format string, args ...any) {
	s.Skipped++
	if len(s.Problems) < maxProblems {
		s.Problems = append(s.Problems, fmt.Sprintf(format, args...))
	}
}

// Importer parses import files and writes them for one user.
type Importer struct {
	store  Store
	log    *slog.Logger
	dryRun bool
	now    func() time.Time
}

// New creates a new Importer.
func New(store Store, log *slog.Logger, dryRun bool) *Importer {
	return &Importer{store: store, log: log, dryRun: dryRun, now: time.Now}
}

// DetectFormat picks the format from an explicit name, a file name or a
// content type, in that order.
func DetectFormat(explicit, filename, contentType string) (Format, error) {
	if explicit != "" {
		switch f := Format(strings.ToLower(explicit)); f {
		case FormatJSON, FormatCSV, FormatXLSX:
			return f, nil
		}
		return "", fmt.Errorf("unknown import format %q", explicit)
	}
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".json":
		return FormatJSON, nil
	case ".csv":
		return FormatCSV, nil
	case ".xlsx":
		return FormatXLSX, nil
	}
	ct := strings.ToLower(contentType)
	switch {
	case strings.HasPrefix(ct, "application/json"):
		return FormatJSON, nil
	case strings.HasPrefix(ct, "text/csv"):
		return FormatCSV, nil
	case strings.Contains(ct, "spreadsheetml"):
		return FormatXLSX, nil
	}
	return "", fmt.Errorf("cannot detect import format (file %q, content type %q)", filename, contentType)
}

// Import parses r as format and writes the records for userID. Invalid
// records are skipped and counted; store failures abort the import. Unless
// this is a dry run, the outcome is recorded in the import log.
func (imp *Importer) Import(ctx context.Context, userID int, format Format, r io.Reader) (*Stats, error) {
	start := imp.now()
	stats := &Stats{Format: format, DryRun: imp.dryRun}

	var err error
	switch format {
	case FormatJSON:
		err = imp.importBrowserExport(ctx, userID, r, stats)
	case FormatCSV:
		err = imp.importCatalog(ctx, userID, r, stats, readCSV)
	case FormatXLSX:
		err = imp.importCatalog(ctx, userID, r, stats, readXLSX)
	default:
		err = fmt.Errorf("unknown import format %q", format)
	}

	imp.log.Info("import finished",
		"user", userID,
		"format", format,
		"dry_run", imp.dryRun,
		"exercises", stats.ExercisesInserted+stats.ExercisesUpdated,
		"attempts", stats.AttemptsInserted,
		"sessions", stats.SessionsInserted,
		"skipped", stats.Skipped,
		"error", err,
	)

	if !imp.dryRun {
		imp.logImport(userID, stats, err, int(imp.now().Sub(start).Milliseconds()))
	}
	return stats, err
}

// logImport records an import's result to the import log.
func (imp *Importer) logImport(userID int, stats *Stats, importErr error, durationMs int) {
	status := "success"
	var errMsg *string
	if importErr != nil {
		status = "error"
		msg := importErr.Error()
		errMsg = &msg
	}

	var metadata *json.RawMessage
	if len(stats.Problems) > 0 {
		if b, err := json.Marshal(map[string]any{"problems": stats.Problems}); err == nil {
			raw := json.RawMessage(b)
			metadata = &raw
		}
	}

	entry := models.ImportLog{
		UserID:            userID,
		Source:            string(stats.Format),
		Status:            status,
		ExercisesReceived: stats.ExercisesReceived,
		ExercisesInserted: stats.ExercisesInserted + stats.ExercisesUpdated,
		AttemptsReceived:  stats.AttemptsReceived,
		AttemptsInserted:  stats.AttemptsInserted,
		SessionsReceived:  stats.SessionsReceived,
		SessionsInserted:  stats.SessionsInserted,
		Skipped:           stats.Skipped,
		DurationMs:        &durationMs,
		ErrorMessage:      errMsg,
		Metadata:          metadata,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := imp.store.InsertImportLog(ctx, entry); err != nil {
		imp.log.Error("failed to log import", "format", stats.Format, "error", err)
	}
}

func (imp *Importer) writeExercise(ctx context.Context, userID int, e models.Exercise, stats *Stats) error {
	if imp.dryRun {
		stats.ExercisesInserted++
		return nil
	}
	inserted, err := imp.store.UpsertExercise(ctx, userID, e)
	if err != nil {
		return fmt.Errorf("writing exercise %q: %w", e.Title, err)
	}
	if inserted {
		stats.ExercisesInserted++
	} else {
		stats.ExercisesUpdated++
	}
	return nil
}
