package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/meltforce/guitardaily/internal/config"
	"github.com/meltforce/guitardaily/internal/importer"
	"github.com/meltforce/guitardaily/internal/localstore"
	"github.com/meltforce/guitardaily/internal/logging"
	"github.com/meltforce/guitardaily/internal/storage"
	"github.com/urfave/cli/v3"
)

type importStore interface {
	importer.Store
	GetOrCreateUser(ctx context.Context, login, displayName string) (int, error)
}

func importCommand() *cli.Command {
	return &cli.Command{
		Name:  "import",
		Usage: "Import a browser export (JSON) or an exercise catalog (CSV, XLSX)",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.yaml",
			},
			&cli.StringFlag{
				Name:     "file",
				Aliases:  []string{"f"},
				Usage:    "File to import",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "format",
				Usage: "json, csv or xlsx (detected from the file name when empty)",
			},
			&cli.StringFlag{
				Name:  "user",
				Usage: "Login of the user that owns the data",
				Value: "local",
			},
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "Report counts without writing to the database",
			},
		},
		Action: runImport,
	}
}

func runImport(ctx context.Context, cmd *cli.Command) error {
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return err
	}
	log, err := logging.New(os.Stdout, cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}

	path := cmd.String("file")
	format, err := importer.DetectFormat(cmd.String("format"), path, "")
	if err != nil {
		return err
	}
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening import file: %w", err)
	}
	defer f.Close()

	store, closeStore, err := openImportStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()

	login := cmd.String("user")
	displayName := ""
	if login == "local" {
		displayName = "Local Dev User"
	}
	userID, err := store.GetOrCreateUser(ctx, login, displayName)
	if err != nil {
		return fmt.Errorf("resolving user: %w", err)
	}

	dryRun := cmd.Bool("dry-run")
	if dryRun {
		log.Info("DRY RUN mode: no data will be written to the database")
	}

	imp := importer.New(store, log, dryRun)
	stats, err := imp.Import(ctx, userID, format, f)
	if stats != nil {
		printStats(log, stats)
	}
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}
	log.Info("import complete", "file", path, "user", login)
	return nil
}

func openImportStore(ctx context.Context, cfg *config.Config, log *slog.Logger) (importStore, func(), error) {
	if cfg.Database.Driver == config.DriverSQLite {
		st, err := localstore.Open(cfg.Database.Path)
		if err != nil {
			return nil, nil, err
		}
		return st, func() { _ = st.Close() }, nil
	}

	dsn := cfg.Database.DSN()
	if err := storage.RunMigrations(dsn, "migrations"); err != nil {
		return nil, nil, fmt.Errorf("migration failed: %w", err)
	}
	log.Info("migrations applied")
	db, err := storage.New(ctx, dsn)
	if err != nil {
		return nil, nil, err
	}
	return db, db.Close, nil
}

func printStats(log *slog.Logger, stats *importer.Stats) {
	log.Info("import stats",
		"format", stats.Format,
		"exercises_received", stats.ExercisesReceived,
		"exercises_inserted", stats.ExercisesInserted,
		"exercises_updated", stats.ExercisesUpdated,
		"attempts_received", stats.AttemptsReceived,
		"attempts_inserted", stats.AttemptsInserted,
		"attempts_duplicated", stats.AttemptsDuplicated,
		"sessions_received", stats.SessionsReceived,
		"sessions_inserted", stats.SessionsInserted,
		"sessions_duplicated", stats.SessionsDuplicated,
		"skipped", stats.Skipped,
	)
	for _, p := range stats.Problems {
		log.Warn("skipped record", "reason", p)
	}
}
