package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/meltforce/guitardaily/internal/config"
	"github.com/meltforce/guitardaily/internal/localstore"
	"github.com/meltforce/guitardaily/internal/logging"
	"github.com/meltforce/guitardaily/internal/mcp"
	"github.com/meltforce/guitardaily/internal/reminder"
	"github.com/meltforce/guitardaily/internal/server"
	"github.com/meltforce/guitardaily/internal/storage"
	"tailscale.com/tsnet"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	migrateOnly := flag.Bool("migrate-only", false, "run migrations and exit")
	flag.Parse()

	// Load config
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logging.New(os.Stdout, cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to set up logging: %v\n", err)
		os.Exit(1)
	}
	log.Info("GuitarDaily starting", "version", Version, "driver", cfg.Database.Driver)

	ctx := context.Background()
	store, closeStore, err := openStore(ctx, cfg, *migrateOnly, log)
	if err != nil {
		log.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	if store == nil {
		log.Info("migrate-only: exiting")
		return
	}
	defer closeStore()

	devUserID, err := store.GetOrCreateUser(ctx, "local", "Local Dev User")
	if err != nil {
		log.Error("failed to create dev user", "error", err)
		os.Exit(1)
	}

	srv := server.New(store, server.Options{
		APIKey:         cfg.Auth.APIKey,
		DefaultMinutes: cfg.Practice.DefaultMinutes,
		MaxMinutes:     cfg.Practice.MaxMinutes,
		RatePerMinute:  cfg.RateLimit.PerMinute,
		Burst:          cfg.RateLimit.Burst,
		DevUserID:      devUserID,
	}, log)

	// MCP endpoint, scoped to the caller resolved by the identity middleware
	mcpOpts := mcp.Options{DefaultMinutes: cfg.Practice.DefaultMinutes, MaxMinutes: cfg.Practice.MaxMinutes}
	mcpHTTP := mcpserver.NewStreamableHTTPServer(mcp.New(store, Version, mcpOpts, log),
		mcpserver.WithHTTPContextFunc(func(ctx context.Context, r *http.Request) context.Context {
			return mcp.WithUserID(ctx, server.UserIDFromContext(r.Context()))
		}),
	)
	srv.Mount("/mcp", mcpHTTP)

	// Reminder job
	if cfg.Reminder.Enabled {
		notifier, err := newNotifier(cfg.Reminder, log)
		if err != nil {
			log.Error("failed to create notifier", "error", err)
			os.Exit(1)
		}
		rem := reminder.New(store, notifier, cfg.Reminder.StartHour, cfg.Reminder.EndHour, log)
		if err := rem.Start(); err != nil {
			log.Error("failed to start reminder job", "error", err)
			os.Exit(1)
		}
		defer rem.Stop()
		log.Info("reminder job started", "start_hour", cfg.Reminder.StartHour, "end_hour", cfg.Reminder.EndHour)
	}

	// Start server: tsnet or plain HTTP
	var listener net.Listener

	if cfg.Tailscale.Enabled {
		tsServer := &tsnet.Server{
			Hostname: cfg.Tailscale.Hostname,
			Dir:      cfg.Tailscale.StateDir,
		}
		if err := tsServer.Start(); err != nil {
			log.Error("tsnet start failed", "error", err)
			os.Exit(1)
		}
		defer tsServer.Close()

		lc, err := tsServer.LocalClient()
		if err != nil {
			log.Error("tsnet local client failed", "error", err)
			os.Exit(1)
		}
		srv.SetTailscale(lc)

		listener, err = tsServer.Listen("tcp", ":80")
		if err != nil {
			log.Error("tsnet listen failed", "error", err)
			os.Exit(1)
		}
		log.Info("tsnet server starting", "hostname", cfg.Tailscale.Hostname)
	} else {
		addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		listener, err = net.Listen("tcp", addr)
		if err != nil {
			log.Error("listen failed", "addr", addr, "error", err)
			os.Exit(1)
		}
		log.Info("server starting", "addr", addr, "mode", "dev (no tailscale)")
	}

	httpSrv := &http.Server{Handler: srv}

	go func() {
		if err := httpSrv.Serve(listener); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Info("shutting down", "signal", sig)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", "error", err)
	}
	log.Info("server stopped")
}

// openStore connects the configured gateway. Postgres runs migrations first;
// with migrateOnly it returns a nil store after migrating.
func openStore(ctx context.Context, cfg *config.Config, migrateOnly bool, log *slog.Logger) (server.Store, func(), error) {
	switch cfg.Database.Driver {
	case config.DriverSQLite:
		st, err := localstore.Open(cfg.Database.Path)
		if err != nil {
			return nil, nil, err
		}
		log.Info("sqlite database opened", "path", cfg.Database.Path)
		if migrateOnly {
			st.Close()
			return nil, nil, nil
		}
		return st, func() { _ = st.Close() }, nil
	default:
		dsn := cfg.Database.DSN()
		if err := storage.RunMigrations(dsn, "migrations"); err != nil {
			return nil, nil, fmt.Errorf("migration failed: %w", err)
		}
		log.Info("migrations applied")
		if migrateOnly {
			return nil, nil, nil
		}
		db, err := storage.New(ctx, dsn)
		if err != nil {
			return nil, nil, err
		}
		log.Info("database connected")
		return db, db.Close, nil
	}
}

func newNotifier(cfg config.ReminderConfig, log *slog.Logger) (reminder.Notifier, error) {
	if cfg.TelegramToken == "" || cfg.TelegramChatID == 0 {
		log.Info("telegram not configured, reminders go to the log")
		return reminder.LogNotifier{Log: log}, nil
	}
	return reminder.NewTelegramNotifier(cfg.TelegramToken, cfg.TelegramChatID)
}
