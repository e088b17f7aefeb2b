package main

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/jobtrack-app/jobtrack/internal"
	"github.com/jobtrack-app/jobtrack/internal/auth"
	authdb "github.com/jobtrack-app/jobtrack/internal/auth/db"
	"github.com/jobtrack-app/jobtrack/internal/db"
	"github.com/jobtrack-app/jobtrack/internal/db/migrate"
	"github.com/jobtrack-app/jobtrack/internal/jobs"
	jobsdb "github.com/jobtrack-app/jobtrack/internal/jobs/db"
	"github.com/jobtrack-app/jobtrack/internal/web"
	"github.com/jobtrack-app/jobtrack/migrations"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	os.Exit(run(ctx, os.Stderr))
}

func run(ctx context.Context, w io.Writer) int {
	logger := slog.New(slog.NewTextHandler(w, nil))

	// A .env file is optional, real environment variables always win.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logger.Error("failed to load .env file", "error", err)
		return 1
	}

	cfg, err := configFromEnv()
	if err != nil {
		logger.Error("failed to get config from environment", "error", err)
		return 1
	}

	sqlDB, err := db.OpenSQLite(cfg.dbFile, true)
	if err != nil {
		logger.Error("failed to open database", "dbFile", cfg.dbFile, "error", err)
		return 1
	}
	defer func() {
		if err := sqlDB.Close(); err != nil {
			logger.Error("failed to close database", "error", err)
		}
	}()

	ran, err := migrate.RunFS(ctx, sqlDB, migrations.FS, migrate.Metadata{
		AppVersion: internal.BuildRevision,
		Timestamp:  internal.BuildRevisionTime,
	})
	if err != nil {
		logger.Error("failed to run migrations", "error", err)
		return 1
	}

	for _, m := range ran {
		logger.Info("ran migration", "sequence", m.Sequence, "filename", m.Filename)
	}

	tokens := auth.NewTokenService(cfg.tokenKey, cfg.tokenExpiry)
	authSvc := auth.NewService(authdb.New(sqlDB), tokens)
	jobSvc := jobs.NewService(jobsdb.New(sqlDB), jobs.DefaultStatuses)

	srv := &http.Server{
		Addr:         cfg.http.addr,
		ReadTimeout:  cfg.http.readTimeout,
		WriteTimeout: cfg.http.writeTimeout,
		IdleTimeout:  cfg.http.idleTimeout,
		Handler: web.NewServer(&web.ServerDeps{
			Logger:      logger,
			AuthService: authSvc,
			JobService:  jobSvc,
			Tokens:      tokens,
		}),
	}

	// We need to run two tasks concurrently:
	// - Listen and serving of the HTTP server.
	// - Waiting for a signal to stop the server.

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("starting http server",
			"addr", cfg.http.addr,
			"buildRevision", internal.BuildRevision,
			"buildRevisionTime", internal.BuildRevisionTime,
			"buildLocalModified", internal.BuildLocalModified,
		)
		// ListenAndServe always returns a non-nil error,
		// g will cancel gCtx when an error is returned, so
		// this will also stop the other goroutine.
		return srv.ListenAndServe()
	})

	g.Go(func() error {
		<-gCtx.Done()
		logger.Info("stopping http server")

		shutCtx, cancel := context.WithTimeout(context.Background(), cfg.http.shutdownTimeout)
		defer cancel()

		return srv.Shutdown(shutCtx)
	})

	err = g.Wait()
	if err != nil && err != http.ErrServerClosed {
		logger.Error("http server stopped with error", "error", err)
		return 1
	}

	logger.Info("http server stopped successfully")

	return 0
}
