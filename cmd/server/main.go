package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	"github.com/inamate/animlib/internal/asset"
	"github.com/inamate/animlib/internal/auth"
	"github.com/inamate/animlib/internal/config"
	"github.com/inamate/animlib/internal/db"
	"github.com/inamate/animlib/internal/export"
	"github.com/inamate/animlib/internal/job"
	mw "github.com/inamate/animlib/internal/middleware"
	"github.com/inamate/animlib/internal/progress"
	"github.com/inamate/animlib/internal/render"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.Level()}))
	slog.SetDefault(logger)
	render.SetLogger(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := db.Migrate(ctx, pool); err != nil {
		slog.Error("migrate database", "error", err)
		os.Exit(1)
	}

	authService := auth.NewService(auth.NewPGUserStore(pool), cfg.JWTSecret)
	authHandler := auth.NewHandler(authService)

	hub := progress.NewHub(cfg.ProgressRetention)
	hubCtx, stopHub := context.WithCancel(context.Background())
	go hub.Run(hubCtx)

	jobService, err := job.NewService(job.Options{
		Store:      job.NewPGStore(pool),
		Publisher:  hub,
		OutputDir:  cfg.OutputDir,
		Assets:     os.DirFS(cfg.AssetDir),
		FFmpegPath: cfg.FfmpegPath,
		DefaultFPS: cfg.DefaultFPS,
	})
	if err != nil {
		slog.Error("create job service", "error", err)
		os.Exit(1)
	}
	workerCtx, stopWorkers := context.WithCancel(context.Background())
	if err := jobService.Start(workerCtx, cfg.RenderWorkers); err != nil {
		slog.Error("start render workers", "error", err)
		os.Exit(1)
	}
	jobHandler := job.NewHandler(jobService)

	assetHandler := asset.NewHandler(cfg.AssetDir, asset.NewPGStore(pool))
	exportHandler := export.NewHandler(cfg.FfmpegPath)
	progressHandler := progress.NewHandler(hub, authorizeProgress(authService, jobService), cfg.Origins())

	r := mux.NewRouter()

	// Global middleware
	r.Use(mw.Recovery)
	r.Use(mw.Logger)
	r.Use(mw.CORS(cfg.Origins()))

	r.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := pool.Ping(r.Context()); err != nil {
			http.Error(w, `{"status":"degraded"}`, http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// Auth routes (public)
	r.HandleFunc("/api/auth/register", authHandler.Register).Methods("POST", "OPTIONS")
	r.HandleFunc("/api/auth/login", authHandler.Login).Methods("POST", "OPTIONS")

	// Export of client rendered frames (public, used by the browser player)
	r.HandleFunc("/api/export/video", exportHandler.ExportVideo).Methods("POST", "OPTIONS")

	// Progress stream; browsers cannot set headers here, so the token is a query param
	r.Handle("/ws/jobs/{jobId}", progressHandler).Methods("GET")

	// Protected API routes
	api := r.PathPrefix("/api").Subrouter()
	api.Use(authService.AuthMiddleware)

	api.HandleFunc("/auth/me", authHandler.Me).Methods("GET", "OPTIONS")
	api.HandleFunc("/jobs", jobHandler.List).Methods("GET", "OPTIONS")
	api.HandleFunc("/jobs", jobHandler.Create).Methods("POST")
	api.HandleFunc("/jobs/{jobId}", jobHandler.Get).Methods("GET", "OPTIONS")
	api.HandleFunc("/jobs/{jobId}", jobHandler.Cancel).Methods("DELETE")
	api.HandleFunc("/jobs/{jobId}/output", jobHandler.Output).Methods("GET", "OPTIONS")
	api.HandleFunc("/assets", assetHandler.Upload).Methods("POST", "OPTIONS")
	api.HandleFunc("/assets/{assetId}", assetHandler.Get).Methods("GET", "OPTIONS")

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		<-ctx.Done()
		slog.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)

		// Running jobs are recorded as canceled; queued ones resume on next start.
		stopWorkers()
		jobService.Wait()
		stopHub()
	}()

	slog.Info("server starting", "addr", addr, "workers", cfg.RenderWorkers)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
	<-hubCtx.Done()
}

// authorizeProgress lets a user follow only their own jobs.
func authorizeProgress(authSvc *auth.Service, jobs *job.Service) progress.Authorizer {
	return func(ctx context.Context, token, jobID string) (string, error) {
		if token == "" {
			return "", progress.ErrUnauthorized
		}
		userID, err := authSvc.ValidateToken(token)
		if err != nil {
			return "", fmt.Errorf("%w: %w", progress.ErrUnauthorized, err)
		}
		if err := jobs.Authorize(ctx, jobID, userID); err != nil {
			if errors.Is(err, job.ErrForbidden) {
				return "", progress.ErrForbidden
			}
			return "", err
		}
		return userID, nil
	}
}
