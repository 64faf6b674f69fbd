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

	"github.com/Dosada05/mini-tournament/brackets"
	"github.com/Dosada05/mini-tournament/config"
	"github.com/Dosada05/mini-tournament/cron"
	"github.com/Dosada05/mini-tournament/db"
	"github.com/Dosada05/mini-tournament/handlers"
	"github.com/Dosada05/mini-tournament/models"
	"github.com/Dosada05/mini-tournament/repositories"
	api "github.com/Dosada05/mini-tournament/routes"
	"github.com/Dosada05/mini-tournament/services"
	"github.com/Dosada05/mini-tournament/storage"
	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort), slog.String("default_format", cfg.DefaultFormat))

	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		} else {
			logger.Info("database connection closed")
		}
	}()
	logger.Info("database connection established")

	migrateCtx, cancelMigrate := context.WithTimeout(context.Background(), 30*time.Second)
	err = db.Migrate(migrateCtx, dbConn)
	cancelMigrate()
	if err != nil {
		logger.Error("failed to apply database schema", slog.Any("error", err))
		os.Exit(1)
	}

	r2Config := storage.CloudflareR2UploaderConfig{
		AccountID:       cfg.R2AccountID,
		AccessKeyID:     cfg.R2AccessKeyID,
		SecretAccessKey: cfg.R2SecretAccessKey,
		BucketName:      cfg.R2BucketName,
		PublicBaseURL:   cfg.R2PublicBaseURL,
	}
	var uploader storage.FileUploader
	if r2Config.Enabled() {
		uploader, err = storage.NewCloudflareR2Uploader(context.Background(), r2Config)
		if err != nil {
			logger.Error("failed to initialize Cloudflare R2 uploader", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("Cloudflare R2 uploader initialized", slog.String("bucket", cfg.R2BucketName))
	} else {
		logger.Info("Cloudflare R2 not configured, archive snapshots stay in the database only")
	}

	appCtx, stopApp := context.WithCancel(context.Background())
	defer stopApp()

	wsHub := brackets.NewHub(logger)
	go wsHub.Run(appCtx)
	logger.Info("WebSocket Hub started")

	stateRepo := repositories.NewPostgresStateRepository(dbConn)
	archiveRepo := repositories.NewPostgresArchiveRepository(dbConn)

	tournamentService := services.NewTournamentService(services.TournamentServiceConfig{
		DB:            dbConn,
		States:        stateRepo,
		Archives:      archiveRepo,
		Uploader:      uploader,
		Notifier:      wsHub,
		DefaultFormat: models.Format(cfg.DefaultFormat),
		DefaultCourts: cfg.DefaultCourts,
		Logger:        logger,
	})

	scheduler := cron.NewScheduler(tournamentService, cron.Options{
		Schedule: cfg.ArchiveSchedule,
		Grace:    cfg.ArchiveGrace,
	}, logger)
	if err := scheduler.Start(); err != nil {
		logger.Error("failed to start cron scheduler", slog.Any("error", err))
		os.Exit(1)
	}

	router := chi.NewRouter()
	api.SetupRoutes(router, api.Handlers{
		Tournament: handlers.NewTournamentHandler(tournamentService),
		Pair:       handlers.NewPairHandler(tournamentService),
		Match:      handlers.NewMatchHandler(tournamentService),
		WebSocket:  handlers.NewWebSocketHandler(wsHub, cfg.CORSAllowedOrigins, logger),
		Health:     handlers.NewHealthHandler(dbConn),
	}, api.Options{
		JWTSecret:      cfg.JWTSecretKey,
		AllowedOrigins: cfg.CORSAllowedOrigins,
	})
	logger.Info("Routes configured")

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("server stopped gracefully")
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()

		scheduler.Stop(shutdownCtx)
		stopApp()

		logger.Info("shutting down server", slog.Duration("timeout", 15*time.Second))
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			os.Exit(1)
		}
		logger.Info("server shutdown complete")
	}
	logger.Info("application exited")
}
