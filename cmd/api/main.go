package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/afisha-board/backend/internal/api"
	"github.com/afisha-board/backend/internal/auth"
	"github.com/afisha-board/backend/internal/config"
	"github.com/afisha-board/backend/internal/db"
	"github.com/afisha-board/backend/internal/logger"
	"github.com/afisha-board/backend/internal/media"
	"github.com/afisha-board/backend/internal/metrics"
	"github.com/afisha-board/backend/internal/repository/postgres"
	"github.com/afisha-board/backend/internal/services"
	"github.com/afisha-board/backend/internal/session"
	"github.com/afisha-board/backend/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config", "err", err)
		os.Exit(1)
	}
	log := logger.New(cfg.Env, cfg.LogLevel)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Migrate {
		if err := db.RunMigrations(ctx, cfg.DatabaseURL); err != nil {
			log.Error("migrations", "err", err)
			os.Exit(1)
		}
	}

	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("db connect", "err", err)
		os.Exit(1)
	}
	defer pool.Close()

	sessStore, closeStore, err := newSessionStore(cfg)
	if err != nil {
		log.Error("session store", "err", err)
		os.Exit(1)
	}
	defer closeStore()

	blobStore, err := newBlobStore(ctx, cfg)
	if err != nil {
		log.Error("media store", "err", err)
		os.Exit(1)
	}

	repos := postgres.NewRepositories(pool)
	wp := worker.NewPool(4)
	defer wp.Stop()

	gate := session.NewGate(auth.NewTokenManager(cfg.SessionSecret, cfg.SessionTTL), sessStore)
	userSvc := services.NewUserService(repos.Users)
	eventSvc := services.NewEventService(repos.Events, repos.AuditLogs,
		media.NewIntake(blobStore), wp, cfg.EnforceOwnership)

	metrics.Init()
	r := api.NewRouter(cfg, api.Deps{Users: userSvc, Events: eventSvc, Gate: gate})

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info("server starting", "port", cfg.HTTPPort,
			"session_store", cfg.SessionStore, "media_store", cfg.MediaStore,
			"enforce_ownership", cfg.EnforceOwnership)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server", "err", err)
		}
	}()

	<-ctx.Done()
	log.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}

func newSessionStore(cfg config.Config) (session.Store, func(), error) {
	if cfg.SessionStore == "redis" {
		s, err := session.NewRedisStore(cfg.RedisAddr)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	}
	return session.NewMemoryStore(), func() {}, nil
}

func newBlobStore(ctx context.Context, cfg config.Config) (media.BlobStore, error) {
	if cfg.MediaStore == "s3" {
		return media.NewS3Store(ctx, media.S3Options{
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3User,
			SecretKey: cfg.S3Password,
		})
	}
	return media.NewDiskStore(cfg.MediaDir)
}
