package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"confusense/backend/internal/api/handler"
	"confusense/backend/internal/config"
	"confusense/backend/internal/database"
	"confusense/backend/internal/logging"
	"confusense/backend/internal/meetinghub"
	"confusense/backend/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

const shutdownTimeout = 10 * time.Second

func setupDependencies(ctx context.Context, cfg *config.Config) (*gorm.DB, *redis.Client, func(), error) {
	pool, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("connect postgres: %w", err)
	}

	db, err := database.OpenGorm(pool)
	if err != nil {
		pool.Close()
		return nil, nil, nil, err
	}
	if err := database.Migrate(db); err != nil {
		pool.Close()
		return nil, nil, nil, err
	}

	rdb, err := database.ConnectRedis(ctx, cfg.Redis)
	if err != nil {
		pool.Close()
		return nil, nil, nil, err
	}

	cleanup := func() {
		if rdb != nil {
			rdb.Close()
		}
		pool.Close()
	}
	log.Info().Str("module", "main").Bool("redis", rdb != nil).Msg("database connections established, migrations complete")
	return db, rdb, cleanup, nil
}

func main() {
	logging.Setup("release", "info")

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Str("module", "main").Msg("failed to load config")
	}
	logging.Setup(cfg.Mode, cfg.LogLevel)
	gin.SetMode(cfg.Mode)
	log.Info().Str("module", "main").Str("version", cfg.Version).Msg("starting " + cfg.Name)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, rdb, cleanup, err := setupDependencies(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Str("module", "main").Msg("failed to initialise dependencies")
	}
	defer cleanup()

	s := storage.NewStorageService(db, rdb)
	s.SessionTTL = cfg.SessionTTL
	if cfg.Redis.Topic != "" {
		s.Topic = cfg.Redis.Topic
	}

	opts := []meetinghub.RouterOption{meetinghub.WithPersistTimeout(cfg.Relay.PersistTimeout)}
	if rdb != nil {
		opts = append(opts, meetinghub.WithEventTap(s))
	}
	hub := meetinghub.NewHub()
	router := meetinghub.NewRouter(meetinghub.NewRegistry(), hub, s, opts...)
	lifecycle := meetinghub.NewLifecycle(router)

	h := handler.NewHandler(lifecycle, s, cfg)
	server := &http.Server{
		Addr:           fmt.Sprintf(":%d", cfg.Port),
		Handler:        handler.SetupRouter(h),
		ReadTimeout:    10 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	go func() {
		log.Info().Str("module", "main").Str("addr", server.Addr).Msg("listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Str("module", "main").Msg("http server stopped")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info().Str("module", "main").Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Str("module", "main").Msg("http shutdown")
	}
	// Hijacked websocket connections are not closed by Shutdown.
	hub.CloseAll()
	router.Close()
	log.Info().Str("module", "main").Msg("stopped")
}
