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

	"github.com/rs/zerolog/log"
	"github.com/scythe504/basta-backend/internal/config"
	"github.com/scythe504/basta-backend/internal/database"
	"github.com/scythe504/basta-backend/internal/game"
	"github.com/scythe504/basta-backend/internal/logger"
	"github.com/scythe504/basta-backend/internal/server"
	"github.com/scythe504/basta-backend/internal/store"
	"github.com/scythe504/basta-backend/internal/utils"
	"github.com/scythe504/basta-backend/internal/websockets"
)

func openStore(ctx context.Context, cfg *config.Config) (store.RoomStore, error) {
	switch cfg.StoreBackend {
	case config.StorePostgres:
		return database.New(ctx, cfg.DatabaseURL)
	case config.StoreRedis:
		return store.NewRedisStore(ctx, cfg.RedisURL, cfg.RoomTTL)
	case config.StoreMemory:
		return store.NewMemoryStore(), nil
	}
	return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
}

func newPicker(cfg *config.Config) utils.Picker {
	if cfg.CategoriesFile == "" {
		return utils.NewRandomPicker(nil, nil)
	}
	categories, err := utils.ReadCsvFile(cfg.CategoriesFile)
	if err != nil {
		log.Warn().Err(err).Str("file", cfg.CategoriesFile).Msg("Falling back to built-in categories")
		return utils.NewRandomPicker(nil, nil)
	}
	log.Info().Int("categories", len(categories)).Str("file", cfg.CategoriesFile).Msg("Loaded categories")
	return utils.NewRandomPicker(nil, categories)
}

func gracefulShutdown(apiServer *http.Server, svc *game.Service, done chan bool) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()
	log.Info().Msg("Shutting down gracefully, press Ctrl+C again to force")
	stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Hijacked websocket connections are not closed by Shutdown.
	svc.Shutdown()
	if err := apiServer.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exiting")
	done <- true
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}
	logger.Init(cfg.LogLevel, cfg.LogPretty)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	roomStore, err := openStore(ctx, cfg)
	cancel()
	if err != nil {
		log.Fatal().Err(err).Str("backend", string(cfg.StoreBackend)).Msg("Could not open room store")
	}
	defer roomStore.Close()

	rules := game.Rules{
		Picker:           newPicker(cfg),
		DefaultTimeLimit: cfg.DefaultTimeLimit,
		MinPlayers:       cfg.MinPlayers,
	}
	svc := game.NewService(roomStore, websockets.NewRegistry(), rules, game.Options{
		ActionRate:    cfg.ActionRate,
		ActionBurst:   cfg.ActionBurst,
		AllowedOrigin: cfg.AllowedOrigin,
	})
	apiServer := server.NewServer(cfg, svc)

	done := make(chan bool, 1)
	go gracefulShutdown(apiServer, svc, done)

	log.Info().
		Int("port", cfg.Port).
		Str("backend", string(cfg.StoreBackend)).
		Msg("Starting server")
	if err := apiServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("HTTP server error")
	}

	<-done
	log.Info().Msg("Graceful shutdown complete")
}
