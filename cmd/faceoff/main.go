package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fortuna/faceoff/internal/api/rest"
	"github.com/fortuna/faceoff/internal/api/websocket"
	"github.com/fortuna/faceoff/internal/cache"
	"github.com/fortuna/faceoff/internal/config"
	"github.com/fortuna/faceoff/internal/logger"
	"github.com/fortuna/faceoff/internal/publisher"
	"github.com/fortuna/faceoff/internal/scheduler"
	"github.com/fortuna/faceoff/internal/service"
	"github.com/fortuna/faceoff/internal/store"
	"github.com/rs/zerolog/log"
)

const (
	serviceName    = "faceoff"
	serviceVersion = "1.0.0"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Init("info", "console", serviceName)
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	logger.Init(cfg.LogLevel, cfg.LogFormat, serviceName)

	log.Info().Msgf("Starting %s v%s - League Statistics Service", serviceName, serviceVersion)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := store.NewDatabase(cfg.DatabaseDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	log.Info().Msg("✓ Connected to database")

	if err := db.RunMigrations(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to run database migrations")
	}
	log.Info().Msg("✓ Database migrations applied")

	var redisCache *cache.RedisCache
	maxRetries := 30
	retryDelay := 2 * time.Second

	log.Info().Msg("Connecting to Redis...")
	for i := 0; i < maxRetries; i++ {
		redisCache, err = cache.NewRedisCache(cfg.RedisURL)
		if err == nil {
			break
		}

		if i < maxRetries-1 {
			log.Warn().Err(err).Msgf("Redis connection attempt %d/%d failed (retrying in %v)", i+1, maxRetries, retryDelay)
			time.Sleep(retryDelay)
		} else {
			log.Fatal().Err(err).Msgf("Failed to connect to Redis after %d attempts", maxRetries)
		}
	}
	defer redisCache.Close()

	log.Info().Msg("✓ Connected to Redis")

	redisPublisher := publisher.NewRedisStreamPublisher(redisCache.Client())
	log.Info().Str("stream", publisher.EventsStream).Msg("✓ Redis publisher initialized")

	gameService := service.NewGameService(db, redisCache, redisPublisher, cfg.CacheTTL)
	statsService := service.NewStatsService(db, redisCache, cfg.CacheTTL)
	scoringService := service.NewScoringService(db, gameService)
	playerService := service.NewPlayerService(db)

	sched := scheduler.NewOrchestrator(statsService, gameService, &scheduler.Config{
		RefreshInterval: cfg.RefreshInterval,
		CurrentSeason:   cfg.CurrentSeason,
		StaleGameAfter:  cfg.StaleGameAfter,
		MaxRetries:      3,
		RetryDelay:      5 * time.Second,
	})
	go sched.Start(ctx)

	log.Info().Msg("✓ Scheduler started")

	restServer := rest.NewServer(cfg.RESTPort, rest.NewHandler(rest.Deps{
		Games:         gameService,
		Stats:         statsService,
		Scoring:       scoringService,
		Teams:         playerService,
		CurrentSeason: cfg.CurrentSeason,
		Version:       serviceVersion,
		Health: func(ctx context.Context) error {
			if err := db.HealthCheck(ctx); err != nil {
				return err
			}
			return redisCache.HealthCheck(ctx)
		},
		Scheduler: sched.GetStatus,
	}))
	go func() {
		if err := restServer.Start(); err != nil {
			log.Error().Err(err).Msg("REST server error")
		}
	}()

	log.Info().Msgf("✓ REST API server listening on :%s", cfg.RESTPort)

	wsServer := websocket.NewServer(gameService, redisCache.Client())
	go func() {
		if err := wsServer.Start(ctx, cfg.WSPort); err != nil {
			log.Error().Err(err).Msg("WebSocket server error")
		}
	}()

	log.Info().Msgf("✓ WebSocket server listening on :%s", cfg.WSPort)
	log.Info().Msgf("✓ Faceoff v%s started successfully", serviceVersion)
	log.Info().Msgf("  REST API: http://0.0.0.0:%s", cfg.RESTPort)
	log.Info().Msgf("  WebSocket: ws://0.0.0.0:%s", cfg.WSPort)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Info().Msg("Shutting down Faceoff gracefully...")

	cancel()
	sched.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := restServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("REST API server shutdown error")
	}
	if err := wsServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("WebSocket server shutdown error")
	}

	log.Info().Msg("Faceoff stopped")
}
