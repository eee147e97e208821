package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"dareroom/internal/cache"
	"dareroom/internal/config"
	"dareroom/internal/dare"
	"dareroom/internal/logger"
	"dareroom/internal/repository"
	"dareroom/internal/service"
	"dareroom/internal/transport/rest"
	"dareroom/internal/transport/ws"
)

func main() {
	log := logger.New(os.Getenv("LOG_LEVEL"))
	cfg := config.Load(log)
	log = logger.New(cfg.LogLevel)

	ctx := context.Background()

	// MongoDB connection
	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to MongoDB")
	}
	defer mongoClient.Disconnect(ctx)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := mongoClient.Ping(pingCtx, nil); err != nil {
		log.Fatal().Err(err).Msg("failed to ping MongoDB")
	}
	log.Info().Msg("connected to MongoDB")

	db := mongoClient.Database(cfg.MongoDB)

	// Redis connection
	rdb := redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr,
	})
	defer rdb.Close()

	if _, err := rdb.Ping(ctx).Result(); err != nil {
		log.Fatal().Err(err).Msg("failed to ping Redis")
	}
	log.Info().Msg("connected to Redis")

	// WebSocket hub
	wsHub := ws.NewHub(log)

	// Repositories
	roomRepo := repository.NewRoomRepo(db)
	profileRepo := repository.NewProfileRepo(db)
	replayRepo := repository.NewReplayRepo(db)
	historyRepo := repository.NewHistoryRepo(db)

	// Caches
	roomCache := cache.NewRoomCache(rdb)
	leaderboard := cache.NewLeaderboardCache(rdb)

	// Dare text provider
	provider := dare.NewHTTPProvider(cfg.DareAPIURL, cfg.DareAPIKey, cfg.DareAPITimeout)
	if cfg.DareAPIKey == "" {
		log.Warn().Msg("DARE_API_KEY not set, dares come from the fallback pool")
	}

	// Services
	authSvc := service.NewAuthService(cfg.HostUsername, cfg.HostPassword, cfg.JWTSecret)
	registry := service.NewRegistry()
	roomSvc := service.NewRoomService(
		roomRepo, profileRepo, roomCache, leaderboard,
		replayRepo, historyRepo, registry, authSvc, provider, log,
	)
	profileSvc := service.NewProfileService(profileRepo, historyRepo, replayRepo, log)

	// The hub implements service.Broadcaster
	roomSvc.SetBroadcaster(wsHub)

	wsHandler := ws.NewHandler(wsHub, authSvc, roomSvc, registry, log)

	router := rest.NewRouter(&rest.Container{
		AuthService:    authSvc,
		RoomService:    roomSvc,
		ProfileService: profileSvc,
		Registry:       registry,
		Leaderboard:    leaderboard,
		WSHandler:      wsHandler,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: router,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	// Wait for interrupt
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited")
}
