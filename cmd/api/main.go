package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/connect-campus/peer-session-service/internal/api/http"
	"github.com/connect-campus/peer-session-service/internal/api/http/handlers"
	"github.com/connect-campus/peer-session-service/internal/auth"
	"github.com/connect-campus/peer-session-service/internal/config"
	"github.com/connect-campus/peer-session-service/internal/events"
	"github.com/connect-campus/peer-session-service/internal/observability"
	"github.com/connect-campus/peer-session-service/internal/persistence"
	"github.com/connect-campus/peer-session-service/internal/relay"
	"github.com/connect-campus/peer-session-service/internal/repository"
	"github.com/connect-campus/peer-session-service/internal/service"
	"github.com/connect-campus/peer-session-service/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()

	pool := pg.PoolHandle()
	requestRepo := repository.NewRequestRepository(pool)
	userRepo := repository.NewUserRepository(pool)
	focusRepo := repository.NewFocusSessionRepository(pool)

	leaderboard := service.NewLeaderboardService(userRepo, redis.Client, logger)
	registry := service.NewRegistryService(service.RegistryDependencies{
		RequestRepo: requestRepo,
		UserRepo:    userRepo,
		Dispatcher:  dispatcher,
	})
	settlement := service.NewSettlementService(cfg.Reward, service.SettlementDependencies{
		RequestRepo: requestRepo,
		UserRepo:    userRepo,
		Leaderboard: leaderboard,
		Dispatcher:  dispatcher,
		Metrics:     metrics,
	})
	focus := service.NewFocusService(focusRepo, userRepo)

	activity := service.NewActivityService(dispatcher, logger, metrics)
	worker.StartActivityWorker(activity)

	hub := relay.NewHub(cfg.Relay.RoomBuffer, logger)
	defer hub.Close()

	verifier := auth.NewTokenVerifier(cfg.Auth.JWTSecret)
	authMiddleware := auth.NewAuthMiddleware(verifier)

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis, metrics),
		Requests:       handlers.NewRequestsHandler(registry, settlement),
		Users:          handlers.NewUsersHandler(leaderboard),
		Focus:          handlers.NewFocusHandler(focus),
		Rooms:          handlers.NewRoomsHandler(hub, logger),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
