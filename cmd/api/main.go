package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/ticket-relay/internal/api/http"
	"github.com/spec-kit/ticket-relay/internal/api/http/handlers"
	"github.com/spec-kit/ticket-relay/internal/auth"
	"github.com/spec-kit/ticket-relay/internal/config"
	"github.com/spec-kit/ticket-relay/internal/events"
	"github.com/spec-kit/ticket-relay/internal/observability"
	"github.com/spec-kit/ticket-relay/internal/persistence"
	"github.com/spec-kit/ticket-relay/internal/relay"
	"github.com/spec-kit/ticket-relay/internal/repository"
	"github.com/spec-kit/ticket-relay/internal/service"
	"github.com/spec-kit/ticket-relay/internal/worker"
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

	ticketRepo := repository.NewTicketRepository(pg.PoolHandle())
	resultCache := repository.NewForwardResultCache(redis.Client, cfg.Dispatch.ResultCacheTTL())

	classifier := relay.NewClassifier(cfg.Targets)
	httpDispatcher := relay.NewHTTPDispatcher(&http.Client{}, cfg.Dispatch.Timeout(), logger)

	forwardService := service.NewForwardService(service.ForwardDependencies{
		TicketRepo:  ticketRepo,
		ResultCache: resultCache,
		Classifier:  classifier,
		Dispatcher:  httpDispatcher,
		Events:      dispatcher,
		Metrics:     metrics,
		Logger:      logger,
	})
	ticketService := service.NewTicketService(ticketRepo, forwardService, dispatcher)
	authService := service.NewAuthService(cfg.Auth)
	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification)
	worker.StartNotificationWorker(notificationService)

	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager())

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	healthHandler := handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis)
	ticketsHandler := handlers.NewTicketsHandler(ticketService, forwardService)
	forwardHandler := handlers.NewForwardHandler(forwardService)
	adminHandler := handlers.NewAdminHandler(authService)

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         healthHandler,
		Tickets:        ticketsHandler,
		Forward:        forwardHandler,
		Admin:          adminHandler,
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
