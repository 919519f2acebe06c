package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/helpdesk-service/internal/api/http"
	"github.com/spec-kit/helpdesk-service/internal/api/http/handlers"
	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/clock"
	"github.com/spec-kit/helpdesk-service/internal/config"
	"github.com/spec-kit/helpdesk-service/internal/engine"
	"github.com/spec-kit/helpdesk-service/internal/fetch"
	"github.com/spec-kit/helpdesk-service/internal/observability"
	"github.com/spec-kit/helpdesk-service/internal/persistence"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	"github.com/spec-kit/helpdesk-service/internal/service"
	"github.com/spec-kit/helpdesk-service/internal/worker"
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

	pool := pg.PoolHandle()
	userRepo := repository.NewUserRepository(pool)
	ticketRepo := repository.NewTicketRepository(pool)

	metrics := observability.NewMetrics()

	eng := engine.New(engine.Dependencies{
		Metrics: metrics,
		Logger:  logger,
	}, cfg.Engine.HistoryLimit)

	notificationService := service.NewNotificationService(eng.Log(), logger, metrics)
	worker.StartNotificationWorker(notificationService, eng.Dispatcher())

	// The poller watches the local database unless an upstream feed is
	// configured, in which case this process acts as a remote observer.
	var source fetch.Source
	if cfg.Engine.UpstreamURL != "" {
		source = fetch.NewHTTPSource(cfg.Engine.UpstreamURL, cfg.Engine.UpstreamToken, 0)
		logger.Info("polling upstream snapshot feed", zap.String("url", cfg.Engine.UpstreamURL))
	} else {
		source = fetch.NewRepositorySource(ticketRepo)
	}

	poller := engine.NewPoller(eng, source, clock.Real(), logger, metrics,
		cfg.Engine.PollInterval(), cfg.Engine.CooldownWindow())
	poller.Start(ctx)

	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo: ticketRepo,
		UserRepo:   userRepo,
	})
	authService := service.NewAuthService(*cfg, userRepo, notificationService)
	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), userRepo)

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	fetchLimiter := httptransport.NewFetchRateLimiter(redis, logger, cfg.RateLimit.Requests, cfg.RateLimit.Window())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Users:          handlers.NewUsersHandler(authService),
		Tickets:        handlers.NewTicketsHandler(ticketService),
		Notifications:  handlers.NewNotificationsHandler(eng),
		Engine:         handlers.NewEngineHandler(eng, poller, metrics),
		AuthMiddleware: authMiddleware,
		FetchLimiter:   fetchLimiter,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	poller.Stop()
	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
