package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/lanoanh-osi/ServiceOps/internal/api/http"
	"github.com/lanoanh-osi/ServiceOps/internal/api/http/handlers"
	"github.com/lanoanh-osi/ServiceOps/internal/auth"
	"github.com/lanoanh-osi/ServiceOps/internal/cache"
	"github.com/lanoanh-osi/ServiceOps/internal/config"
	"github.com/lanoanh-osi/ServiceOps/internal/events"
	"github.com/lanoanh-osi/ServiceOps/internal/geo"
	"github.com/lanoanh-osi/ServiceOps/internal/mapper"
	"github.com/lanoanh-osi/ServiceOps/internal/media"
	"github.com/lanoanh-osi/ServiceOps/internal/observability"
	"github.com/lanoanh-osi/ServiceOps/internal/persistence"
	"github.com/lanoanh-osi/ServiceOps/internal/push"
	"github.com/lanoanh-osi/ServiceOps/internal/repository"
	"github.com/lanoanh-osi/ServiceOps/internal/service"
	"github.com/lanoanh-osi/ServiceOps/internal/session"
	"github.com/lanoanh-osi/ServiceOps/internal/status"
	"github.com/lanoanh-osi/ServiceOps/internal/webhook"
	"github.com/lanoanh-osi/ServiceOps/internal/worker"
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

	if cfg.Webhook.BaseURL == "" {
		logger.Warn("WEBHOOK_BASE_URL not set; upstream calls will fail")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.Pool, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	var redis *persistence.Redis
	if cfg.Session.Store == "redis" || cfg.Cache.TTL() > 0 {
		redis = persistence.NewRedis(ctx, cfg.Redis, logger)
		defer redis.Close()
	}

	var devices repository.PushDeviceRepository
	var actionLog repository.ActionLogRepository
	if pg.Enabled() {
		devices = repository.NewPushDeviceRepository(pg.Pool)
		actionLog = repository.NewActionLogRepository(pg.Pool)
	}

	metrics := observability.NewMetrics()
	client, err := webhook.NewClient(webhook.Config{
		BaseURL: cfg.Webhook.BaseURL,
		Timeout: cfg.Webhook.Timeout(),
		Logger:  logger,
		Metrics: metrics,
	})
	if err != nil {
		logger.Fatal("failed to build webhook client", zap.Error(err))
	}

	var sessions session.Provider = session.NewMemoryProvider()
	if cfg.Session.Store == "redis" {
		sessions = session.NewRedisProvider(redis.Client, cfg.Session.KeyPrefix, cfg.Session.TTL())
	}

	var hooks []session.Hook
	if cfg.Push.Enabled {
		hooks = push.Hooks(client, cfg.Push.SavePlayerIDURL, devices, logger)
	}
	manager := session.NewManager(client, logger, hooks...)
	tokens := auth.NewTokenManager(cfg.Session.JWTSecret, cfg.Session.TTL())

	var ticketCache *cache.TicketCache
	if redis != nil {
		ticketCache = cache.NewTicketCache(redis.Client, "", cfg.Cache.TTL(), logger)
	}

	dispatcher := events.NewInMemoryDispatcher()
	worker.StartAuditWorker(service.NewAuditService(dispatcher, actionLog, ticketCache, logger))

	ticketService := service.NewTicketService(service.TicketDependencies{
		Client: client,
		Mapper: mapper.New(status.Default(), nil),
		Cache:  ticketCache,
		Logger: logger,
	})
	images := media.NewProcessor(cfg.Media.MaxEdge, cfg.Media.JPEGQuality, logger)
	images.MaxPixels = cfg.Media.MaxPixels
	actionService := service.NewActionService(service.ActionDependencies{
		Client:     client,
		Media:      images,
		Locator:    geo.NewResolver(cfg.Geocode.BaseURL, cfg.Geocode.UserAgent, cfg.Geocode.Timeout(), logger),
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	authService := service.NewAuthService(service.AuthDependencies{
		Client:     client,
		Manager:    manager,
		Sessions:   sessions,
		Tokens:     tokens,
		Dispatcher: dispatcher,
		Logger:     logger,
	})

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ErrorHandler: httptransport.ErrorHandler(logger),
		BodyLimit:    int(media.MaxInputBytes) * 4,
	})
	app.Use(httptransport.CORS(cfg.App.CORSOrigins))
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis, metrics),
		Auth:           handlers.NewAuthHandler(authService),
		Tickets:        handlers.NewTicketsHandler(ticketService),
		Actions:        handlers.NewActionsHandler(actionService),
		Reference:      handlers.NewReferenceHandler(service.NewReferenceService(client)),
		AuthMiddleware: auth.NewAuthMiddleware(tokens, sessions, manager),
		AuthLimiter:    httptransport.AuthRateLimiter(cfg.App.AuthRateLimit),
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
