package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/neurevia/portal-gateway/internal/api/http"
	"github.com/neurevia/portal-gateway/internal/api/http/handlers"
	"github.com/neurevia/portal-gateway/internal/auth"
	"github.com/neurevia/portal-gateway/internal/config"
	"github.com/neurevia/portal-gateway/internal/events"
	"github.com/neurevia/portal-gateway/internal/guard"
	"github.com/neurevia/portal-gateway/internal/observability"
	"github.com/neurevia/portal-gateway/internal/persistence"
	"github.com/neurevia/portal-gateway/internal/repository"
	"github.com/neurevia/portal-gateway/internal/service"
	"github.com/neurevia/portal-gateway/internal/worker"
	"github.com/neurevia/portal-gateway/migrations"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger, cfg.App)
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
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), migrations.FS, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(ctx, cfg.Redis, logger)
	defer redis.Close()

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()

	var accessLog repository.AccessLogRepository
	if pg.Enabled() {
		accessLog = repository.NewAccessLogRepository(pg.PoolHandle())
	}
	auditWorker := worker.NewAuditWorker(accessLog, logger, cfg.Audit.QueueSize)
	auditService := service.NewAuditService(dispatcher, auditWorker, logger)
	worker.StartAuditWorker(ctx, auditService, auditWorker)

	sessionCache := repository.NewSessionCacheRepository(redis.Client)
	authService := service.NewAuthService(cfg.API, service.AuthDependencies{
		HTTP:    &http.Client{Timeout: cfg.API.Timeout()},
		Aux:     sessionCache,
		Logger:  logger,
		Metrics: metrics,
	})

	routes := guard.NewRoutes(cfg.Routes)
	edgeGuard := guard.New(routes, authService, guard.Options{
		SecureCookies: cfg.App.IsProduction(),
		Dispatcher:    dispatcher,
		Metrics:       metrics,
		Logger:        logger,
	})

	sessions := auth.NewSessions(authService, sessionCache,
		auth.NewTokenManager(cfg.Session.SigningSecret, cfg.Session.CacheTTL()),
		auth.SessionsConfig{
			AuthCookie:   cfg.Routes.CookieName,
			HandleCookie: cfg.Session.CookieName,
			AuthPath:     cfg.Routes.AuthPath,
			CacheTTL:     cfg.Session.CacheTTL(),
			Secure:       cfg.App.IsProduction(),
		}, logger)

	optional := map[string]handlers.Pinger{"redis": redis}
	if pg.Enabled() {
		optional["postgres"] = pg
	}
	healthHandler := handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version,
		map[string]handlers.Pinger{"backend": authService}, optional)
	sessionHandler := handlers.NewSessionHandler(sessions, authService, dispatcher, logger)
	frontendHandler := handlers.NewFrontendHandler(cfg.Frontend.URL, logger)
	var activityReader handlers.ActivityReader
	if accessLog != nil {
		activityReader = accessLog
	}
	activityHandler := handlers.NewActivityHandler(sessions, activityReader, cfg.Session.HydrationBudget(), logger)

	app := fiber.New(fiber.Config{
		AppName:               cfg.App.Name,
		DisableStartupMessage: cfg.App.IsProduction(),
		ReadTimeout:           cfg.App.RequestTimeout(),
	})
	httptransport.RegisterMiddlewares(app, httptransport.MiddlewareConfig{
		Logger:         logger,
		Metrics:        metrics,
		RequestTimeout: cfg.App.RequestTimeout(),
		AllowOrigins:   cfg.App.AllowOrigins,
	})
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:   healthHandler,
		Session:  sessionHandler,
		Activity: activityHandler,
		Frontend: frontendHandler,
		Guard:    edgeGuard,
		Sessions: sessions,
		WithAuth: auth.WithAuthConfig{
			Budget:   cfg.Session.HydrationBudget(),
			AuthPath: cfg.Routes.AuthPath,
		},
		Metrics: metrics,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Warn("fiber shutdown", zap.Error(err))
	}
	if err := auditWorker.Stop(shutdownCtx); err != nil {
		logger.Warn("audit worker did not drain", zap.Error(err))
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
