package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/survey-share/internal/api/http"
	"github.com/spec-kit/survey-share/internal/api/http/handlers"
	"github.com/spec-kit/survey-share/internal/auth"
	"github.com/spec-kit/survey-share/internal/config"
	"github.com/spec-kit/survey-share/internal/events"
	"github.com/spec-kit/survey-share/internal/observability"
	"github.com/spec-kit/survey-share/internal/persistence"
	"github.com/spec-kit/survey-share/internal/repository"
	"github.com/spec-kit/survey-share/internal/service"
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
		if err := persistence.RunMigrations(cfg.Postgres.DSN, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(ctx, cfg.Redis, logger)
	defer redis.Close()

	hasher, err := auth.NewDigestHasher(cfg.Share.DigestAlgorithm, cfg.Share.BcryptCost)
	if err != nil {
		logger.Fatal("invalid share digest configuration", zap.Error(err))
	}

	pool := pg.PoolHandle()
	if pool == nil {
		logger.Fatal("POSTGRES_DSN is required; surveys are read from postgres")
	}
	surveyRepo := repository.NewSurveyRepository(pool)

	var tokenRepo repository.ShareTokenRepository
	switch cfg.Share.Store {
	case config.StoreRedis:
		tokenRepo = repository.NewRedisShareTokenRepository(redis.Client, cfg.Share.RedisPrefix)
	default:
		tokenRepo = repository.NewShareTokenRepository(pool)
	}
	logger.Info("share token store selected",
		zap.String("store", cfg.Share.Store),
		zap.String("digest", cfg.Share.DigestAlgorithm))

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher(logger)
	service.NewNotificationService(dispatcher, logger, cfg.Notification).RegisterHandlers()

	shareService := service.NewShareService(service.ShareDependencies{
		TokenRepo:  tokenRepo,
		SurveyRepo: surveyRepo,
		Generator:  auth.NewSecretGenerator(),
		Hasher:     hasher,
		Links:      service.NewLinkBuilder(cfg.Share.FrontendURL),
		Dispatcher: dispatcher,
		Metrics:    metrics,
		Logger:     logger,
		TokenTTL:   cfg.Share.TokenTTL(),
	})

	tokenManager := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)
	authMiddleware := auth.NewAuthMiddleware(tokenManager)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ErrorHandler: httptransport.ErrorHandler,
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	healthHandler := handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, map[string]handlers.Pinger{
		"postgres": pg,
		"redis":    redis,
	})
	shareHandler := handlers.NewShareHandler(shareService)

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         healthHandler,
		Share:          shareHandler,
		AuthMiddleware: authMiddleware,
		Metrics:        metrics,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.Shutdown(); err != nil {
		logger.Warn("fiber shutdown", zap.Error(err))
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
