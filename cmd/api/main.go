package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	httptransport "github.com/spec-kit/internship-portal/internal/api/http"
	"github.com/spec-kit/internship-portal/internal/api/http/handlers"
	"github.com/spec-kit/internship-portal/internal/auth"
	"github.com/spec-kit/internship-portal/internal/config"
	"github.com/spec-kit/internship-portal/internal/events"
	"github.com/spec-kit/internship-portal/internal/observability"
	"github.com/spec-kit/internship-portal/internal/persistence"
	"github.com/spec-kit/internship-portal/internal/repository"
	"github.com/spec-kit/internship-portal/internal/service"
	"github.com/spec-kit/internship-portal/internal/storage"
	"github.com/spec-kit/internship-portal/internal/worker"
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

	if cfg.Auth.UsingDefaultSecret() {
		logger.Warn("JWT_SECRET not set, signing tokens with the development key")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), cfg.Postgres.MigrationsDir, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(ctx, cfg.Redis, logger)
	defer redis.Close()

	resumes, err := storage.NewResumeStore(cfg.Upload.Dir, cfg.Upload.MaxBytes, logger)
	if err != nil {
		logger.Fatal("failed to prepare upload directory", zap.Error(err))
	}

	pool := pg.PoolHandle()
	userRepo := repository.NewUserRepository(pool)
	applicationRepo := repository.NewApplicationRepository(pool)

	dispatcher := events.NewInMemoryDispatcher()
	notificationService := service.NewNotificationService(dispatcher, redis, logger, cfg.Notification)
	worker.StartNotificationRelay(notificationService, logger)

	authService := service.NewAuthService(cfg.Auth, service.AuthDependencies{
		UserRepo: userRepo,
		Logger:   logger,
	})
	userService := service.NewUserService(service.UserDependencies{
		UserRepo: userRepo,
		Logger:   logger,
	})
	applicationService := service.NewApplicationService(service.ApplicationDependencies{
		ApplicationRepo: applicationRepo,
		Resumes:         resumes,
		Dispatcher:      dispatcher,
		Logger:          logger,
	})

	metrics := observability.NewMetrics()
	app := httptransport.NewApp(cfg, logger, metrics, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis, metrics),
		Auth:           handlers.NewAuthHandler(authService),
		Users:          handlers.NewUsersHandler(userService),
		Applications:   handlers.NewApplicationsHandler(applicationService),
		AuthMiddleware: auth.NewAuthMiddleware(authService.TokenManager()),
	})

	go func() {
		logger.Info("http server starting", zap.String("addr", cfg.App.Addr()))
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.Shutdown(); err != nil {
		logger.Error("http shutdown", zap.Error(err))
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
