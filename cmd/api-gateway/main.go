package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	_ "github.com/noah-isme/sma-activity-api/api/swagger"
	"github.com/noah-isme/sma-activity-api/internal/handler"
	"github.com/noah-isme/sma-activity-api/internal/models"
	"github.com/noah-isme/sma-activity-api/internal/repository"
	"github.com/noah-isme/sma-activity-api/internal/router"
	"github.com/noah-isme/sma-activity-api/internal/service"
	"github.com/noah-isme/sma-activity-api/pkg/cache"
	"github.com/noah-isme/sma-activity-api/pkg/config"
	"github.com/noah-isme/sma-activity-api/pkg/database"
	"github.com/noah-isme/sma-activity-api/pkg/jobs"
	"github.com/noah-isme/sma-activity-api/pkg/logger"
	"github.com/noah-isme/sma-activity-api/pkg/observability"
)

// @title Activity Management API
// @version 1.0.0
// @description Users, events, registrations, notifications and student point tallies.
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	flushSentry, err := observability.InitSentry(cfg.Sentry.DSN, cfg.Env, cfg.Release)
	if err != nil {
		logr.Warn("sentry disabled", zap.Error(err))
	} else {
		defer flushSentry()
	}

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect database", zap.Error(err))
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		if err := database.Migrate(db.DB); err != nil {
			logr.Fatal("failed to apply migrations", zap.Error(err))
		}
	}

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, continuing without cache", zap.Error(err))
		redisClient = nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	validate := validator.New()
	metrics := service.NewMetricsService()

	userRepo := repository.NewUserRepository(db)
	eventRepo := repository.NewEventRepository(db)
	registrationRepo := repository.NewRegistrationRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	pointsRepo := repository.NewPointsRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	defer cacheRepo.Close() //nolint:errcheck

	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Points.CacheTTL, logr, cfg.Points.CacheEnabled && redisClient != nil)

	var authSvc *service.AuthService
	authCfg := service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            cfg.JWT.Issuer,
	}
	if redisClient != nil {
		authSvc = service.NewAuthService(userRepo, cacheRepo, validate, logr, authCfg)
	} else {
		authSvc = service.NewAuthService(userRepo, nil, validate, logr, authCfg)
	}

	broadcasts := jobs.NewQueue[models.BroadcastRequest](
		"notifications",
		service.BroadcastJobHandler(notificationRepo, userRepo, metrics, logr),
		jobs.QueueConfig{
			Workers:    cfg.Notifications.Workers,
			MaxRetries: cfg.Notifications.MaxRetries,
			RetryDelay: cfg.Notifications.RetryDelay,
			Logger:     logr,
		},
	)
	broadcasts.Start(ctx)
	defer broadcasts.Stop()

	userSvc := service.NewUserService(userRepo, validate, logr)
	eventSvc := service.NewEventService(eventRepo, validate, logr)
	registrationSvc := service.NewRegistrationService(registrationRepo, metrics, validate, logr)
	notificationSvc := service.NewNotificationService(notificationRepo, broadcasts, metrics, validate, logr)
	pointsSvc := service.NewPointsService(pointsRepo, cacheSvc, metrics, validate, logr, service.PointsConfig{CacheTTL: cfg.Points.CacheTTL})

	engine := router.New(
		router.Config{
			APIPrefix:      cfg.APIPrefix,
			AuthRequired:   cfg.Auth.Required,
			EnableDocs:     cfg.Env != config.EnvProduction,
			AllowedOrigins: cfg.CORS.AllowedOrigins,
		},
		router.Handlers{
			Auth:          handler.NewAuthHandler(authSvc),
			Users:         handler.NewUserHandler(userSvc),
			Events:        handler.NewEventHandler(eventSvc),
			Registrations: handler.NewRegistrationHandler(registrationSvc),
			Notifications: handler.NewNotificationHandler(notificationSvc),
			Points:        handler.NewPointsHandler(pointsSvc),
			Metrics:       handler.NewMetricsHandler(metrics, db),
		},
		authSvc,
		metrics,
		logr,
	)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           engine,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logr.Info("shutdown signal received")
	case err := <-errCh:
		logr.Error("server failed", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
	logr.Info("server stopped")
}
