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

	_ "github.com/campuswell/counsel-api/api/swagger"
	"github.com/campuswell/counsel-api/internal/handler"
	"github.com/campuswell/counsel-api/internal/repository"
	"github.com/campuswell/counsel-api/internal/service"
	"github.com/campuswell/counsel-api/pkg/cache"
	"github.com/campuswell/counsel-api/pkg/config"
	"github.com/campuswell/counsel-api/pkg/database"
	"github.com/campuswell/counsel-api/pkg/logger"
	"github.com/campuswell/counsel-api/pkg/storage"
)

// @title CampusWell Counsel API
// @version 1.0.0
// @description Campus mental-health counselling platform
// @BasePath /api/v1
// @schemes http

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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close() //nolint:errcheck

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, caching disabled", "error", err)
		redisClient = nil
	}

	// Repositories.
	userRepo := repository.NewUserRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	counsellorRepo := repository.NewCounsellorRepository(db)
	slotRepo := repository.NewTimeSlotRepository(db)
	appointmentRepo := repository.NewAppointmentRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	feedbackRepo := repository.NewFeedbackRepository(db)
	journalRepo := repository.NewJournalRepository(db)
	analyticsRepo := repository.NewAnalyticsRepository(db)
	reportRepo := repository.NewReportRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	validate := validator.New()
	metricsSvc := service.NewMetricsService()
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Analytics.CacheTTL, logr, cfg.Analytics.Enabled && redisClient != nil)

	// Services.
	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             "counsel-api",
	})
	identitySvc := service.NewIdentityService(studentRepo, userRepo, validate, logr, service.IdentityConfig{
		HandlePrefix:      cfg.Onboarding.HandlePrefix,
		HandleSuffixLen:   cfg.Onboarding.HandleSuffixLen,
		HandleMaxAttempts: cfg.Onboarding.HandleMaxAttempts,
	})
	availabilitySvc := service.NewAvailabilityService(slotRepo, validate, logr)
	appointmentSvc := service.NewAppointmentService(appointmentRepo, slotRepo, validate, logr)
	sessionSvc := service.NewSessionService(sessionRepo, studentRepo, appointmentRepo, feedbackRepo, userRepo, metricsSvc, validate, logr, service.SessionConfig{
		CheckInWindow: cfg.Sessions.CheckInWindow,
	})
	journalSvc := service.NewJournalService(journalRepo, validate, logr)
	counsellorSvc := service.NewCounsellorService(counsellorRepo, logr)
	analyticsSvc := service.NewAnalyticsService(analyticsRepo, cacheSvc, cfg.Analytics.CacheTTL, logr)

	var reportSvc *service.ReportService
	if cfg.Reports.Enabled {
		store, err := storage.NewLocalStorage(cfg.Reports.StorageDir)
		if err != nil {
			logr.Sugar().Fatalw("failed to prepare report storage", "error", err)
		}
		signer := storage.NewSignedURLSigner(cfg.Reports.SignedURLSecret, cfg.Reports.SignedURLTTL)
		reportSvc = service.NewReportService(reportRepo, userRepo, analyticsSvc, store, signer, logr, service.ReportConfig{
			StorageDir:      cfg.Reports.StorageDir,
			SignedURLTTL:    cfg.Reports.SignedURLTTL,
			CleanupInterval: cfg.Reports.CleanupInterval,
			WorkerCount:     cfg.Reports.WorkerConcurrency,
			WorkerRetries:   cfg.Reports.WorkerRetries,
		})
		reportSvc.Start(ctx)
		defer reportSvc.Stop()
	}

	router := handler.NewRouter(handler.RouterDeps{
		Config:  cfg,
		Logger:  logr,
		Auth:    authSvc,
		Metrics: metricsSvc,
		Users:   userRepo,

		AuthHandler:        handler.NewAuthHandler(authSvc, identitySvc),
		AppointmentHandler: handler.NewAppointmentHandler(appointmentSvc, availabilitySvc),
		SessionHandler:     handler.NewSessionHandler(sessionSvc),
		JournalHandler:     handler.NewJournalHandler(journalSvc),
		AnalyticsHandler:   handler.NewAnalyticsHandler(analyticsSvc, reportSvc),
		CounsellorHandler:  handler.NewCounsellorHandler(counsellorSvc),

		HealthCheck: func(c *gin.Context) {
			if err := db.PingContext(c.Request.Context()); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
				return
			}
			c.JSON(http.StatusOK, gin.H{"status": "ready"})
		},
	})

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
	if redisClient != nil {
		_ = cacheRepo.Close()
	}
	logr.Info("shutdown complete", zap.String("component", "main"))
}
