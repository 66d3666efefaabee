package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-co-op/gocron"

	"bably/internal/config"
	"bably/internal/database"
	"bably/internal/handlers"
	"bably/internal/health"
	"bably/internal/logger"
	"bably/internal/metrics"
	"bably/internal/repository"
	"bably/internal/security"
	"bably/internal/service"
	"bably/internal/validation"
	"bably/migrations"
)

func main() {
	// Load configuration
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logg := logger.New(cfg.LogLevel, cfg.Debug)
	defer logg.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize database with config (supports sqlite, postgres, mysql)
	db, err := database.InitializeWithConfig(cfg)
	if err != nil {
		logg.Fatalw("Failed to initialize database", "error", err)
	}
	defer db.Close()
	logg.Infow("Database connection established", "type", db.Dialect.Name())

	if err := db.RunMigrations(ctx, migrations.FS, logg); err != nil {
		logg.Fatalw("Failed to run migrations", "error", err)
	}

	hasher := security.NewHasher(cfg.BcryptCost)
	tokens := security.NewTokenManager(cfg.SecretKey, cfg.TokenTTL)
	demo := security.NewDemoPolicy(cfg.DemoEmail)
	validator := validation.New()

	if cfg.SeedDemo {
		if err := service.SeedDemo(ctx, db, demo, hasher, logg); err != nil {
			logg.Warnw("Failed to seed demo account", "error", err)
		}
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	infantRepo := repository.NewInfantRepository(db)
	accessRepo := repository.NewAccessRepository(db)
	invitationRepo := repository.NewInvitationRepository(db)
	feedRepo := repository.NewFeedRepository(db)
	diaperRepo := repository.NewDiaperRepository(db)

	// External collaborators
	emailService, err := service.NewEmailService(ctx, cfg.AWSRegion, cfg.SESFromEmail, cfg.SESFromName, cfg.AppHost, logg)
	if err != nil {
		logg.Fatalw("Failed to initialize email service", "error", err)
	}
	pushService := service.NewPushService(cfg.BeamsInstanceID, cfg.BeamsSecretKey, logg)

	scheduler := gocron.NewScheduler(time.UTC)
	scheduler.TagsUnique()
	scheduler.StartAsync()
	defer scheduler.Stop()
	dispatcher := service.NewSchedulerDispatcher(scheduler, pushService, logg)

	// Initialize services
	accessService := service.NewAccessService(accessRepo, demo)
	invitationService := service.NewInvitationService(userRepo, invitationRepo, accessService, emailService, validator, logg)
	authService := service.NewAuthService(userRepo, infantRepo, invitationService, hasher, tokens, emailService, validator, logg)
	infantService := service.NewInfantService(db, infantRepo, accessRepo, accessService, validator, logg)
	reminderService := service.NewReminderService(userRepo, dispatcher, logg)
	feedService := service.NewFeedService(feedRepo, infantRepo, accessService, reminderService, pushService, validator, logg)
	diaperService := service.NewDiaperService(diaperRepo, infantRepo, accessService, pushService, validator, logg)
	reportService := service.NewReportService(feedService, diaperService, accessService, service.NewDemoData(cfg.Location()))

	// Register, login and reset are limited per client IP
	limiter := security.NewRateLimiter(10, time.Minute)
	defer limiter.Stop()
	m := metrics.New()

	router := handlers.NewRouter(handlers.NewMiddleware(tokens, demo, limiter, m, logg), handlers.Handlers{
		Users:   handlers.NewUserHandler(authService, accessService, pushService, logg),
		Infants: handlers.NewInfantHandler(infantService, reportService, accessService, invitationService, logg),
		Feeds:   handlers.NewFeedHandler(feedService, m, logg),
		Diapers: handlers.NewDiaperHandler(diaperService, m, logg),
		Health:  handlers.NewHealthHandler(health.NewChecker(db.DB)),
		Metrics: m.Handler(),
	}, cfg.AppHost)

	// Start server
	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logg.Infow("Server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Fatalw("Server failed", "error", err)
		}
	}()

	// Wait for interrupt signal
	<-ctx.Done()
	logg.Info("Server shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logg.Errorw("Graceful shutdown failed", "error", err)
		os.Exit(1)
	}
}
