package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/astrein-exzellent/lagerhub-backend/api/routes"
	"github.com/astrein-exzellent/lagerhub-backend/internal/auth"
	"github.com/astrein-exzellent/lagerhub-backend/internal/exports"
	"github.com/astrein-exzellent/lagerhub-backend/internal/inventory"
	"github.com/astrein-exzellent/lagerhub-backend/internal/movements"
	"github.com/astrein-exzellent/lagerhub-backend/internal/reservations"
	"github.com/astrein-exzellent/lagerhub-backend/internal/support"
	"github.com/astrein-exzellent/lagerhub-backend/internal/users"
	"github.com/astrein-exzellent/lagerhub-backend/pkg/auth/session"
	"github.com/astrein-exzellent/lagerhub-backend/pkg/config"
	"github.com/astrein-exzellent/lagerhub-backend/pkg/db"
	"github.com/astrein-exzellent/lagerhub-backend/pkg/logger"
	"github.com/astrein-exzellent/lagerhub-backend/pkg/mailer"
	"github.com/astrein-exzellent/lagerhub-backend/pkg/migrate"
	"github.com/astrein-exzellent/lagerhub-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	userRepo := users.NewRepository(dbClient.DB())
	itemRepo := inventory.NewItemRepository(dbClient.DB())
	movementRepo := movements.NewRepository(dbClient.DB())
	reservationRepo := reservations.NewRepository(dbClient.DB())
	historyRepo := reservations.NewHistoryRepository(dbClient.DB())
	supportRepo := support.NewRepository(dbClient.DB())

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       userRepo,
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	userService, err := users.NewService(userRepo, cfg.Password)
	if err != nil {
		logg.Error(context.Background(), "failed to create user service", err)
		os.Exit(1)
	}

	inventoryService, err := inventory.NewService(dbClient, itemRepo, movementRepo, reservationRepo, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create inventory service", err)
		os.Exit(1)
	}

	reservationService, err := reservations.NewService(dbClient, itemRepo, reservationRepo, historyRepo, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create reservation service", err)
		os.Exit(1)
	}

	exportService, err := exports.NewService(itemRepo, movementRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create export service", err)
		os.Exit(1)
	}

	var sender mailer.Sender
	if smtpMailer := mailer.New(cfg.SMTP); smtpMailer != nil {
		sender = smtpMailer
	}
	supportService, err := support.NewService(supportRepo, sender, cfg.SMTP.AdminEmail, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create support service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			redisClient,
			sessionManager,
			authService,
			inventoryService,
			reservationService,
			movementRepo,
			exportService,
			userService,
			supportService,
		),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
