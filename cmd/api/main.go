package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"focusgate/adapters/gate"
	"focusgate/adapters/postgres"
	"focusgate/app"
	"focusgate/internal"
	"focusgate/internal/config"
	"focusgate/ui"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := internal.NewDefaultLogger()

	db, err := sqlx.Connect("postgres", cfg.Database.URL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := postgres.NewMigrator(db).Up(ctx); err != nil {
		log.Fatalf("Failed to apply schema: %v", err)
	}

	sessionRepo := postgres.NewSessionRepository(db)
	stateRepo := postgres.NewStateRepository(db)
	gateAdapter := gate.NewNextDNSGate(cfg.Gate)
	if !cfg.Gate.Configured() {
		logger.Warn("distraction gate not configured, sessions will run without blocking")
	}

	service := app.NewFocusService(sessionRepo, stateRepo, gateAdapter, &cfg.Defaults, logger)

	reconciler := app.NewReconciler(service, logger, cfg.Reconciler.ExpiryInterval, cfg.Reconciler.CutoffInterval)
	reconciler.Startup(ctx)
	go reconciler.Run(ctx)

	authServer := ui.NewAuthCheckServer(service, logger)
	go func() {
		if err := authServer.Run(":" + cfg.Server.AuthPort); err != nil {
			log.Fatalf("Auth-check server failed: %v", err)
		}
	}()

	server := ui.NewServer(service, logger, cfg.Server.GinMode)
	if err := server.Run(":" + cfg.Server.Port); err != nil {
		log.Fatalf("API server failed: %v", err)
	}
}
