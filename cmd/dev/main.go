package main

import (
	"context"
	"log"
	"time"

	"focusgate/adapters/memory"
	"focusgate/app"
	"focusgate/internal"
	"focusgate/models"
	"focusgate/ports"
	"focusgate/ui"

	"github.com/gin-gonic/gin"
)

// devGate logs instead of calling a remote API
type devGate struct {
	logger *internal.Logger
}

func (g *devGate) Block(ctx context.Context) error {
	g.logger.Info("dev gate: block")
	return nil
}

func (g *devGate) Unblock(ctx context.Context) error {
	g.logger.Info("dev gate: unblock")
	return nil
}

var _ ports.Gate = (*devGate)(nil)

// Dev server: in-memory stores, no Postgres or gate credentials needed.
// Useful for poking at the state machine with curl.
func main() {
	logger := internal.NewLogger(internal.LogLevelDebug)

	defaults := &models.Settings{
		DailyCap:            6,
		HardMax:             8,
		EveningCutoff:       "21:30",
		RabbitHoleThreshold: 3,
		SessionMinutes:      25,
		ShortBreakMinutes:   5,
		LongBreakMinutes:    15,
	}

	service := app.NewFocusService(
		memory.NewSessionRepository(),
		memory.NewStateRepository(),
		&devGate{logger: logger},
		defaults,
		logger,
	)

	ctx := context.Background()
	reconciler := app.NewReconciler(service, logger, 5*time.Second, 10*time.Second)
	reconciler.Startup(ctx)
	go reconciler.Run(ctx)

	server := ui.NewServer(service, logger, gin.DebugMode)
	if err := server.Run(":8080"); err != nil {
		log.Fatalf("Dev server failed: %v", err)
	}
}
