package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	clts "botdeck/clients"
	"botdeck/config"
	"botdeck/internal/app"
	"botdeck/internal/ui"
)

func main() {
	// .env is optional; real environments set variables directly.
	godotenv.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	// Load config from environment variables
	envConfig := config.Load()
	logger.Info("starting botdeck",
		zap.Bool("isProd", envConfig.IsProd),
		zap.Int("bots", len(envConfig.Panel.Bots)),
	)

	if result := envConfig.Validate(); !result.Valid {
		err := &config.ConfigValidationError{Errors: result.Errors}
		logger.Fatal("invalid configuration", zap.Error(err))
	}

	// Create LiveConfig with env config as initial value
	liveConfig := config.NewLiveConfig(envConfig)

	logger.Info("instantiating clients")
	clients := clts.NewClients(logger, envConfig)

	ctx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGINT,
		syscall.SIGTERM,
	)
	defer stop()

	surfaces := func(botID string, fields *app.FieldMap) app.Surface {
		return ui.NewTermSurface(os.Stdout, botID, fields)
	}

	panel := app.NewPanel(clients, liveConfig, surfaces, nil)
	if err := panel.Run(ctx); err != nil {
		logger.Fatal("panel failed", zap.Error(err))
	}
}
