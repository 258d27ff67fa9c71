package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/Petrenko-Anton/HW-13-REST/internal/app"
	"github.com/Petrenko-Anton/HW-13-REST/internal/config"
	"github.com/Petrenko-Anton/HW-13-REST/internal/utils/logger"
)

func main() {
	// A missing .env is fine; real deployments pass the environment directly.
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	zapLogger, err := logger.NewLogger(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer zapLogger.Sync() //nolint:errcheck

	application, err := app.New(context.Background(), cfg, zapLogger)
	if err != nil {
		zapLogger.Fatal("failed to initialize application", zap.Error(err))
	}

	if err := application.Run(); err != nil {
		zapLogger.Fatal("server error", zap.Error(err))
	}
}
