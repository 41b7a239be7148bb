// ====================================
// File: cmd/launchd/main.go
// ====================================
package main

import (
	"context"
	"flag"
	"os"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/sames-engine/internal/config"
	"github.com/rovshanmuradov/sames-engine/internal/service"
	"github.com/rovshanmuradov/sames-engine/internal/utils"
)

func main() {
	configPath := flag.String("config", "configs/config.json", "path to configuration file")
	flag.Parse()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fallback, _ := zap.NewDevelopment()
		fallback.Fatal("Failed to load configuration", zap.Error(err))
		os.Exit(1)
	}

	logger, err := utils.InitLogger(cfg.DebugLogging, cfg.LogFile)
	if err != nil {
		fallback, _ := zap.NewDevelopment()
		fallback.Fatal("Failed to initialize logger", zap.Error(err))
		os.Exit(1)
	}
	defer logger.Sync()
	logger.Info("Starting launch engine")

	runner := service.NewRunner(cfg, logger)
	if err := runner.Initialize(nil, solana.PublicKey{}); err != nil {
		logger.Fatal("Failed to initialize launch engine", zap.Error(err))
		os.Exit(1)
	}

	if err := runner.Run(ctx); err != nil {
		logger.Fatal("Launch engine execution error", zap.Error(err))
		os.Exit(1)
	}
}
