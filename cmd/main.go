package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"microblog/config"
	"microblog/internal/app"
	"microblog/pkg/logger"

	_ "github.com/joho/godotenv/autoload"
)

func main() {
	cfg := config.LoadConfig()

	log := logger.New(cfg.LogLevel)
	ctx := logger.WithLogger(context.Background(), log)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.NewApp(ctx, cfg)
	if err != nil {
		log.Error("app init failed", "error", err)
		os.Exit(1)
	}

	if err := a.Run(ctx); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
