package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/cristianadrielbraun/avatarstudio/internal/config"
	"github.com/cristianadrielbraun/avatarstudio/internal/server"
)

func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		log.Fatal(err)
	}
	logger := cfg.NewLogger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := server.Run(ctx, cfg, logger); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
