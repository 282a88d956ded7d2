package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/cristianadrielbraun/avatarstudio/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cli.NewApp().Execute(ctx, os.Args[1:]); err != nil {
		stop()
		os.Exit(1)
	}
}
