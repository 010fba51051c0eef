package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/vadimbarashkov/base62-shortener/internal/app"
	"github.com/vadimbarashkov/base62-shortener/internal/config"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if err := app.Run(ctx, cfg); err != nil {
		app.NewLogger(cfg.Log).Error("application stopped with error", "err", err)
		os.Exit(1)
	}
}
