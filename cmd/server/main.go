package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"soltip/internal/config"
	"soltip/internal/middleware"
	"soltip/internal/server"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		middleware.Logger.Error("Failed to load configuration", "error", err.Error())
		os.Exit(1)
	}

	srv, err := server.NewServer(cfg)
	if err != nil {
		middleware.Logger.Error("Failed to initialize server", "error", err.Error())
		os.Exit(1)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			middleware.Logger.Error("Server error", "error", err.Error())
			os.Exit(1)
		}
	case sig := <-quit:
		middleware.Logger.Info("Shutdown signal received", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		middleware.Logger.Error("Error during shutdown", "error", err.Error())
		os.Exit(1)
	}
}
