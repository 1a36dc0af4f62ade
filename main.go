package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"kicks/internal/config"
	"kicks/internal/flow"
	"kicks/internal/logging"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// serve runs the storefront server until SIGINT or SIGTERM.
func serve(cfg *config.Config) error {
	log := logging.New(cfg.Logging.Level, cfg.Logging.Format)

	rt, err := openDeps(cfg, log)
	if err != nil {
		return err
	}
	defer rt.Close()

	if err := rt.connectBroker(); err != nil {
		// The storefront works without events.
		log.WithError(err).Warn("Order events disabled")
	}

	front, catalog := rt.storefront(context.Background(), flow.TimerScheduler{})
	app := newApp(front, catalog, cfg.Server.StaticDir, log)

	// Graceful shutdown handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	errs := make(chan error, 1)
	go func() {
		log.Infof("KICKS server running on port %s", cfg.Server.Port)
		errs <- app.Listen(cfg.Server.Port)
	}()

	select {
	case err := <-errs:
		return fmt.Errorf("server failed to start: %w", err)
	case <-quit:
	}

	log.Info("Shutting down server...")
	if err := app.Shutdown(); err != nil {
		log.WithError(err).Error("Error during Fiber shutdown")
	}
	log.Info("Server gracefully stopped")
	return nil
}
