package main

import (
	"context"
	"flag"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
)

// Entry point for the growbox pump and light controller
func main() {
	var configPath string
	flag.StringVar(&configPath, "config", defaultConfigPath, "Path to configuration file")
	flag.StringVar(&configPath, "c", defaultConfigPath, "Path to configuration file (shorthand)")
	flag.Parse()

	cfg, err := LoadConfig(configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	logFile, err := setupLogging(cfg.Log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to set up logging")
	}
	log.Info().Str("config", configPath).Msg("Starting growbox")

	driver, err := newDriver(cfg.GPIO)
	if err != nil {
		log.Error().Err(err).Str("driver", cfg.GPIO.Driver).Msg("Failed to open GPIO")
		logFile.Close()
		os.Exit(1)
	}

	if err := run(signalContext(), cfg, driver); err != nil {
		log.Error().Err(err).Msg("growbox exited")
		logFile.Close()
		os.Exit(1)
	}
	logFile.Close()
}

// run claims the pins, binds the listener and serves until ctx is cancelled.
// Pins are claimed before the listener exists, so a hardware failure never
// leaves a server accepting commands it cannot carry out.
func run(ctx context.Context, cfg Config, driver PinDriver) error {
	pins, err := NewPinController(driver, cfg.GPIO.Pins)
	if err != nil {
		return err
	}
	defer pins.Shutdown()

	page, err := newLandingPage(cfg.Page)
	if err != nil {
		return fmt.Errorf("landing page template: %w", err)
	}

	ln, err := net.Listen("tcp", cfg.HTTP.Addr())
	if err != nil {
		return fmt.Errorf("listen on %s: %w", cfg.HTTP.Addr(), err)
	}

	srv := NewServer(cfg.HTTP, pins, page)
	if err := srv.Serve(ctx, ln); err != nil {
		return err
	}
	log.Info().Msg("Shut down, releasing pins")
	return nil
}

// signalContext returns a context that is cancelled on SIGINT or SIGTERM.
func signalContext() context.Context {
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		log.Warn().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	return ctx
}
