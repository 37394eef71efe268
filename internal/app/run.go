package app

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"webhook-gatekeeper/internal/common/logging"
	"webhook-gatekeeper/internal/config"
)

const shutdownTimeout = 30 * time.Second

// Run is the main entry point for the application
func Run() error {
	var envFile string
	flag.StringVar(&envFile, "env-file", ".env", "Optional dotenv file loaded before reading the environment")
	flag.Parse()

	// Variables already set in the environment take precedence
	_ = godotenv.Load(envFile)

	cfg := config.Load()

	logCloser, err := logging.InitGlobalLogger(cfg.LogLevel, cfg.LogFile, cfg.LogFormat == "json")
	if err != nil {
		return err
	}
	defer logCloser.Close()
	defer logging.MustSync()

	if err := cfg.Validate(); err != nil {
		logging.Error("Configuration validation failed", err)
		return err
	}

	logging.Info("Starting webhook gatekeeper", cfg.LogFields()...)

	app, err := New(cfg)
	if err != nil {
		logging.Error("Failed to initialize application", err)
		return err
	}

	srv := app.NewServer()
	serveErr, err := srv.Start()
	if err != nil {
		logging.Error("Server failed to start", err)
		return err
	}
	logging.Info("Listening", logging.String("addr", srv.Addr()))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case sig := <-quit:
		logging.Info("Shutting down server...", logging.String("signal", sig.String()))
	case err := <-serveErr:
		if err != nil {
			logging.Error("Server stopped unexpectedly", err)
			return err
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	// Stop accepting deliveries first; in-flight forwards finish before Shutdown returns
	if err := srv.Shutdown(ctx); err != nil {
		logging.Error("Server forced to shutdown", err)
		return err
	}

	if err := app.Shutdown(ctx); err != nil {
		logging.Warn("Error during app shutdown", logging.Err(err))
	}

	logging.Info("Server exited")
	return nil
}
