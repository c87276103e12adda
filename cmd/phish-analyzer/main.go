package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/mikey/llm-phish-analyzer/internal/adapters/filter"
	"github.com/mikey/llm-phish-analyzer/internal/adapters/httpapi"
	"github.com/mikey/llm-phish-analyzer/internal/di"
	"github.com/mikey/llm-phish-analyzer/internal/factory"
	"go.uber.org/zap"
)

const shutdownTimeout = 15 * time.Second

func main() {
	configPath := flag.String("config", "", "Path to config file")
	flag.Parse()

	// A missing .env file is fine; the environment may already be set.
	_ = godotenv.Load()

	// Build the dependency injection container
	container, err := di.BuildContainer(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to build dependency container: %v\n", err)
		os.Exit(1)
	}

	// Run the application
	if err := container.Invoke(run); err != nil {
		fmt.Fprintf(os.Stderr, "Application error: %v\n", err)
		os.Exit(1)
	}
}

// run is the main application function that gets all dependencies injected
func run(
	logger *zap.Logger,
	server *httpapi.Server,
	smtpFilter *filter.SMTPFilter,
	classifiers *factory.ClassifierFactory,
	cacheRepo factory.StoppableCache,
) error {
	defer logger.Sync()

	if err := server.Start(); err != nil {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}
	if smtpFilter != nil {
		if err := smtpFilter.Start(); err != nil {
			return fmt.Errorf("failed to start SMTP filter: %w", err)
		}
	}

	// Handle graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("Shutting down...", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Stop(ctx); err != nil {
		logger.Error("Failed to stop HTTP server", zap.Error(err))
	}
	if smtpFilter != nil {
		if err := smtpFilter.Stop(); err != nil {
			logger.Error("Failed to stop SMTP filter", zap.Error(err))
		}
	}

	if err := classifiers.Close(); err != nil {
		logger.Error("Failed to close classification client", zap.Error(err))
	}
	if cacheRepo != nil {
		cacheRepo.Stop()
	}

	logger.Info("Shutdown complete")
	return nil
}
