package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/mikey/llm-phish-analyzer/internal/core"
	"github.com/mikey/llm-phish-analyzer/internal/di"
	"github.com/mikey/llm-phish-analyzer/internal/factory"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()

	flags, err := di.ParseFlags(os.Args[1:])
	if err != nil {
		os.Exit(2)
	}

	container, err := di.BuildCLIContainer(flags, os.Stdin, os.Stdout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to build dependency container: %v\n", err)
		os.Exit(1)
	}

	if err := container.Invoke(run); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run analyzes the message once and prints the verdict
func run(
	logger *zap.Logger,
	analyzer *core.AnalyzerService,
	provider core.MessageProvider,
	presenter core.Presenter,
	classifiers *factory.ClassifierFactory,
	flags *di.CLIFlags,
) error {
	defer logger.Sync()
	defer func() {
		if err := classifiers.Close(); err != nil {
			logger.Error("Failed to close classification client", zap.Error(err))
		}
	}()

	if flags.InputFile != "" {
		logger.Info("Reading email from file", zap.String("file", flags.InputFile))
	} else {
		logger.Info("Reading email from stdin")
	}

	_, err := analyzer.AnalyzeCurrent(context.Background(), provider, presenter)
	return err
}
