package factory

import (
	"context"
	"fmt"
	"io"

	"github.com/mikey/llm-phish-analyzer/internal/adapters/bedrock"
	"github.com/mikey/llm-phish-analyzer/internal/adapters/gemini"
	"github.com/mikey/llm-phish-analyzer/internal/adapters/openai"
	"github.com/mikey/llm-phish-analyzer/internal/adapters/remote"
	"github.com/mikey/llm-phish-analyzer/internal/adapters/static"
	"github.com/mikey/llm-phish-analyzer/internal/config"
	"github.com/mikey/llm-phish-analyzer/internal/core"
	"go.uber.org/zap"
)

// Classification providers
const (
	ProviderRemote  = "remote"
	ProviderGemini  = "gemini"
	ProviderOpenAI  = "openai"
	ProviderBedrock = "bedrock"
	ProviderStatic  = "static"
)

// ClassifierFactory creates classification services
type ClassifierFactory struct {
	cfg     *config.Config
	logger  *zap.Logger
	closers []io.Closer
}

// NewClassifierFactory creates a new classifier factory
func NewClassifierFactory(cfg *config.Config, logger *zap.Logger) *ClassifierFactory {
	return &ClassifierFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateClassifier creates the service the analyzer talks to (classifier.provider)
func (f *ClassifierFactory) CreateClassifier(ctx context.Context) (core.ClassificationService, error) {
	return f.Create(ctx, f.cfg.GetString("classifier.provider"))
}

// CreateBackend creates the service behind the HTTP classification API
// (backend.provider). It may not be the remote client, which would call itself.
func (f *ClassifierFactory) CreateBackend(ctx context.Context) (core.ClassificationService, error) {
	provider := f.cfg.GetString("backend.provider")
	if provider == ProviderRemote {
		return nil, fmt.Errorf("backend provider cannot be %q", ProviderRemote)
	}
	return f.Create(ctx, provider)
}

// Create creates a classification service by provider name
func (f *ClassifierFactory) Create(ctx context.Context, provider string) (core.ClassificationService, error) {
	f.logger.Info("Creating classification service", zap.String("provider", provider))

	switch provider {
	case ProviderRemote:
		remoteCfg, err := f.cfg.GetRemote()
		if err != nil {
			return nil, err
		}
		if remoteCfg.Endpoint == "" {
			return nil, fmt.Errorf("remote endpoint is required")
		}
		return remote.NewClient(remoteCfg.Endpoint, remoteCfg.Timeout, f.logger), nil
	case ProviderGemini:
		client, err := gemini.NewFactory(f.cfg.GetGemini(), f.logger).CreateClient(ctx)
		if err != nil {
			return nil, err
		}
		f.closers = append(f.closers, client)
		return client, nil
	case ProviderOpenAI:
		return openai.NewFactory(f.cfg.GetOpenAI(), f.logger).CreateClient()
	case ProviderBedrock:
		return bedrock.NewFactory(f.cfg.GetBedrock(), f.logger).CreateClient(ctx)
	case ProviderStatic:
		return static.NewClassifier(f.cfg.GetString("static.report"), f.logger), nil
	default:
		return nil, fmt.Errorf("unsupported classification provider: %s", provider)
	}
}

// Close releases clients that hold connections
func (f *ClassifierFactory) Close() error {
	var firstErr error
	for _, c := range f.closers {
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	f.closers = nil
	return firstErr
}
