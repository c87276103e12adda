package di

import (
	"context"

	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/mikey/llm-phish-analyzer/internal/adapters/filter"
	"github.com/mikey/llm-phish-analyzer/internal/adapters/httpapi"
	"github.com/mikey/llm-phish-analyzer/internal/config"
	"github.com/mikey/llm-phish-analyzer/internal/core"
	"github.com/mikey/llm-phish-analyzer/internal/factory"
	"github.com/mikey/llm-phish-analyzer/internal/logging"
	"github.com/mikey/llm-phish-analyzer/internal/utils"
	"github.com/mikey/llm-phish-analyzer/internal/whitelist"
)

// Classifiers holds the analyzer's classification service and the backend
// served by the HTTP classification API
type Classifiers struct {
	dig.Out

	Classifier core.ClassificationService
	Backend    core.ClassificationService `name:"backend"`
}

type frontendParams struct {
	dig.In

	Factory *factory.FrontendFactory
	Backend core.ClassificationService `name:"backend"`
}

// BuildContainer creates and configures the daemon's dependency injection
// container. An empty configPath searches the default locations.
func BuildContainer(configPath string) (*dig.Container, error) {
	container := dig.New()

	// Register configuration
	if err := container.Provide(func() (*config.Config, error) {
		return config.Load(configPath)
	}); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(logging.InitLogger); err != nil {
		return nil, err
	}

	if err := registerAnalysis(container); err != nil {
		return nil, err
	}

	// Register classification services
	if err := container.Provide(func(f *factory.ClassifierFactory) (Classifiers, error) {
		ctx := context.Background()
		classifier, err := f.CreateClassifier(ctx)
		if err != nil {
			return Classifiers{}, err
		}
		backend, err := f.CreateBackend(ctx)
		if err != nil {
			return Classifiers{}, err
		}
		return Classifiers{Classifier: classifier, Backend: backend}, nil
	}); err != nil {
		return nil, err
	}

	// Register cache repository
	if err := container.Provide(func(f *factory.CacheFactory) (factory.StoppableCache, error) {
		return f.CreateCacheRepository()
	}); err != nil {
		return nil, err
	}

	// Register analyzer options
	if err := container.Provide(func(cfg *config.Config, f *factory.CacheFactory) (core.AnalyzerOptions, error) {
		ttl, err := f.GetCacheTTL()
		if err != nil {
			return core.AnalyzerOptions{}, err
		}
		return core.AnalyzerOptions{
			CacheEnabled: f.IsCacheEnabled(),
			CacheTTL:     ttl,
			MaxBodySize:  cfg.GetAnalysis().MaxBodySize,
		}, nil
	}); err != nil {
		return nil, err
	}

	// Register front ends
	if err := container.Provide(factory.NewFrontendFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(func(p frontendParams) (*httpapi.Server, error) {
		return p.Factory.CreateHTTPServer(p.Backend)
	}); err != nil {
		return nil, err
	}
	if err := container.Provide(func(f *factory.FrontendFactory) (*filter.SMTPFilter, error) {
		return f.CreateSMTPFilter()
	}); err != nil {
		return nil, err
	}

	return container, nil
}

// registerAnalysis registers the pieces shared by the daemon and the CLI
func registerAnalysis(container *dig.Container) error {
	// Register factories
	if err := container.Provide(factory.NewClassifierFactory); err != nil {
		return err
	}
	if err := container.Provide(factory.NewCacheFactory); err != nil {
		return err
	}

	// Register text processor
	if err := container.Provide(utils.NewTextProcessor); err != nil {
		return err
	}

	// Register trusted domains
	if err := container.Provide(func(cfg *config.Config, logger *zap.Logger) *whitelist.Checker {
		return whitelist.NewChecker(cfg.GetAnalysis().TrustedDomains, logger)
	}); err != nil {
		return err
	}

	// Register analyzer service
	return container.Provide(func(
		classifier core.ClassificationService,
		cache factory.StoppableCache,
		checker *whitelist.Checker,
		textProcessor *utils.TextProcessor,
		logger *zap.Logger,
		opts core.AnalyzerOptions,
	) *core.AnalyzerService {
		var repo core.CacheRepository
		if cache != nil {
			repo = cache
		}
		return core.NewAnalyzerService(classifier, repo, checker, textProcessor, logger, opts)
	})
}
