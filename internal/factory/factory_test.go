package factory

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/mikey/llm-phish-analyzer/internal/adapters/cache"
	"github.com/mikey/llm-phish-analyzer/internal/adapters/remote"
	"github.com/mikey/llm-phish-analyzer/internal/adapters/static"
	"github.com/mikey/llm-phish-analyzer/internal/config"
	"github.com/mikey/llm-phish-analyzer/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newConfig(values map[string]any) *config.Config {
	v := config.NewEmptyViper()
	for k, val := range values {
		v.Set(k, val)
	}
	return config.NewFromViper(v)
}

func TestClassifierFactory_Create(t *testing.T) {
	logger := zaptest.NewLogger(t)
	ctx := context.Background()

	t.Run("remote by default", func(t *testing.T) {
		f := NewClassifierFactory(newConfig(nil), logger)
		svc, err := f.CreateClassifier(ctx)
		require.NoError(t, err)
		assert.IsType(t, &remote.Client{}, svc)
	})

	t.Run("static report", func(t *testing.T) {
		f := NewClassifierFactory(newConfig(map[string]any{
			"classifier.provider": "static",
			"static.report":       "Classification: Safe",
		}), logger)
		svc, err := f.CreateClassifier(ctx)
		require.NoError(t, err)
		require.IsType(t, &static.Classifier{}, svc)

		report, err := svc.Analyze(ctx, "x")
		require.NoError(t, err)
		assert.Equal(t, core.ClassificationLegitimate, core.ParseResponse(report).Classification)
	})

	t.Run("openai with key", func(t *testing.T) {
		f := NewClassifierFactory(newConfig(map[string]any{
			"classifier.provider": "openai",
			"openai.api_key":      "sk-test",
		}), logger)
		_, err := f.CreateClassifier(ctx)
		require.NoError(t, err)
	})

	t.Run("missing api keys", func(t *testing.T) {
		for _, provider := range []string{ProviderOpenAI, ProviderGemini} {
			f := NewClassifierFactory(newConfig(nil), logger)
			_, err := f.Create(ctx, provider)
			assert.ErrorContains(t, err, "API key is required", provider)
		}
	})

	t.Run("empty remote endpoint", func(t *testing.T) {
		f := NewClassifierFactory(newConfig(map[string]any{"remote.endpoint": ""}), logger)
		_, err := f.CreateClassifier(ctx)
		assert.Error(t, err)
	})

	t.Run("unsupported provider", func(t *testing.T) {
		f := NewClassifierFactory(newConfig(map[string]any{"classifier.provider": "carrier-pigeon"}), logger)
		_, err := f.CreateClassifier(ctx)
		assert.ErrorContains(t, err, "unsupported classification provider")
	})
}

func TestClassifierFactory_CreateBackend(t *testing.T) {
	logger := zaptest.NewLogger(t)

	f := NewClassifierFactory(newConfig(nil), logger)
	svc, err := f.CreateBackend(context.Background())
	require.NoError(t, err)
	assert.IsType(t, &static.Classifier{}, svc)

	f = NewClassifierFactory(newConfig(map[string]any{"backend.provider": "remote"}), logger)
	_, err = f.CreateBackend(context.Background())
	assert.Error(t, err)
	assert.NoError(t, f.Close())
}

func TestCacheFactory(t *testing.T) {
	logger := zaptest.NewLogger(t)

	t.Run("memory", func(t *testing.T) {
		repo, err := NewCacheFactory(newConfig(nil), logger).CreateCacheRepository()
		require.NoError(t, err)
		defer repo.Stop()
		assert.IsType(t, &cache.MemoryCache{}, repo)
	})

	t.Run("sqlite", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nested", "cache.db")
		repo, err := NewCacheFactory(newConfig(map[string]any{
			"cache.type":        "sqlite",
			"cache.sqlite_path": path,
		}), logger).CreateCacheRepository()
		require.NoError(t, err)
		defer repo.Stop()
		assert.IsType(t, &cache.SQLiteCache{}, repo)
	})

	t.Run("disabled", func(t *testing.T) {
		repo, err := NewCacheFactory(newConfig(map[string]any{"cache.enabled": false}), logger).CreateCacheRepository()
		require.NoError(t, err)
		assert.Nil(t, repo)
	})

	t.Run("unsupported", func(t *testing.T) {
		_, err := NewCacheFactory(newConfig(map[string]any{"cache.type": "redis"}), logger).CreateCacheRepository()
		assert.ErrorContains(t, err, "unsupported cache type")
	})

	t.Run("ttl", func(t *testing.T) {
		ttl, err := NewCacheFactory(newConfig(map[string]any{"cache.ttl": "bogus"}), logger).GetCacheTTL()
		assert.Error(t, err)
		assert.Zero(t, ttl)
	})
}

func TestFrontendFactory(t *testing.T) {
	logger := zaptest.NewLogger(t)
	analyzer := core.NewAnalyzerService(static.NewClassifier("", logger), nil, nil, nil, logger, core.AnalyzerOptions{})

	f := NewFrontendFactory(newConfig(nil), logger, analyzer)
	smtpFilter, err := f.CreateSMTPFilter()
	require.NoError(t, err)
	assert.Nil(t, smtpFilter)

	server, err := f.CreateHTTPServer(static.NewClassifier("", logger))
	require.NoError(t, err)
	assert.NotNil(t, server)

	f = NewFrontendFactory(newConfig(map[string]any{
		"server.smtp.enabled":    true,
		"server.smtp.relay.port": 0,
	}), logger, analyzer)
	_, err = f.CreateSMTPFilter()
	assert.ErrorContains(t, err, "invalid SMTP relay address")

	f = NewFrontendFactory(newConfig(map[string]any{"server.smtp.enabled": true}), logger, analyzer)
	smtpFilter, err = f.CreateSMTPFilter()
	require.NoError(t, err)
	assert.NotNil(t, smtpFilter)
}
