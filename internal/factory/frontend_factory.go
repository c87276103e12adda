package factory

import (
	"fmt"

	"github.com/mikey/llm-phish-analyzer/internal/adapters/filter"
	"github.com/mikey/llm-phish-analyzer/internal/adapters/httpapi"
	"github.com/mikey/llm-phish-analyzer/internal/config"
	"github.com/mikey/llm-phish-analyzer/internal/core"
	"go.uber.org/zap"
)

// FrontendFactory creates the daemon's network front ends
type FrontendFactory struct {
	cfg      *config.Config
	logger   *zap.Logger
	analyzer *core.AnalyzerService
}

// NewFrontendFactory creates a new front end factory
func NewFrontendFactory(cfg *config.Config, logger *zap.Logger, analyzer *core.AnalyzerService) *FrontendFactory {
	return &FrontendFactory{
		cfg:      cfg,
		logger:   logger,
		analyzer: analyzer,
	}
}

// CreateHTTPServer creates the HTTP server. backend answers /api/classify.
func (f *FrontendFactory) CreateHTTPServer(backend core.ClassificationService) (*httpapi.Server, error) {
	readTimeout, err := f.cfg.GetDuration("server.read_timeout")
	if err != nil {
		return nil, err
	}
	writeTimeout, err := f.cfg.GetDuration("server.write_timeout")
	if err != nil {
		return nil, err
	}

	return httpapi.NewServer(
		f.analyzer,
		backend,
		f.logger,
		f.cfg.GetString("server.listen_address"),
		readTimeout,
		writeTimeout,
	), nil
}

// CreateSMTPFilter creates the SMTP content filter, or nil when it is disabled
func (f *FrontendFactory) CreateSMTPFilter() (*filter.SMTPFilter, error) {
	smtpCfg, err := f.cfg.GetSMTP()
	if err != nil {
		return nil, err
	}
	if !smtpCfg.Enabled {
		return nil, nil
	}
	if smtpCfg.RelayEnabled && (smtpCfg.RelayAddress == "" || smtpCfg.RelayPort <= 0) {
		return nil, fmt.Errorf("invalid SMTP relay address %s:%d", smtpCfg.RelayAddress, smtpCfg.RelayPort)
	}

	return filter.NewSMTPFilter(f.analyzer, f.logger, smtpCfg), nil
}
