package core

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/mikey/llm-phish-analyzer/internal/utils"
	"go.uber.org/zap"
)

// SenderAllowlist reports whether a sender belongs to a trusted domain
type SenderAllowlist interface {
	// Match returns the matched domain when the sender is trusted
	Match(sender string) (string, bool)
}

// AnalyzerOptions tunes the analyzer service
type AnalyzerOptions struct {
	CacheEnabled bool
	CacheTTL     time.Duration
	MaxBodySize  int
}

// AnalyzerService is the core service for phishing analysis
type AnalyzerService struct {
	classifier    ClassificationService
	cache         CacheRepository
	allowlist     SenderAllowlist
	textProcessor *utils.TextProcessor
	logger        *zap.Logger
	opts          AnalyzerOptions
	now           func() time.Time
}

// NewAnalyzerService creates a new analyzer service.
// cache and allowlist may be nil.
func NewAnalyzerService(
	classifier ClassificationService,
	cache CacheRepository,
	allowlist SenderAllowlist,
	textProcessor *utils.TextProcessor,
	logger *zap.Logger,
	opts AnalyzerOptions,
) *AnalyzerService {
	if cache == nil {
		opts.CacheEnabled = false
	}
	return &AnalyzerService{
		classifier:    classifier,
		cache:         cache,
		allowlist:     allowlist,
		textProcessor: textProcessor,
		logger:        logger.Named("analyzer"),
		opts:          opts,
		now:           time.Now,
	}
}

// ComposeEmailText renders an email the way it is sent to the classification service
func ComposeEmailText(email *Email, body string) string {
	return fmt.Sprintf("Subject: %s\nFrom: %s\nBody: %s", email.Subject, email.Sender, body)
}

// CacheKey returns the cache key for a composed email text
func CacheKey(emailText string) string {
	sum := sha256.Sum256([]byte(emailText))
	return hex.EncodeToString(sum[:])
}

// AnalyzeCurrent runs a full request: fetch the current message, classify it
// and hand the outcome to the presenter. Failures are shown through
// presenter.ShowError and returned as *AnalysisError.
func (s *AnalyzerService) AnalyzeCurrent(ctx context.Context, provider MessageProvider, presenter Presenter) (*AnalysisResult, error) {
	result, err := s.analyzeCurrent(ctx, provider)
	if err != nil {
		s.logger.Error("Analysis failed", zap.Error(err))
		if showErr := presenter.ShowError(err); showErr != nil {
			s.logger.Error("Failed to present error", zap.Error(showErr))
		}
		return nil, err
	}

	if err := presenter.Show(result); err != nil {
		return result, fmt.Errorf("failed to present result: %w", err)
	}
	return result, nil
}

func (s *AnalyzerService) analyzeCurrent(ctx context.Context, provider MessageProvider) (*AnalysisResult, error) {
	email, err := provider.GetCurrentMessage(ctx)
	if err != nil {
		return nil, wrapAnalysisError(err)
	}
	return s.AnalyzeEmail(ctx, email)
}

// trustedDomain matches the From sender against the allowlist. The From
// header is sender-controlled, so when an envelope sender is known it must
// be trusted as well.
func (s *AnalyzerService) trustedDomain(email *Email) (string, bool) {
	domain, ok := s.allowlist.Match(email.Sender)
	if !ok || email.EnvelopeSender == "" {
		return domain, ok
	}
	if _, envOK := s.allowlist.Match(email.EnvelopeSender); !envOK {
		s.logger.Warn("Trusted From domain with untrusted envelope sender",
			zap.String("sender", email.Sender),
			zap.String("envelope_sender", email.EnvelopeSender),
			zap.String("domain", domain))
		return "", false
	}
	return domain, true
}

// AnalyzeEmail classifies a single email
func (s *AnalyzerService) AnalyzeEmail(ctx context.Context, email *Email) (*AnalysisResult, error) {
	if email.Timestamp.IsZero() {
		email.Timestamp = s.now()
	}

	if s.allowlist != nil {
		if domain, ok := s.trustedDomain(email); ok {
			s.logger.Info("Skipping classification for trusted domain",
				zap.String("sender", email.Sender),
				zap.String("domain", domain),
				zap.String("action", "allowlist_bypass"))

			result := ParseResponse(trustedReport(domain))
			return &result, nil
		}
	}

	body := email.Body
	if s.textProcessor != nil {
		body = s.textProcessor.ProcessText(body, s.opts.MaxBodySize)
	}

	s.logger.Debug("Analyzing email",
		zap.String("sender", email.Sender),
		zap.String("subject", email.Subject),
		zap.String("body_preview", utils.Preview(body, 100)))

	return s.AnalyzeText(ctx, ComposeEmailText(email, body))
}

// AnalyzeText classifies already composed email text
func (s *AnalyzerService) AnalyzeText(ctx context.Context, emailText string) (*AnalysisResult, error) {
	key := CacheKey(emailText)

	if s.opts.CacheEnabled {
		if entry, err := s.cache.Get(ctx, key); err == nil {
			s.logger.Debug("Cache hit for email", zap.String("key", key))
			result := ParseResponse(entry.Report)
			return &result, nil
		}
	}

	start := s.now()
	report, err := s.classifier.Analyze(ctx, emailText)
	if err != nil {
		return nil, wrapAnalysisError(err)
	}

	result := ParseResponse(report)
	s.logger.Info("Email classified",
		zap.String("classification", string(result.Classification)),
		zap.String("risk", string(result.Risk())),
		zap.Int("confidence", result.Confidence),
		zap.Duration("duration", s.now().Sub(start)))

	if s.opts.CacheEnabled {
		now := s.now()
		entry := &CacheEntry{
			Key:       key,
			Report:    report,
			CreatedAt: now,
			ExpiresAt: now.Add(s.opts.CacheTTL),
		}
		if err := s.cache.Set(ctx, entry); err != nil {
			s.logger.Error("Failed to update cache", zap.Error(err))
		}
	}

	return &result, nil
}

func trustedReport(domain string) string {
	return fmt.Sprintf("Classification: Legitimate\nConfidence: 100\nExplanation: Sender domain %s is trusted", domain)
}

func wrapAnalysisError(err error) error {
	var analysisErr *AnalysisError
	if errors.As(err, &analysisErr) {
		return err
	}
	return newAnalysisError(err)
}
