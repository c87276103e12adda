// Package filter implements an SMTP content filter that stamps phishing
// verdicts onto messages before relaying them downstream.
package filter

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/emersion/go-message"
	"github.com/emersion/go-message/mail"
	"github.com/emersion/go-message/textproto"
	"github.com/emersion/go-smtp"
	"github.com/mikey/llm-phish-analyzer/internal/adapters/mailbox"
	"github.com/mikey/llm-phish-analyzer/internal/config"
	"github.com/mikey/llm-phish-analyzer/internal/core"
	"go.uber.org/zap"
)

// DefaultSubjectPrefix is used when subject rewriting is on and no prefix is configured
const DefaultSubjectPrefix = "[PHISHING] "

// Verdict is the outcome of filtering one message
type Verdict struct {
	Result   *core.AnalysisResult
	Err      error
	Rejected bool
	Message  []byte
}

// SMTPFilter is an SMTP content filter
type SMTPFilter struct {
	analyzer *core.AnalyzerService
	logger   *zap.Logger
	cfg      config.SMTPConfig
	server   *smtp.Server
	relay    func(from string, to []string, data []byte) error
}

// NewSMTPFilter creates a new SMTP content filter
func NewSMTPFilter(analyzer *core.AnalyzerService, logger *zap.Logger, cfg config.SMTPConfig) *SMTPFilter {
	if cfg.SubjectPrefix == "" && cfg.ModifySubject {
		cfg.SubjectPrefix = DefaultSubjectPrefix
	}
	if cfg.AnalysisTimeout <= 0 {
		cfg.AnalysisTimeout = 30 * time.Second
	}

	f := &SMTPFilter{
		analyzer: analyzer,
		logger:   logger.Named("smtp_filter"),
		cfg:      cfg,
	}
	f.relay = f.sendToRelay
	return f
}

// Start starts the SMTP listener
func (f *SMTPFilter) Start() error {
	f.server = smtp.NewServer(&smtpBackend{filter: f})
	f.server.Addr = f.cfg.ListenAddress
	f.server.Domain = "localhost"
	f.server.ReadTimeout = 30 * time.Second
	f.server.WriteTimeout = 30 * time.Second
	f.server.MaxMessageBytes = 30 * 1024 * 1024
	f.server.MaxRecipients = 50

	f.logger.Info("SMTP filter starting",
		zap.String("address", f.cfg.ListenAddress),
		zap.Bool("block_phishing", f.cfg.BlockPhishing),
		zap.Bool("relay_enabled", f.cfg.RelayEnabled))

	go func() {
		if err := f.server.ListenAndServe(); err != nil && err != smtp.ErrServerClosed {
			f.logger.Error("SMTP server error", zap.Error(err))
		}
	}()

	return nil
}

// Stop stops the SMTP listener
func (f *SMTPFilter) Stop() error {
	if f.server != nil {
		return f.server.Close()
	}
	return nil
}

// ProcessMessage analyzes a raw message and returns it with verdict headers.
// envelopeFrom is used as the sender when the message has no From header.
func (f *SMTPFilter) ProcessMessage(ctx context.Context, envelopeFrom string, raw []byte) (*Verdict, error) {
	br := bufio.NewReader(bytes.NewReader(raw))
	header, err := textproto.ReadHeader(br)
	if err != nil {
		return nil, fmt.Errorf("failed to read message header: %w", err)
	}
	body, err := io.ReadAll(br)
	if err != nil {
		return nil, fmt.Errorf("failed to read message body: %w", err)
	}

	mh := &mail.Header{Header: message.Header{Header: header}}
	stamper := newHeaderPresenter(mh, f.cfg.ModifySubject, f.cfg.SubjectPrefix)
	provider := &envelopeProvider{raw: raw, envelopeFrom: envelopeFrom}

	ctx, cancel := context.WithTimeout(ctx, f.cfg.AnalysisTimeout)
	defer cancel()

	verdict := &Verdict{}
	verdict.Result, verdict.Err = f.analyzer.AnalyzeCurrent(ctx, provider, stamper)
	if verdict.Err != nil {
		f.logger.Warn("Passing message through after analysis failure",
			zap.String("envelope_from", envelopeFrom),
			zap.Error(verdict.Err))
	}

	if verdict.Result != nil && verdict.Result.IsPhishing() && f.cfg.BlockPhishing {
		verdict.Rejected = true
		return verdict, nil
	}

	var out bytes.Buffer
	if err := textproto.WriteHeader(&out, mh.Header.Header); err != nil {
		return nil, fmt.Errorf("failed to write message header: %w", err)
	}
	out.Write(body)
	verdict.Message = out.Bytes()

	return verdict, nil
}

// envelopeProvider parses the session's message lazily so parse failures
// surface as analysis failures
type envelopeProvider struct {
	raw          []byte
	envelopeFrom string
}

func (p *envelopeProvider) GetCurrentMessage(context.Context) (*core.Email, error) {
	email, err := mailbox.ParseMessageBytes(p.raw)
	if err != nil {
		return nil, fmt.Errorf("failed to get email content: %w", err)
	}
	if email.Sender == mailbox.UnknownSender && p.envelopeFrom != "" {
		email.Sender = p.envelopeFrom
	}
	email.EnvelopeSender = p.envelopeFrom
	return email, nil
}
