package filter

import (
	"context"
	"fmt"
	"io"

	"github.com/emersion/go-smtp"
	"go.uber.org/zap"
)

// smtpBackend implements the go-smtp Backend interface
type smtpBackend struct {
	filter *SMTPFilter
}

// NewSession creates a new SMTP session
func (b *smtpBackend) NewSession(_ *smtp.Conn) (smtp.Session, error) {
	return &smtpSession{filter: b.filter}, nil
}

// smtpSession implements the go-smtp Session interface
type smtpSession struct {
	filter     *SMTPFilter
	sender     string
	recipients []string
}

// Reset resets the session state
func (s *smtpSession) Reset() {
	s.sender = ""
	s.recipients = nil
}

// Mail sets the sender address
func (s *smtpSession) Mail(from string, _ *smtp.MailOptions) error {
	s.sender = from
	return nil
}

// Rcpt adds a recipient
func (s *smtpSession) Rcpt(to string, _ *smtp.RcptOptions) error {
	s.recipients = append(s.recipients, to)
	return nil
}

// Data analyzes the message and relays it, or rejects it when configured to
func (s *smtpSession) Data(r io.Reader) error {
	f := s.filter

	raw, err := io.ReadAll(r)
	if err != nil {
		f.logger.Error("Failed to read message data", zap.Error(err))
		return err
	}

	verdict, err := f.ProcessMessage(context.Background(), s.sender, raw)
	if err != nil {
		f.logger.Error("Failed to process message", zap.Error(err), zap.String("sender", s.sender))
		return &smtp.SMTPError{
			Code:         554,
			EnhancedCode: smtp.EnhancedCode{5, 6, 0},
			Message:      "Malformed message",
		}
	}

	if verdict.Rejected {
		f.logger.Info("Rejecting phishing email",
			zap.String("from", s.sender),
			zap.Int("confidence", verdict.Result.Confidence),
			zap.String("reason", verdict.Result.Explanation))
		return &smtp.SMTPError{
			Code:         550,
			EnhancedCode: smtp.EnhancedCode{5, 7, 1},
			Message:      fmt.Sprintf("Rejected as phishing (confidence: %d)", verdict.Result.Confidence),
		}
	}

	// Without a relay there is nowhere to deliver; defer rather than drop.
	if !f.cfg.RelayEnabled {
		f.logger.Warn("Relay disabled, deferring message", zap.String("sender", s.sender))
		return &smtp.SMTPError{
			Code:         451,
			EnhancedCode: smtp.EnhancedCode{4, 3, 0},
			Message:      "Relay disabled, try again later",
		}
	}

	if err := f.relay(s.sender, s.recipients, verdict.Message); err != nil {
		f.logger.Error("Failed to relay message", zap.Error(err), zap.String("sender", s.sender))
		return &smtp.SMTPError{
			Code:         451,
			EnhancedCode: smtp.EnhancedCode{4, 4, 0},
			Message:      "Downstream relay unavailable",
		}
	}

	fields := []zap.Field{zap.String("from", s.sender), zap.Int("recipients", len(s.recipients))}
	if verdict.Result != nil {
		fields = append(fields,
			zap.String("classification", string(verdict.Result.Classification)),
			zap.Int("confidence", verdict.Result.Confidence))
	}
	f.logger.Info("Processed email", fields...)

	return nil
}

// Logout handles SMTP logout
func (s *smtpSession) Logout() error {
	return nil
}
