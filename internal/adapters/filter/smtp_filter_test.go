package filter

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/emersion/go-smtp"
	"github.com/mikey/llm-phish-analyzer/internal/adapters/static"
	"github.com/mikey/llm-phish-analyzer/internal/config"
	"github.com/mikey/llm-phish-analyzer/internal/core"
	"github.com/mikey/llm-phish-analyzer/internal/whitelist"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

const rawMessage = "From: Bank <alerts@bank.example>\r\n" +
	"To: victim@example.com\r\n" +
	"Subject: Verify your account\r\n" +
	"\r\n" +
	"Click here to keep your account active.\r\n"

type failingClassifier struct{}

func (failingClassifier) Analyze(context.Context, string) (string, error) {
	return "", errors.New("model timeout")
}

func newFilter(t *testing.T, classifier core.ClassificationService, cfg config.SMTPConfig) *SMTPFilter {
	t.Helper()
	logger := zaptest.NewLogger(t)
	analyzer := core.NewAnalyzerService(classifier, nil, nil, nil, logger, core.AnalyzerOptions{})
	return NewSMTPFilter(analyzer, logger, cfg)
}

func headerValue(t *testing.T, msg []byte, key string) string {
	t.Helper()
	for _, line := range strings.Split(string(msg), "\r\n") {
		if line == "" {
			break
		}
		if name, value, ok := strings.Cut(line, ":"); ok && strings.EqualFold(name, key) {
			return strings.TrimSpace(value)
		}
	}
	return ""
}

func TestProcessMessage_StampsHeaders(t *testing.T) {
	report := "Classification: Phishing\nConfidence: 87\nExplanation: Credential\nharvesting link"
	f := newFilter(t, static.NewClassifier(report, zaptest.NewLogger(t)), config.SMTPConfig{ModifySubject: true})

	verdict, err := f.ProcessMessage(context.Background(), "bounce@bank.example", []byte(rawMessage))
	require.NoError(t, err)
	require.NoError(t, verdict.Err)
	assert.False(t, verdict.Rejected)

	assert.Equal(t, "Phishing", headerValue(t, verdict.Message, HeaderStatus))
	assert.Equal(t, "HIGH", headerValue(t, verdict.Message, HeaderRisk))
	assert.Equal(t, "87", headerValue(t, verdict.Message, HeaderConfidence))
	assert.Equal(t, "Credential", headerValue(t, verdict.Message, HeaderReason))
	assert.Equal(t, "[PHISHING] Verify your account", headerValue(t, verdict.Message, "Subject"))
	assert.True(t, bytes.HasSuffix(verdict.Message, []byte("\r\n\r\nClick here to keep your account active.\r\n")))
}

func TestProcessMessage_LegitimateKeepsSubject(t *testing.T) {
	report := "Classification: Legitimate\nConfidence: 12\nExplanation: Routine notice"
	f := newFilter(t, static.NewClassifier(report, zaptest.NewLogger(t)), config.SMTPConfig{ModifySubject: true, BlockPhishing: true})

	verdict, err := f.ProcessMessage(context.Background(), "", []byte(rawMessage))
	require.NoError(t, err)
	assert.False(t, verdict.Rejected)
	assert.Equal(t, "LOW", headerValue(t, verdict.Message, HeaderRisk))
	assert.Equal(t, "Verify your account", headerValue(t, verdict.Message, "Subject"))
}

func TestProcessMessage_RejectsPhishing(t *testing.T) {
	report := "Classification: Phishing\nConfidence: 99"
	f := newFilter(t, static.NewClassifier(report, zaptest.NewLogger(t)), config.SMTPConfig{BlockPhishing: true})

	verdict, err := f.ProcessMessage(context.Background(), "", []byte(rawMessage))
	require.NoError(t, err)
	assert.True(t, verdict.Rejected)
	assert.Nil(t, verdict.Message)
}

func TestProcessMessage_AnalysisFailurePassesThrough(t *testing.T) {
	f := newFilter(t, failingClassifier{}, config.SMTPConfig{BlockPhishing: true})

	verdict, err := f.ProcessMessage(context.Background(), "", []byte(rawMessage))
	require.NoError(t, err)

	var analysisErr *core.AnalysisError
	require.ErrorAs(t, verdict.Err, &analysisErr)
	assert.False(t, verdict.Rejected)
	assert.Equal(t, "analysis failed: model timeout", headerValue(t, verdict.Message, HeaderAnalysisError))
	assert.Empty(t, headerValue(t, verdict.Message, HeaderStatus))
}

func TestProcessMessage_EnvelopeSenderFallback(t *testing.T) {
	var seen string
	classifier := classifierFunc(func(_ context.Context, text string) (string, error) {
		seen = text
		return "Classification: Legitimate", nil
	})
	f := newFilter(t, classifier, config.SMTPConfig{})

	raw := "Subject: hello\r\n\r\nbody\r\n"
	_, err := f.ProcessMessage(context.Background(), "envelope@example.org", []byte(raw))
	require.NoError(t, err)
	assert.Contains(t, seen, "From: envelope@example.org\n")
}

func TestProcessMessage_TrustedFromNeedsTrustedEnvelope(t *testing.T) {
	logger := zaptest.NewLogger(t)
	calls := 0
	classifier := classifierFunc(func(context.Context, string) (string, error) {
		calls++
		return "Classification: Phishing\nConfidence: 95", nil
	})
	allowlist := whitelist.NewChecker([]string{"bank.example"}, logger)
	analyzer := core.NewAnalyzerService(classifier, nil, allowlist, nil, logger, core.AnalyzerOptions{})
	f := NewSMTPFilter(analyzer, logger, config.SMTPConfig{})

	verdict, err := f.ProcessMessage(context.Background(), "spoof@attacker.example", []byte(rawMessage))
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, "Phishing", headerValue(t, verdict.Message, HeaderStatus))

	verdict, err = f.ProcessMessage(context.Background(), "bounce@bank.example", []byte(rawMessage))
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, "Legitimate", headerValue(t, verdict.Message, HeaderStatus))
}

type classifierFunc func(ctx context.Context, text string) (string, error)

func (fn classifierFunc) Analyze(ctx context.Context, text string) (string, error) {
	return fn(ctx, text)
}

func TestSessionData(t *testing.T) {
	report := "Classification: Phishing\nConfidence: 70"

	t.Run("relays stamped message", func(t *testing.T) {
		f := newFilter(t, static.NewClassifier(report, zaptest.NewLogger(t)), config.SMTPConfig{RelayEnabled: true})
		var relayed []byte
		var rcpts []string
		f.relay = func(from string, to []string, data []byte) error {
			rcpts = to
			relayed = data
			return nil
		}

		s := &smtpSession{filter: f}
		require.NoError(t, s.Mail("alerts@bank.example", nil))
		require.NoError(t, s.Rcpt("victim@example.com", nil))
		require.NoError(t, s.Data(strings.NewReader(rawMessage)))

		assert.Equal(t, []string{"victim@example.com"}, rcpts)
		assert.Equal(t, "Phishing", headerValue(t, relayed, HeaderStatus))
	})

	t.Run("rejects with 550", func(t *testing.T) {
		f := newFilter(t, static.NewClassifier(report, zaptest.NewLogger(t)), config.SMTPConfig{BlockPhishing: true, RelayEnabled: true})
		f.relay = func(string, []string, []byte) error {
			t.Fatal("rejected message must not be relayed")
			return nil
		}

		s := &smtpSession{filter: f}
		err := s.Data(strings.NewReader(rawMessage))

		var smtpErr *smtp.SMTPError
		require.ErrorAs(t, err, &smtpErr)
		assert.Equal(t, 550, smtpErr.Code)
	})

	t.Run("relay failure is temporary", func(t *testing.T) {
		f := newFilter(t, static.NewClassifier(report, zaptest.NewLogger(t)), config.SMTPConfig{RelayEnabled: true})
		f.relay = func(string, []string, []byte) error { return errors.New("connection refused") }

		s := &smtpSession{filter: f}
		err := s.Data(strings.NewReader(rawMessage))

		var smtpErr *smtp.SMTPError
		require.ErrorAs(t, err, &smtpErr)
		assert.Equal(t, 451, smtpErr.Code)
	})

	t.Run("relay disabled defers instead of dropping", func(t *testing.T) {
		f := newFilter(t, static.NewClassifier("Classification: Legitimate", zaptest.NewLogger(t)), config.SMTPConfig{RelayEnabled: false})
		f.relay = func(string, []string, []byte) error {
			t.Fatal("relay must not be used when disabled")
			return nil
		}

		s := &smtpSession{filter: f}
		require.NoError(t, s.Mail("alerts@bank.example", nil))
		require.NoError(t, s.Rcpt("victim@example.com", nil))
		err := s.Data(strings.NewReader(rawMessage))

		var smtpErr *smtp.SMTPError
		require.ErrorAs(t, err, &smtpErr)
		assert.Equal(t, 451, smtpErr.Code)
	})

	t.Run("relay disabled still rejects phishing", func(t *testing.T) {
		f := newFilter(t, static.NewClassifier(report, zaptest.NewLogger(t)), config.SMTPConfig{BlockPhishing: true})

		s := &smtpSession{filter: f}
		err := s.Data(strings.NewReader(rawMessage))

		var smtpErr *smtp.SMTPError
		require.ErrorAs(t, err, &smtpErr)
		assert.Equal(t, 550, smtpErr.Code)
	})

	t.Run("reset clears envelope", func(t *testing.T) {
		s := &smtpSession{sender: "a@b", recipients: []string{"c@d"}}
		s.Reset()
		assert.Empty(t, s.sender)
		assert.Empty(t, s.recipients)
	})
}

// captureBackend records messages delivered to a downstream SMTP server
type captureBackend struct {
	mu   sync.Mutex
	msgs [][]byte
}

func (b *captureBackend) NewSession(_ *smtp.Conn) (smtp.Session, error) {
	return &captureSession{backend: b}, nil
}

type captureSession struct {
	backend *captureBackend
}

func (s *captureSession) Reset() {}
func (s *captureSession) Logout() error { return nil }
func (s *captureSession) Mail(string, *smtp.MailOptions) error { return nil }
func (s *captureSession) Rcpt(string, *smtp.RcptOptions) error { return nil }
func (s *captureSession) Data(r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	s.backend.mu.Lock()
	s.backend.msgs = append(s.backend.msgs, data)
	s.backend.mu.Unlock()
	return nil
}

func TestSendToRelay(t *testing.T) {
	backend := &captureBackend{}
	downstream := smtp.NewServer(backend)
	downstream.Domain = "localhost"

	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() { _ = downstream.Serve(l) }()
	defer downstream.Close()

	addr := l.Addr().(*net.TCPAddr)
	f := newFilter(t, static.NewClassifier("", zaptest.NewLogger(t)), config.SMTPConfig{
		RelayEnabled: true,
		RelayAddress: "127.0.0.1",
		RelayPort:    addr.Port,
	})

	require.NoError(t, f.sendToRelay("alerts@bank.example", []string{"victim@example.com"}, []byte(rawMessage)))

	require.Eventually(t, func() bool {
		backend.mu.Lock()
		defer backend.mu.Unlock()
		return len(backend.msgs) == 1
	}, 2*time.Second, 10*time.Millisecond)
	assert.Contains(t, string(backend.msgs[0]), "Subject: Verify your account")
}

func TestHeaderText(t *testing.T) {
	assert.Equal(t, "one two", headerText("one\n  two\r\n"))
	assert.Equal(t, "=?utf-8?q?caf=C3=A9?=", headerText("café"))
	assert.LessOrEqual(t, len(headerText(strings.Repeat("a", 2000))), maxHeaderText)
}
