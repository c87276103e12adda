package mailbox

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/mikey/llm-phish-analyzer/internal/core"
)

// FileProvider reads the current message from an .eml file
type FileProvider struct {
	path string
}

// NewFileProvider creates a provider for the message stored at path
func NewFileProvider(path string) *FileProvider {
	return &FileProvider{path: path}
}

// GetCurrentMessage parses the file on every call
func (p *FileProvider) GetCurrentMessage(ctx context.Context) (*core.Email, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(p.path)
	if err != nil {
		return nil, fmt.Errorf("failed to get email content: %w", err)
	}
	defer f.Close()

	email, err := ParseMessage(f)
	if err != nil {
		return nil, fmt.Errorf("failed to get email content: %w", err)
	}
	return email, nil
}

// ReaderProvider reads the current message once from a stream such as stdin
type ReaderProvider struct {
	r io.Reader
}

// NewReaderProvider creates a provider backed by r
func NewReaderProvider(r io.Reader) *ReaderProvider {
	return &ReaderProvider{r: r}
}

// GetCurrentMessage parses the message from the underlying reader
func (p *ReaderProvider) GetCurrentMessage(ctx context.Context) (*core.Email, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	email, err := ParseMessage(p.r)
	if err != nil {
		return nil, fmt.Errorf("failed to get email content: %w", err)
	}
	return email, nil
}

// StaticProvider always returns the same message
type StaticProvider struct {
	email core.Email
}

// NewStaticProvider creates a provider for an already known message
func NewStaticProvider(email core.Email) *StaticProvider {
	if email.Sender == "" {
		email.Sender = UnknownSender
	}
	return &StaticProvider{email: email}
}

// GetCurrentMessage returns a copy of the message
func (p *StaticProvider) GetCurrentMessage(context.Context) (*core.Email, error) {
	email := p.email
	return &email, nil
}
