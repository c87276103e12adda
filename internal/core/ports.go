package core

import (
	"context"
)

// MessageProvider supplies the email currently selected for analysis
type MessageProvider interface {
	// GetCurrentMessage returns the selected message
	GetCurrentMessage(ctx context.Context) (*Email, error)
}

// ClassificationService turns email text into a free-text classification report
type ClassificationService interface {
	// Analyze returns the report for the given email text
	Analyze(ctx context.Context, emailText string) (string, error)
}

// Presenter displays analysis outcomes
type Presenter interface {
	// Show displays a successful analysis
	Show(result *AnalysisResult) error

	// ShowError displays a failed analysis
	ShowError(err error) error
}

// CacheRepository defines the interface for caching classification reports
type CacheRepository interface {
	// Get retrieves a cached report by key
	Get(ctx context.Context, key string) (*CacheEntry, error)

	// Set stores a cache entry
	Set(ctx context.Context, entry *CacheEntry) error

	// Delete removes a cache entry
	Delete(ctx context.Context, key string) error

	// Cleanup removes expired entries
	Cleanup(ctx context.Context) error
}
