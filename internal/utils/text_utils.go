package utils

import (
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
)

const truncationNotice = "\n[... Content truncated due to size limits ...]"

// TextProcessor prepares email text before it is sent for classification
type TextProcessor struct {
	logger *zap.Logger
}

// NewTextProcessor creates a new TextProcessor
func NewTextProcessor(logger *zap.Logger) *TextProcessor {
	return &TextProcessor{
		logger: logger,
	}
}

// TruncateText cuts text to at most maxSize bytes without splitting a rune.
// A notice is appended when anything was removed.
func (tp *TextProcessor) TruncateText(text string, maxSize int) string {
	if maxSize <= 0 || len(text) <= maxSize {
		return text
	}

	truncated := cutRunes(text, maxSize)

	tp.logger.Debug("Text truncated",
		zap.Int("original_size", len(text)),
		zap.Int("truncated_size", len(truncated)),
		zap.Int("max_size", maxSize))

	return truncated + truncationNotice
}

// SanitizeUTF8 drops invalid UTF-8 bytes
func (tp *TextProcessor) SanitizeUTF8(text string) string {
	if utf8.ValidString(text) {
		return text
	}

	sanitized := strings.ToValidUTF8(text, "")

	tp.logger.Debug("Text sanitized",
		zap.Int("original_size", len(text)),
		zap.Int("sanitized_size", len(sanitized)))

	return sanitized
}

// ProcessText sanitizes and then truncates text in one operation
func (tp *TextProcessor) ProcessText(text string, maxSize int) string {
	return tp.TruncateText(tp.SanitizeUTF8(text), maxSize)
}

// Preview returns the first limit bytes of text followed by an ellipsis
func Preview(text string, limit int) string {
	if limit <= 0 || len(text) <= limit {
		return text
	}
	return cutRunes(text, limit) + "..."
}

// cutRunes returns the first n bytes of text, backing off a rune that would
// be split at the cut. Invalid bytes before the cut are left alone.
func cutRunes(text string, n int) string {
	cut := n
	for i := 0; i < utf8.UTFMax-1 && cut > 0; i++ {
		if utf8.RuneStart(text[cut]) {
			break
		}
		cut--
	}
	if !utf8.RuneStart(text[cut]) {
		return text[:n]
	}
	return text[:cut]
}
