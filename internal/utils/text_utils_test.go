package utils

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zaptest"
)

func TestTruncateText(t *testing.T) {
	tp := NewTextProcessor(zaptest.NewLogger(t))

	tests := []struct {
		name    string
		text    string
		maxSize int
		want    string
	}{
		{name: "no limit", text: "hello", maxSize: 0, want: "hello"},
		{name: "within limit", text: "hello", maxSize: 5, want: "hello"},
		{name: "truncated", text: "hello world", maxSize: 5, want: "hello" + truncationNotice},
		{name: "does not split runes", text: "héllo", maxSize: 2, want: "h" + truncationNotice},
		{name: "multibyte rune at cut", text: "日本", maxSize: 4, want: "日" + truncationNotice},
		{name: "invalid byte before cut", text: "Caf\xe9 account notice", maxSize: 12, want: "Caf\xe9 account" + truncationNotice},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tp.TruncateText(tt.text, tt.maxSize))
		})
	}
}

func TestSanitizeUTF8(t *testing.T) {
	tp := NewTextProcessor(zaptest.NewLogger(t))

	got := tp.SanitizeUTF8("ok\xff\xfe text")
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, "ok text", got)
	assert.Equal(t, "plain", tp.SanitizeUTF8("plain"))
}

func TestPreview(t *testing.T) {
	assert.Equal(t, "short", Preview("short", 10))
	assert.Equal(t, "abc...", Preview("abcdef", 3))
	assert.Equal(t, "abcdef", Preview("abcdef", 0))
	assert.Equal(t, "Caf\xe9 acc...", Preview("Caf\xe9 account", 8))
}

func TestProcessText_InvalidByteKeepsContent(t *testing.T) {
	tp := NewTextProcessor(zaptest.NewLogger(t))

	body := "Caf\xe9 notice. " + strings.Repeat("verify at http://evil.example now. ", 100)
	got := tp.ProcessText(body, 1024)

	assert.True(t, utf8.ValidString(got))
	assert.True(t, strings.HasSuffix(got, truncationNotice))
	assert.Equal(t, 1024, len(strings.TrimSuffix(got, truncationNotice)))
	assert.Contains(t, got, "evil.example")
}
