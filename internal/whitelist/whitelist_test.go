package whitelist

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zaptest"
)

func TestChecker_Match(t *testing.T) {
	checker := NewChecker([]string{" Example.com ", "", "corp.example"}, zaptest.NewLogger(t))

	tests := []struct {
		name   string
		sender string
		domain string
		ok     bool
	}{
		{name: "bare address", sender: "alice@example.com", domain: "example.com", ok: true},
		{name: "display name", sender: "Alice <alice@EXAMPLE.com>", domain: "example.com", ok: true},
		{name: "other domain", sender: "bob@example.org", ok: false},
		{name: "subdomain is not trusted", sender: "bob@mail.example.com", ok: false},
		{name: "unknown sender", sender: "Unknown", ok: false},
		{name: "empty", sender: "", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			domain, ok := checker.Match(tt.sender)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.domain, domain)
		})
	}
}

func TestChecker_Empty(t *testing.T) {
	checker := NewChecker(nil, nil)
	_, ok := checker.Match("alice@example.com")
	assert.False(t, ok)
}
