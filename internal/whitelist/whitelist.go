package whitelist

import (
	"net/mail"
	"strings"

	"go.uber.org/zap"
)

// Checker matches senders against a list of trusted domains
type Checker struct {
	domains []string
	logger  *zap.Logger
}

// NewChecker creates a new trusted domain checker
func NewChecker(domains []string, logger *zap.Logger) *Checker {
	normalized := make([]string, 0, len(domains))
	for _, domain := range domains {
		if d := strings.ToLower(strings.TrimSpace(domain)); d != "" {
			normalized = append(normalized, d)
		}
	}

	if len(normalized) > 0 && logger != nil {
		logger.Info("Initialized trusted domain checker", zap.Strings("domains", normalized))
	}

	return &Checker{
		domains: normalized,
		logger:  logger,
	}
}

// Match returns the trusted domain of sender, if any. The sender may be a
// bare address or "Display Name <addr@host>".
func (c *Checker) Match(sender string) (string, bool) {
	if len(c.domains) == 0 {
		return "", false
	}

	domain := senderDomain(sender)
	if domain == "" {
		return "", false
	}

	for _, trusted := range c.domains {
		if trusted == domain {
			if c.logger != nil {
				c.logger.Debug("Domain is trusted",
					zap.String("domain", domain),
					zap.String("sender", sender))
			}
			return domain, true
		}
	}

	return "", false
}

func senderDomain(sender string) string {
	address := strings.TrimSpace(sender)
	if parsed, err := mail.ParseAddress(address); err == nil {
		address = parsed.Address
	}

	parts := strings.Split(address, "@")
	if len(parts) != 2 || parts[1] == "" {
		return ""
	}
	return strings.ToLower(strings.Trim(parts[1], "> "))
}
