package security

import (
	"strings"

	"auth_harness/domain/entities"
	"auth_harness/domain/interfaces"

	"github.com/sirupsen/logrus"
)

var sensitiveKeywords = []string{
	"password", "passwd", "pwd", "secret", "token", "otp", "pin", "cvv",
}

type Redactor struct {
	logger *logrus.Logger
	extra  []string
}

// NewRedactor creates a redactor; extra adds keywords on top of the defaults
func NewRedactor(logger *logrus.Logger, extra ...string) *Redactor {
	lowered := make([]string, 0, len(extra))
	for _, kw := range extra {
		if kw = strings.ToLower(strings.TrimSpace(kw)); kw != "" {
			lowered = append(lowered, kw)
		}
	}
	return &Redactor{
		logger: logger,
		extra:  lowered,
	}
}

func (r *Redactor) IsSensitive(loc entities.Locator) bool {
	lowerName := strings.ToLower(loc.Name)
	lowerPattern := strings.ToLower(loc.Pattern)

	for _, keyword := range r.keywords() {
		if strings.Contains(lowerName, keyword) || strings.Contains(lowerPattern, keyword) {
			return true
		}
	}

	return false
}

func (r *Redactor) Redact(loc entities.Locator, value string) string {
	if value == "" {
		return ""
	}
	if !r.IsSensitive(loc) {
		return value
	}
	if r.logger != nil {
		r.logger.WithField("locator", loc.Name).Trace("redacting sensitive value")
	}
	return "[REDACTED]"
}

func (r *Redactor) keywords() []string {
	if len(r.extra) == 0 {
		return sensitiveKeywords
	}
	all := make([]string, 0, len(sensitiveKeywords)+len(r.extra))
	all = append(all, sensitiveKeywords...)
	return append(all, r.extra...)
}

// Ensure Redactor implements Redactor interface
var _ interfaces.Redactor = (*Redactor)(nil)
