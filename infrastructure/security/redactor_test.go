package security

import (
	"testing"

	"auth_harness/domain/entities"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestRedactor_IsSensitive(t *testing.T) {
	r := NewRedactor(logrus.New())

	cases := []struct {
		loc  entities.Locator
		want bool
	}{
		{entities.Locator{Name: entities.ElementPasswordInput, Strategy: entities.ByID, Pattern: "txtPassword"}, true},
		{entities.Locator{Name: "field", Strategy: entities.ByID, Pattern: "txtPassword"}, true},
		{entities.Locator{Name: entities.ElementEmailInput, Strategy: entities.ByID, Pattern: "email"}, false},
		{entities.Locator{Name: "api token", Strategy: entities.ByCSS, Pattern: "input.key"}, true},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, r.IsSensitive(tc.loc), tc.loc.String())
	}
}

func TestRedactor_ExtraKeywords(t *testing.T) {
	r := NewRedactor(nil, " Passphrase ")
	loc := entities.Locator{Name: "passphrase box", Strategy: entities.ByID, Pattern: "pp"}

	assert.True(t, r.IsSensitive(loc))
	assert.Equal(t, "[REDACTED]", r.Redact(loc, "hunter2"))
}

func TestRedactor_NeverLeaksSensitiveValues(t *testing.T) {
	r := NewRedactor(nil)
	loc := entities.Locator{Name: entities.ElementPasswordInput, Strategy: entities.ByID, Pattern: "txtPassword"}

	rapid.Check(t, func(t *rapid.T) {
		value := rapid.StringMatching(`[a-zA-Z0-9!@#$%^&*]{1,40}`).Draw(t, "value")
		got := r.Redact(loc, value)
		if got != "[REDACTED]" {
			t.Fatalf("sensitive value leaked: %q", got)
		}
	})
}

func TestRedactor_PassesThroughPlainValues(t *testing.T) {
	r := NewRedactor(nil)
	loc := entities.Locator{Name: entities.ElementEmailInput, Strategy: entities.ByID, Pattern: "email"}

	assert.Equal(t, "test@gmail.com", r.Redact(loc, "test@gmail.com"))
	assert.Equal(t, "", r.Redact(loc, ""))
}
