package entities

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStrategy(t *testing.T) {
	for _, st := range Strategies {
		got, err := ParseStrategy(string(st))
		require.NoError(t, err)
		assert.Equal(t, st, got)
	}

	got, err := ParseStrategy("XPath")
	require.NoError(t, err)
	assert.Equal(t, ByXPath, got)

	_, err = ParseStrategy("link text")
	assert.Error(t, err)
}

func TestLocatorRole(t *testing.T) {
	tests := []struct {
		pattern string
		role    string
		name    string
	}{
		{`button "Login"`, "button", "Login"},
		{`link "Forgot Password?"`, "link", "Forgot Password?"},
		{`dialog`, "dialog", ""},
		{`  alert  `, "alert", ""},
		{`button Sign in`, "button", "Sign in"},
	}
	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			role, name := Locator{Name: "x", Strategy: ByRole, Pattern: tt.pattern}.Role()
			assert.Equal(t, tt.role, role)
			assert.Equal(t, tt.name, name)
		})
	}
}

func TestNewLocator_Validates(t *testing.T) {
	loc, err := NewLocator(ElementEmailInput, ByID, "email")
	require.NoError(t, err)
	assert.Equal(t, "email input(id=email)", loc.String())

	_, err = NewLocator("", ByID, "email")
	assert.Error(t, err)

	_, err = NewLocator("submit", ByCSS, "   ")
	assert.Error(t, err)

	_, err = NewLocator("submit", Strategy("sizzle"), "button")
	assert.Error(t, err)
}

func TestErrorTaxonomy(t *testing.T) {
	loc := Locator{Name: "error_modal", Strategy: ByRole, Pattern: "dialog"}
	actual := "Something else"

	tests := []struct {
		name           string
		err            error
		sentinel       error
		infrastructure bool
	}{
		{"not found", NewElementNotFound("click", loc), ErrElementNotFound, true},
		{"timeout", &TimeoutError{Locator: loc, Condition: Until(StateVisible, time.Second)}, ErrTimeout, true},
		{"validation", &ValidationMismatchError{Outcome: AssertionOutcome{Label: "modal", Kind: Hard, Actual: &actual}}, ErrValidationMismatch, false},
		{"navigation", &NavigationMismatchError{Pattern: "/user", Actual: "https://app.test/"}, ErrNavigationMismatch, false},
		{"skipped", fmt.Errorf("%w: no credentials", ErrSkipped), ErrSkipped, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := fmt.Errorf("scenario step: %w", tt.err)
			assert.ErrorIs(t, wrapped, tt.sentinel)
			assert.Equal(t, tt.infrastructure, IsInfrastructureError(wrapped))
		})
	}

	assert.False(t, IsInfrastructureError(nil))
	assert.True(t, IsInfrastructureError(errors.New("connection refused")))
}

func TestTimeoutError_As(t *testing.T) {
	loc := Locator{Name: "confirmation", Strategy: ByRole, Pattern: "alert"}
	err := fmt.Errorf("read confirmation: %w", &TimeoutError{Locator: loc, Condition: Until(StateVisible, time.Second), Last: ElementState{Attached: true}})

	var timeout *TimeoutError
	require.ErrorAs(t, err, &timeout)
	assert.Equal(t, "confirmation", timeout.Locator.Name)
	assert.True(t, timeout.Last.Attached)
	assert.Contains(t, err.Error(), "attached=true visible=false")
}

func TestValidationMismatchError_ShowsLiteralValues(t *testing.T) {
	err := &ValidationMismatchError{Outcome: AssertionOutcome{
		Label:    "email validation message",
		Kind:     Hard,
		Expected: `containing "Please fill out this field."`,
	}}
	assert.Equal(t, `hard assertion "email validation message" failed: expected containing "Please fill out this field.", actual <null>`, err.Error())
}

func TestCredential_NeverPrintsPassword(t *testing.T) {
	cred := Credential{Email: "user@example.test", Password: "hunter2"}

	for _, out := range []string{cred.String(), fmt.Sprintf("%v", cred), fmt.Sprintf("%+v", cred), fmt.Sprintf("%#v", cred)} {
		assert.NotContains(t, out, "hunter2")
		assert.Contains(t, out, "user@example.test")
	}
	assert.Contains(t, cred.String(), redacted)
	assert.NotContains(t, Credential{Email: "a@b.c"}.String(), redacted)

	assert.True(t, Credential{}.IsZero())
	assert.False(t, Credential{Password: "x"}.IsZero())
}

func TestReport_CountsAndExitCode(t *testing.T) {
	report := &Report{Results: []ScenarioResult{
		{Status: StatusPassed},
		{Status: StatusSkipped},
		{Status: StatusPassed},
	}}
	assert.True(t, report.Passed())
	assert.Equal(t, 0, report.ExitCode())
	assert.Equal(t, map[ScenarioStatus]int{StatusPassed: 2, StatusSkipped: 1}, report.Counts())

	report.Results = append(report.Results, ScenarioResult{Status: StatusError})
	assert.Equal(t, 1, report.ExitCode())

	failed := ScenarioResult{Outcomes: []AssertionOutcome{
		{Label: "a", Passed: true},
		{Label: "b"},
	}}
	require.Len(t, failed.FailedOutcomes(), 1)
	assert.Equal(t, "b", failed.FailedOutcomes()[0].Label)
}

func TestTargetState_Satisfied(t *testing.T) {
	detached := ElementState{}
	hidden := ElementState{Attached: true}
	shown := ElementState{Attached: true, Visible: true}

	tests := []struct {
		target TargetState
		want   [3]bool
	}{
		{StateVisible, [3]bool{false, false, true}},
		{StateHidden, [3]bool{true, true, false}},
		{StateAttached, [3]bool{false, true, true}},
		{StateDetached, [3]bool{true, false, false}},
		{TargetState("focused"), [3]bool{false, false, false}},
	}
	for _, tt := range tests {
		for i, s := range []ElementState{detached, hidden, shown} {
			assert.Equal(t, tt.want[i], tt.target.Satisfied(s), "%s on %+v", tt.target, s)
		}
	}
	assert.Equal(t, "visible within 2s", Until(StateVisible, 2*time.Second).String())
}
