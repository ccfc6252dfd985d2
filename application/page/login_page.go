// Package page holds the page objects: locator registries plus flow-level
// operations composed from action primitives and the wait engine.
package page

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"auth_harness/application/wait"
	"auth_harness/domain/entities"
	"auth_harness/domain/interfaces"

	"github.com/sirupsen/logrus"
)

// Field identifies one of the login form's credential inputs
type Field int

const (
	EmailField Field = iota
	PasswordField
)

func (f Field) input() string {
	if f == PasswordField {
		return entities.ElementPasswordInput
	}
	return entities.ElementEmailInput
}

func (f Field) requiredIndicator() string {
	if f == PasswordField {
		return entities.ElementPasswordRequired
	}
	return entities.ElementEmailRequired
}

func (f Field) String() string {
	if f == PasswordField {
		return "password"
	}
	return "email"
}

// loginElements must all be registered before a LoginPage can be built
var loginElements = []string{
	entities.ElementEmailInput,
	entities.ElementPasswordInput,
	entities.ElementLoginSubmit,
	entities.ElementErrorModal,
	entities.ElementEmailRequired,
	entities.ElementPasswordRequired,
	entities.ElementForgotPasswordLink,
	entities.ElementForgotEmailInput,
	entities.ElementForgotSubmit,
	entities.ElementForgotConfirmation,
}

// LoginOptions carries the target-specific values a LoginPage needs
type LoginOptions struct {
	LoginURL          string
	AuthURLPattern    *regexp.Regexp
	NavigationTimeout time.Duration
}

// LoginPage is the page object for the login and forgot-password forms.
// One instance belongs to exactly one scenario and its browser session.
type LoginPage struct {
	actions *Actions
	browser interfaces.Browser
	waiter  wait.Waiter
	opts    LoginOptions
	state   entities.FlowState
	logger  *logrus.Entry
}

// NewLoginPage builds a login page object over one browser session.
// Every locator the page uses is resolved here, so a missing registry entry
// fails at construction instead of mid-scenario.
func NewLoginPage(b interfaces.Browser, registry *Registry, waiter wait.Waiter, redactor interfaces.Redactor, opts LoginOptions, logger *logrus.Entry) (*LoginPage, error) {
	if err := registry.Require(loginElements...); err != nil {
		return nil, fmt.Errorf("login page: %w", err)
	}
	if opts.LoginURL == "" {
		return nil, errors.New("login page: login url is empty")
	}
	if opts.AuthURLPattern == nil {
		return nil, errors.New("login page: authenticated url pattern is nil")
	}
	actions := NewActions(b, registry, redactor, logger)
	return &LoginPage{
		actions: actions,
		browser: b,
		waiter:  waiter,
		opts:    opts,
		state:   entities.FlowUnloaded,
		logger:  actions.logger,
	}, nil
}

// State returns where the login flow currently is
func (p *LoginPage) State() entities.FlowState {
	return p.state
}

// NavigateToLoginPage loads the login entry point and waits until the email
// input is attached. It may not be interactive yet.
func (p *LoginPage) NavigateToLoginPage(ctx context.Context) error {
	p.logger.Infof("Navigating to login page: %s", p.opts.LoginURL)

	if err := p.actions.Navigate(ctx, p.opts.LoginURL); err != nil {
		return fmt.Errorf("failed to load login page: %w", err)
	}
	if err := p.waitFor(ctx, entities.ElementEmailInput, entities.Until(entities.StateAttached, p.opts.NavigationTimeout)); err != nil {
		return err
	}
	if !p.state.Terminal() {
		p.state = entities.FlowLoaded
	}
	return nil
}

// SubmitLogin fills both credentials and clicks submit, in that order.
// It does not wait for anything the click causes.
func (p *LoginPage) SubmitLogin(ctx context.Context, cred entities.Credential) error {
	if p.state.Terminal() {
		return entities.ErrSubmissionRepeated
	}

	p.logger.WithField("email", cred.Email).Info("Submitting login form")

	if err := p.actions.Fill(ctx, entities.ElementEmailInput, cred.Email); err != nil {
		return err
	}
	if err := p.actions.Fill(ctx, entities.ElementPasswordInput, cred.Password); err != nil {
		return err
	}
	p.state = entities.FlowFormFilled

	if err := p.actions.Click(ctx, entities.ElementLoginSubmit); err != nil {
		return err
	}
	p.state = entities.FlowSubmitted
	return nil
}

// AttemptLoginAndReadErrorModal submits cred, waits up to timeout for the
// error modal and returns its trimmed text. A modal that never shows up is a
// Timeout error, never an empty string.
func (p *LoginPage) AttemptLoginAndReadErrorModal(ctx context.Context, cred entities.Credential, timeout time.Duration) (string, error) {
	if err := p.SubmitLogin(ctx, cred); err != nil {
		return "", err
	}

	if err := p.waitFor(ctx, entities.ElementErrorModal, entities.Until(entities.StateVisible, timeout)); err != nil {
		if errors.Is(err, entities.ErrTimeout) {
			p.state = entities.FlowTimedOut
		}
		return "", err
	}

	text, err := p.readRequiredText(ctx, entities.ElementErrorModal)
	if err != nil {
		return "", err
	}
	p.state = entities.FlowFailed
	return text, nil
}

// WaitForAuthenticatedArea waits for the location to enter the authenticated
// area. This is the only definition of "login succeeded".
func (p *LoginPage) WaitForAuthenticatedArea(ctx context.Context, timeout time.Duration) (string, error) {
	url, err := p.waiter.WaitForURL(ctx, p.browser, p.opts.AuthURLPattern, timeout)
	if err != nil {
		if errors.Is(err, entities.ErrNavigationMismatch) {
			p.state = entities.FlowFailed
		}
		return "", err
	}
	p.state = entities.FlowSucceeded
	p.logger.WithField("url", url).Info("Reached authenticated area")
	return url, nil
}

// ReadEmailFieldValidationMessage reads the email input's native validation
// message without submitting anything.
func (p *LoginPage) ReadEmailFieldValidationMessage(ctx context.Context) (string, error) {
	return p.actions.ReadValidationMessage(ctx, entities.ElementEmailInput)
}

// ReadPasswordFieldValidationMessage reads the password input's native
// validation message.
func (p *LoginPage) ReadPasswordFieldValidationMessage(ctx context.Context) (string, error) {
	return p.actions.ReadValidationMessage(ctx, entities.ElementPasswordInput)
}

// SubmitLoginWithEmptyFields clicks submit without filling anything, leaving
// the browser's own form validation to intercept the submission.
func (p *LoginPage) SubmitLoginWithEmptyFields(ctx context.Context) error {
	if p.state.Terminal() {
		return entities.ErrSubmissionRepeated
	}
	if err := p.actions.Click(ctx, entities.ElementLoginSubmit); err != nil {
		return err
	}
	p.state = entities.FlowSubmitted
	return nil
}

// SubmitInvalidEmail types email, clicks submit and returns the email
// input's validation message.
func (p *LoginPage) SubmitInvalidEmail(ctx context.Context, email string) (string, error) {
	if p.state.Terminal() {
		return "", entities.ErrSubmissionRepeated
	}
	if err := p.actions.Fill(ctx, entities.ElementEmailInput, email); err != nil {
		return "", err
	}
	p.state = entities.FlowFormFilled
	if err := p.actions.Click(ctx, entities.ElementLoginSubmit); err != nil {
		return "", err
	}
	p.state = entities.FlowSubmitted
	return p.ReadEmailFieldValidationMessage(ctx)
}

// ClearFieldsAfterFilling fills both fields and then clears both. Targets
// often show "required" indicators only for fields that were touched.
func (p *LoginPage) ClearFieldsAfterFilling(ctx context.Context, cred entities.Credential) error {
	for _, step := range []struct {
		name string
		text string
	}{
		{entities.ElementEmailInput, cred.Email},
		{entities.ElementPasswordInput, cred.Password},
	} {
		if err := p.actions.Fill(ctx, step.name, step.text); err != nil {
			return err
		}
	}
	p.state = entities.FlowFormFilled

	for _, name := range []string{entities.ElementEmailInput, entities.ElementPasswordInput} {
		if err := p.actions.Clear(ctx, name); err != nil {
			return err
		}
	}
	if !p.state.Terminal() {
		p.state = entities.FlowLoaded
	}
	return nil
}

// FillField fills one credential input
func (p *LoginPage) FillField(ctx context.Context, f Field, text string) error {
	return p.actions.Fill(ctx, f.input(), text)
}

// ReadFieldValue reads one credential input's current value
func (p *LoginPage) ReadFieldValue(ctx context.Context, f Field) (string, error) {
	return p.actions.ReadValue(ctx, f.input())
}

// RequiredAttribute reads the "required" attribute of a credential input
func (p *LoginPage) RequiredAttribute(ctx context.Context, f Field) (string, bool, error) {
	return p.actions.ReadAttribute(ctx, f.input(), "required")
}

// ReadRequiredIndicator waits for the field's "required" indicator to be
// rendered and visible, then returns its trimmed text.
func (p *LoginPage) ReadRequiredIndicator(ctx context.Context, f Field, timeout time.Duration) (string, error) {
	name := f.requiredIndicator()
	if err := p.waitFor(ctx, name, entities.Until(entities.StateVisible, timeout)); err != nil {
		return "", err
	}
	return p.readRequiredText(ctx, name)
}

// FormElementsVisible takes one visibility snapshot of the login form's
// controls.
func (p *LoginPage) FormElementsVisible(ctx context.Context) (map[string]bool, error) {
	names := []string{
		entities.ElementEmailInput,
		entities.ElementPasswordInput,
		entities.ElementLoginSubmit,
		entities.ElementForgotPasswordLink,
	}
	visible := make(map[string]bool, len(names))
	for _, name := range names {
		ok, err := p.actions.IsVisible(ctx, name)
		if err != nil {
			return nil, err
		}
		visible[name] = ok
	}
	return visible, nil
}

// NavigateToForgotPassword follows the forgot-password link and waits for
// the forgot-password form to be attached.
func (p *LoginPage) NavigateToForgotPassword(ctx context.Context) error {
	p.logger.Info("Opening forgot password form")

	if err := p.actions.Click(ctx, entities.ElementForgotPasswordLink); err != nil {
		return err
	}
	return p.waitFor(ctx, entities.ElementForgotEmailInput, entities.Until(entities.StateAttached, p.opts.NavigationTimeout))
}

// SubmitForgotPasswordForm fills email when given and clicks the
// forgot-password submit. Like SubmitLogin it does not wait.
func (p *LoginPage) SubmitForgotPasswordForm(ctx context.Context, email string) error {
	if email != "" {
		if err := p.actions.Fill(ctx, entities.ElementForgotEmailInput, email); err != nil {
			return err
		}
	}
	return p.actions.Click(ctx, entities.ElementForgotSubmit)
}

// ReadForgotPasswordValidationMessage reads the forgot-password email
// input's native validation message.
func (p *LoginPage) ReadForgotPasswordValidationMessage(ctx context.Context) (string, error) {
	return p.actions.ReadValidationMessage(ctx, entities.ElementForgotEmailInput)
}

// ReadForgotPasswordConfirmation waits for the confirmation notice and
// returns its trimmed text.
func (p *LoginPage) ReadForgotPasswordConfirmation(ctx context.Context, timeout time.Duration) (string, error) {
	if err := p.waitFor(ctx, entities.ElementForgotConfirmation, entities.Until(entities.StateVisible, timeout)); err != nil {
		return "", err
	}
	return p.readRequiredText(ctx, entities.ElementForgotConfirmation)
}

// CurrentURL returns the session's location
func (p *LoginPage) CurrentURL(ctx context.Context) (string, error) {
	return p.actions.CurrentURL(ctx)
}

func (p *LoginPage) waitFor(ctx context.Context, name string, cond entities.WaitCondition) error {
	loc, err := p.actions.Locator(name)
	if err != nil {
		return err
	}
	return p.waiter.WaitFor(ctx, p.browser, loc, cond)
}

// readRequiredText reads text that a preceding wait proved present; the node
// disappearing in between is reported as not found.
func (p *LoginPage) readRequiredText(ctx context.Context, name string) (string, error) {
	text, ok, err := p.actions.ReadText(ctx, name)
	if err != nil {
		return "", err
	}
	if !ok {
		loc, _ := p.actions.Locator(name)
		return "", entities.NewElementNotFound("read text", loc)
	}
	return strings.TrimSpace(text), nil
}
