package page

import (
	"context"
	"io"

	"auth_harness/domain/entities"
	"auth_harness/domain/interfaces"

	"github.com/sirupsen/logrus"
)

// Actions are the atomic operations a page object composes. They resolve a
// semantic name through the registry and hit the browser once; no state is
// kept between calls and nothing waits for downstream DOM changes.
type Actions struct {
	browser  interfaces.Browser
	registry *Registry
	redactor interfaces.Redactor
	logger   *logrus.Entry
}

// NewActions binds primitives to one browser session
func NewActions(b interfaces.Browser, registry *Registry, redactor interfaces.Redactor, logger *logrus.Entry) *Actions {
	if logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		logger = logrus.NewEntry(l)
	}
	return &Actions{
		browser:  b,
		registry: registry,
		redactor: redactor,
		logger:   logger,
	}
}

// Locator resolves a semantic name
func (a *Actions) Locator(name string) (entities.Locator, error) {
	return a.registry.Resolve(name)
}

// Navigate loads url in the session
func (a *Actions) Navigate(ctx context.Context, url string) error {
	a.logger.WithField("url", url).Debug("navigate")
	return a.browser.Navigate(ctx, url)
}

// Fill replaces the content of the named field. Filling the same text twice
// leaves the field holding it once.
func (a *Actions) Fill(ctx context.Context, name, text string) error {
	loc, err := a.registry.Resolve(name)
	if err != nil {
		return err
	}
	a.logger.WithFields(logrus.Fields{
		"locator": loc.Name,
		"value":   a.redact(loc, text),
	}).Debug("fill")
	return a.browser.Fill(ctx, loc, text)
}

// Clear empties the named field
func (a *Actions) Clear(ctx context.Context, name string) error {
	loc, err := a.registry.Resolve(name)
	if err != nil {
		return err
	}
	a.logger.WithField("locator", loc.Name).Debug("clear")
	return a.browser.Clear(ctx, loc)
}

// Click dispatches a click; callers wait for whatever it causes
func (a *Actions) Click(ctx context.Context, name string) error {
	loc, err := a.registry.Resolve(name)
	if err != nil {
		return err
	}
	a.logger.WithField("locator", loc.Name).Debug("click")
	return a.browser.Click(ctx, loc)
}

// ReadText returns the element's text content; ok is false when the locator
// resolves to nothing.
func (a *Actions) ReadText(ctx context.Context, name string) (text string, ok bool, err error) {
	loc, err := a.registry.Resolve(name)
	if err != nil {
		return "", false, err
	}
	return a.browser.TextContent(ctx, loc)
}

// ReadValidationMessage returns the native validation message, "" when valid
func (a *Actions) ReadValidationMessage(ctx context.Context, name string) (string, error) {
	loc, err := a.registry.Resolve(name)
	if err != nil {
		return "", err
	}
	return a.browser.ValidationMessage(ctx, loc)
}

// ReadAttribute returns an attribute of the named element
func (a *Actions) ReadAttribute(ctx context.Context, name, attr string) (string, bool, error) {
	loc, err := a.registry.Resolve(name)
	if err != nil {
		return "", false, err
	}
	return a.browser.Attribute(ctx, loc, attr)
}

// ReadValue returns the current value of a form control
func (a *Actions) ReadValue(ctx context.Context, name string) (string, error) {
	loc, err := a.registry.Resolve(name)
	if err != nil {
		return "", err
	}
	return a.browser.InputValue(ctx, loc)
}

// IsVisible takes a single snapshot of the element; it does not wait
func (a *Actions) IsVisible(ctx context.Context, name string) (bool, error) {
	loc, err := a.registry.Resolve(name)
	if err != nil {
		return false, err
	}
	state, err := a.browser.Inspect(ctx, loc)
	if err != nil {
		return false, err
	}
	return entities.StateVisible.Satisfied(state), nil
}

// CurrentURL returns the session's location
func (a *Actions) CurrentURL(ctx context.Context) (string, error) {
	return a.browser.CurrentURL(ctx)
}

func (a *Actions) redact(loc entities.Locator, value string) string {
	if a.redactor == nil {
		return "[REDACTED]"
	}
	return a.redactor.Redact(loc, value)
}
