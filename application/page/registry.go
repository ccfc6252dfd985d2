package page

import (
	"fmt"
	"sort"

	"auth_harness/domain/entities"
)

// Registry maps semantic element names to locators. It is filled once at
// construction and only read afterwards, so a Registry may be shared freely.
type Registry struct {
	locators map[string]entities.Locator
}

// NewRegistry validates and indexes locators. Later entries with the same
// name replace earlier ones, which is how overrides are layered on defaults.
func NewRegistry(locators ...entities.Locator) (*Registry, error) {
	r := &Registry{locators: make(map[string]entities.Locator, len(locators))}
	for _, loc := range locators {
		if err := loc.Validate(); err != nil {
			return nil, err
		}
		r.locators[loc.Name] = loc
	}
	return r, nil
}

// Resolve returns the locator registered under name
func (r *Registry) Resolve(name string) (entities.Locator, error) {
	loc, ok := r.locators[name]
	if !ok {
		return entities.Locator{}, fmt.Errorf("%w: %q", entities.ErrUnknownLocator, name)
	}
	return loc, nil
}

// Require fails on the first name that is not registered
func (r *Registry) Require(names ...string) error {
	for _, name := range names {
		if _, err := r.Resolve(name); err != nil {
			return err
		}
	}
	return nil
}

// Names lists registered names in sorted order
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.locators))
	for name := range r.locators {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultLoginLocators are the identities the login application exposes
func DefaultLoginLocators() []entities.Locator {
	return []entities.Locator{
		{Name: entities.ElementEmailInput, Strategy: entities.ByID, Pattern: "email"},
		{Name: entities.ElementPasswordInput, Strategy: entities.ByID, Pattern: "txtPassword"},
		{Name: entities.ElementLoginSubmit, Strategy: entities.ByRole, Pattern: `button "Login"`},
		{Name: entities.ElementErrorModal, Strategy: entities.ByCSS, Pattern: "div.modal-body"},
		{Name: entities.ElementEmailRequired, Strategy: entities.ByXPath, Pattern: "//input[@id='email']/following-sibling::p[1]"},
		{Name: entities.ElementPasswordRequired, Strategy: entities.ByXPath, Pattern: "//input[@id='txtPassword']/following-sibling::p[1]"},
		{Name: entities.ElementForgotPasswordLink, Strategy: entities.ByTextMatch, Pattern: "Forgot password?"},
		{Name: entities.ElementForgotEmailInput, Strategy: entities.ByXPath, Pattern: "//form[contains(@action,'forget')]//input[@type='email']"},
		{Name: entities.ElementForgotSubmit, Strategy: entities.ByXPath, Pattern: "//form[contains(@action,'forget')]//button[@type='submit']"},
		{Name: entities.ElementForgotConfirmation, Strategy: entities.ByRole, Pattern: "alert"},
		{Name: entities.ElementCountryCodeSelector, Strategy: entities.ByCSS, Pattern: "select[name='country_code']"},
	}
}

// NewLoginRegistry builds the default login registry with overrides applied
func NewLoginRegistry(overrides ...entities.Locator) (*Registry, error) {
	return NewRegistry(append(DefaultLoginLocators(), overrides...)...)
}
