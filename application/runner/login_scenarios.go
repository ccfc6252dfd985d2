package runner

import (
	"context"
	"errors"
	"fmt"

	"auth_harness/application/assert"
	"auth_harness/application/page"
	"auth_harness/domain/entities"
)

// Expected texts of the target application
const (
	FillOutFieldMessage  = "Please fill out this field."
	InvalidDomainPattern = `A part following '@'|Please enter a part following '@'`
	LoginErrorText       = "The email and password combination"
	ConfirmationPattern  = `(?i)(reset|sent|check your (e-?mail|inbox))`
)

// Inputs the suite submits on purpose
var (
	invalidEmail      = "*@#$%"
	wrongCredential   = entities.Credential{Email: "test@gmail.com", Password: "wrongpassword"}
	throwawayEmail    = "test@gmail.com"
	clearedCredential = entities.Credential{Email: "someone@example.com", Password: "placeholder-secret"}
)

// LoginSuite returns the login, credential-validation and forgot-password scenarios
func LoginSuite() []Scenario {
	return []Scenario{
		{
			Name:        "login form is displayed",
			Description: "email, password, submit and forgot-password controls are visible",
			Tags:        []string{"login", "smoke"},
			Run:         loginFormDisplayed,
		},
		{
			Name:        "credential inputs are required",
			Description: "both inputs carry the required attribute",
			Tags:        []string{"login", "validation"},
			Run:         credentialInputsRequired,
		},
		{
			Name:        "empty submission shows native validation",
			Description: "submitting an empty form is intercepted by the browser",
			Tags:        []string{"login", "validation"},
			Run:         emptySubmission,
		},
		{
			Name:        "invalid email is rejected",
			Description: "an address with an invalid domain part never reaches the server",
			Tags:        []string{"login", "validation"},
			Run:         invalidEmailRejected,
		},
		{
			Name:        "wrong credentials show error modal",
			Description: "the server answer renders the error modal and no navigation happens",
			Tags:        []string{"login", "negative"},
			Run:         wrongCredentialsShowModal,
		},
		{
			Name:        "valid credentials reach authenticated area",
			Description: "configured credentials land on the authenticated area",
			Tags:        []string{"login", "positive"},
			Run:         validCredentialsAuthenticate,
		},
		{
			Name:        "cleared fields show required indicators",
			Description: "filling then clearing both inputs shows both required indicators",
			Tags:        []string{"login", "validation"},
			Run:         clearedFieldsShowIndicators,
		},
		{
			Name:        "filling a field twice keeps one value",
			Description: "fill replaces the field content instead of appending",
			Tags:        []string{"login", "validation"},
			Run:         fillIsIdempotent,
		},
		{
			Name:        "forgot password requires email",
			Description: "submitting the forgot-password form empty is intercepted by the browser",
			Tags:        []string{"forgot-password", "validation"},
			Run:         forgotPasswordRequiresEmail,
		},
		{
			Name:        "forgot password confirms submission",
			Description: "submitting an address shows the confirmation notice",
			Tags:        []string{"forgot-password"},
			Run:         forgotPasswordConfirms,
		},
	}
}

func loginFormDisplayed(ctx context.Context, env *Env) error {
	if err := env.Page.NavigateToLoginPage(ctx); err != nil {
		return err
	}
	visible, err := env.Page.FormElementsVisible(ctx)
	if err != nil {
		return err
	}
	for _, name := range []string{
		entities.ElementEmailInput,
		entities.ElementPasswordInput,
		entities.ElementLoginSubmit,
		entities.ElementForgotPasswordLink,
	} {
		env.Assert.Soft(name+" is visible", assert.Rendered(visible[name]), assert.Present())
	}
	return nil
}

func credentialInputsRequired(ctx context.Context, env *Env) error {
	if err := env.Page.NavigateToLoginPage(ctx); err != nil {
		return err
	}
	for _, f := range []page.Field{page.EmailField, page.PasswordField} {
		value, ok, err := env.Page.RequiredAttribute(ctx, f)
		if err != nil {
			return err
		}
		env.Assert.Soft(f.String()+" input has required attribute", assert.Maybe(value, ok), assert.Present())
	}
	return nil
}

func emptySubmission(ctx context.Context, env *Env) error {
	if err := env.Page.NavigateToLoginPage(ctx); err != nil {
		return err
	}
	if err := env.Page.SubmitLoginWithEmptyFields(ctx); err != nil {
		return err
	}

	msg, err := env.Page.ReadEmailFieldValidationMessage(ctx)
	if err != nil {
		return err
	}
	if err := env.Assert.Hard("email validation message", assert.Text(msg), assert.Contains(FillOutFieldMessage)); err != nil {
		return err
	}

	msg, err = env.Page.ReadPasswordFieldValidationMessage(ctx)
	if err != nil {
		return err
	}
	env.Assert.Soft("password validation message", assert.Text(msg), assert.Contains(FillOutFieldMessage))
	return nil
}

func invalidEmailRejected(ctx context.Context, env *Env) error {
	if err := env.Page.NavigateToLoginPage(ctx); err != nil {
		return err
	}
	msg, err := env.Page.SubmitInvalidEmail(ctx, invalidEmail)
	if err != nil {
		return err
	}
	return env.Assert.Hard("invalid email validation message", assert.Text(msg), assert.Matches(InvalidDomainPattern))
}

func wrongCredentialsShowModal(ctx context.Context, env *Env) error {
	if err := env.Page.NavigateToLoginPage(ctx); err != nil {
		return err
	}

	text, err := env.Page.AttemptLoginAndReadErrorModal(ctx, wrongCredential, env.Options.WaitTimeout)
	if errors.Is(err, entities.ErrTimeout) {
		// the modal never rendering is a failed expectation, not a harness fault
		return env.Assert.Hard("error modal text", assert.Missing(), assert.Contains(LoginErrorText))
	}
	if err != nil {
		return err
	}
	if err := env.Assert.Hard("error modal text", assert.Text(text), assert.Contains(LoginErrorText)); err != nil {
		return err
	}

	url, err := env.Page.CurrentURL(ctx)
	if err != nil {
		return err
	}
	return env.Assert.Hard("location after rejected login", assert.Text(url), assert.Not(assert.MatchesRegexp(env.Options.AuthURLPattern)))
}

func validCredentialsAuthenticate(ctx context.Context, env *Env) error {
	if env.Credentials.IsZero() {
		return fmt.Errorf("%w: HARNESS_EMAIL and HARNESS_PASSWORD are not set", entities.ErrSkipped)
	}
	if err := env.Page.NavigateToLoginPage(ctx); err != nil {
		return err
	}
	if err := env.Page.SubmitLogin(ctx, env.Credentials); err != nil {
		return err
	}
	url, err := env.Page.WaitForAuthenticatedArea(ctx, env.Options.NavigationTimeout)
	var navErr *entities.NavigationMismatchError
	if errors.As(err, &navErr) {
		url = navErr.Actual
	} else if err != nil {
		return err
	}
	return env.Assert.Hard("location after login", assert.Text(url), assert.MatchesRegexp(env.Options.AuthURLPattern))
}

func clearedFieldsShowIndicators(ctx context.Context, env *Env) error {
	if err := env.Page.NavigateToLoginPage(ctx); err != nil {
		return err
	}
	if err := env.Page.ClearFieldsAfterFilling(ctx, clearedCredential); err != nil {
		return err
	}
	for _, f := range []page.Field{page.EmailField, page.PasswordField} {
		label := f.String() + " required indicator"
		text, err := env.Page.ReadRequiredIndicator(ctx, f, env.Options.WaitTimeout)
		switch {
		case errors.Is(err, entities.ErrTimeout):
			env.Assert.Soft(label, assert.Missing(), assert.Contains("required"))
		case err != nil:
			return err
		default:
			env.Assert.Soft(label, assert.Text(text), assert.Contains("required"))
		}
	}
	return nil
}

func fillIsIdempotent(ctx context.Context, env *Env) error {
	if err := env.Page.NavigateToLoginPage(ctx); err != nil {
		return err
	}
	for i := 0; i < 2; i++ {
		if err := env.Page.FillField(ctx, page.EmailField, throwawayEmail); err != nil {
			return err
		}
	}
	value, err := env.Page.ReadFieldValue(ctx, page.EmailField)
	if err != nil {
		return err
	}
	return env.Assert.Hard("email value after two fills", assert.Text(value), assert.Equals(throwawayEmail))
}

func forgotPasswordRequiresEmail(ctx context.Context, env *Env) error {
	if err := env.Page.NavigateToLoginPage(ctx); err != nil {
		return err
	}
	if err := env.Page.NavigateToForgotPassword(ctx); err != nil {
		return err
	}
	if err := env.Page.SubmitForgotPasswordForm(ctx, ""); err != nil {
		return err
	}
	msg, err := env.Page.ReadForgotPasswordValidationMessage(ctx)
	if err != nil {
		return err
	}
	return env.Assert.Hard("forgot password validation message", assert.Text(msg), assert.Contains(FillOutFieldMessage))
}

func forgotPasswordConfirms(ctx context.Context, env *Env) error {
	if err := env.Page.NavigateToLoginPage(ctx); err != nil {
		return err
	}
	if err := env.Page.NavigateToForgotPassword(ctx); err != nil {
		return err
	}
	if err := env.Page.SubmitForgotPasswordForm(ctx, throwawayEmail); err != nil {
		return err
	}
	text, err := env.Page.ReadForgotPasswordConfirmation(ctx, env.Options.WaitTimeout)
	if errors.Is(err, entities.ErrTimeout) {
		return env.Assert.Hard("forgot password confirmation", assert.Missing(), assert.Present())
	}
	if err != nil {
		return err
	}
	env.Assert.Soft("forgot password confirmation text", assert.Text(text), assert.Matches(ConfirmationPattern))
	return nil
}
