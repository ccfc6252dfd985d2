package page

import (
	"context"
	"regexp"
	"testing"
	"time"

	"auth_harness/application/wait"
	"auth_harness/domain/entities"
	"auth_harness/infrastructure/browser"
	"auth_harness/infrastructure/security"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

const testBaseURL = "https://app.test"

var validCredential = entities.Credential{Email: "user@example.test", Password: "correct-horse"}

func testApp() browser.SimulatedApp {
	app := browser.DefaultSimulatedApp(testBaseURL)
	app.Accounts[validCredential.Email] = validCredential.Password
	app.ErrorDelay = 60 * time.Millisecond
	app.ConfirmationDelay = 40 * time.Millisecond
	app.RedirectDelay = 30 * time.Millisecond
	return app
}

func buildPage(app browser.SimulatedApp) (*LoginPage, *browser.SimulatedBrowser, error) {
	registry, err := NewLoginRegistry()
	if err != nil {
		return nil, nil, err
	}
	b := browser.NewSimulatedBrowser(app)
	p, err := NewLoginPage(b, registry, wait.New(10*time.Millisecond), security.NewRedactor(nil), LoginOptions{
		LoginURL:          testBaseURL + "/",
		AuthURLPattern:    regexp.MustCompile(`/user`),
		NavigationTimeout: time.Second,
	}, nil)
	return p, b, err
}

func newTestPage(t *testing.T, app browser.SimulatedApp) (*LoginPage, *browser.SimulatedBrowser) {
	t.Helper()
	p, b, err := buildPage(app)
	require.NoError(t, err)
	return p, b
}

func loadedPage(t *testing.T) (*LoginPage, *browser.SimulatedBrowser) {
	t.Helper()
	p, b := newTestPage(t, testApp())
	require.NoError(t, p.NavigateToLoginPage(context.Background()))
	require.Equal(t, entities.FlowLoaded, p.State())
	return p, b
}

func TestNewLoginPage_RequiresEveryLoginElement(t *testing.T) {
	registry, err := NewRegistry(entities.Locator{Name: entities.ElementEmailInput, Strategy: entities.ByID, Pattern: "email"})
	require.NoError(t, err)

	_, err = NewLoginPage(browser.NewSimulatedBrowser(testApp()), registry, wait.New(0), nil, LoginOptions{
		LoginURL:       testBaseURL,
		AuthURLPattern: regexp.MustCompile("/user"),
	}, nil)
	assert.ErrorIs(t, err, entities.ErrUnknownLocator)
}

func TestNewLoginPage_RequiresOptions(t *testing.T) {
	registry, err := NewLoginRegistry()
	require.NoError(t, err)
	b := browser.NewSimulatedBrowser(testApp())

	_, err = NewLoginPage(b, registry, wait.New(0), nil, LoginOptions{AuthURLPattern: regexp.MustCompile("/user")}, nil)
	assert.Error(t, err)

	_, err = NewLoginPage(b, registry, wait.New(0), nil, LoginOptions{LoginURL: testBaseURL}, nil)
	assert.Error(t, err)
}

func TestSubmitLoginWithEmptyFields_ShowsFillOutMessage(t *testing.T) {
	ctx := context.Background()
	p, _ := loadedPage(t)

	require.NoError(t, p.SubmitLoginWithEmptyFields(ctx))

	msg, err := p.ReadEmailFieldValidationMessage(ctx)
	require.NoError(t, err)
	assert.Contains(t, msg, "Please fill out this field.")

	msg, err = p.ReadPasswordFieldValidationMessage(ctx)
	require.NoError(t, err)
	assert.Contains(t, msg, "Please fill out this field.")
}

func TestSubmitInvalidEmail_ReturnsDomainMessage(t *testing.T) {
	p, _ := loadedPage(t)

	msg, err := p.SubmitInvalidEmail(context.Background(), "*@#$%")
	require.NoError(t, err)
	assert.Regexp(t, `A part following '@'|Please enter a part following '@'`, msg)
	assert.Equal(t, entities.FlowSubmitted, p.State())
}

func TestAttemptLoginAndReadErrorModal_WrongCredentials(t *testing.T) {
	ctx := context.Background()
	p, _ := loadedPage(t)

	text, err := p.AttemptLoginAndReadErrorModal(ctx, entities.Credential{Email: "test@gmail.com", Password: "wrongpassword"}, 10*time.Second)
	require.NoError(t, err)
	assert.Contains(t, text, "The email and password combination")
	assert.Equal(t, entities.FlowFailed, p.State())

	url, err := p.CurrentURL(ctx)
	require.NoError(t, err)
	assert.NotRegexp(t, `/user`, url)

	err = p.SubmitLogin(ctx, validCredential)
	assert.ErrorIs(t, err, entities.ErrSubmissionRepeated)
}

func TestAttemptLoginAndReadErrorModal_TimesOutWhenModalIsSlow(t *testing.T) {
	app := testApp()
	app.ErrorDelay = time.Hour
	p, _ := newTestPage(t, app)
	ctx := context.Background()
	require.NoError(t, p.NavigateToLoginPage(ctx))

	start := time.Now()
	_, err := p.AttemptLoginAndReadErrorModal(ctx, entities.Credential{Email: "test@gmail.com", Password: "wrongpassword"}, 80*time.Millisecond)
	assert.ErrorIs(t, err, entities.ErrTimeout)
	assert.Less(t, time.Since(start), time.Second)
	assert.Equal(t, entities.FlowTimedOut, p.State())

	var timeoutErr *entities.TimeoutError
	require.ErrorAs(t, err, &timeoutErr)
	assert.Equal(t, entities.ElementErrorModal, timeoutErr.Locator.Name)
}

func TestWaitForAuthenticatedArea_ValidLogin(t *testing.T) {
	ctx := context.Background()
	p, _ := loadedPage(t)

	require.NoError(t, p.SubmitLogin(ctx, validCredential))
	url, err := p.WaitForAuthenticatedArea(ctx, 2*time.Second)
	require.NoError(t, err)
	assert.Contains(t, url, "/user")
	assert.Equal(t, entities.FlowSucceeded, p.State())
}

func TestWaitForAuthenticatedArea_RejectedLogin(t *testing.T) {
	ctx := context.Background()
	p, _ := loadedPage(t)

	require.NoError(t, p.SubmitLogin(ctx, entities.Credential{Email: "test@gmail.com", Password: "nope"}))
	_, err := p.WaitForAuthenticatedArea(ctx, 100*time.Millisecond)
	assert.ErrorIs(t, err, entities.ErrNavigationMismatch)
	assert.Equal(t, entities.FlowFailed, p.State())
}

func TestClearFieldsAfterFilling_ShowsBothIndicators(t *testing.T) {
	ctx := context.Background()
	p, _ := loadedPage(t)

	require.NoError(t, p.ClearFieldsAfterFilling(ctx, validCredential))

	for field, want := range map[Field]string{
		EmailField:    browser.SimulatedEmailRequired,
		PasswordField: browser.SimulatedPasswordRequired,
	} {
		text, err := p.ReadRequiredIndicator(ctx, field, time.Second)
		require.NoError(t, err, field.String())
		assert.Equal(t, want, text)

		value, err := p.ReadFieldValue(ctx, field)
		require.NoError(t, err)
		assert.Empty(t, value)
	}
}

func TestReadRequiredIndicator_TimesOutWhenUntouched(t *testing.T) {
	p, _ := loadedPage(t)

	_, err := p.ReadRequiredIndicator(context.Background(), EmailField, 50*time.Millisecond)
	assert.ErrorIs(t, err, entities.ErrTimeout)
}

func TestRequiredAttributeAndFormVisibility(t *testing.T) {
	ctx := context.Background()
	p, _ := loadedPage(t)

	for _, f := range []Field{EmailField, PasswordField} {
		_, ok, err := p.RequiredAttribute(ctx, f)
		require.NoError(t, err)
		assert.True(t, ok, f.String())
	}

	visible, err := p.FormElementsVisible(ctx)
	require.NoError(t, err)
	for name, ok := range visible {
		assert.True(t, ok, name)
	}
	assert.Len(t, visible, 4)
}

func TestForgotPasswordFlow(t *testing.T) {
	ctx := context.Background()
	p, _ := loadedPage(t)

	require.NoError(t, p.NavigateToForgotPassword(ctx))
	url, err := p.CurrentURL(ctx)
	require.NoError(t, err)
	assert.Contains(t, url, "/login/forget")

	require.NoError(t, p.SubmitForgotPasswordForm(ctx, ""))
	msg, err := p.ReadForgotPasswordValidationMessage(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Please fill out this field.", msg)

	require.NoError(t, p.SubmitForgotPasswordForm(ctx, validCredential.Email))
	text, err := p.ReadForgotPasswordConfirmation(ctx, time.Second)
	require.NoError(t, err)
	assert.Equal(t, browser.SimulatedConfirmationText, text)
}

func TestNavigateToLoginPage_FailsOffTarget(t *testing.T) {
	registry, err := NewLoginRegistry()
	require.NoError(t, err)
	p, err := NewLoginPage(browser.NewSimulatedBrowser(testApp()), registry, wait.New(5*time.Millisecond), nil, LoginOptions{
		LoginURL:          testBaseURL + "/nowhere",
		AuthURLPattern:    regexp.MustCompile("/user"),
		NavigationTimeout: 30 * time.Millisecond,
	}, nil)
	require.NoError(t, err)

	err = p.NavigateToLoginPage(context.Background())
	assert.ErrorIs(t, err, entities.ErrTimeout)
	assert.Equal(t, entities.FlowUnloaded, p.State())
}

func TestFillField_Idempotent(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		ctx := context.Background()
		p, _, err := buildPage(testApp())
		if err != nil {
			t.Fatal(err)
		}
		if err := p.NavigateToLoginPage(ctx); err != nil {
			t.Fatal(err)
		}
		field := rapid.SampledFrom([]Field{EmailField, PasswordField}).Draw(t, "field")
		text := rapid.StringMatching(`[a-zA-Z0-9@._-]{0,20}`).Draw(t, "text")
		times := rapid.IntRange(1, 4).Draw(t, "times")

		for i := 0; i < times; i++ {
			if err := p.FillField(ctx, field, text); err != nil {
				t.Fatal(err)
			}
		}
		got, err := p.ReadFieldValue(ctx, field)
		if err != nil {
			t.Fatal(err)
		}
		if got != text {
			t.Fatalf("after %d fills got %q, want %q", times, got, text)
		}
	})
}

func TestReads_DoNotMutateSession(t *testing.T) {
	ctx := context.Background()
	p, b := loadedPage(t)
	require.NoError(t, p.FillField(ctx, EmailField, "user@example"))
	before := b.Actions()

	for i := 0; i < 3; i++ {
		_, err := p.ReadEmailFieldValidationMessage(ctx)
		require.NoError(t, err)
		_, _, err = p.RequiredAttribute(ctx, PasswordField)
		require.NoError(t, err)
		_, err = p.FormElementsVisible(ctx)
		require.NoError(t, err)
	}

	assert.Equal(t, before, b.Actions())
	value, err := p.ReadFieldValue(ctx, EmailField)
	require.NoError(t, err)
	assert.Equal(t, "user@example", value)
}
