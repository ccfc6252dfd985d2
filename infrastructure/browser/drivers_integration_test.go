package browser

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"auth_harness/domain/entities"
	"auth_harness/domain/interfaces"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const loginPageHTML = `<!doctype html>
<html><body>
<form id="login" novalidate>
  <input id="email" type="email" required>
  <p class="hint"></p>
  <input id="txtPassword" type="password" required>
  <p class="hint"></p>
  <button type="submit">Login</button>
  <a href="/login/forget">Forgot password?</a>
</form>
<div class="modal-body" style="display:none">The email and password combination you entered is incorrect.</div>
<script>
document.getElementById("login").addEventListener("submit", function (e) {
  e.preventDefault();
  setTimeout(function () { document.querySelector(".modal-body").style.display = "block"; }, 200);
});
</script>
</body></html>`

var integrationLocators = map[string]entities.Locator{
	"email":  {Name: entities.ElementEmailInput, Strategy: entities.ByID, Pattern: "email"},
	"submit": {Name: entities.ElementLoginSubmit, Strategy: entities.ByRole, Pattern: `button "Login"`},
	"modal":  {Name: entities.ElementErrorModal, Strategy: entities.ByCSS, Pattern: "div.modal-body"},
	"link":   {Name: entities.ElementForgotPasswordLink, Strategy: entities.ByTextMatch, Pattern: "Forgot password?"},
	"hint":   {Name: entities.ElementEmailRequired, Strategy: entities.ByXPath, Pattern: "//input[@id='email']/following-sibling::p[1]"},
	"absent": {Name: "absent", Strategy: entities.ByID, Pattern: "does-not-exist"},
}

func requireBrowserTests(t *testing.T) {
	t.Helper()
	if testing.Short() || os.Getenv("HARNESS_BROWSER_TESTS") != "1" {
		t.Skip("set HARNESS_BROWSER_TESTS=1 to run against a real browser")
	}
}

func TestRealDrivers(t *testing.T) {
	requireBrowserTests(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(loginPageHTML))
	}))
	defer srv.Close()

	opts := Options{Headless: true, ActionTimeout: 5 * time.Second, NavigationTimeout: 20 * time.Second}
	starters := map[string]func(Options) (interfaces.Launcher, error){
		"playwright": NewPlaywrightLauncher,
		"selenium":   NewSeleniumLauncher,
		"chromedp":   NewChromedpLauncher,
	}

	for name, start := range starters {
		t.Run(name, func(t *testing.T) {
			launcher, err := start(opts)
			if err != nil {
				t.Skipf("%s unavailable: %v", name, err)
			}
			defer launcher.Close()

			ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
			defer cancel()

			b, err := launcher.NewSession(ctx)
			require.NoError(t, err)
			defer b.Close()

			require.NoError(t, b.Navigate(ctx, srv.URL+"/"))

			state, err := b.Inspect(ctx, integrationLocators["email"])
			require.NoError(t, err)
			assert.True(t, state.Visible)

			state, err = b.Inspect(ctx, integrationLocators["absent"])
			require.NoError(t, err)
			assert.False(t, state.Attached)

			msg, err := b.ValidationMessage(ctx, integrationLocators["email"])
			require.NoError(t, err)
			assert.NotEmpty(t, msg)

			_, ok, err := b.Attribute(ctx, integrationLocators["email"], "required")
			require.NoError(t, err)
			assert.True(t, ok)

			_, ok, err = b.Attribute(ctx, integrationLocators["email"], "placeholder")
			require.NoError(t, err)
			assert.False(t, ok)

			require.NoError(t, b.Fill(ctx, integrationLocators["email"], "user@example.test"))
			value, err := b.InputValue(ctx, integrationLocators["email"])
			require.NoError(t, err)
			assert.Equal(t, "user@example.test", value)

			require.NoError(t, b.Clear(ctx, integrationLocators["email"]))
			value, err = b.InputValue(ctx, integrationLocators["email"])
			require.NoError(t, err)
			assert.Empty(t, value)

			state, err = b.Inspect(ctx, integrationLocators["link"])
			require.NoError(t, err)
			assert.True(t, state.Attached)

			require.NoError(t, b.Click(ctx, integrationLocators["submit"]))
			require.Eventually(t, func() bool {
				state, err := b.Inspect(ctx, integrationLocators["modal"])
				return err == nil && state.Visible
			}, 5*time.Second, 100*time.Millisecond)

			text, ok, err := b.TextContent(ctx, integrationLocators["modal"])
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Contains(t, text, "The email and password combination")

			err = b.Click(ctx, integrationLocators["absent"])
			assert.ErrorIs(t, err, entities.ErrElementNotFound)

			png, err := b.Screenshot(ctx)
			require.NoError(t, err)
			assert.NotEmpty(t, png)
		})
	}
}
