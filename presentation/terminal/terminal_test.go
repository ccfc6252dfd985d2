package terminal

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"auth_harness/application/page"
	"auth_harness/application/runner"
	"auth_harness/application/wait"
	"auth_harness/domain/entities"
	"auth_harness/infrastructure/browser"
	"auth_harness/infrastructure/security"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	lipgloss.SetColorProfile(termenv.Ascii)
	os.Exit(m.Run())
}

func strPtr(s string) *string { return &s }

func sampleReport() *entities.Report {
	return &entities.Report{
		RunID:    "run-1",
		Target:   "https://app.test",
		Driver:   "simulated",
		Duration: 1500 * time.Millisecond,
		Results: []entities.ScenarioResult{
			{Name: "login form is displayed", Status: entities.StatusPassed, Duration: 120 * time.Millisecond},
			{
				Name:   "wrong credentials show error modal",
				Status: entities.StatusFailed,
				Outcomes: []entities.AssertionOutcome{{
					Label:    "error modal text",
					Kind:     entities.Hard,
					Expected: `containing "The email and password combination"`,
					Actual:   strPtr("Something went wrong"),
				}},
				Error:     "hard assertion failed",
				Artifacts: []string{"/tmp/run-1/wrong.png"},
			},
			{Name: "forgot password confirms submission", Status: entities.StatusError, Error: "timed out waiting for alert"},
			{Name: "valid credentials reach authenticated area", Status: entities.StatusSkipped, Error: "scenario skipped"},
		},
	}
}

func TestRenderReport_ShowsLiteralExpectedAndActual(t *testing.T) {
	var buf bytes.Buffer
	RenderReport(&buf, sampleReport())
	out := buf.String()

	assert.Contains(t, out, "Run run-1")
	assert.Contains(t, out, "PASSED")
	assert.Contains(t, out, "FAILED")
	assert.Contains(t, out, `expected containing "The email and password combination", actual "Something went wrong"`)
	assert.Contains(t, out, "timed out waiting for alert")
	assert.Contains(t, out, "screenshot: /tmp/run-1/wrong.png")
	assert.Contains(t, out, "1 passed, 1 failed, 1 errored, 1 skipped")
	assert.NotContains(t, out, "hard assertion failed", "failed scenarios show their outcomes instead")
}

func TestRenderReport_MissingActualIsNull(t *testing.T) {
	report := &entities.Report{RunID: "r", Results: []entities.ScenarioResult{{
		Name:     "cleared fields show required indicators",
		Status:   entities.StatusFailed,
		Outcomes: []entities.AssertionOutcome{{Label: "email required indicator", Kind: entities.Soft, Expected: `containing "required"`}},
	}}}

	var buf bytes.Buffer
	RenderReport(&buf, report)
	assert.Contains(t, buf.String(), "actual <null>")
}

func TestRenderReport_FailedWithoutOutcomesShowsError(t *testing.T) {
	report := &entities.Report{RunID: "r", Results: []entities.ScenarioResult{{
		Name:   "valid credentials reach authenticated area",
		Status: entities.StatusFailed,
		Error:  `location "https://app.test/" did not match "/user" within 200ms`,
	}}}

	var buf bytes.Buffer
	RenderReport(&buf, report)
	assert.Contains(t, buf.String(), `location "https://app.test/" did not match "/user" within 200ms`)
}

func TestRenderReport_RejectedLoginShowsLocation(t *testing.T) {
	registry, err := page.NewLoginRegistry()
	require.NoError(t, err)
	logger, _ := test.NewNullLogger()

	app := browser.DefaultSimulatedApp("https://app.test")
	app.RedirectDelay = 10 * time.Millisecond
	opts := runner.Options{
		Target:            "https://app.test",
		LoginURL:          "https://app.test/",
		AuthURLPattern:    regexp.MustCompile(`/user`),
		NavigationTimeout: 200 * time.Millisecond,
		WaitTimeout:       time.Second,
		ScenarioTimeout:   10 * time.Second,
		Parallelism:       1,
		Credentials:       entities.Credential{Email: "user@example.test", Password: "stale"},
	}
	r := runner.NewRunner(browser.NewSimulatedLauncher(app), registry, wait.New(10*time.Millisecond),
		security.NewRedactor(logger), nil, opts, logger)

	report, err := r.Run(context.Background(), runner.Select(runner.LoginSuite(), "positive"))
	require.NoError(t, err)

	var buf bytes.Buffer
	RenderReport(&buf, report)
	out := buf.String()
	assert.Contains(t, out, "FAILED")
	assert.Contains(t, out, `"location after login": expected matching //user/, actual "https://app.test/"`)
}

func TestRenderScenarioList(t *testing.T) {
	var buf bytes.Buffer
	RenderScenarioList(&buf, runner.LoginSuite())
	for _, sc := range runner.LoginSuite() {
		assert.Contains(t, buf.String(), sc.Name)
	}
}

func isolateEnv(t *testing.T) string {
	t.Helper()
	t.Chdir(t.TempDir())
	for _, key := range []string{"HARNESS_EMAIL", "HARNESS_PASSWORD", "HARNESS_DRIVER", "HARNESS_BASE_URL", "HARNESS_FILTER"} {
		t.Setenv(key, "")
	}
	return filepath.Join(t.TempDir(), "reports")
}

func TestRunCommand_SimulatedDriverPasses(t *testing.T) {
	reportDir := isolateEnv(t)
	t.Setenv("HARNESS_EMAIL", "user@example.test")
	t.Setenv("HARNESS_PASSWORD", "correct-horse")

	var stdout, stderr bytes.Buffer
	root := NewRootCommand()
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs([]string{
		"run",
		"--driver", "simulated",
		"--base-url", "https://app.test",
		"--report-dir", reportDir,
		"--parallel", "4",
		"--log-level", "warn",
	})

	require.NoError(t, root.Execute(), stdout.String())
	assert.Contains(t, stdout.String(), "10 passed, 0 failed, 0 errored, 0 skipped")

	data, err := os.ReadFile(filepath.Join(reportDir, "latest.json"))
	require.NoError(t, err)
	var saved entities.Report
	require.NoError(t, json.Unmarshal(data, &saved))
	assert.Equal(t, "simulated", saved.Driver)
	assert.Equal(t, "https://app.test", saved.Target)
}

func TestRunCommand_FilterAndSkip(t *testing.T) {
	reportDir := isolateEnv(t)

	var stdout bytes.Buffer
	root := NewRootCommand()
	root.SetOut(&stdout)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"run", "--driver", "simulated", "--report-dir", reportDir, "--filter", "positive"})

	require.NoError(t, root.Execute())
	assert.Contains(t, stdout.String(), "SKIPPED")
	assert.Contains(t, stdout.String(), "0 passed, 0 failed, 0 errored, 1 skipped")
}

func TestRunCommand_RejectsUnknownDriver(t *testing.T) {
	reportDir := isolateEnv(t)

	root := NewRootCommand()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"run", "--driver", "netscape", "--report-dir", reportDir})

	err := root.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown driver")
}

func TestReportCommand_ExitCodeFollowsReport(t *testing.T) {
	dir := t.TempDir()
	report := sampleReport()
	data, err := json.Marshal(report)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "run-1.json"), data, 0644))

	var stdout bytes.Buffer
	root := NewRootCommand()
	root.SetOut(&stdout)
	root.SetArgs([]string{"report", "run-1", "--report-dir", dir})

	err = root.Execute()
	var exitErr *ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 1, exitErr.Code)
	assert.Contains(t, stdout.String(), "wrong credentials show error modal")
}

func TestLocatorsCommand_AppliesOverrides(t *testing.T) {
	file := filepath.Join(t.TempDir(), "locators.yaml")
	require.NoError(t, os.WriteFile(file, []byte(`locators:
  - name: email input
    strategy: css
    pattern: input[name='login']
`), 0644))

	var stdout bytes.Buffer
	root := NewRootCommand()
	root.SetOut(&stdout)
	root.SetArgs([]string{"locators", "--locators", file})
	require.NoError(t, root.Execute())

	out := stdout.String()
	assert.Contains(t, out, "css=input[name='login']")
	assert.NotContains(t, out, "id=email")
	assert.Contains(t, out, "id=txtPassword")
	assert.Contains(t, out, "forgot password link")
}

func TestListCommand(t *testing.T) {
	var stdout bytes.Buffer
	root := NewRootCommand()
	root.SetOut(&stdout)
	root.SetArgs([]string{"list", "--filter", "forgot-password"})

	require.NoError(t, root.Execute())
	assert.Contains(t, stdout.String(), "forgot password requires email")
	assert.NotContains(t, stdout.String(), "login form is displayed")

	root = NewRootCommand()
	root.SetOut(&bytes.Buffer{})
	root.SetArgs([]string{"list", "--filter", "nothing-matches"})
	assert.Error(t, root.Execute())
}
