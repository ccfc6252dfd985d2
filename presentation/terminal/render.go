package terminal

import (
	"fmt"
	"io"
	"strings"
	"time"

	"auth_harness/application/page"
	"auth_harness/application/runner"
	"auth_harness/domain/entities"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true)
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	detailStyle = lipgloss.NewStyle().PaddingLeft(4)
)

func statusColor(status entities.ScenarioStatus) lipgloss.Color {
	switch status {
	case entities.StatusPassed:
		return lipgloss.Color("42")
	case entities.StatusFailed:
		return lipgloss.Color("196")
	case entities.StatusError:
		return lipgloss.Color("208")
	default:
		return lipgloss.Color("245")
	}
}

// statusBadge renders a fixed-width status label
func statusBadge(status entities.ScenarioStatus) string {
	return lipgloss.NewStyle().
		Foreground(statusColor(status)).
		Bold(true).
		Width(9).
		Render(strings.ToUpper(string(status)))
}

// RenderReport writes a human readable report: one line per scenario, then
// every failed assertion with its literal expected and actual values.
func RenderReport(w io.Writer, report *entities.Report) {
	fmt.Fprintln(w, titleStyle.Render("Run "+report.RunID))
	fmt.Fprintln(w, mutedStyle.Render(fmt.Sprintf("target %s, driver %s", report.Target, report.Driver)))
	fmt.Fprintln(w)

	for _, res := range report.Results {
		fmt.Fprintf(w, "%s %s %s\n", statusBadge(res.Status), res.Name,
			mutedStyle.Render("("+res.Duration.Round(time.Millisecond).String()+")"))

		failed := res.FailedOutcomes()
		for _, o := range failed {
			fmt.Fprintln(w, detailStyle.Render(fmt.Sprintf("%s assertion %q: expected %s, actual %s",
				o.Kind, o.Label, o.Expected, o.ActualString())))
		}
		if res.Error != "" && (res.Status != entities.StatusFailed || len(failed) == 0) {
			fmt.Fprintln(w, detailStyle.Render(res.Error))
		}
		for _, a := range res.Artifacts {
			fmt.Fprintln(w, detailStyle.Render(mutedStyle.Render("screenshot: "+a)))
		}
	}

	counts := report.Counts()
	fmt.Fprintln(w)
	summary := fmt.Sprintf("%d passed, %d failed, %d errored, %d skipped in %s",
		counts[entities.StatusPassed], counts[entities.StatusFailed],
		counts[entities.StatusError], counts[entities.StatusSkipped],
		report.Duration.Round(time.Millisecond))
	verdict := entities.StatusPassed
	if !report.Passed() {
		verdict = entities.StatusFailed
	}
	fmt.Fprintln(w, lipgloss.NewStyle().Foreground(statusColor(verdict)).Bold(true).Render(summary))
}

// RenderScenarioList writes the scenario names with their tags
func RenderScenarioList(w io.Writer, scenarios []runner.Scenario) {
	width := 0
	for _, sc := range scenarios {
		if len(sc.Name) > width {
			width = len(sc.Name)
		}
	}
	nameStyle := lipgloss.NewStyle().Bold(true).Width(width + 2)
	for _, sc := range scenarios {
		fmt.Fprintf(w, "%s%s\n", nameStyle.Render(sc.Name), mutedStyle.Render(strings.Join(sc.Tags, ", ")))
		if sc.Description != "" {
			fmt.Fprintln(w, detailStyle.Render(sc.Description))
		}
	}
}

// RenderLocators writes the effective locator of every registered element
func RenderLocators(w io.Writer, registry *page.Registry) {
	names := registry.Names()
	width := 0
	for _, name := range names {
		width = max(width, len(name))
	}
	nameStyle := lipgloss.NewStyle().Bold(true).Width(width + 2)
	for _, name := range names {
		loc, err := registry.Resolve(name)
		if err != nil {
			continue
		}
		fmt.Fprintf(w, "%s%s\n", nameStyle.Render(name), mutedStyle.Render(string(loc.Strategy)+"="+loc.Pattern))
	}
}
