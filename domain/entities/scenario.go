package entities

import "time"

// ScenarioStatus is the final verdict of one scenario
type ScenarioStatus string

const (
	StatusPassed  ScenarioStatus = "passed"
	StatusFailed  ScenarioStatus = "failed"
	StatusError   ScenarioStatus = "error"
	StatusSkipped ScenarioStatus = "skipped"
)

// ScenarioResult is the per-scenario record handed back to the CI caller
type ScenarioResult struct {
	Name      string             `json:"name"`
	Status    ScenarioStatus     `json:"status"`
	Outcomes  []AssertionOutcome `json:"outcomes"`
	Error     string             `json:"error,omitempty"`
	Artifacts []string           `json:"artifacts,omitempty"`
	StartedAt time.Time          `json:"started_at"`
	Duration  time.Duration      `json:"duration"`
}

// FailedOutcomes returns only the outcomes that did not pass
func (r ScenarioResult) FailedOutcomes() []AssertionOutcome {
	var failed []AssertionOutcome
	for _, o := range r.Outcomes {
		if !o.Passed {
			failed = append(failed, o)
		}
	}
	return failed
}

// Report aggregates every scenario of one run
type Report struct {
	RunID     string           `json:"run_id"`
	Target    string           `json:"target"`
	Driver    string           `json:"driver"`
	StartedAt time.Time        `json:"started_at"`
	Duration  time.Duration    `json:"duration"`
	Results   []ScenarioResult `json:"results"`
}

// Counts tallies results per status
func (r *Report) Counts() map[ScenarioStatus]int {
	counts := make(map[ScenarioStatus]int, 4)
	for _, res := range r.Results {
		counts[res.Status]++
	}
	return counts
}

// Passed reports whether every scenario passed or was skipped
func (r *Report) Passed() bool {
	for _, res := range r.Results {
		if res.Status == StatusFailed || res.Status == StatusError {
			return false
		}
	}
	return true
}

// ExitCode maps the report onto a process exit code
func (r *Report) ExitCode() int {
	if r.Passed() {
		return 0
	}
	return 1
}
