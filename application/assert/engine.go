// Package assert evaluates expected-vs-actual checks for one scenario.
// Hard checks abort the scenario by returning an error; soft checks are
// only recorded and consulted once the scenario finishes.
package assert

import (
	"io"
	"sync"

	"auth_harness/domain/entities"

	"github.com/sirupsen/logrus"
	"go.uber.org/multierr"
)

// Engine accumulates outcomes for a single scenario
type Engine struct {
	mu       sync.Mutex
	outcomes []entities.AssertionOutcome
	logger   *logrus.Entry
}

// New creates an engine with an empty accumulator
func New(logger *logrus.Entry) *Engine {
	if logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		logger = logrus.NewEntry(l)
	}
	return &Engine{logger: logger}
}

// Hard records the check and returns a ValidationMismatchError when it fails.
// Callers return that error so the remaining steps never run.
func (e *Engine) Hard(label string, actual Actual, m Matcher) error {
	outcome := e.record(entities.Hard, label, actual, m)
	if outcome.Passed {
		return nil
	}
	return &entities.ValidationMismatchError{Outcome: outcome}
}

// Soft records the check and lets the scenario continue. The result is
// returned for callers that branch on it; ignoring it is the normal use.
func (e *Engine) Soft(label string, actual Actual, m Matcher) bool {
	return e.record(entities.Soft, label, actual, m).Passed
}

// Reset empties the accumulator for a new scenario
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.outcomes = nil
}

// Outcomes returns a copy of every recorded outcome in order
func (e *Engine) Outcomes() []entities.AssertionOutcome {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]entities.AssertionOutcome, len(e.outcomes))
	copy(out, e.outcomes)
	return out
}

// SoftFailures returns the failed soft outcomes
func (e *Engine) SoftFailures() []entities.AssertionOutcome {
	e.mu.Lock()
	defer e.mu.Unlock()
	var failed []entities.AssertionOutcome
	for _, o := range e.outcomes {
		if o.Kind == entities.Soft && !o.Passed {
			failed = append(failed, o)
		}
	}
	return failed
}

// Failed reports whether any recorded outcome failed
func (e *Engine) Failed() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, o := range e.outcomes {
		if !o.Passed {
			return true
		}
	}
	return false
}

// Err joins every failed soft outcome into one error, nil when there are none
func (e *Engine) Err() error {
	var err error
	for _, o := range e.SoftFailures() {
		err = multierr.Append(err, &entities.ValidationMismatchError{Outcome: o})
	}
	return err
}

func (e *Engine) record(kind entities.AssertionKind, label string, actual Actual, m Matcher) entities.AssertionOutcome {
	outcome := entities.AssertionOutcome{
		Label:    label,
		Kind:     kind,
		Passed:   m.Match(actual),
		Expected: m.Describe(),
	}
	if actual.Present {
		v := actual.Value
		outcome.Actual = &v
	}

	e.mu.Lock()
	e.outcomes = append(e.outcomes, outcome)
	e.mu.Unlock()

	entry := e.logger.WithFields(logrus.Fields{
		"assertion": label,
		"kind":      kind,
		"expected":  outcome.Expected,
		"actual":    outcome.ActualString(),
	})
	if outcome.Passed {
		entry.Debug("assertion passed")
	} else {
		entry.Warn("assertion failed")
	}
	return outcome
}
