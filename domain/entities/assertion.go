package entities

import "fmt"

// AssertionKind decides what a failed check does to the running scenario
type AssertionKind string

const (
	// Soft failures are recorded and the scenario keeps going
	Soft AssertionKind = "soft"
	// Hard failures abort the scenario immediately
	Hard AssertionKind = "hard"
)

// AssertionOutcome is the structured record of one expected-vs-actual check.
// Actual is nil when the value could not be read at all.
type AssertionOutcome struct {
	Label    string        `json:"label"`
	Kind     AssertionKind `json:"kind"`
	Passed   bool          `json:"passed"`
	Expected string        `json:"expected"`
	Actual   *string       `json:"actual"`
}

// ActualString renders Actual for humans
func (o AssertionOutcome) ActualString() string {
	if o.Actual == nil {
		return "<null>"
	}
	return fmt.Sprintf("%q", *o.Actual)
}

func (o AssertionOutcome) String() string {
	status := "passed"
	if !o.Passed {
		status = "failed"
	}
	return fmt.Sprintf("[%s] %s %s: expected %s, actual %s", o.Kind, o.Label, status, o.Expected, o.ActualString())
}
