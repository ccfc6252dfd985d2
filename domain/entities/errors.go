package entities

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrElementNotFound     = errors.New("element not found")
	ErrTimeout             = errors.New("wait timed out")
	ErrValidationMismatch  = errors.New("validation mismatch")
	ErrNavigationMismatch  = errors.New("navigation mismatch")
	ErrUnknownLocator      = errors.New("unknown locator")
	ErrSubmissionRepeated  = errors.New("submission already reached a terminal outcome")
	ErrSkipped             = errors.New("scenario skipped")
	ErrUnsupportedStrategy = errors.New("unsupported locator strategy")
)

// ElementNotFoundError is returned when an action or read targets a locator
// that currently matches nothing.
type ElementNotFoundError struct {
	Locator Locator
	Action  string
}

func (e *ElementNotFoundError) Error() string {
	return fmt.Sprintf("%s: no element matches %s", e.Action, e.Locator)
}

func (e *ElementNotFoundError) Is(target error) bool {
	return target == ErrElementNotFound
}

// NewElementNotFound creates an ElementNotFoundError
func NewElementNotFound(action string, loc Locator) *ElementNotFoundError {
	return &ElementNotFoundError{Locator: loc, Action: action}
}

// TimeoutError is returned when a wait condition did not hold within its window
type TimeoutError struct {
	Locator   Locator
	Condition WaitCondition
	Last      ElementState
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("timed out waiting for %s to be %s (last state: attached=%t visible=%t)",
		e.Locator, e.Condition, e.Last.Attached, e.Last.Visible)
}

func (e *TimeoutError) Is(target error) bool {
	return target == ErrTimeout
}

// ValidationMismatchError carries the failed assertion outcome
type ValidationMismatchError struct {
	Outcome AssertionOutcome
}

func (e *ValidationMismatchError) Error() string {
	return fmt.Sprintf("%s assertion %q failed: expected %s, actual %s",
		e.Outcome.Kind, e.Outcome.Label, e.Outcome.Expected, e.Outcome.ActualString())
}

func (e *ValidationMismatchError) Is(target error) bool {
	return target == ErrValidationMismatch
}

// NavigationMismatchError is returned when the browser location never matched
// the expected pattern within the wait window.
type NavigationMismatchError struct {
	Pattern string
	Actual  string
	Timeout time.Duration
}

func (e *NavigationMismatchError) Error() string {
	return fmt.Sprintf("location %q did not match %q within %s", e.Actual, e.Pattern, e.Timeout)
}

func (e *NavigationMismatchError) Is(target error) bool {
	return target == ErrNavigationMismatch
}

// IsInfrastructureError reports whether err is a timing or contract problem
// rather than a failed expectation.
func IsInfrastructureError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrValidationMismatch) || errors.Is(err, ErrNavigationMismatch) || errors.Is(err, ErrSkipped) {
		return false
	}
	return true
}
