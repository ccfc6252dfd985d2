package entities

import (
	"fmt"
	"time"
)

// ElementState is a point-in-time snapshot of a resolved locator
type ElementState struct {
	Attached bool `json:"attached"`
	Visible  bool `json:"visible"`
}

// TargetState represents the element state a wait is polling for
type TargetState string

const (
	StateVisible  TargetState = "visible"
	StateHidden   TargetState = "hidden"
	StateAttached TargetState = "attached"
	StateDetached TargetState = "detached"
)

// Satisfied reports whether the snapshot meets the target state.
// A detached element counts as hidden.
func (t TargetState) Satisfied(s ElementState) bool {
	switch t {
	case StateVisible:
		return s.Attached && s.Visible
	case StateHidden:
		return !s.Attached || !s.Visible
	case StateAttached:
		return s.Attached
	case StateDetached:
		return !s.Attached
	default:
		return false
	}
}

// WaitCondition is a target state plus the window allowed to reach it
type WaitCondition struct {
	Target  TargetState   `json:"target"`
	Timeout time.Duration `json:"timeout"`
}

// Until is shorthand for building a WaitCondition
func Until(target TargetState, timeout time.Duration) WaitCondition {
	return WaitCondition{Target: target, Timeout: timeout}
}

func (c WaitCondition) String() string {
	return fmt.Sprintf("%s within %s", c.Target, c.Timeout)
}
