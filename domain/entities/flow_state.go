package entities

// FlowState tracks where a login page object is in its per-scenario lifecycle
type FlowState string

const (
	FlowUnloaded   FlowState = "unloaded"
	FlowLoaded     FlowState = "loaded"
	FlowFormFilled FlowState = "form_filled"
	FlowSubmitted  FlowState = "submitted"
	FlowSucceeded  FlowState = "succeeded"
	FlowFailed     FlowState = "failed"
	FlowTimedOut   FlowState = "timed_out"
)

// Terminal reports whether no further submission is allowed from this state
func (s FlowState) Terminal() bool {
	switch s {
	case FlowSucceeded, FlowFailed, FlowTimedOut:
		return true
	}
	return false
}
