package check

import (
	"time"

	"digital.vasic.crossbrowser/pkg/assertion"
)

// Status constants for check outcomes.
const (
	StatusPending  = "pending"
	StatusRunning  = "running"
	StatusPassed   = "passed"
	StatusFailed   = "failed"
	StatusSkipped  = "skipped"
	StatusTimedOut = "timed_out"
	StatusError    = "error"
)

// PhaseOutcome is the result of one lifecycle phase.
type PhaseOutcome struct {
	Phase    string        `json:"phase"`
	Status   string        `json:"status"`
	Message  string        `json:"message,omitempty"`
	Duration time.Duration `json:"duration"`
}

// Result captures the outcome of running one check against one
// descriptor.
type Result struct {
	// CheckID is the unique identifier of the check.
	CheckID ID `json:"check_id"`

	// CheckName is the human-readable name.
	CheckName string `json:"check_name"`

	// Markers are the categories of the check.
	Markers []Marker `json:"markers"`

	// DescriptorID and DescriptorLabel identify the matrix row.
	DescriptorID    string `json:"descriptor_id"`
	DescriptorLabel string `json:"descriptor_label"`

	// SessionID is the grid session the check ran in.
	SessionID string `json:"session_id,omitempty"`

	// Status is one of the Status* constants.
	Status string `json:"status"`

	StartTime time.Time     `json:"start_time"`
	EndTime   time.Time     `json:"end_time"`
	Duration  time.Duration `json:"duration"`

	// Assertions holds the evaluated assertion results.
	Assertions []assertion.Result `json:"assertions"`

	// Phases holds the setup, call and teardown outcomes.
	Phases []PhaseOutcome `json:"phases"`

	// GridStatus and GridReason are what the grid dashboard was
	// told. Empty when no session was created.
	GridStatus string `json:"grid_status,omitempty"`
	GridReason string `json:"grid_reason,omitempty"`

	// Error is the failure or error message.
	Error string `json:"error,omitempty"`
}

// Name returns the parametrized test name, "<check>[<descriptor>]".
func (r *Result) Name() string {
	return string(r.CheckID) + "[" + r.DescriptorID + "]"
}

// AllPassed returns true if every assertion in the result passed.
func (r *Result) AllPassed() bool {
	for _, a := range r.Assertions {
		if !a.Passed {
			return false
		}
	}
	return true
}

// IsFinal returns true if the status is a terminal state.
func (r *Result) IsFinal() bool {
	switch r.Status {
	case StatusPassed, StatusFailed, StatusSkipped,
		StatusTimedOut, StatusError:
		return true
	}
	return false
}
