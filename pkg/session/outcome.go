// Package session owns the per-invocation lifecycle of a remote
// browser session: create, hand to a check body, then always
// report the outcome to the grid and release the session.
package session

import (
	"fmt"
	"sync"
	"time"
)

// Phase names a stage of one invocation.
type Phase string

const (
	PhaseSetup    Phase = "setup"
	PhaseCall     Phase = "call"
	PhaseTeardown Phase = "teardown"
)

var phaseOrder = []Phase{PhaseSetup, PhaseCall, PhaseTeardown}

// Outcome status values.
const (
	OutcomePassed = "passed"
	OutcomeFailed = "failed"
	OutcomeError  = "error"
)

// Outcome is the result of one phase.
type Outcome struct {
	Phase    Phase         `json:"phase"`
	Status   string        `json:"status"`
	Message  string        `json:"message,omitempty"`
	Duration time.Duration `json:"duration"`
	Err      error         `json:"-"`
}

// Passed reports whether the phase succeeded.
func (o Outcome) Passed() bool { return o.Status == OutcomePassed }

// Recorder holds at most one outcome per phase for a single
// invocation. Outcomes are stored exactly as given.
type Recorder struct {
	mu       sync.RWMutex
	outcomes map[Phase]Outcome
}

// NewRecorder creates an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{outcomes: make(map[Phase]Outcome, len(phaseOrder))}
}

// Record stores o under its phase. A phase can be recorded once.
func (r *Recorder) Record(o Outcome) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.outcomes[o.Phase]; exists {
		return fmt.Errorf("outcome for phase %s already recorded", o.Phase)
	}
	r.outcomes[o.Phase] = o
	return nil
}

// Get returns the outcome recorded for phase.
func (r *Recorder) Get(phase Phase) (Outcome, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	o, ok := r.outcomes[phase]
	return o, ok
}

// Outcomes returns recorded outcomes in phase order.
func (r *Recorder) Outcomes() []Outcome {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Outcome, 0, len(r.outcomes))
	for _, p := range phaseOrder {
		if o, ok := r.outcomes[p]; ok {
			out = append(out, o)
		}
	}
	return out
}
