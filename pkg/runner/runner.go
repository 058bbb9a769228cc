// Package runner dispatches checks across the capability matrix.
// Every (check, descriptor) pair runs in its own session through
// the session lifecycle, sequentially or with bounded parallelism.
package runner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"digital.vasic.crossbrowser/pkg/assertion"
	"digital.vasic.crossbrowser/pkg/check"
	"digital.vasic.crossbrowser/pkg/grid"
	"digital.vasic.crossbrowser/pkg/logging"
	"digital.vasic.crossbrowser/pkg/matrix"
	"digital.vasic.crossbrowser/pkg/metrics"
	"digital.vasic.crossbrowser/pkg/monitor"
	"digital.vasic.crossbrowser/pkg/registry"
	"digital.vasic.crossbrowser/pkg/session"
)

// Runner defines the interface for check execution.
type Runner interface {
	// Run executes one check against one descriptor.
	Run(
		ctx context.Context,
		c check.Check,
		d matrix.Descriptor,
	) *check.Result

	// RunMatrix executes every check against every descriptor.
	// Results are ordered by check, then descriptor.
	RunMatrix(
		ctx context.Context,
		checks []check.Check,
		descriptors []matrix.Descriptor,
	) ([]*check.Result, error)

	// RunSelection runs the registered checks matching a marker
	// expression against descriptors.
	RunSelection(
		ctx context.Context,
		expr string,
		descriptors []matrix.Descriptor,
	) ([]*check.Result, error)
}

// Hook is a function invoked before or after one invocation.
type Hook func(
	ctx context.Context,
	c check.Check,
	d matrix.Descriptor,
) error

// DefaultTimeout bounds one invocation when no timeout is set.
const DefaultTimeout = 5 * time.Minute

// DefaultRunner is the standard Runner implementation.
type DefaultRunner struct {
	lifecycle   *session.Lifecycle
	registry    registry.Registry
	logger      logging.Logger
	metrics     metrics.SuiteMetrics
	collector   *monitor.EventCollector
	engine      assertion.Engine
	timeout     time.Duration
	parallelism int
	preHooks    []Hook
	postHooks   []Hook
}

// NewRunner creates a DefaultRunner that opens sessions through
// lifecycle.
func NewRunner(
	lifecycle *session.Lifecycle,
	opts ...RunnerOption,
) *DefaultRunner {
	r := &DefaultRunner{
		lifecycle:   lifecycle,
		registry:    registry.Default,
		timeout:     DefaultTimeout,
		parallelism: 1,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = logging.OrNull(r.logger)
	r.metrics = metrics.OrNoop(r.metrics)
	if r.parallelism < 1 {
		r.parallelism = 1
	}
	return r
}

// Parallelism returns the number of concurrent invocations.
func (r *DefaultRunner) Parallelism() int { return r.parallelism }

// RunSelection runs the registered checks matching expr. An empty
// expression selects every check.
func (r *DefaultRunner) RunSelection(
	ctx context.Context,
	expr string,
	descriptors []matrix.Descriptor,
) ([]*check.Result, error) {
	selected, err := r.registry.Select(expr)
	if err != nil {
		return nil, fmt.Errorf("failed to select checks: %w", err)
	}
	return r.RunMatrix(ctx, selected, descriptors)
}

// Run executes a single check through its full lifecycle:
// pre-hooks -> session setup -> body with timeout -> report and
// release -> post-hooks.
func (r *DefaultRunner) Run(
	ctx context.Context,
	c check.Check,
	d matrix.Descriptor,
) *check.Result {
	result := &check.Result{
		CheckID:         c.ID(),
		CheckName:       c.Name(),
		Markers:         c.Markers(),
		DescriptorID:    d.ID,
		DescriptorLabel: d.Label,
		Status:          check.StatusRunning,
		StartTime:       time.Now(),
	}
	log := r.logger.WithFields(
		logging.CheckField(string(c.ID())),
		logging.DescriptorField(d.ID),
	)
	r.emitStarted(c, d)
	defer r.finish(c, result, log)

	for _, hook := range r.preHooks {
		if err := hook(ctx, c, d); err != nil {
			result.Status = check.StatusError
			result.Error = fmt.Sprintf("pre-hook failed: %v", err)
			return result
		}
	}

	execCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	asserter := assertion.NewAsserter(r.engine, d.Label)
	inv := r.lifecycle.Run(execCtx, d,
		func(ctx context.Context, s grid.Session, d matrix.Descriptor) error {
			return c.Run(ctx, s, d, asserter)
		},
	)

	result.SessionID = inv.SessionID
	result.Assertions = asserter.Results()
	for _, o := range inv.Recorder.Outcomes() {
		result.Phases = append(result.Phases, check.PhaseOutcome{
			Phase:    string(o.Phase),
			Status:   o.Status,
			Message:  o.Message,
			Duration: o.Duration,
		})
	}
	if inv.Reported {
		result.GridStatus = string(inv.ReportedStatus)
		result.GridReason = inv.ReportedReason
	}

	result.Status = inv.Status()
	result.Error = inv.Message()
	if result.Status != check.StatusPassed &&
		errors.Is(execCtx.Err(), context.DeadlineExceeded) {
		result.Status = check.StatusTimedOut
		result.Error = fmt.Sprintf(
			"check timed out after %v: %s", r.timeout, result.Error,
		)
	}

	for _, hook := range r.postHooks {
		if err := hook(ctx, c, d); err != nil {
			log.Warn("post-hook failed", logging.ErrorField(err))
		}
	}
	return result
}

func (r *DefaultRunner) emitStarted(c check.Check, d matrix.Descriptor) {
	if r.collector != nil {
		r.collector.EmitStarted(c.ID(), c.Name(), d.ID, d.Label)
	}
}

func (r *DefaultRunner) finish(
	c check.Check,
	result *check.Result,
	log logging.Logger,
) {
	result.EndTime = time.Now()
	result.Duration = result.EndTime.Sub(result.StartTime)

	for _, a := range result.Assertions {
		r.metrics.RecordAssertion(string(c.ID()), a.Type, a.Passed)
	}
	r.metrics.RecordCheck(
		string(c.ID()), result.DescriptorID, result.Status, result.Duration,
	)
	if r.collector != nil {
		r.collector.EmitResult(result)
	}

	fields := []logging.Field{
		logging.StringField("status", result.Status),
		logging.DurationField("duration", result.Duration),
	}
	if result.Status == check.StatusPassed {
		log.Info("check completed", fields...)
		return
	}
	fields = append(fields, logging.StringField("error", result.Error))
	log.Warn("check completed", fields...)
}
