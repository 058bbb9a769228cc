package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"digital.vasic.crossbrowser/pkg/assertion"
	"digital.vasic.crossbrowser/pkg/capability"
	"digital.vasic.crossbrowser/pkg/grid"
	"digital.vasic.crossbrowser/pkg/logging"
	"digital.vasic.crossbrowser/pkg/matrix"
	"digital.vasic.crossbrowser/pkg/metrics"
)

// State is the lifecycle state of one invocation.
type State int

const (
	StateUninitialized State = iota
	StateActive
	StateReporting
	StateReleased
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateActive:
		return "active"
	case StateReporting:
		return "reporting"
	case StateReleased:
		return "released"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// PassedReason is reported to the grid for passing invocations.
const PassedReason = "Test passed"

// DefaultReportTimeout bounds the status command, and separately
// the release.
const DefaultReportTimeout = 30 * time.Second

// Creator opens remote sessions. *grid.Factory implements it.
type Creator interface {
	Create(ctx context.Context, req capability.Request) (grid.Session, error)
}

// Body is the check executed while the session is active.
type Body func(ctx context.Context, s grid.Session, d matrix.Descriptor) error

// Invocation is the explicit result object for one run of a body
// against one descriptor.
type Invocation struct {
	Descriptor matrix.Descriptor
	Recorder   *Recorder
	State      State
	SessionID  string

	// Reported is true once a status command was attempted.
	Reported       bool
	ReportedStatus grid.Status
	ReportedReason string
	ReportErr      error

	Released   bool
	ReleaseErr error

	StartTime time.Time
	EndTime   time.Time
}

// Status summarises the invocation: "error" when setup or the body
// errored, "failed" when an assertion failed, otherwise "passed".
func (inv *Invocation) Status() string {
	if o, ok := inv.Recorder.Get(PhaseSetup); ok && !o.Passed() {
		return OutcomeError
	}
	if o, ok := inv.Recorder.Get(PhaseCall); ok {
		return o.Status
	}
	return OutcomePassed
}

// Message returns the first non-passing outcome message.
func (inv *Invocation) Message() string {
	for _, o := range inv.Recorder.Outcomes() {
		if !o.Passed() {
			return o.Message
		}
	}
	return ""
}

// Lifecycle runs bodies inside managed sessions.
type Lifecycle struct {
	creator       Creator
	builder       *capability.Builder
	targetURL     string
	reportTimeout time.Duration
	logger        logging.Logger
	metrics       metrics.SuiteMetrics
}

// Option configures a Lifecycle.
type Option func(*Lifecycle)

// WithTargetURL sets the page opened before the body runs.
func WithTargetURL(u string) Option {
	return func(l *Lifecycle) { l.targetURL = u }
}

// WithDefaults sets the capability defaults.
func WithDefaults(d capability.Defaults) Option {
	return func(l *Lifecycle) { l.builder = capability.NewBuilder(d) }
}

// WithReportTimeout bounds teardown.
func WithReportTimeout(d time.Duration) Option {
	return func(l *Lifecycle) { l.reportTimeout = d }
}

// WithLogger sets the lifecycle logger.
func WithLogger(lg logging.Logger) Option {
	return func(l *Lifecycle) { l.logger = lg }
}

// WithMetrics sets the metrics sink.
func WithMetrics(m metrics.SuiteMetrics) Option {
	return func(l *Lifecycle) { l.metrics = m }
}

// NewLifecycle creates a Lifecycle that opens sessions through c.
func NewLifecycle(c Creator, targetURL string, opts ...Option) *Lifecycle {
	l := &Lifecycle{
		creator:       c,
		builder:       capability.NewBuilder(capability.DefaultDefaults()),
		targetURL:     targetURL,
		reportTimeout: DefaultReportTimeout,
	}
	for _, opt := range opts {
		opt(l)
	}
	l.logger = logging.OrNull(l.logger)
	l.metrics = metrics.OrNoop(l.metrics)
	return l
}

// Run executes body against a fresh session for d. Whatever
// happens in the body, a session that was created receives exactly
// one status command and exactly one Quit.
func (l *Lifecycle) Run(
	ctx context.Context,
	d matrix.Descriptor,
	body Body,
) *Invocation {
	inv := &Invocation{
		Descriptor: d,
		Recorder:   NewRecorder(),
		State:      StateUninitialized,
		StartTime:  time.Now(),
	}
	defer func() { inv.EndTime = time.Now() }()

	log := l.logger.WithFields(logging.DescriptorField(d.ID))

	s, setupErr := l.setup(ctx, d, inv)
	if s == nil {
		log.Error("session setup failed", logging.ErrorField(setupErr))
		return inv
	}
	defer l.teardown(ctx, s, inv, log)

	if setupErr != nil {
		log.Warn("initial navigation failed", logging.ErrorField(setupErr))
		return inv
	}

	l.call(ctx, s, d, body, inv)
	return inv
}

// setup builds the request, opens the session and navigates. A nil
// session means nothing needs releasing.
func (l *Lifecycle) setup(
	ctx context.Context,
	d matrix.Descriptor,
	inv *Invocation,
) (grid.Session, error) {
	start := time.Now()
	record := func(err error) {
		o := Outcome{Phase: PhaseSetup, Status: OutcomePassed, Duration: time.Since(start)}
		if err != nil {
			o.Status = OutcomeError
			o.Message = err.Error()
			o.Err = err
		}
		_ = inv.Recorder.Record(o)
	}

	req, err := l.builder.Build(d)
	if err != nil {
		record(err)
		return nil, err
	}

	s, err := l.creator.Create(ctx, req)
	if err != nil {
		l.metrics.RecordSession(d.ID, "failed")
		record(err)
		return nil, err
	}
	l.metrics.RecordSession(d.ID, "created")
	l.metrics.AddActiveSessions(1)
	inv.SessionID = s.ID()
	inv.State = StateActive

	if err := bounded(ctx, func() error { return s.Navigate(l.targetURL) }); err != nil {
		err = fmt.Errorf("navigate to %s: %w", l.targetURL, err)
		record(err)
		return s, err
	}
	record(nil)
	return s, nil
}

func (l *Lifecycle) call(
	ctx context.Context,
	s grid.Session,
	d matrix.Descriptor,
	body Body,
	inv *Invocation,
) {
	start := time.Now()
	err := bounded(ctx, func() error { return runRecovered(ctx, s, d, body) })
	if errors.Is(err, errAbandoned) {
		err = fmt.Errorf("[%s] check %w", d.Label, err)
	}

	o := Outcome{Phase: PhaseCall, Status: OutcomePassed, Duration: time.Since(start)}
	if err != nil {
		o.Status = OutcomeError
		var failure *assertion.Failure
		if errors.As(err, &failure) {
			o.Status = OutcomeFailed
		}
		o.Message = err.Error()
		o.Err = err
	}
	_ = inv.Recorder.Record(o)
}

func runRecovered(
	ctx context.Context,
	s grid.Session,
	d matrix.Descriptor,
	body Body,
) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("[%s] panic: %v", d.Label, r)
		}
	}()
	return body(ctx, s, d)
}

// teardown reports the call outcome and releases the session. An
// absent call outcome is reported as passed. Reporting errors are
// logged and never replace the call outcome.
func (l *Lifecycle) teardown(
	ctx context.Context,
	s grid.Session,
	inv *Invocation,
	log logging.Logger,
) {
	start := time.Now()
	inv.State = StateReporting

	status, reason := grid.StatusPassed, PassedReason
	if o, ok := inv.Recorder.Get(PhaseCall); ok && !o.Passed() {
		status, reason = grid.StatusFailed, o.Message
	}

	base := context.WithoutCancel(ctx)
	tctx, cancel := context.WithTimeout(base, l.reportTimeout)
	defer cancel()

	inv.Reported = true
	inv.ReportedStatus = status
	inv.ReportedReason = reason
	err := bounded(tctx, func() error { return reportRecovered(tctx, s, status, reason) })
	if errors.Is(err, errAbandoned) {
		err = fmt.Errorf("report status %s: %w", status, err)
	}
	if err != nil {
		inv.ReportErr = err
		log.Warn("status report failed", logging.ErrorField(err))
	}
	l.metrics.RecordStatusReport(string(status), inv.ReportErr == nil)

	qctx, cancelQuit := context.WithTimeout(base, l.reportTimeout)
	defer cancelQuit()
	inv.Released = true
	inv.ReleaseErr = bounded(qctx, func() error { return quitRecovered(s) })
	if errors.Is(inv.ReleaseErr, errAbandoned) {
		inv.ReleaseErr = fmt.Errorf("quit: %w", inv.ReleaseErr)
	}
	inv.State = StateReleased
	l.metrics.AddActiveSessions(-1)

	o := Outcome{Phase: PhaseTeardown, Status: OutcomePassed, Duration: time.Since(start)}
	if inv.ReleaseErr != nil {
		log.Warn("session release failed", logging.ErrorField(inv.ReleaseErr))
		o.Status = OutcomeError
		o.Message = inv.ReleaseErr.Error()
		o.Err = inv.ReleaseErr
	}
	_ = inv.Recorder.Record(o)

	log.Info("session released",
		logging.SessionField(inv.SessionID),
		logging.StringField("status", string(status)),
	)
}

// errAbandoned marks a grid call that was still running when its
// context ended.
var errAbandoned = errors.New("abandoned")

// bounded runs fn on its own goroutine and stops waiting once ctx
// ends. WebDriver calls take no context, so an abandoned fn runs on
// until its next command fails against the released session.
func bounded(ctx context.Context, fn func() error) error {
	done := make(chan error, 1)
	go func() { done <- fn() }()
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return fmt.Errorf("%w: %w", errAbandoned, ctx.Err())
	}
}

func reportRecovered(
	ctx context.Context,
	s grid.Session,
	status grid.Status,
	reason string,
) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("report status panicked: %v", r)
		}
	}()
	return grid.ReportStatus(ctx, s, status, reason)
}

func quitRecovered(s grid.Session) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("quit panicked: %v", r)
		}
	}()
	return s.Quit()
}
