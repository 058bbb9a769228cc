package session_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"digital.vasic.crossbrowser/pkg/assertion"
	"digital.vasic.crossbrowser/pkg/grid"
	"digital.vasic.crossbrowser/pkg/grid/gridtest"
	"digital.vasic.crossbrowser/pkg/matrix"
	"digital.vasic.crossbrowser/pkg/metrics"
	"digital.vasic.crossbrowser/pkg/session"
)

const target = "https://www.saucedemo.com"

// countingMetrics tallies the calls the lifecycle makes.
type countingMetrics struct {
	metrics.NoopMetrics
	mu       sync.Mutex
	sessions map[string]int
	reports  map[bool]int
	active   int
}

func newCountingMetrics() *countingMetrics {
	return &countingMetrics{sessions: map[string]int{}, reports: map[bool]int{}}
}

func (c *countingMetrics) RecordSession(_, result string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sessions[result]++
}

func (c *countingMetrics) RecordStatusReport(_ string, delivered bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reports[delivered]++
}

func (c *countingMetrics) AddActiveSessions(delta int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.active += delta
}

type LifecycleSuite struct {
	suite.Suite
	fake    *gridtest.Session
	dialer  *gridtest.Dialer
	metrics *countingMetrics
	life    *session.Lifecycle
	desc    matrix.Descriptor
}

func TestLifecycleSuite(t *testing.T) {
	suite.Run(t, new(LifecycleSuite))
}

func (s *LifecycleSuite) SetupTest() {
	s.fake = gridtest.NewSession("sess-1")
	s.dialer = &gridtest.Dialer{New: func(string) grid.Session { return s.fake }}
	s.metrics = newCountingMetrics()
	factory := grid.NewFactory(grid.DefaultConfig(), grid.WithDialer(s.dialer))
	s.life = session.NewLifecycle(factory, target, session.WithMetrics(s.metrics))

	d, ok := matrix.Default().Get("chrome_win11")
	s.Require().True(ok)
	s.desc = d
}

// assertReportedOnce checks the exactly-once report and release
// guarantee and returns the reported status and reason.
func (s *LifecycleSuite) assertReportedOnce(inv *session.Invocation) (grid.Status, string) {
	raw := s.fake.RawCommands()
	s.Require().Len(raw, 1, "exactly one status command")
	s.Equal(1, s.fake.QuitCount(), "exactly one termination")
	s.Equal(session.StateReleased, inv.State)
	s.Equal(0, s.metrics.active)

	status, reason, err := grid.ParseStatusCommand(raw[0])
	s.Require().NoError(err)
	s.Equal(inv.ReportedStatus, status)
	s.Equal(inv.ReportedReason, reason)
	return status, reason
}

func (s *LifecycleSuite) TestPassingBody() {
	var gotLabel string
	inv := s.life.Run(context.Background(), s.desc, func(_ context.Context, sess grid.Session, d matrix.Descriptor) error {
		gotLabel = d.Label
		u, err := sess.URL()
		s.Require().NoError(err)
		s.Equal(target, u)
		return nil
	})

	status, reason := s.assertReportedOnce(inv)
	s.Equal(grid.StatusPassed, status)
	s.Equal("Test passed", reason)
	s.Equal("Chrome (Latest) · Windows 11", gotLabel)
	s.Equal(session.OutcomePassed, inv.Status())
	s.Equal("sess-1", inv.SessionID)
	s.Len(inv.Recorder.Outcomes(), 3)
	s.Equal(1, s.metrics.sessions["created"])
	s.Equal(1, s.metrics.reports[true])
}

func (s *LifecycleSuite) TestAssertionFailure() {
	inv := s.life.Run(context.Background(), s.desc, func(_ context.Context, _ grid.Session, d matrix.Descriptor) error {
		return assertion.NewAsserter(nil, d.Label).True("on_dashboard", false, "Expected redirect to dashboard.")
	})

	status, reason := s.assertReportedOnce(inv)
	s.Equal(grid.StatusFailed, status)
	s.Equal("[Chrome (Latest) · Windows 11] Expected redirect to dashboard.", reason)
	s.Equal(session.OutcomeFailed, inv.Status())
}

func (s *LifecycleSuite) TestBodyError() {
	inv := s.life.Run(context.Background(), s.desc, func(context.Context, grid.Session, matrix.Descriptor) error {
		return grid.NotFound(grid.ByID, "login-button")
	})

	status, reason := s.assertReportedOnce(inv)
	s.Equal(grid.StatusFailed, status)
	s.Contains(reason, "element not found")
	s.Equal(session.OutcomeError, inv.Status())
}

func (s *LifecycleSuite) TestBodyPanic() {
	inv := s.life.Run(context.Background(), s.desc, func(context.Context, grid.Session, matrix.Descriptor) error {
		panic("driver exploded")
	})

	status, reason := s.assertReportedOnce(inv)
	s.Equal(grid.StatusFailed, status)
	s.Contains(reason, "panic: driver exploded")
	s.Equal(session.OutcomeError, inv.Status())
}

func (s *LifecycleSuite) TestReportFailureIsSwallowed() {
	s.fake.RawErr = errors.New("executor rejected")

	inv := s.life.Run(context.Background(), s.desc, func(context.Context, grid.Session, matrix.Descriptor) error {
		return nil
	})

	s.assertReportedOnce(inv)
	s.Error(inv.ReportErr)
	s.NoError(inv.ReleaseErr)
	s.Equal(session.OutcomePassed, inv.Status(), "call outcome is not replaced")
	s.Equal(1, s.metrics.reports[false])
}

func (s *LifecycleSuite) TestReleaseFailureRecordedInTeardown() {
	s.fake.QuitErr = errors.New("session already gone")

	inv := s.life.Run(context.Background(), s.desc, func(context.Context, grid.Session, matrix.Descriptor) error {
		return nil
	})

	s.assertReportedOnce(inv)
	o, ok := inv.Recorder.Get(session.PhaseTeardown)
	s.Require().True(ok)
	s.Equal(session.OutcomeError, o.Status)
	s.Equal(session.OutcomePassed, inv.Status())
}

func (s *LifecycleSuite) TestCancelledContextStillReleases() {
	ctx, cancel := context.WithCancel(context.Background())

	inv := s.life.Run(ctx, s.desc, func(ctx context.Context, _ grid.Session, _ matrix.Descriptor) error {
		cancel()
		return ctx.Err()
	})

	status, _ := s.assertReportedOnce(inv)
	s.Equal(grid.StatusFailed, status)
	s.NoError(inv.ReportErr)
}

// The grid is told "passed" when setup fails after the session
// exists and no call outcome was recorded. This lenient default is
// kept on purpose; the invocation itself still reports an error.
func (s *LifecycleSuite) TestNavigationFailure_ReportsPassedLeniently() {
	s.fake.NavigateErr = errors.New("net::ERR_NAME_NOT_RESOLVED")
	ran := false

	inv := s.life.Run(context.Background(), s.desc, func(context.Context, grid.Session, matrix.Descriptor) error {
		ran = true
		return nil
	})

	status, reason := s.assertReportedOnce(inv)
	s.False(ran)
	s.Equal(grid.StatusPassed, status)
	s.Equal("Test passed", reason)
	_, hasCall := inv.Recorder.Get(session.PhaseCall)
	s.False(hasCall)
	s.Equal(session.OutcomeError, inv.Status())
	s.Contains(inv.Message(), "ERR_NAME_NOT_RESOLVED")
}

func (s *LifecycleSuite) TestSessionCreationFailure() {
	s.dialer.Err = errors.New("grid unreachable")
	ran := false

	inv := s.life.Run(context.Background(), s.desc, func(context.Context, grid.Session, matrix.Descriptor) error {
		ran = true
		return nil
	})

	s.False(ran)
	s.False(inv.Reported)
	s.False(inv.Released)
	s.Equal(session.StateUninitialized, inv.State)
	s.Equal(session.OutcomeError, inv.Status())

	o, ok := inv.Recorder.Get(session.PhaseSetup)
	s.Require().True(ok)
	var sce *grid.SessionCreationError
	s.True(errors.As(o.Err, &sce))
	s.Equal(1, s.metrics.sessions["failed"])
	s.Equal(0, s.metrics.active)
}

func (s *LifecycleSuite) TestInvalidDescriptorNeverDials() {
	inv := s.life.Run(context.Background(), matrix.Descriptor{ID: "broken", Label: "Broken"},
		func(context.Context, grid.Session, matrix.Descriptor) error { return nil })

	s.Empty(s.dialer.Dials())
	o, ok := inv.Recorder.Get(session.PhaseSetup)
	s.Require().True(ok)
	var cfgErr *matrix.ConfigurationError
	s.True(errors.As(o.Err, &cfgErr))
}

// stalledLifecycle hangs every call named call until the test ends.
func (s *LifecycleSuite) stalledLifecycle(call string) *session.Lifecycle {
	release := make(chan struct{})
	s.T().Cleanup(func() { close(release) })
	s.fake.StallOn(call, release)
	factory := grid.NewFactory(grid.DefaultConfig(), grid.WithDialer(s.dialer))
	return session.NewLifecycle(factory, target,
		session.WithReportTimeout(100*time.Millisecond),
		session.WithMetrics(s.metrics),
	)
}

func (s *LifecycleSuite) TestStalledStatusReportIsBounded() {
	life := s.stalledLifecycle("execute_raw")

	start := time.Now()
	inv := life.Run(context.Background(), s.desc, func(context.Context, grid.Session, matrix.Descriptor) error {
		return nil
	})

	s.Less(time.Since(start), 2*time.Second)
	s.True(inv.Reported)
	s.ErrorIs(inv.ReportErr, context.DeadlineExceeded)
	s.Contains(inv.ReportErr.Error(), "report status passed")
	s.Equal(1, s.fake.QuitCount(), "quit still runs after a stalled report")
	s.NoError(inv.ReleaseErr)
	s.Equal(session.StateReleased, inv.State)
	s.Equal(session.OutcomePassed, inv.Status())
	s.Equal(1, s.metrics.reports[false])
}

func (s *LifecycleSuite) TestStalledQuitIsBounded() {
	life := s.stalledLifecycle("quit")

	start := time.Now()
	inv := life.Run(context.Background(), s.desc, func(context.Context, grid.Session, matrix.Descriptor) error {
		return nil
	})

	s.Less(time.Since(start), 2*time.Second)
	s.NoError(inv.ReportErr)
	s.True(inv.Released)
	s.ErrorIs(inv.ReleaseErr, context.DeadlineExceeded)
	s.Equal(session.StateReleased, inv.State)
	s.Equal(0, s.metrics.active)

	o, ok := inv.Recorder.Get(session.PhaseTeardown)
	s.Require().True(ok)
	s.Equal(session.OutcomeError, o.Status)
	s.Contains(o.Message, "quit")
}

func (s *LifecycleSuite) TestStalledBodyAbandonedAtDeadline() {
	life := s.stalledLifecycle("find_element")
	ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
	defer cancel()

	start := time.Now()
	inv := life.Run(ctx, s.desc, func(_ context.Context, sess grid.Session, _ matrix.Descriptor) error {
		_, err := sess.Find(grid.ByID, "login-button")
		return err
	})

	s.Less(time.Since(start), 2*time.Second)
	s.Equal(session.OutcomeError, inv.Status())
	s.Contains(inv.Message(), "[Chrome (Latest) · Windows 11] check abandoned")

	o, ok := inv.Recorder.Get(session.PhaseCall)
	s.Require().True(ok)
	s.ErrorIs(o.Err, context.DeadlineExceeded)

	status, _ := s.assertReportedOnce(inv)
	s.Equal(grid.StatusFailed, status)
}

func TestLifecycle_ParallelInvocationsOwnTheirSessions(t *testing.T) {
	var mu sync.Mutex
	sessions := map[string]*gridtest.Session{}
	dialer := &gridtest.Dialer{New: func(id string) grid.Session {
		mu.Lock()
		defer mu.Unlock()
		s := gridtest.NewSession(id)
		sessions[id] = s
		return s
	}}
	life := session.NewLifecycle(
		grid.NewFactory(grid.DefaultConfig(), grid.WithDialer(dialer)),
		target,
		session.WithReportTimeout(time.Second),
	)

	m := matrix.Default()
	var wg sync.WaitGroup
	invs := make([]*session.Invocation, len(m))
	for i, d := range m {
		wg.Add(1)
		go func(i int, d matrix.Descriptor) {
			defer wg.Done()
			invs[i] = life.Run(context.Background(), d, func(_ context.Context, s grid.Session, d matrix.Descriptor) error {
				if s.ID() != d.ID {
					return errors.New("session shared across invocations")
				}
				return nil
			})
		}(i, d)
	}
	wg.Wait()

	require.Len(t, sessions, 11)
	for i, inv := range invs {
		assert.Equal(t, session.OutcomePassed, inv.Status(), m[i].ID)
		assert.Equal(t, 1, sessions[m[i].ID].QuitCount())
		assert.Len(t, sessions[m[i].ID].RawCommands(), 1)
	}
}
