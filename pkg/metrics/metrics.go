// Package metrics records suite activity: check executions,
// assertion outcomes, remote session churn and status reports.
package metrics

import "time"

// SuiteMetrics defines the interface for recording suite metrics.
type SuiteMetrics interface {
	// RecordCheck records one check run against one descriptor.
	RecordCheck(checkID, descriptorID, status string, duration time.Duration)
	// RecordAssertion records an assertion evaluation.
	RecordAssertion(checkID, evaluator string, passed bool)
	// RecordSession records a session creation attempt; result is
	// "created" or "failed".
	RecordSession(descriptorID, result string)
	// RecordStatusReport records a status command sent to the grid.
	RecordStatusReport(status string, delivered bool)
	// AddActiveSessions adjusts the open session gauge.
	AddActiveSessions(delta int)
	// IncrementRunTotal increments the total run counter.
	IncrementRunTotal()
}

// NoopMetrics is a no-op implementation of SuiteMetrics
// useful for testing or when metrics collection is disabled.
type NoopMetrics struct{}

func (NoopMetrics) RecordCheck(_, _, _ string, _ time.Duration) {}
func (NoopMetrics) RecordAssertion(_, _ string, _ bool)         {}
func (NoopMetrics) RecordSession(_, _ string)                   {}
func (NoopMetrics) RecordStatusReport(_ string, _ bool)         {}
func (NoopMetrics) AddActiveSessions(_ int)                     {}
func (NoopMetrics) IncrementRunTotal()                          {}

// OrNoop returns m, or NoopMetrics when m is nil.
func OrNoop(m SuiteMetrics) SuiteMetrics {
	if m == nil {
		return NoopMetrics{}
	}
	return m
}
