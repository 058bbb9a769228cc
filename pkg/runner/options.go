package runner

import (
	"time"

	"digital.vasic.crossbrowser/pkg/assertion"
	"digital.vasic.crossbrowser/pkg/logging"
	"digital.vasic.crossbrowser/pkg/metrics"
	"digital.vasic.crossbrowser/pkg/monitor"
	"digital.vasic.crossbrowser/pkg/registry"
)

// RunnerOption configures a DefaultRunner.
type RunnerOption func(*DefaultRunner)

// WithRegistry sets the check registry used by RunSelection.
func WithRegistry(reg registry.Registry) RunnerOption {
	return func(r *DefaultRunner) {
		r.registry = reg
	}
}

// WithLogger sets the logger used by the runner.
func WithLogger(logger logging.Logger) RunnerOption {
	return func(r *DefaultRunner) {
		r.logger = logger
	}
}

// WithMetrics sets the metrics sink.
func WithMetrics(m metrics.SuiteMetrics) RunnerOption {
	return func(r *DefaultRunner) {
		r.metrics = m
	}
}

// WithCollector publishes started and finished events for every
// invocation.
func WithCollector(c *monitor.EventCollector) RunnerOption {
	return func(r *DefaultRunner) {
		r.collector = c
	}
}

// WithEngine sets the assertion engine handed to checks.
func WithEngine(e assertion.Engine) RunnerOption {
	return func(r *DefaultRunner) {
		r.engine = e
	}
}

// WithTimeout bounds a single invocation, session setup and
// check body included. Reporting and release are not cut short.
func WithTimeout(timeout time.Duration) RunnerOption {
	return func(r *DefaultRunner) {
		r.timeout = timeout
	}
}

// WithParallelism sets how many invocations run at once. Values
// below 1 mean sequential.
func WithParallelism(n int) RunnerOption {
	return func(r *DefaultRunner) {
		r.parallelism = n
	}
}

// WithPreHook adds a pre-execution hook to the runner.
func WithPreHook(h Hook) RunnerOption {
	return func(r *DefaultRunner) {
		r.preHooks = append(r.preHooks, h)
	}
}

// WithPostHook adds a post-execution hook to the runner.
func WithPostHook(h Hook) RunnerOption {
	return func(r *DefaultRunner) {
		r.postHooks = append(r.postHooks, h)
	}
}
