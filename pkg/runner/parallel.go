package runner

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"digital.vasic.crossbrowser/pkg/check"
	"digital.vasic.crossbrowser/pkg/logging"
	"digital.vasic.crossbrowser/pkg/matrix"
	"digital.vasic.crossbrowser/pkg/monitor"
)

// RunMatrix executes every (check, descriptor) pair with at most
// Parallelism invocations in flight. Each pair gets its own
// session and result; one pair failing never stops the others.
// Pairs not started before ctx ends are reported as skipped and
// ctx.Err() is returned alongside the results.
func (r *DefaultRunner) RunMatrix(
	ctx context.Context,
	checks []check.Check,
	descriptors []matrix.Descriptor,
) ([]*check.Result, error) {
	r.metrics.IncrementRunTotal()
	r.emitRun(fmt.Sprintf("started: %d checks x %d descriptors",
		len(checks), len(descriptors)))
	start := time.Now()

	results := make([]*check.Result, len(checks)*len(descriptors))

	g := new(errgroup.Group)
	g.SetLimit(r.parallelism)

	for ci, c := range checks {
		for di, d := range descriptors {
			idx := ci*len(descriptors) + di
			g.Go(func() error {
				if err := ctx.Err(); err != nil {
					results[idx] = r.skip(c, d, err)
					return nil
				}
				results[idx] = r.Run(ctx, c, d)
				return nil
			})
		}
	}
	_ = g.Wait()

	r.logger.Info("matrix run completed",
		logging.IntField("invocations", len(results)),
		logging.IntField("parallelism", r.parallelism),
		logging.DurationField("duration", time.Since(start)),
	)
	r.emitRun("completed")
	return results, ctx.Err()
}

func (r *DefaultRunner) skip(
	c check.Check,
	d matrix.Descriptor,
	cause error,
) *check.Result {
	now := time.Now()
	result := &check.Result{
		CheckID:         c.ID(),
		CheckName:       c.Name(),
		Markers:         c.Markers(),
		DescriptorID:    d.ID,
		DescriptorLabel: d.Label,
		Status:          check.StatusSkipped,
		StartTime:       now,
		EndTime:         now,
		Error:           fmt.Sprintf("not started: %v", cause),
	}
	if r.collector != nil {
		r.collector.EmitResult(result)
	}
	return result
}

func (r *DefaultRunner) emitRun(msg string) {
	if r.collector != nil {
		r.collector.Emit(monitor.Event{Type: monitor.EventRun, Message: msg})
	}
}
