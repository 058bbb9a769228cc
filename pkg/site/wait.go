package site

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"digital.vasic.crossbrowser/pkg/grid"
)

// PollInterval is the default gap between condition checks.
const PollInterval = 250 * time.Millisecond

// Condition is polled by a Waiter. Returning an error does not
// stop the wait; the last error is reported on timeout.
type Condition func() (bool, error)

// Waiter polls a Condition until it holds or Timeout elapses.
type Waiter struct {
	Timeout  time.Duration
	Interval time.Duration
}

// NewWaiter returns a Waiter with the default poll interval.
func NewWaiter(timeout time.Duration) Waiter {
	return Waiter{Timeout: timeout, Interval: PollInterval}
}

// Until blocks until cond holds. It returns an error wrapping
// grid.ErrTimeout when the bound is exceeded, or the context
// error when ctx ends first. A closed session aborts at once.
func (w Waiter) Until(ctx context.Context, cond Condition) error {
	interval := w.Interval
	if interval <= 0 {
		interval = PollInterval
	}
	deadline := time.NewTimer(w.Timeout)
	defer deadline.Stop()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var lastErr error
	for {
		ok, err := cond()
		if ok && err == nil {
			return nil
		}
		if err != nil {
			if errors.Is(err, grid.ErrSessionClosed) {
				return err
			}
			lastErr = err
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-deadline.C:
			if lastErr != nil {
				return fmt.Errorf("%w after %s: %v", grid.ErrTimeout, w.Timeout, lastErr)
			}
			return fmt.Errorf("%w after %s", grid.ErrTimeout, w.Timeout)
		case <-ticker.C:
		}
	}
}

// WaitForDashboard waits for the URL to contain the dashboard
// marker. A timeout yields false, never an error.
func WaitForDashboard(ctx context.Context, s grid.Session, timeout time.Duration) bool {
	return WaitForURL(ctx, s, timeout, func(u string) bool {
		return strings.Contains(u, DashboardMarker)
	})
}

// WaitForURL waits until match accepts the current URL.
func WaitForURL(
	ctx context.Context,
	s grid.Session,
	timeout time.Duration,
	match func(string) bool,
) bool {
	err := NewWaiter(timeout).Until(ctx, func() (bool, error) {
		u, err := s.URL()
		if err != nil {
			return false, err
		}
		return match(u), nil
	})
	return err == nil
}

// URLEquals matches the exact URL want.
func URLEquals(want string) func(string) bool {
	return func(u string) bool { return u == want }
}

// WaitClickable waits until the element is present and displayed
// and returns it.
func WaitClickable(
	ctx context.Context,
	s grid.Session,
	by grid.By,
	locator string,
	timeout time.Duration,
) (grid.Element, error) {
	var found grid.Element
	err := NewWaiter(timeout).Until(ctx, func() (bool, error) {
		el, err := s.Find(by, locator)
		if err != nil {
			return false, err
		}
		shown, err := el.Displayed()
		if err != nil || !shown {
			return false, err
		}
		found = el
		return true, nil
	})
	if err != nil {
		return nil, fmt.Errorf("wait for %s %q clickable: %w", by, locator, err)
	}
	return found, nil
}
