// Package checks holds the login-flow checks run across the
// capability matrix: positive flows, negative and security flows,
// and UI rendering properties.
package checks

import (
	"fmt"
	"strings"
	"time"

	"digital.vasic.crossbrowser/pkg/check"
	"digital.vasic.crossbrowser/pkg/grid"
	"digital.vasic.crossbrowser/pkg/registry"
	"digital.vasic.crossbrowser/pkg/site"
)

type settings struct {
	wait   time.Duration
	target string
}

// Option tunes the checks built by All.
type Option func(*settings)

// WithWaitTimeout bounds every explicit wait. Defaults to
// site.Timeout.
func WithWaitTimeout(d time.Duration) Option {
	return func(s *settings) { s.wait = d }
}

// WithTargetURL sets the base URL of the site under test, which
// flows that return to the login page compare against. Defaults to
// site.TargetURL.
func WithTargetURL(u string) Option {
	return func(s *settings) {
		if u != "" {
			s.target = strings.TrimRight(u, "/")
		}
	}
}

func newSettings(opts []Option) settings {
	s := settings{wait: site.Timeout, target: site.TargetURL}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// All returns every check in suite order: POS, NEG, then UI.
func All(opts ...Option) []check.Check {
	s := newSettings(opts)
	out := positive(s)
	out = append(out, negative(s)...)
	return append(out, ui(s)...)
}

// RegisterAll adds every check to reg.
func RegisterAll(reg registry.Registry, opts ...Option) error {
	for _, c := range All(opts...) {
		if err := reg.Register(c); err != nil {
			return fmt.Errorf("register %s: %w", c.ID(), err)
		}
	}
	return nil
}

// login fills and submits the login form.
func login(s grid.Session, username, password string) error {
	if err := site.FillLogin(s, username, password); err != nil {
		return err
	}
	return site.SubmitLogin(s)
}

// currentURL returns the URL for failure messages, or a marker
// when it cannot be read.
func currentURL(s grid.Session) string {
	u, err := s.URL()
	if err != nil {
		return "<unavailable>"
	}
	return u
}
