// Package check defines the behavioural check model: what a check
// is, how it is categorised, and what running it against one
// descriptor produces.
package check

import (
	"context"

	"digital.vasic.crossbrowser/pkg/assertion"
	"digital.vasic.crossbrowser/pkg/grid"
	"digital.vasic.crossbrowser/pkg/matrix"
)

// ID uniquely identifies a check, e.g. "POS-01".
type ID string

// Check is one independent behavioural test. A check is run once
// per descriptor, each time against its own session.
type Check interface {
	// ID returns the unique identifier for this check.
	ID() ID

	// Name returns the human-readable name.
	Name() string

	// Description explains what the check validates.
	Description() string

	// Markers returns the categories used for filtering.
	Markers() []Marker

	// Run drives the session and records assertions. A failed
	// assertion is returned as *assertion.Failure; any other
	// error means the check could not complete.
	Run(
		ctx context.Context,
		s grid.Session,
		d matrix.Descriptor,
		a *assertion.Asserter,
	) error
}

// RunFunc is the body of a check built with New.
type RunFunc func(
	ctx context.Context,
	s grid.Session,
	d matrix.Descriptor,
	a *assertion.Asserter,
) error

// Base carries the identity of a check.
type Base struct {
	id          ID
	name        string
	description string
	markers     []Marker
}

// NewBase creates a Base with the given identity fields.
func NewBase(id ID, name, description string, markers ...Marker) Base {
	if markers == nil {
		markers = []Marker{}
	}
	return Base{
		id:          id,
		name:        name,
		description: description,
		markers:     markers,
	}
}

// ID returns the check identifier.
func (b *Base) ID() ID { return b.id }

// Name returns the check name.
func (b *Base) Name() string { return b.name }

// Description returns the check description.
func (b *Base) Description() string {
	return b.description
}

// Markers returns a copy of the check markers.
func (b *Base) Markers() []Marker {
	return append([]Marker(nil), b.markers...)
}

// HasMarker reports whether the check carries m.
func (b *Base) HasMarker(m Marker) bool {
	for _, have := range b.markers {
		if have == m {
			return true
		}
	}
	return false
}

type funcCheck struct {
	Base
	run RunFunc
}

func (c *funcCheck) Run(
	ctx context.Context,
	s grid.Session,
	d matrix.Descriptor,
	a *assertion.Asserter,
) error {
	return c.run(ctx, s, d, a)
}

// New builds a Check from its identity and body.
func New(base Base, run RunFunc) Check {
	return &funcCheck{Base: base, run: run}
}
