// Package registry provides check registration, lookup and
// marker-based selection.
package registry

import (
	"fmt"
	"sync"

	"digital.vasic.crossbrowser/pkg/check"
)

// Registry defines the interface for managing checks.
type Registry interface {
	// Register adds a check. IDs must be unique.
	Register(c check.Check) error

	// Get retrieves a check by ID.
	Get(id check.ID) (check.Check, error)

	// List returns all checks in registration order.
	List() []check.Check

	// ListByMarker returns the checks carrying m.
	ListByMarker(m check.Marker) []check.Check

	// Select returns the checks matched by a marker expression,
	// in registration order.
	Select(expr string) ([]check.Check, error)

	// Clear removes all checks.
	Clear()

	// Count returns the number of registered checks.
	Count() int
}

// DefaultRegistry is the standard Registry implementation.
// It is safe for concurrent use.
type DefaultRegistry struct {
	mu     sync.RWMutex
	checks map[check.ID]check.Check
	order  []check.ID
}

// NewRegistry creates a new, empty DefaultRegistry.
func NewRegistry() *DefaultRegistry {
	return &DefaultRegistry{
		checks: make(map[check.ID]check.Check),
	}
}

// Default is the package-level default registry instance.
var Default = NewRegistry()

// Register adds a check to the registry. Returns an error if a
// check with the same ID is already registered.
func (r *DefaultRegistry) Register(c check.Check) error {
	if c == nil {
		return fmt.Errorf("check must not be nil")
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	id := c.ID()
	if _, exists := r.checks[id]; exists {
		return fmt.Errorf("check already registered: %s", id)
	}

	r.checks[id] = c
	r.order = append(r.order, id)
	return nil
}

// Get retrieves a check by ID.
func (r *DefaultRegistry) Get(id check.ID) (check.Check, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, exists := r.checks[id]
	if !exists {
		return nil, fmt.Errorf("check not found: %s", id)
	}
	return c, nil
}

// List returns all registered checks in registration order.
func (r *DefaultRegistry) List() []check.Check {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]check.Check, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.checks[id])
	}
	return out
}

// ListByMarker returns the checks carrying m.
func (r *DefaultRegistry) ListByMarker(m check.Marker) []check.Check {
	var out []check.Check
	for _, c := range r.List() {
		for _, have := range c.Markers() {
			if have == m {
				out = append(out, c)
				break
			}
		}
	}
	return out
}

// Select compiles expr with check.ParseExpr and returns the
// matching checks. An empty expression selects everything.
func (r *DefaultRegistry) Select(expr string) ([]check.Check, error) {
	e, err := check.ParseExpr(expr)
	if err != nil {
		return nil, err
	}
	var out []check.Check
	for _, c := range r.List() {
		if e.Match(c.Markers()) {
			out = append(out, c)
		}
	}
	return out, nil
}

// SelectIDs returns the named checks in the order given.
func SelectIDs(reg Registry, ids ...check.ID) ([]check.Check, error) {
	out := make([]check.Check, 0, len(ids))
	for _, id := range ids {
		c, err := reg.Get(id)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

// Clear removes all checks.
func (r *DefaultRegistry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.checks = make(map[check.ID]check.Check)
	r.order = nil
}

// Count returns the number of registered checks.
func (r *DefaultRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.checks)
}
