// Package assertion provides an extensible assertion evaluation
// engine for browser checks. It ships with built-in evaluators
// for page text, URLs, attributes and layout metrics, and an
// Asserter that records every evaluation made during a check.
package assertion

// Definition describes a single assertion to evaluate against
// an observed page value.
type Definition struct {
	// Type is the evaluator type (e.g., "contains",
	// "not_empty", "equals").
	Type string `json:"type" yaml:"type"`

	// Target names the observed value (e.g., "error_text",
	// "current_url").
	Target string `json:"target" yaml:"target"`

	// Value is the expected value for single-value assertions.
	Value any `json:"value,omitempty" yaml:"value"`

	// Values holds expected values for multi-value assertions
	// (e.g., "contains_any", "one_of").
	Values []any `json:"values,omitempty" yaml:"values"`

	// Message is a human-readable description shown on
	// failure.
	Message string `json:"message" yaml:"message"`
}

// Result captures the outcome of evaluating a single assertion.
type Result struct {
	// Type is the assertion type that was evaluated.
	Type string `json:"type"`

	// Target is the name of the observed value.
	Target string `json:"target"`

	// Expected is the value the assertion expected.
	Expected any `json:"expected"`

	// Actual is the value that was observed.
	Actual any `json:"actual"`

	// Passed indicates whether the assertion succeeded.
	Passed bool `json:"passed"`

	// Message is a human-readable description of the outcome.
	Message string `json:"message"`
}
