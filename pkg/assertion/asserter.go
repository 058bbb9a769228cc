package assertion

import (
	"fmt"
	"sync"
)

// Failure is returned by an Asserter when an assertion does not
// hold. Its message carries the configuration label so a failure
// can be traced to the browser or device that produced it.
type Failure struct {
	Label  string
	Result Result
}

func (f *Failure) Error() string {
	return fmt.Sprintf("[%s] %s", f.Label, f.Result.Message)
}

// Asserter evaluates assertions through an Engine on behalf of a
// single check invocation and keeps every result it produced.
type Asserter struct {
	engine Engine
	label  string

	mu      sync.Mutex
	results []Result
}

// NewAsserter creates an Asserter whose failures are prefixed
// with label. A nil engine falls back to NewEngine().
func NewAsserter(engine Engine, label string) *Asserter {
	if engine == nil {
		engine = NewEngine()
	}
	return &Asserter{engine: engine, label: label}
}

// Label returns the label used in failure messages.
func (a *Asserter) Label() string { return a.label }

// That evaluates def against value and records the result. When
// the assertion fails it returns a *Failure whose message is
// def.Message or, when empty, the evaluator's explanation.
func (a *Asserter) That(def Definition, value any) error {
	r := a.engine.Evaluate(def, value)
	if !r.Passed && def.Message != "" {
		r.Message = def.Message
	}

	a.record(r)
	if r.Passed {
		return nil
	}
	return &Failure{Label: a.label, Result: r}
}

// ThatAll evaluates defs against the named observations, records
// every result and returns the first failure.
func (a *Asserter) ThatAll(defs []Definition, observed map[string]any) error {
	var first error
	for i, r := range a.engine.EvaluateAll(defs, observed) {
		if !r.Passed && i < len(defs) && defs[i].Message != "" {
			r.Message = defs[i].Message
		}
		a.record(r)
		if !r.Passed && first == nil {
			first = &Failure{Label: a.label, Result: r}
		}
	}
	return first
}

func (a *Asserter) record(r Result) {
	a.mu.Lock()
	a.results = append(a.results, r)
	a.mu.Unlock()
}

// True asserts that cond holds.
func (a *Asserter) True(target string, cond bool, msg string) error {
	return a.That(Definition{
		Type: "is_true", Target: target, Message: msg,
	}, cond)
}

// False asserts that cond does not hold.
func (a *Asserter) False(target string, cond bool, msg string) error {
	return a.That(Definition{
		Type: "is_false", Target: target, Message: msg,
	}, cond)
}

// Equal asserts that actual equals expected.
func (a *Asserter) Equal(
	target string, expected, actual any, msg string,
) error {
	return a.That(Definition{
		Type: "equals", Target: target, Value: expected, Message: msg,
	}, actual)
}

// Contains asserts a case-insensitive substring match.
func (a *Asserter) Contains(
	target, actual, substr, msg string,
) error {
	return a.That(Definition{
		Type: "contains", Target: target, Value: substr, Message: msg,
	}, actual)
}

// ContainsExact asserts a case-sensitive substring match.
func (a *Asserter) ContainsExact(
	target, actual, substr, msg string,
) error {
	return a.That(Definition{
		Type: "contains_exact", Target: target, Value: substr, Message: msg,
	}, actual)
}

// NotEmpty asserts that actual has non-whitespace content.
func (a *Asserter) NotEmpty(target string, actual any, msg string) error {
	return a.That(Definition{
		Type: "not_empty", Target: target, Message: msg,
	}, actual)
}

// Empty asserts that actual is empty.
func (a *Asserter) Empty(target string, actual any, msg string) error {
	return a.That(Definition{
		Type: "empty", Target: target, Message: msg,
	}, actual)
}

// Fail records an unconditional failure.
func (a *Asserter) Fail(target, msg string) error {
	r := Result{Type: "fail", Target: target, Message: msg}
	a.record(r)
	return &Failure{Label: a.label, Result: r}
}

// Results returns a copy of every result recorded so far.
func (a *Asserter) Results() []Result {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]Result, len(a.results))
	copy(out, a.results)
	return out
}

// Passed reports whether every recorded assertion passed.
func (a *Asserter) Passed() bool {
	for _, r := range a.Results() {
		if !r.Passed {
			return false
		}
	}
	return true
}
